package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"msacli/internal/config"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Discovery locates survey workbooks and exported results under the
// application data directories.
type Discovery struct {
	paths *config.Paths
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(paths *config.Paths) *Discovery {
	return &Discovery{paths: paths}
}

// ListWorkbooks returns the Excel workbooks available for analysis.
// With an empty month it scans the input root; otherwise it scans the
// period folder ("Input <month>").
func (d *Discovery) ListWorkbooks(month string) ([]FileInfo, error) {
	dir := d.paths.InputDir
	if month != "" {
		dir = d.paths.InputMonthDir(month)
	}
	return FindExcelFiles(dir)
}

// ListExports returns exported files for a period, newest first.
func (d *Discovery) ListExports(month string) ([]FileInfo, error) {
	dir := d.paths.OutputDir
	if month != "" {
		dir = d.paths.OutputMonthDir(month)
	}

	files, err := findByExtensions(dir, ".xlsx", ".csv")
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// ListMonths returns the period names that have an input folder, i.e.
// "Input Jan 2026" yields "Jan 2026". Sorted lexically.
func (d *Discovery) ListMonths() ([]string, error) {
	entries, err := os.ReadDir(d.paths.InputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", d.paths.InputDir, err)
	}

	var months []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if name, ok := strings.CutPrefix(entry.Name(), "Input "); ok {
			months = append(months, name)
		}
	}
	sort.Strings(months)
	return months, nil
}

// ResolveWorkbook turns a workbook reference into an absolute path.
// Absolute paths pass through; bare names resolve against the input
// directory (and the month folder when given).
func (d *Discovery) ResolveWorkbook(name, month string) (string, error) {
	if filepath.IsAbs(name) {
		if !config.FileExists(name) {
			return "", fmt.Errorf("workbook not found: %s", name)
		}
		return name, nil
	}

	candidates := []string{filepath.Join(d.paths.InputDir, name)}
	if month != "" {
		candidates = append([]string{filepath.Join(d.paths.InputMonthDir(month), name)}, candidates...)
	}
	for _, candidate := range candidates {
		if config.FileExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("workbook not found: %s", name)
}

// FindExcelFiles finds all Excel files in a directory, sorted by
// modification time (oldest first).
func FindExcelFiles(dir string) ([]FileInfo, error) {
	files, err := findByExtensions(dir, ".xlsx", ".xls")
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

func findByExtensions(dir string, extensions ...string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		matched := false
		for _, want := range extensions {
			if ext == want {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}
