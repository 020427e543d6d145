package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for file locations: everything is
// resolved relative to the executable directory, never the working
// directory, so the tool behaves the same from any launch point.
type Paths struct {
	ExecutableDir string
	DataDir       string
	InputDir      string
	OutputDir     string
	LogsDir       string

	// Config and state files (root of executable directory)
	SettingsFile string
	HistoryDB    string
}

// GetPaths returns the application paths relative to the executable location.
//
// Directory structure:
//
//	<exe dir>/
//	  ├── settings.json       (analysis settings)
//	  ├── history.db          (run history store)
//	  ├── data/
//	  │   ├── input/          (source workbooks, one "Input <month>" folder per period)
//	  │   └── output/         (exported results, "Output <month>" folders)
//	  └── logs/
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return PathsAt(filepath.Dir(exe)), nil
}

// PathsAt builds the path set rooted at the given directory. Tests and
// the CLI use it to point the tool at an arbitrary workspace.
func PathsAt(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, "data")

	return &Paths{
		ExecutableDir: baseDir,
		DataDir:       dataDir,
		InputDir:      filepath.Join(dataDir, "input"),
		OutputDir:     filepath.Join(dataDir, "output"),
		LogsDir:       filepath.Join(baseDir, "logs"),
		SettingsFile:  filepath.Join(baseDir, "settings.json"),
		HistoryDB:     filepath.Join(baseDir, "history.db"),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.InputDir,
		p.OutputDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// InputMonthDir returns the conventional input folder for a period,
// e.g. "Input Jan 2026".
func (p *Paths) InputMonthDir(month string) string {
	return filepath.Join(p.InputDir, "Input "+month)
}

// OutputMonthDir returns the conventional output folder for a period,
// e.g. "Output Jan 2026".
func (p *Paths) OutputMonthDir(month string) string {
	return filepath.Join(p.OutputDir, "Output "+month)
}

// GetLogPath returns the full path for a log file name.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetOutputPath returns the full path for an output file name.
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// FileExists reports whether the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
