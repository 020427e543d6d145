package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-playground/validator/v10"
)

// ConsolidatedAnalyzer is the pseudo analyzer name that runs every
// configured analyzer in one pass.
const ConsolidatedAnalyzer = "Consolidated"

// DefaultDaysPerYear is the working-days multiplier applied to daily
// workloads when projecting yearly volume.
const DefaultDaysPerYear = 330

// AnalyzerSettings maps an analyzer to the worksheet columns it reads.
// Brand and workload columns are positional pairs: brand_cols[i] is
// allocated the workload found in workload_cols[i].
type AnalyzerSettings struct {
	BrandCols    []string `json:"brand_cols" validate:"required,min=1,dive,required"`
	WorkloadCols []string `json:"workload_cols" validate:"required,min=1,dive,required"`
	TestPrice    float64  `json:"test_price" validate:"min=0"`
}

// Settings holds the analysis settings persisted as settings.json.
type Settings struct {
	DaysPerYear int                         `json:"days_per_year" validate:"required,min=1,max=366"`
	Analyzers   map[string]AnalyzerSettings `json:"analyzers" validate:"required,min=1,dive"`
	Regions     []string                    `json:"regions,omitempty"`
}

var settingsValidator = validator.New()

// DefaultSettings returns the built-in analyzer configuration.
func DefaultSettings() *Settings {
	return &Settings{
		DaysPerYear: DefaultDaysPerYear,
		Analyzers: map[string]AnalyzerSettings{
			"IA": {
				BrandCols:    []string{"IA Brand 1", "IA Brand 2", "IA Brand 3"},
				WorkloadCols: []string{"IA Workload - Brand 1", "IA Workload - Brand 2", "IA Workload - Brand 3"},
				TestPrice:    250,
			},
			"CBC": {
				BrandCols:    []string{"CBC Brand 1", "CBC Brand 2", "CBC Brand 3", "CBC Brand 4"},
				WorkloadCols: []string{"CBC Workload - Brand 1", "CBC Workload - Brand 2", "CBC Workload - Brand 3", "CBC Workload - Brand 4"},
				TestPrice:    120,
			},
			"CHEM": {
				BrandCols:    []string{"CHEM Brand 1", "CHEM Brand 2", "CHEM Brand 3", "CHEM Brand 4"},
				WorkloadCols: []string{"CHEM Workload - Brand 1", "CHEM Workload - Brand 2", "CHEM Workload - Brand 3", "CHEM Workload - Brand 4"},
				TestPrice:    160,
			},
		},
	}
}

// LoadSettings reads settings from the given path. A missing file
// yields the defaults; a partial file overrides only the keys it
// names; a corrupt file is an error so the caller can decide whether
// to fall back.
func LoadSettings(path string) (*Settings, error) {
	defaults := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var loaded Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	merged := mergeSettings(defaults, &loaded)
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}

	return merged, nil
}

// SaveSettings writes settings as pretty-printed JSON. The write is
// atomic: a temp file in the same directory is renamed over the
// target so a crash never leaves a half-written settings file.
func SaveSettings(path string, s *Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid settings: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp settings file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	return nil
}

// mergeSettings overlays loaded values on top of the defaults.
func mergeSettings(defaults, loaded *Settings) *Settings {
	merged := &Settings{
		DaysPerYear: defaults.DaysPerYear,
		Analyzers:   make(map[string]AnalyzerSettings, len(defaults.Analyzers)),
		Regions:     defaults.Regions,
	}
	for name, a := range defaults.Analyzers {
		merged.Analyzers[name] = a
	}

	if loaded.DaysPerYear > 0 {
		merged.DaysPerYear = loaded.DaysPerYear
	}
	for name, a := range loaded.Analyzers {
		merged.Analyzers[name] = a
	}
	if len(loaded.Regions) > 0 {
		merged.Regions = loaded.Regions
	}

	return merged
}

// Validate checks structural validity plus the pairing invariant:
// every analyzer must have the same number of brand and workload
// columns.
func (s *Settings) Validate() error {
	if err := settingsValidator.Struct(s); err != nil {
		return err
	}

	for name, a := range s.Analyzers {
		if len(a.BrandCols) != len(a.WorkloadCols) {
			return fmt.Errorf("analyzer %s: brand columns (%d) and workload columns (%d) must pair up",
				name, len(a.BrandCols), len(a.WorkloadCols))
		}
	}

	return nil
}

// Analyzer returns the settings for a named analyzer.
func (s *Settings) Analyzer(name string) (AnalyzerSettings, error) {
	a, ok := s.Analyzers[name]
	if !ok {
		return AnalyzerSettings{}, fmt.Errorf("unknown analyzer type: %s", name)
	}
	return a, nil
}

// AnalyzerNames returns the configured analyzer names in sorted order,
// which fixes the execution order of consolidated runs.
func (s *Settings) AnalyzerNames() []string {
	names := make([]string, 0, len(s.Analyzers))
	for name := range s.Analyzers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
