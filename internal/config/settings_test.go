package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 330, s.DaysPerYear)
	assert.Len(t, s.Analyzers, 3)

	ia, err := s.Analyzer("IA")
	require.NoError(t, err)
	assert.Equal(t, []string{"IA Brand 1", "IA Brand 2", "IA Brand 3"}, ia.BrandCols)
	assert.Equal(t, []string{"IA Workload - Brand 1", "IA Workload - Brand 2", "IA Workload - Brand 3"}, ia.WorkloadCols)
	assert.Equal(t, 250.0, ia.TestPrice)

	cbc, err := s.Analyzer("CBC")
	require.NoError(t, err)
	assert.Len(t, cbc.BrandCols, 4)
	assert.Len(t, cbc.WorkloadCols, 4)

	require.NoError(t, s.Validate())
}

func TestLoadSettings_MissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettings_PartialFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	partial := `{
		"days_per_year": 300,
		"analyzers": {
			"IA": {
				"brand_cols": ["IA Brand A", "IA Brand B"],
				"workload_cols": ["IA Workload A", "IA Workload B"],
				"test_price": 200
			}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(partial), 0644))

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, 300, s.DaysPerYear)

	ia, err := s.Analyzer("IA")
	require.NoError(t, err)
	assert.Equal(t, []string{"IA Brand A", "IA Brand B"}, ia.BrandCols)
	assert.Equal(t, []string{"IA Workload A", "IA Workload B"}, ia.WorkloadCols)
	assert.Equal(t, 200.0, ia.TestPrice)

	// Analyzers the file did not name keep their defaults
	cbc, err := s.Analyzer("CBC")
	require.NoError(t, err)
	assert.Equal(t, 120.0, cbc.TestPrice)
}

func TestLoadSettings_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadSettings(path)
	assert.Error(t, err)
}

func TestLoadSettings_MismatchedColumnsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	bad := `{
		"analyzers": {
			"IA": {
				"brand_cols": ["IA Brand 1", "IA Brand 2"],
				"workload_cols": ["IA Workload - Brand 1"]
			}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0644))

	_, err := LoadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must pair up")
}

func TestSaveSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	s := DefaultSettings()
	s.DaysPerYear = 320
	s.Regions = []string{"Region1", "Region2"}
	s.Analyzers["NEW"] = AnalyzerSettings{
		BrandCols:    []string{"New Brand 1"},
		WorkloadCols: []string{"New Workload 1"},
		TestPrice:    150,
	}

	require.NoError(t, SaveSettings(path, s))

	// File is pretty-printed JSON
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "  \"days_per_year\": 320")

	loaded, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 320, loaded.DaysPerYear)
	assert.Equal(t, []string{"Region1", "Region2"}, loaded.Regions)

	added, err := loaded.Analyzer("NEW")
	require.NoError(t, err)
	assert.Equal(t, 150.0, added.TestPrice)
}

func TestSaveSettings_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	s := DefaultSettings()
	s.DaysPerYear = 0

	err := SaveSettings(path, s)
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestSettings_AnalyzerNames(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, []string{"CBC", "CHEM", "IA"}, s.AnalyzerNames())
}

func TestSettings_UnknownAnalyzer(t *testing.T) {
	s := DefaultSettings()
	_, err := s.Analyzer("INVALID")
	assert.Error(t, err)
}

func TestSettingsJSONShape(t *testing.T) {
	data, err := json.Marshal(DefaultSettings())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "days_per_year")
	assert.Contains(t, decoded, "analyzers")
}
