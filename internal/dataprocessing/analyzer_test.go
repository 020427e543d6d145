package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msacli/internal/config"
)

func testSettings() *config.Settings {
	return &config.Settings{
		DaysPerYear: 350,
		Analyzers: map[string]config.AnalyzerSettings{
			"IA": {
				BrandCols:    iaBrandCols,
				WorkloadCols: iaWorkloadCols,
				TestPrice:    250,
			},
		},
	}
}

func TestAnalyzerAnalyze(t *testing.T) {
	a := NewAnalyzer(testSettings(), nil)

	result, err := a.Analyze(context.Background(), sampleDataset(), "IA", FullOptions())
	require.NoError(t, err)

	assert.Equal(t, "IA", result.Analyzer)
	assert.InDelta(t, 28000, result.BrandTotals["BRANDA"], 0.01)
	assert.InDelta(t, 12250, result.BrandTotals["BRANDB"], 0.01)
	assert.InDelta(t, 14000, result.BrandTotals["BRANDC"], 0.01)

	require.Len(t, result.MarketShare, 3)
	assert.Equal(t, "BRANDA", result.MarketShare[0].Brand)
	assert.InDelta(t, 51.61, result.MarketShare[0].Share, 0.01)

	// values at 250 per test
	assert.InDelta(t, 28000*250, result.BrandValues["BRANDA"], 0.01)
	require.Len(t, result.ValueShare, 3)
	// value share mirrors volume share at a flat price
	assert.InDelta(t, result.MarketShare[0].Share, result.ValueShare[0].Share, 0.001)

	require.NotNil(t, result.CityPivot)
	require.NotNil(t, result.ClassPivot)
	assert.Equal(t, 3, result.Summary.TotalSites)
	assert.Equal(t, "BRANDA", result.Summary.TopBrand)
}

func TestAnalyzerAnalyzeRegionFilter(t *testing.T) {
	a := NewAnalyzer(testSettings(), nil)

	result, err := a.Analyze(context.Background(), sampleDataset(), "IA", Options{Region: "Region2"})
	require.NoError(t, err)

	// only Customer B remains
	assert.Equal(t, 1, result.Summary.TotalSites)
	assert.InDelta(t, 1750, result.BrandTotals["BRANDA"], 0.01)
	assert.InDelta(t, 7000, result.BrandTotals["BRANDB"], 0.01)
	assert.InDelta(t, 8750, result.BrandTotals["BRANDC"], 0.01)

	// optional sections stay off by default
	assert.Nil(t, result.BrandValues)
	assert.Nil(t, result.CityPivot)
	assert.Nil(t, result.ClassPivot)
}

func TestAnalyzerAnalyzeUnknownType(t *testing.T) {
	a := NewAnalyzer(testSettings(), nil)

	_, err := a.Analyze(context.Background(), sampleDataset(), "XRAY", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown analyzer type")
}

func TestAnalyzerAnalyzeMissingColumns(t *testing.T) {
	settings := testSettings()
	ia := settings.Analyzers["IA"]
	ia.BrandCols = append([]string{"IA Brand 0"}, ia.BrandCols...)
	ia.WorkloadCols = append([]string{"IA Workload - Brand 0"}, ia.WorkloadCols...)
	settings.Analyzers["IA"] = ia

	a := NewAnalyzer(settings, nil)
	_, err := a.Analyze(context.Background(), sampleDataset(), "IA", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
	assert.Contains(t, err.Error(), "IA Brand 0")
}

func TestAnalyzerAnalyzeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAnalyzer(testSettings(), nil)
	_, err := a.Analyze(ctx, sampleDataset(), "IA", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeConsolidated(t *testing.T) {
	settings := testSettings()
	settings.Analyzers["SECOND"] = config.AnalyzerSettings{
		BrandCols:    []string{"IA Brand 1"},
		WorkloadCols: []string{"IA Workload - Brand 1"},
		TestPrice:    100,
	}

	a := NewAnalyzer(settings, nil)
	results, err := a.AnalyzeConsolidated(context.Background(), sampleDataset(), Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// ordered by analyzer name
	assert.Equal(t, "IA", results[0].Analyzer)
	assert.Equal(t, "SECOND", results[1].Analyzer)

	// SECOND only sees the first brand/workload pair per row
	assert.InDelta(t, (10+30)*350, results[1].BrandTotals["BRANDA"], 0.01)
	assert.InDelta(t, 20*350, results[1].BrandTotals["BRANDB"], 0.01)
}

func TestAnalyzeConsolidatedPropagatesFailure(t *testing.T) {
	settings := testSettings()
	settings.Analyzers["CBC"] = config.AnalyzerSettings{
		BrandCols:    []string{"CBC Brand 1"},
		WorkloadCols: []string{"CBC Workload - Brand 1"},
		TestPrice:    120,
	}

	a := NewAnalyzer(settings, nil)
	_, err := a.AnalyzeConsolidated(context.Background(), sampleDataset(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestAnalyzerRun(t *testing.T) {
	a := NewAnalyzer(testSettings(), nil)

	t.Run("single analyzer", func(t *testing.T) {
		results, err := a.Run(context.Background(), sampleDataset(), "IA", Options{})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "IA", results[0].Analyzer)
	})

	t.Run("consolidated", func(t *testing.T) {
		results, err := a.Run(context.Background(), sampleDataset(), config.ConsolidatedAnalyzer, Options{})
		require.NoError(t, err)
		require.Len(t, results, 1)
	})
}
