package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msacli/internal/config"
	"msacli/pkg/contracts/domain"
)

func testWriter(t *testing.T) (*CSVWriter, *config.Paths) {
	t.Helper()
	paths := config.PathsAt(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())
	return NewCSVWriter(paths), paths
}

func TestWriteSimpleCSV(t *testing.T) {
	w, paths := testWriter(t)

	err := w.WriteSimpleCSV("totals.csv",
		[]string{"Brand", "Volume"},
		[][]string{{"BRANDA", "140.00"}, {"BRANDB", "210.00"}})
	require.NoError(t, err)

	data, err := os.ReadFile(paths.GetOutputPath("totals.csv"))
	require.NoError(t, err)

	content := string(data)
	assert.True(t, strings.HasPrefix(content, "\xEF\xBB\xBF"), "expected UTF-8 BOM")
	assert.Contains(t, content, "Brand,Volume")
	assert.Contains(t, content, "BRANDB,210.00")
}

func TestExportBrandTotals(t *testing.T) {
	w, paths := testWriter(t)

	result := &domain.AnalysisResult{
		Analyzer:    "IA",
		BrandTotals: map[string]float64{"BRANDA": 140, "BRANDB": 210},
		MarketShare: []domain.BrandShare{
			{Brand: "BRANDB", Share: 60},
			{Brand: "BRANDA", Share: 40},
		},
	}
	require.NoError(t, w.ExportBrandTotals("ia_totals.csv", result))

	data, err := os.ReadFile(paths.GetOutputPath("ia_totals.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(data), "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Brand,YearlyVolume,MarketShare", lines[0])
	assert.Equal(t, "BRANDB,210.00,60.0%", lines[1])
	assert.Equal(t, "BRANDA,140.00,40.0%", lines[2])
}

func TestExportPivot(t *testing.T) {
	w, paths := testWriter(t)

	pivot := &domain.PivotTable{
		GroupBy: "CITY",
		Brands:  []string{"BRANDA", "BRANDB"},
		Rows: []domain.PivotRow{
			{Key: "City1", Values: []float64{140, 0}},
			{Key: "City2", Values: []float64{0, 210}},
		},
	}
	require.NoError(t, w.ExportPivot("city.csv", pivot))

	data, err := os.ReadFile(paths.GetOutputPath("city.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(data), "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "CITY,BRANDA,BRANDB", lines[0])
	assert.Equal(t, "City1,140.00,0.00", lines[1])
}

func TestCSVWriterAbsolutePath(t *testing.T) {
	w, _ := testWriter(t)

	target := filepath.Join(t.TempDir(), "elsewhere.csv")
	require.NoError(t, w.WriteSimpleCSV(target, []string{"A"}, [][]string{{"1"}}))
	assert.FileExists(t, target)
}

func TestStreamWriter(t *testing.T) {
	w, paths := testWriter(t)

	sw, err := w.CreateStreamWriter("stream.csv", []string{"Brand", "Volume"})
	require.NoError(t, err)
	require.NoError(t, sw.WriteRecord([]string{"BRANDA", "140.00"}))
	require.NoError(t, sw.WriteRecord([]string{"BRANDB", "210.00"}))
	require.NoError(t, sw.Close())

	data, err := os.ReadFile(paths.GetOutputPath("stream.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "BRANDA,140.00")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "13.40", formatFloat(13.4))
	assert.Equal(t, "37.5%", formatPercent(37.54))
	assert.Equal(t, "0.00", formatMoney(0))
	assert.Equal(t, "999.99", formatMoney(999.99))
	assert.Equal(t, "1,234.50", formatMoney(1234.5))
	assert.Equal(t, "1,234,567.89", formatMoney(1234567.89))
	assert.Equal(t, "-52,500.00", formatMoney(-52500))
}
