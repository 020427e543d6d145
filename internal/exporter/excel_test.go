package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"msacli/pkg/contracts/domain"
)

func sampleResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Analyzer:    "IA",
		BrandTotals: map[string]float64{"BRANDA": 140, "BRANDB": 210},
		MarketShare: []domain.BrandShare{
			{Brand: "BRANDB", Share: 60},
			{Brand: "BRANDA", Share: 40},
		},
		BrandValues: map[string]float64{"BRANDA": 35000, "BRANDB": 52500},
		ValueShare: []domain.BrandShare{
			{Brand: "BRANDB", Share: 60},
			{Brand: "BRANDA", Share: 40},
		},
		CityPivot: &domain.PivotTable{
			GroupBy: "CITY",
			Brands:  []string{"BRANDA", "BRANDB"},
			Rows: []domain.PivotRow{
				{Key: "City1", Values: []float64{140, 0}},
				{Key: "City2", Values: []float64{0, 210}},
			},
		},
	}
}

func TestExcelExporterExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.xlsx")

	err := NewExcelExporter(nil).Export(path, []*domain.AnalysisResult{sampleResult()})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"IA_Summary", "IA_City_Analysis"}, f.GetSheetList())

	title, err := f.GetCellValue("IA_Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Market Analysis Results - IA", title)

	section, err := f.GetCellValue("IA_Summary", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Volume Market Share", section)

	topBrand, err := f.GetCellValue("IA_Summary", "A4")
	require.NoError(t, err)
	assert.Equal(t, "BRANDB", topBrand)
	topShare, err := f.GetCellValue("IA_Summary", "B4")
	require.NoError(t, err)
	assert.Equal(t, "60.0%", topShare)

	// value section starts after the two share rows and a blank line
	valueSection, err := f.GetCellValue("IA_Summary", "A7")
	require.NoError(t, err)
	assert.Equal(t, "Value Market Share", valueSection)
	topValue, err := f.GetCellValue("IA_Summary", "B8")
	require.NoError(t, err)
	assert.Equal(t, "52,500.00", topValue)

	header, err := f.GetCellValue("IA_City_Analysis", "A1")
	require.NoError(t, err)
	assert.Equal(t, "CITY", header)
	cell, err := f.GetCellValue("IA_City_Analysis", "C3")
	require.NoError(t, err)
	assert.Equal(t, "210", cell)
}

func TestExcelExporterConsolidated(t *testing.T) {
	second := sampleResult()
	second.Analyzer = "CBC"
	second.CityPivot = nil

	path := filepath.Join(t.TempDir(), "consolidated.xlsx")
	err := NewExcelExporter(nil).Export(path, []*domain.AnalysisResult{sampleResult(), second})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"IA_Summary", "IA_City_Analysis", "CBC_Summary"}, f.GetSheetList())
}

func TestExcelExporterEmpty(t *testing.T) {
	err := NewExcelExporter(nil).Export(filepath.Join(t.TempDir(), "x.xlsx"), nil)
	assert.Error(t, err)
}
