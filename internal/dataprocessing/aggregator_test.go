package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msacli/pkg/contracts/domain"
)

func TestStandardizeBrand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "uppercases and trims", input: "  brandA ", expected: "BRANDA"},
		{name: "already clean", input: "BRANDB", expected: "BRANDB"},
		{name: "empty", input: "", expected: ""},
		{name: "whitespace only", input: "   ", expected: ""},
		{name: "nill placeholder", input: "Nill", expected: ""},
		{name: "nil placeholder", input: "NIL", expected: ""},
		{name: "zero placeholder", input: "0", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StandardizeBrand(tt.input))
		})
	}
}

func TestParseWorkload(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{name: "integer", input: "10", expected: 10},
		{name: "decimal", input: "12.5", expected: 12.5},
		{name: "thousands separator", input: "1,250", expected: 1250},
		{name: "padded", input: " 30 ", expected: 30},
		{name: "empty", input: "", expected: 0},
		{name: "garbage", input: "n/a", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseWorkload(tt.input))
		})
	}
}

func TestAllocateRow(t *testing.T) {
	brandCols := []string{"IA Brand 1", "IA Brand 2", "IA Brand 3"}
	workloadCols := []string{"IA Workload - Brand 1", "IA Workload - Brand 2", "IA Workload - Brand 3"}

	t.Run("splits yearly volume by daily workload", func(t *testing.T) {
		row := domain.Row{
			"IA Brand 1":            "BrandA",
			"IA Brand 2":            "BrandB",
			"IA Workload - Brand 1": "10",
			"IA Workload - Brand 2": "15",
		}
		allocs := AllocateRow(row, brandCols, workloadCols, 350)
		require.Len(t, allocs, 2)
		// daily sum 25, yearly 25*350, split 10:15
		assert.Equal(t, "BRANDA", allocs[0].Brand)
		assert.InDelta(t, 3500, allocs[0].Yearly, 0.01)
		assert.Equal(t, "BRANDB", allocs[1].Brand)
		assert.InDelta(t, 5250, allocs[1].Yearly, 0.01)
	})

	t.Run("skips placeholder brands and zero workloads", func(t *testing.T) {
		row := domain.Row{
			"IA Brand 1":            "Nill",
			"IA Brand 2":            "BrandB",
			"IA Brand 3":            "BrandC",
			"IA Workload - Brand 1": "40",
			"IA Workload - Brand 2": "20",
			"IA Workload - Brand 3": "0",
		}
		allocs := AllocateRow(row, brandCols, workloadCols, 330)
		require.Len(t, allocs, 1)
		assert.Equal(t, "BRANDB", allocs[0].Brand)
		assert.InDelta(t, 6600, allocs[0].Yearly, 0.01)
	})

	t.Run("no positive workload yields nothing", func(t *testing.T) {
		row := domain.Row{
			"IA Brand 1":            "BrandA",
			"IA Workload - Brand 1": "",
		}
		assert.Nil(t, AllocateRow(row, brandCols, workloadCols, 330))
	})
}

func TestBrandTotals(t *testing.T) {
	brandCols := []string{"IA Brand 1", "IA Brand 2", "IA Brand 3"}
	workloadCols := []string{"IA Workload - Brand 1", "IA Workload - Brand 2", "IA Workload - Brand 3"}

	ds := sampleDataset()
	totals := BrandTotals(ds, brandCols, workloadCols, 350)

	// Row 1: BRANDA 10*350, BRANDB 15*350
	// Row 2: BRANDB 20*350, BRANDC 25*350, BRANDA 5*350
	// Row 3: BRANDA (30+35)*350, BRANDC 15*350
	require.Len(t, totals, 3)
	assert.InDelta(t, 28000, totals["BRANDA"], 0.01)
	assert.InDelta(t, 12250, totals["BRANDB"], 0.01)
	assert.InDelta(t, 14000, totals["BRANDC"], 0.01)
}

func TestMarketShare(t *testing.T) {
	t.Run("percentages ordered descending", func(t *testing.T) {
		shares := MarketShare(map[string]float64{"BRANDA": 140, "BRANDB": 210})
		require.Len(t, shares, 2)
		assert.Equal(t, "BRANDB", shares[0].Brand)
		assert.InDelta(t, 60.0, shares[0].Share, 0.001)
		assert.Equal(t, "BRANDA", shares[1].Brand)
		assert.InDelta(t, 40.0, shares[1].Share, 0.001)
	})

	t.Run("ties break alphabetically", func(t *testing.T) {
		shares := MarketShare(map[string]float64{"ZETA": 50, "ALPHA": 50})
		require.Len(t, shares, 2)
		assert.Equal(t, "ALPHA", shares[0].Brand)
		assert.Equal(t, "ZETA", shares[1].Brand)
	})

	t.Run("zero totals yield no ranking", func(t *testing.T) {
		assert.Nil(t, MarketShare(map[string]float64{"BRANDA": 0}))
		assert.Nil(t, MarketShare(nil))
	})
}

func TestBrandValues(t *testing.T) {
	totals := map[string]float64{"BRANDA": 140, "BRANDB": 210}

	values := BrandValues(totals, 250)
	assert.InDelta(t, 35000, values["BRANDA"], 0.01)
	assert.InDelta(t, 52500, values["BRANDB"], 0.01)

	assert.Nil(t, BrandValues(totals, 0))
}

// sampleDataset mirrors a small survey extract with three sites and
// three brand/workload column pairs.
func sampleDataset() *domain.Dataset {
	return &domain.Dataset{
		SourceFile: "sample.xlsx",
		Sheet:      "Sheet1",
		Columns: []string{
			"Customer Name", "CITY", "Class", "Region", "Type",
			"IA Brand 1", "IA Brand 2", "IA Brand 3",
			"IA Workload - Brand 1", "IA Workload - Brand 2", "IA Workload - Brand 3",
		},
		Rows: []domain.Row{
			{
				"Customer Name": "Customer A", "CITY": "City1", "Class": "Class1",
				"Region": "Region1", "Type": "Type1",
				"IA Brand 1": "BrandA", "IA Brand 2": "BrandB", "IA Brand 3": "",
				"IA Workload - Brand 1": "10", "IA Workload - Brand 2": "15", "IA Workload - Brand 3": "",
			},
			{
				"Customer Name": "Customer B", "CITY": "City2", "Class": "Class2",
				"Region": "Region2", "Type": "Type2",
				"IA Brand 1": "BrandB", "IA Brand 2": "BrandC", "IA Brand 3": "BrandA",
				"IA Workload - Brand 1": "20", "IA Workload - Brand 2": "25", "IA Workload - Brand 3": "5",
			},
			{
				"Customer Name": "Customer C", "CITY": "City1", "Class": "Class1",
				"Region": "Region1", "Type": "Type1",
				"IA Brand 1": "BrandA", "IA Brand 2": "BrandA", "IA Brand 3": "BrandC",
				"IA Workload - Brand 1": "30", "IA Workload - Brand 2": "35", "IA Workload - Brand 3": "15",
			},
		},
	}
}
