package domain

import (
	"time"
)

// Well-known context columns shared by every analyzer's input sheet.
const (
	ColumnCustomer = "Customer Name"
	ColumnCity     = "CITY"
	ColumnClass    = "Class"
	ColumnRegion   = "Region"
	ColumnType     = "Type"
)

// UnknownGroup is the pivot key used when a row has no value in the
// group-by column.
const UnknownGroup = "UNKNOWN"

// BrandShare is one entry of a market-share ranking. Share is a
// percentage of the analyzer total.
type BrandShare struct {
	Brand string  `json:"brand" validate:"required"`
	Share float64 `json:"share" validate:"min=0,max=100"`
}

// Allocation is the yearly workload attributed to one brand by a
// single row.
type Allocation struct {
	Brand  string  `json:"brand"`
	Yearly float64 `json:"yearly"`
}

// PivotRow is one row of a pivot table. Values align positionally
// with PivotTable.Brands.
type PivotRow struct {
	Key    string    `json:"key"`
	Values []float64 `json:"values"`
}

// PivotTable is a group-by × brand matrix of allocated yearly
// workload. Brands are sorted alphabetically, rows by group key, and
// absent combinations hold zero.
type PivotTable struct {
	GroupBy string     `json:"group_by"`
	Brands  []string   `json:"brands"`
	Rows    []PivotRow `json:"rows"`
}

// Value returns the cell for a group key and brand, or 0 when either
// is absent.
func (p *PivotTable) Value(key, brand string) float64 {
	col := -1
	for i, b := range p.Brands {
		if b == brand {
			col = i
			break
		}
	}
	if col < 0 {
		return 0
	}
	for _, row := range p.Rows {
		if row.Key == key {
			return row.Values[col]
		}
	}
	return 0
}

// SummaryStats describes the analyzed dataset at a glance.
type SummaryStats struct {
	TotalSites         int            `json:"total_sites"`
	TotalVolume        float64        `json:"total_volume"`
	TopBrand           string         `json:"top_brand,omitempty"`
	UniqueCities       int            `json:"unique_cities"`
	UniqueClasses      int            `json:"unique_classes"`
	ClassDistribution  map[string]int `json:"class_distribution,omitempty"`
	RegionDistribution map[string]int `json:"region_distribution,omitempty"`
}

// AnalysisResult holds everything one analyzer produced from one
// dataset. MarketShare and ValueShare are ordered by share descending;
// the maps are unordered lookups keyed by standardized brand.
type AnalysisResult struct {
	Analyzer    string             `json:"analyzer" validate:"required"`
	BrandTotals map[string]float64 `json:"brand_totals"`
	MarketShare []BrandShare       `json:"market_share"`
	BrandValues map[string]float64 `json:"brand_values,omitempty"`
	ValueShare  []BrandShare       `json:"value_share,omitempty"`
	CityPivot   *PivotTable        `json:"city_pivot,omitempty"`
	ClassPivot  *PivotTable        `json:"class_pivot,omitempty"`
	Summary     SummaryStats       `json:"summary"`
}

// SharePercent returns the volume market share for a brand and
// whether the brand appears in the ranking at all.
func (r *AnalysisResult) SharePercent(brand string) (float64, bool) {
	for _, s := range r.MarketShare {
		if s.Brand == brand {
			return s.Share, true
		}
	}
	return 0, false
}

// AnalysisRun records one executed analysis for the history store and
// the dashboard.
type AnalysisRun struct {
	ID          string            `json:"id" validate:"required"`
	Analyzer    string            `json:"analyzer" validate:"required"`
	SourceFile  string            `json:"source_file"`
	Sheet       string            `json:"sheet"`
	Region      string            `json:"region,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
	Results     []*AnalysisResult `json:"results"`
}
