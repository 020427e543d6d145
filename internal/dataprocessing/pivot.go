package dataprocessing

import (
	"sort"
	"strings"

	"msacli/pkg/contracts/domain"
)

// Pivot builds a group-by × brand matrix of allocated yearly volume.
// groupColumn is the dataset column to group on, label the name the
// pivot reports (e.g. column "Class" labelled "CLASS"). Rows whose
// group cell is empty fall into the UNKNOWN bucket. Returns nil when
// no row produced any allocation.
func Pivot(ds *domain.Dataset, groupColumn, label string, brandCols, workloadCols []string, daysPerYear int) *domain.PivotTable {
	cells := make(map[string]map[string]float64)
	brandSet := make(map[string]bool)

	for _, row := range ds.Rows {
		allocations := AllocateRow(row, brandCols, workloadCols, daysPerYear)
		if len(allocations) == 0 {
			continue
		}

		key := strings.TrimSpace(row.Get(groupColumn))
		if key == "" {
			key = domain.UnknownGroup
		}

		bucket := cells[key]
		if bucket == nil {
			bucket = make(map[string]float64)
			cells[key] = bucket
		}
		for _, alloc := range allocations {
			bucket[alloc.Brand] += alloc.Yearly
			brandSet[alloc.Brand] = true
		}
	}

	if len(cells) == 0 {
		return nil
	}

	brands := make([]string, 0, len(brandSet))
	for brand := range brandSet {
		brands = append(brands, brand)
	}
	sort.Strings(brands)

	keys := make([]string, 0, len(cells))
	for key := range cells {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([]domain.PivotRow, 0, len(keys))
	for _, key := range keys {
		values := make([]float64, len(brands))
		for i, brand := range brands {
			values[i] = cells[key][brand] // zero when absent
		}
		rows = append(rows, domain.PivotRow{Key: key, Values: values})
	}

	return &domain.PivotTable{
		GroupBy: label,
		Brands:  brands,
		Rows:    rows,
	}
}

// CityPivot groups allocations by the CITY column.
func CityPivot(ds *domain.Dataset, brandCols, workloadCols []string, daysPerYear int) *domain.PivotTable {
	return Pivot(ds, domain.ColumnCity, "CITY", brandCols, workloadCols, daysPerYear)
}

// ClassPivot groups allocations by the Class column.
func ClassPivot(ds *domain.Dataset, brandCols, workloadCols []string, daysPerYear int) *domain.PivotTable {
	return Pivot(ds, domain.ColumnClass, "CLASS", brandCols, workloadCols, daysPerYear)
}
