package dataprocessing

import (
	"strings"

	"msacli/pkg/contracts/domain"
)

// Summarize derives the at-a-glance statistics for one analyzed
// dataset. The top brand is the one with the highest yearly total,
// ties broken alphabetically so repeated runs agree.
func Summarize(ds *domain.Dataset, totals map[string]float64) domain.SummaryStats {
	stats := domain.SummaryStats{
		TotalSites:         len(ds.Rows),
		ClassDistribution:  distribution(ds, domain.ColumnClass),
		RegionDistribution: distribution(ds, domain.ColumnRegion),
	}

	for brand, v := range totals {
		stats.TotalVolume += v
		if stats.TopBrand == "" || v > totals[stats.TopBrand] ||
			(v == totals[stats.TopBrand] && brand < stats.TopBrand) {
			stats.TopBrand = brand
		}
	}

	stats.UniqueCities = uniqueCount(ds, domain.ColumnCity)
	stats.UniqueClasses = uniqueCount(ds, domain.ColumnClass)

	return stats
}

// distribution counts rows per distinct non-empty value of a column.
func distribution(ds *domain.Dataset, column string) map[string]int {
	if !ds.HasColumn(column) {
		return nil
	}
	counts := make(map[string]int)
	for _, row := range ds.Rows {
		value := strings.TrimSpace(row.Get(column))
		if value == "" {
			continue
		}
		counts[value]++
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}

func uniqueCount(ds *domain.Dataset, column string) int {
	return len(distribution(ds, column))
}
