package dataprocessing

import (
	"sort"
	"strconv"
	"strings"

	"msacli/pkg/contracts/domain"
)

// nullish placeholder values seen in real survey sheets
var nullPlaceholders = map[string]bool{
	"":     true,
	"0":    true,
	"NILL": true,
	"NIL":  true,
}

// StandardizeBrand normalizes a raw brand cell: trimmed and
// uppercased, with placeholder values mapped to "".
func StandardizeBrand(raw string) string {
	brand := strings.ToUpper(strings.TrimSpace(raw))
	if nullPlaceholders[brand] {
		return ""
	}
	return brand
}

// ParseWorkload converts a workload cell to a float. Thousands
// separators are tolerated; anything unparseable counts as zero so a
// single dirty cell does not sink the whole sheet.
func ParseWorkload(raw string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// AllocateRow distributes one row's projected yearly volume across its
// brands in proportion to their daily workloads. Pairs with no brand
// after standardization or a non-positive workload are skipped; a row
// with no positive workload contributes nothing.
func AllocateRow(row domain.Row, brandCols, workloadCols []string, daysPerYear int) []domain.Allocation {
	type pair struct {
		brand    string
		workload float64
	}

	var (
		dailySum float64
		pairs    []pair
	)
	for i := range brandCols {
		brand := StandardizeBrand(row.Get(brandCols[i]))
		w := ParseWorkload(row.Get(workloadCols[i]))
		if brand != "" && w > 0 {
			pairs = append(pairs, pair{brand: brand, workload: w})
			dailySum += w
		}
	}

	if dailySum <= 0 {
		return nil
	}

	totalYearly := dailySum * float64(daysPerYear)
	allocations := make([]domain.Allocation, 0, len(pairs))
	for _, p := range pairs {
		allocations = append(allocations, domain.Allocation{
			Brand:  p.brand,
			Yearly: totalYearly * (p.workload / dailySum),
		})
	}
	return allocations
}

// BrandTotals sums yearly allocations per brand across the dataset.
func BrandTotals(ds *domain.Dataset, brandCols, workloadCols []string, daysPerYear int) map[string]float64 {
	totals := make(map[string]float64)
	for _, row := range ds.Rows {
		for _, alloc := range AllocateRow(row, brandCols, workloadCols, daysPerYear) {
			totals[alloc.Brand] += alloc.Yearly
		}
	}
	return totals
}

// MarketShare converts brand totals to a percentage ranking, ordered
// by share descending with ties broken alphabetically. An empty or
// all-zero total map yields an empty ranking.
func MarketShare(totals map[string]float64) []domain.BrandShare {
	var sum float64
	for _, v := range totals {
		sum += v
	}
	if sum <= 0 {
		return nil
	}

	shares := make([]domain.BrandShare, 0, len(totals))
	for brand, v := range totals {
		shares = append(shares, domain.BrandShare{Brand: brand, Share: v / sum * 100})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Share != shares[j].Share {
			return shares[i].Share > shares[j].Share
		}
		return shares[i].Brand < shares[j].Brand
	})
	return shares
}

// BrandValues converts yearly volumes to monetary values at the
// analyzer's test price.
func BrandValues(totals map[string]float64, testPrice float64) map[string]float64 {
	if testPrice <= 0 {
		return nil
	}
	values := make(map[string]float64, len(totals))
	for brand, v := range totals {
		values[brand] = v * testPrice
	}
	return values
}
