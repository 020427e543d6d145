// Package dataprocessing implements the market share aggregation
// engine: reading customer workbooks, allocating daily brand workloads
// to projected yearly volume, and deriving market share rankings,
// pivot tables and summary statistics from the allocations.
//
// The pipeline is:
//
//	ReadSheet -> FilterRegion -> Analyzer.Analyze -> AnalysisResult
//
// Allocation model: each row lists up to N (brand, daily workload)
// column pairs per analyzer. A row's daily total is projected to a
// year (daysPerYear working days) and split across its brands in
// proportion to their workloads. Brands are standardized (trimmed,
// uppercased) and placeholder values such as NILL are dropped before
// allocation.
package dataprocessing
