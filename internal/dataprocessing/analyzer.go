package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"msacli/internal/config"
	"msacli/pkg/contracts/domain"
)

// Options control which optional result sections an analysis computes.
// The zero value computes brand totals and market share only.
type Options struct {
	Region       string
	IncludeCity  bool
	IncludeClass bool
	IncludeValue bool
}

// FullOptions enables every optional section.
func FullOptions() Options {
	return Options{IncludeCity: true, IncludeClass: true, IncludeValue: true}
}

// Analyzer runs market-share analysis against a dataset using the
// configured column mappings.
type Analyzer struct {
	settings *config.Settings
	logger   *slog.Logger
}

// NewAnalyzer creates an analyzer. A nil logger falls back to the
// default slog logger.
func NewAnalyzer(settings *config.Settings, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{settings: settings, logger: logger}
}

// Analyze computes a single analyzer's result over the dataset.
// Consolidated is not a valid analyzer here; use AnalyzeConsolidated.
func (a *Analyzer) Analyze(ctx context.Context, ds *domain.Dataset, analyzerType string, opts Options) (*domain.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	as, err := a.settings.Analyzer(analyzerType)
	if err != nil {
		return nil, err
	}

	required := append([]string{}, as.BrandCols...)
	required = append(required, as.WorkloadCols...)
	if err := ds.ValidateColumns(required); err != nil {
		return nil, fmt.Errorf("analyzer %s: %w", analyzerType, err)
	}

	filtered := FilterRegion(ds, opts.Region)

	start := time.Now()
	result := &domain.AnalysisResult{Analyzer: analyzerType}

	result.BrandTotals = BrandTotals(filtered, as.BrandCols, as.WorkloadCols, a.settings.DaysPerYear)
	result.MarketShare = MarketShare(result.BrandTotals)

	if opts.IncludeValue {
		result.BrandValues = BrandValues(result.BrandTotals, as.TestPrice)
		result.ValueShare = MarketShare(result.BrandValues)
	}
	if opts.IncludeCity {
		result.CityPivot = CityPivot(filtered, as.BrandCols, as.WorkloadCols, a.settings.DaysPerYear)
	}
	if opts.IncludeClass {
		result.ClassPivot = ClassPivot(filtered, as.BrandCols, as.WorkloadCols, a.settings.DaysPerYear)
	}
	result.Summary = Summarize(filtered, result.BrandTotals)

	a.logger.InfoContext(ctx, "analysis complete",
		slog.String("analyzer", analyzerType),
		slog.String("region", opts.Region),
		slog.Int("rows", len(filtered.Rows)),
		slog.Int("brands", len(result.BrandTotals)),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

// AnalyzeConsolidated runs every configured analyzer over the dataset
// concurrently and returns the results ordered by analyzer name. An
// analyzer whose columns are absent from the sheet fails the whole run
// so the caller sees the mismatch rather than a silent gap.
func (a *Analyzer) AnalyzeConsolidated(ctx context.Context, ds *domain.Dataset, opts Options) ([]*domain.AnalysisResult, error) {
	names := a.settings.AnalyzerNames()
	if len(names) == 0 {
		return nil, fmt.Errorf("no analyzers configured")
	}

	results := make([]*domain.AnalysisResult, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			res, err := a.Analyze(gctx, ds, name, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// AnalyzerNames is sorted, so results already come back ordered.
	return results, nil
}

// Run executes analyzerType (or every analyzer when it is the
// consolidated pseudo-type) and wraps the results in an AnalysisRun.
func (a *Analyzer) Run(ctx context.Context, ds *domain.Dataset, analyzerType string, opts Options) ([]*domain.AnalysisResult, error) {
	if analyzerType == config.ConsolidatedAnalyzer {
		return a.AnalyzeConsolidated(ctx, ds, opts)
	}
	res, err := a.Analyze(ctx, ds, analyzerType, opts)
	if err != nil {
		return nil, err
	}
	return []*domain.AnalysisResult{res}, nil
}
