package http

import (
	"context"

	"msacli/internal/operations"
	"msacli/internal/store"
	"msacli/pkg/contracts/domain"
)

// AnalysisServiceInterface is the slice of the analysis service the
// handler needs. Kept small so tests can stub it.
type AnalysisServiceInterface interface {
	StartRun(ctx context.Context, req operations.Request) (*operations.RunState, error)
	GetRun(ctx context.Context, id string) (*operations.RunState, error)
	GetHistoricalRun(ctx context.Context, id string) (*domain.AnalysisRun, error)
	ListHistory(ctx context.Context, limit int) ([]*domain.AnalysisRun, error)
	Trend(ctx context.Context, analyzer, brand string) ([]store.TrendPoint, error)
}
