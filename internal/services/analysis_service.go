package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"msacli/internal/infrastructure"
	"msacli/internal/operations"
	"msacli/internal/store"
	"msacli/pkg/contracts/domain"
)

// AnalysisService executes analysis runs and answers run queries.
type AnalysisService struct {
	manager      *operations.Manager
	history      *store.HistoryStore
	validate     *validator.Validate
	logger       *slog.Logger
	historyLimit int

	mu   sync.RWMutex
	runs map[string]*operations.RunState

	sem chan struct{}
}

// NewAnalysisService creates the run orchestration service.
// maxConcurrent bounds the number of simultaneously executing runs.
func NewAnalysisService(manager *operations.Manager, history *store.HistoryStore, maxConcurrent, historyLimit int, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &AnalysisService{
		manager:      manager,
		history:      history,
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "analysis_service")),
		historyLimit: historyLimit,
		runs:         make(map[string]*operations.RunState),
		sem:          make(chan struct{}, maxConcurrent),
	}
}

// StartRun validates the request and launches the run in the
// background. The returned state carries the run id for polling.
func (s *AnalysisService) StartRun(ctx context.Context, req operations.Request) (*operations.RunState, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	select {
	case s.sem <- struct{}{}:
	default:
		return nil, ErrRunBusy
	}

	state := operations.NewRunState(uuid.New().String(), req)
	s.mu.Lock()
	s.runs[state.ID] = state
	s.mu.Unlock()

	traceID := infrastructure.GetTraceID(ctx)
	go func() {
		defer func() { <-s.sem }()

		runCtx := context.Background()
		if traceID != "" {
			runCtx = infrastructure.WithTraceID(runCtx, traceID)
		} else {
			runCtx = infrastructure.ContextWithTraceID(runCtx)
		}
		s.execute(runCtx, state)
	}()

	return state.Snapshot(), nil
}

// RunSync executes a run to completion. The CLI uses it.
func (s *AnalysisService) RunSync(ctx context.Context, req operations.Request) (*operations.RunState, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	state := operations.NewRunState(uuid.New().String(), req)
	s.mu.Lock()
	s.runs[state.ID] = state
	s.mu.Unlock()

	if err := s.execute(ctx, state); err != nil {
		return state, err
	}
	return state, nil
}

func (s *AnalysisService) execute(ctx context.Context, state *operations.RunState) error {
	err := s.manager.Run(ctx, state)
	if err != nil {
		return err
	}

	if s.history != nil {
		if saveErr := s.history.SaveRun(ctx, s.toDomainRun(state)); saveErr != nil {
			s.logger.ErrorContext(ctx, "failed to persist run",
				slog.String("run_id", state.ID),
				slog.String("error", saveErr.Error()))
		} else if s.historyLimit > 0 {
			if _, pruneErr := s.history.Prune(ctx, s.historyLimit); pruneErr != nil {
				s.logger.WarnContext(ctx, "failed to prune run history",
					slog.String("error", pruneErr.Error()))
			}
		}
	}
	return nil
}

func (s *AnalysisService) toDomainRun(state *operations.RunState) *domain.AnalysisRun {
	sheet := state.Request.Sheet
	if ds := state.GetDataset(); ds != nil {
		sheet = ds.Sheet
	}
	completed := time.Now()
	if state.EndTime != nil {
		completed = *state.EndTime
	}
	return &domain.AnalysisRun{
		ID:          state.ID,
		Analyzer:    state.Request.Analyzer,
		SourceFile:  state.GetWorkbookPath(),
		Sheet:       sheet,
		Region:      state.Request.Region,
		StartedAt:   state.StartTime,
		CompletedAt: completed,
		Results:     state.GetResults(),
	}
}

// GetRun returns the state of a run started by this process. The
// returned value is a snapshot, detached from the executing run, so
// callers can serialize it without racing the run goroutine.
func (s *AnalysisService) GetRun(ctx context.Context, id string) (*operations.RunState, error) {
	s.mu.RLock()
	state, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return state.Snapshot(), nil
}

// ListHistory returns persisted runs, newest first.
func (s *AnalysisService) ListHistory(ctx context.Context, limit int) ([]*domain.AnalysisRun, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.ListRuns(ctx, limit)
}

// GetHistoricalRun loads one persisted run.
func (s *AnalysisService) GetHistoricalRun(ctx context.Context, id string) (*domain.AnalysisRun, error) {
	if s.history == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	run, err := s.history.GetRun(ctx, id)
	if errors.Is(err, store.ErrRunNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// Trend returns a brand's historical share for one analyzer.
func (s *AnalysisService) Trend(ctx context.Context, analyzer, brand string) ([]store.TrendPoint, error) {
	if analyzer == "" || brand == "" {
		return nil, fmt.Errorf("%w: analyzer and brand are required", ErrInvalidInput)
	}
	if s.history == nil {
		return nil, nil
	}
	return s.history.Trend(ctx, analyzer, brand)
}

// ActiveRuns reports how many runs are currently executing.
func (s *AnalysisService) ActiveRuns() int {
	return len(s.sem)
}
