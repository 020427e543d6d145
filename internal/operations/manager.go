package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"msacli/internal/infrastructure"
)

// Broadcaster receives run lifecycle events for the dashboard. The
// websocket hub implements it; the CLI runs with the no-op variant.
type Broadcaster interface {
	BroadcastProgress(runID, stage string, progress int, message string)
	BroadcastRunComplete(runID string, data interface{})
	BroadcastRunError(runID string, err error)
}

// NoopBroadcaster discards all events.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastProgress(string, string, int, string) {}
func (NoopBroadcaster) BroadcastRunComplete(string, interface{})      {}
func (NoopBroadcaster) BroadcastRunError(string, error)               {}

// Manager executes analysis runs stage by stage.
type Manager struct {
	steps       []Step
	broadcaster Broadcaster
	logger      *slog.Logger
	metrics     *infrastructure.AnalysisMetrics
	runTimeout  time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithBroadcaster routes run events to a broadcaster.
func WithBroadcaster(b Broadcaster) Option {
	return func(m *Manager) { m.broadcaster = b }
}

// WithMetrics records run metrics.
func WithMetrics(metrics *infrastructure.AnalysisMetrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithRunTimeout bounds the whole run.
func WithRunTimeout(d time.Duration) Option {
	return func(m *Manager) { m.runTimeout = d }
}

// NewManager creates a run manager over an ordered list of steps.
func NewManager(steps []Step, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		steps:       steps,
		broadcaster: NoopBroadcaster{},
		logger:      logger.With(slog.String("component", "operations.manager")),
		runTimeout:  DefaultRunTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run drives the state through every step in order, failing fast on
// the first error. One failed stage fails the run.
func (m *Manager) Run(ctx context.Context, state *RunState) error {
	ctx, cancel := context.WithTimeout(ctx, m.runTimeout)
	defer cancel()

	logger := m.logger.With(slog.String("run_id", state.ID))
	start := time.Now()
	state.Start()

	logger.InfoContext(ctx, "run started",
		slog.String("workbook", state.Request.Workbook),
		slog.String("analyzer", state.Request.Analyzer))

	total := len(m.steps)
	for i, step := range m.steps {
		stepState := NewStepState(step.ID(), step.Name())
		state.SetStep(step.ID(), stepState)

		if err := step.Validate(state); err != nil {
			stepState.Fail(err)
			return m.fail(ctx, state, logger, start, fmt.Errorf("%s: %w", step.ID(), err))
		}

		stepState.Start()
		progress := i * 100 / total
		m.broadcaster.BroadcastProgress(state.ID, step.ID(), progress, step.Name())
		logger.InfoContext(ctx, "stage started", slog.String("stage", step.ID()))

		if err := step.Execute(ctx, state); err != nil {
			stepState.Fail(err)
			if errors.Is(err, context.Canceled) {
				state.Cancel()
				m.broadcaster.BroadcastRunError(state.ID, err)
				logger.WarnContext(ctx, "run cancelled", slog.String("stage", step.ID()))
				return err
			}
			return m.fail(ctx, state, logger, start, fmt.Errorf("%s: %w", step.ID(), err))
		}

		stepState.Complete()
		logger.InfoContext(ctx, "stage completed",
			slog.String("stage", step.ID()),
			slog.Duration("duration", stepState.Duration()))
	}

	state.Complete()
	m.broadcaster.BroadcastProgress(state.ID, StageIDExport, 100, "run complete")
	m.broadcaster.BroadcastRunComplete(state.ID, state.Snapshot())
	m.recordMetrics(ctx, state, time.Since(start), nil)

	logger.InfoContext(ctx, "run completed",
		slog.Duration("duration", time.Since(start)),
		slog.Int("results", len(state.GetResults())))
	return nil
}

func (m *Manager) fail(ctx context.Context, state *RunState, logger *slog.Logger, start time.Time, err error) error {
	state.Fail(err)
	m.broadcaster.BroadcastRunError(state.ID, err)
	m.recordMetrics(ctx, state, time.Since(start), err)
	logger.ErrorContext(ctx, "run failed", slog.String("error", err.Error()))
	return err
}

func (m *Manager) recordMetrics(ctx context.Context, state *RunState, duration time.Duration, err error) {
	if m.metrics == nil {
		return
	}
	rows := 0
	if ds := state.GetDataset(); ds != nil {
		rows = len(ds.Rows)
	}
	m.metrics.RecordRun(ctx, state.Request.Analyzer, rows, duration, err)
	if err == nil {
		m.metrics.RecordExports(ctx, state.Request.Analyzer, len(state.GetExportPaths()))
	}
}
