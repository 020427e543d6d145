package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msacli/internal/operations"
	"msacli/internal/shared/testutil"
	"msacli/internal/store"
	"msacli/pkg/contracts/domain"
)

// fakeStep is a pipeline step driven entirely by the test.
type fakeStep struct {
	id      string
	execute func(ctx context.Context, state *operations.RunState) error
}

func (s *fakeStep) ID() string   { return s.id }
func (s *fakeStep) Name() string { return s.id }
func (s *fakeStep) Execute(ctx context.Context, state *operations.RunState) error {
	if s.execute == nil {
		return nil
	}
	return s.execute(ctx, state)
}
func (s *fakeStep) Validate(state *operations.RunState) error { return nil }

func resultStep(id string) *fakeStep {
	return &fakeStep{id: id, execute: func(ctx context.Context, state *operations.RunState) error {
		state.SetResults([]*domain.AnalysisResult{{
			Analyzer:    "IA",
			BrandTotals: map[string]float64{"BRANDA": 140, "BRANDB": 210},
			MarketShare: []domain.BrandShare{
				{Brand: "BRANDB", Share: 60},
				{Brand: "BRANDA", Share: 40},
			},
		}})
		return nil
	}}
}

func validRequest() operations.Request {
	return operations.Request{Workbook: "survey.xlsx", Analyzer: "IA"}
}

func testAnalysisService(t *testing.T, steps []operations.Step, maxConcurrent int) *AnalysisService {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	manager := operations.NewManager(steps, logger)

	history, err := store.Open(filepath.Join(t.TempDir(), "history.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })

	return NewAnalysisService(manager, history, maxConcurrent, 10, logger)
}

func TestRunSyncPersistsRun(t *testing.T) {
	svc := testAnalysisService(t, []operations.Step{resultStep("analyze")}, 1)

	state, err := svc.RunSync(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, operations.RunStatusCompleted, state.GetStatus())
	require.Len(t, state.GetResults(), 1)

	runs, err := svc.ListHistory(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, state.ID, runs[0].ID)
	assert.Equal(t, "IA", runs[0].Analyzer)

	stored, err := svc.GetHistoricalRun(context.Background(), state.ID)
	require.NoError(t, err)
	share, ok := stored.Results[0].SharePercent("BRANDB")
	require.True(t, ok)
	assert.InDelta(t, 60.0, share, 0.001)
}

func TestRunSyncFailureNotPersisted(t *testing.T) {
	failing := &fakeStep{id: "analyze", execute: func(ctx context.Context, state *operations.RunState) error {
		return errors.New("missing columns")
	}}
	svc := testAnalysisService(t, []operations.Step{failing}, 1)

	state, err := svc.RunSync(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, operations.RunStatusFailed, state.GetStatus())

	runs, err := svc.ListHistory(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStartRunInvalidRequest(t *testing.T) {
	svc := testAnalysisService(t, []operations.Step{resultStep("analyze")}, 1)

	_, err := svc.StartRun(context.Background(), operations.Request{Analyzer: "IA"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.StartRun(context.Background(), operations.Request{Workbook: "survey.xlsx"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestStartRunConcurrencyLimit(t *testing.T) {
	release := make(chan struct{})
	blocking := &fakeStep{id: "analyze", execute: func(ctx context.Context, state *operations.RunState) error {
		<-release
		return nil
	}}
	svc := testAnalysisService(t, []operations.Step{blocking}, 1)

	first, err := svc.StartRun(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.StartRun(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrRunBusy)

	close(release)
	waitForStatus(t, svc, first.ID, operations.RunStatusCompleted)

	// Capacity comes back once the first run fully unwinds; that
	// happens slightly after the state flips to completed, so retry.
	require.Eventually(t, func() bool {
		state, err := svc.StartRun(context.Background(), validRequest())
		if err != nil {
			return false
		}
		waitForStatus(t, svc, state.ID, operations.RunStatusCompleted)
		return true
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGetRun(t *testing.T) {
	svc := testAnalysisService(t, []operations.Step{resultStep("analyze")}, 1)

	state, err := svc.RunSync(context.Background(), validRequest())
	require.NoError(t, err)

	got, err := svc.GetRun(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Equal(t, state.ID, got.ID)

	_, err = svc.GetRun(context.Background(), "nope")
	require.ErrorIs(t, err, ErrRunNotFound)

	_, err = svc.GetHistoricalRun(context.Background(), "nope")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestHistoryPruned(t *testing.T) {
	logger := testutil.NewTestLogger(t)
	manager := operations.NewManager([]operations.Step{resultStep("analyze")}, logger)
	history, err := store.Open(filepath.Join(t.TempDir(), "history.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })

	svc := NewAnalysisService(manager, history, 1, 2, logger)
	for i := 0; i < 4; i++ {
		_, err := svc.RunSync(context.Background(), validRequest())
		require.NoError(t, err)
	}

	runs, err := svc.ListHistory(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestTrendValidation(t *testing.T) {
	svc := testAnalysisService(t, []operations.Step{resultStep("analyze")}, 1)

	_, err := svc.Trend(context.Background(), "", "BRANDA")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Trend(context.Background(), "IA", "")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, runErr := svc.RunSync(context.Background(), validRequest())
	require.NoError(t, runErr)

	points, err := svc.Trend(context.Background(), "IA", "BRANDA")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 40.0, points[0].Share, 0.001)
}

func waitForStatus(t *testing.T, svc *AnalysisService, id string, want operations.RunStatus) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		state, err := svc.GetRun(context.Background(), id)
		require.NoError(t, err)
		if state.GetStatus() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("run %s never reached status %s (now %s)", id, want, state.GetStatus())
		case <-time.After(10 * time.Millisecond):
		}
	}
}
