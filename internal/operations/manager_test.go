package operations

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msacli/internal/shared/testutil"
)

type stubStep struct {
	id          string
	validateErr error
	executeErr  error
	executed    *[]string
}

func (s *stubStep) ID() string   { return s.id }
func (s *stubStep) Name() string { return s.id }

func (s *stubStep) Validate(*RunState) error { return s.validateErr }

func (s *stubStep) Execute(ctx context.Context, _ *RunState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	*s.executed = append(*s.executed, s.id)
	return s.executeErr
}

type captureBroadcaster struct {
	mu        sync.Mutex
	progress  []string
	completed []string
	errs      []error
}

func (c *captureBroadcaster) BroadcastProgress(runID, stage string, progress int, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = append(c.progress, stage)
}

func (c *captureBroadcaster) BroadcastRunComplete(runID string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed = append(c.completed, runID)
}

func (c *captureBroadcaster) BroadcastRunError(runID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func TestManagerRunsStepsInOrder(t *testing.T) {
	var executed []string
	steps := []Step{
		&stubStep{id: "one", executed: &executed},
		&stubStep{id: "two", executed: &executed},
		&stubStep{id: "three", executed: &executed},
	}
	bc := &captureBroadcaster{}
	m := NewManager(steps, testutil.NewTestLogger(t), WithBroadcaster(bc))

	state := NewRunState("run-1", Request{Workbook: "a.xlsx", Analyzer: "IA"})
	require.NoError(t, m.Run(context.Background(), state))

	assert.Equal(t, []string{"one", "two", "three"}, executed)
	assert.Equal(t, RunStatusCompleted, state.GetStatus())
	assert.Equal(t, []string{"run-1"}, bc.completed)
	for _, id := range []string{"one", "two", "three"} {
		assert.Equal(t, StepStatusCompleted, state.GetStep(id).Status)
	}
}

func TestManagerFailsFast(t *testing.T) {
	var executed []string
	boom := errors.New("stage exploded")
	steps := []Step{
		&stubStep{id: "one", executed: &executed},
		&stubStep{id: "two", executed: &executed, executeErr: boom},
		&stubStep{id: "three", executed: &executed},
	}
	bc := &captureBroadcaster{}
	m := NewManager(steps, testutil.NewTestLogger(t), WithBroadcaster(bc))

	state := NewRunState("run-1", Request{Workbook: "a.xlsx", Analyzer: "IA"})
	err := m.Run(context.Background(), state)
	require.ErrorIs(t, err, boom)

	assert.Equal(t, []string{"one", "two"}, executed)
	assert.Equal(t, RunStatusFailed, state.GetStatus())
	assert.Equal(t, StepStatusFailed, state.GetStep("two").Status)
	assert.Nil(t, state.GetStep("three"))
	require.Len(t, bc.errs, 1)
}

func TestManagerValidateFailure(t *testing.T) {
	var executed []string
	steps := []Step{
		&stubStep{id: "one", executed: &executed, validateErr: errors.New("not ready")},
	}
	m := NewManager(steps, testutil.NewTestLogger(t))

	state := NewRunState("run-1", Request{})
	err := m.Run(context.Background(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready")
	assert.Empty(t, executed)
	assert.Equal(t, RunStatusFailed, state.GetStatus())
}

func TestManagerCancelledContext(t *testing.T) {
	var executed []string
	steps := []Step{&stubStep{id: "one", executed: &executed}}
	m := NewManager(steps, testutil.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := NewRunState("run-1", Request{})
	err := m.Run(ctx, state)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, RunStatusCancelled, state.GetStatus())
}
