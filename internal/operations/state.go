package operations

import (
	"sync"
	"time"

	"msacli/pkg/contracts/domain"
)

// RunStatus represents the overall run status.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunState carries the shared state of one analysis run through its
// stages: the request, the resolved workbook, the parsed dataset, the
// analysis results and the export paths.
type RunState struct {
	mu sync.RWMutex

	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Request Request               `json:"request"`
	Steps   map[string]*StepState `json:"steps"`

	// Stage products, populated as the run advances
	WorkbookPath string                   `json:"workbook_path,omitempty"`
	Dataset      *domain.Dataset          `json:"-"`
	Results      []*domain.AnalysisResult `json:"results,omitempty"`
	ExportPaths  []string                 `json:"export_paths,omitempty"`

	Error string `json:"error,omitempty"`
}

// NewRunState creates a pending run state for a request.
func NewRunState(id string, req Request) *RunState {
	return &RunState{
		ID:        id,
		Status:    RunStatusPending,
		StartTime: time.Now(),
		Request:   req,
		Steps:     make(map[string]*StepState),
	}
}

// Start marks the run as running
func (s *RunState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = RunStatusRunning
	s.StartTime = time.Now()
}

// Complete marks the run as completed
func (s *RunState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusCompleted
}

// Fail marks the run as failed
func (s *RunState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusFailed
	s.Error = err.Error()
}

// Cancel marks the run as cancelled
func (s *RunState) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusCancelled
}

// GetStep returns the state of a specific step
func (s *RunState) GetStep(stepID string) *StepState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Steps[stepID]
}

// SetStep records the state of a specific step
func (s *RunState) SetStep(stepID string, state *StepState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Steps[stepID] = state
}

// GetStatus returns the current run status.
func (s *RunState) GetStatus() RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// SetWorkbookPath records the resolved workbook location.
func (s *RunState) SetWorkbookPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WorkbookPath = path
}

// GetWorkbookPath returns the resolved workbook location.
func (s *RunState) GetWorkbookPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.WorkbookPath
}

// SetDataset records the parsed dataset.
func (s *RunState) SetDataset(ds *domain.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Dataset = ds
}

// GetDataset returns the parsed dataset.
func (s *RunState) GetDataset() *domain.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Dataset
}

// SetResults records the analysis results.
func (s *RunState) SetResults(results []*domain.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Results = results
}

// GetResults returns the analysis results.
func (s *RunState) GetResults() []*domain.AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Results
}

// AddExportPath records a written export file.
func (s *RunState) AddExportPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ExportPaths = append(s.ExportPaths, path)
}

// GetExportPaths returns the written export files.
func (s *RunState) GetExportPaths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.ExportPaths...)
}

// Snapshot returns a deep copy of the run state that is safe to
// serialize or broadcast while the run goroutine keeps mutating the
// original. Step states are copied under their own locks.
func (s *RunState) Snapshot() *RunState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	steps := make(map[string]*StepState, len(s.Steps))
	for id, step := range s.Steps {
		steps[id] = step.snapshot()
	}
	snap := &RunState{
		ID:           s.ID,
		Status:       s.Status,
		StartTime:    s.StartTime,
		Request:      s.Request,
		Steps:        steps,
		WorkbookPath: s.WorkbookPath,
		Dataset:      s.Dataset,
		Results:      append([]*domain.AnalysisResult(nil), s.Results...),
		ExportPaths:  append([]string(nil), s.ExportPaths...),
		Error:        s.Error,
	}
	if s.EndTime != nil {
		end := *s.EndTime
		snap.EndTime = &end
	}
	return snap
}
