package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"msacli/internal/config"
)

// HubStats exposes websocket hub counters to the health report.
type HubStats interface {
	Stats() map[string]int64
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Runtime   RuntimeStats      `json:"runtime"`
	WebSocket map[string]int64  `json:"websocket,omitempty"`
}

// RuntimeStats carries process level counters.
type RuntimeStats struct {
	Goroutines  int    `json:"goroutines"`
	AllocBytes  uint64 `json:"alloc_bytes"`
	NumGC       uint32 `json:"num_gc"`
	GoVersion   string `json:"go_version"`
	ActiveRuns  int    `json:"active_runs"`
	HistorySize int    `json:"history_size,omitempty"`
}

// HealthService builds the health report for the monitoring endpoint.
type HealthService struct {
	paths     *config.Paths
	settings  *SettingsService
	analysis  *AnalysisService
	hub       HubStats
	version   string
	startTime time.Time
	logger    *slog.Logger
}

// NewHealthService creates the health reporting service.
func NewHealthService(paths *config.Paths, settings *SettingsService, analysis *AnalysisService, version string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		paths:     paths,
		settings:  settings,
		analysis:  analysis,
		version:   version,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// SetHub attaches the websocket hub after construction.
func (s *HealthService) SetHub(hub HubStats) {
	s.hub = hub
}

// Check runs all health probes and returns the aggregate report.
// Status degrades to "degraded" when any probe fails; the endpoint
// still answers 200 so dashboards can show the failing check.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	checks := make(map[string]string)
	status := "healthy"

	if config.FileExists(s.paths.SettingsFile) {
		if _, err := s.settings.Current(); err != nil {
			checks["settings"] = "unreadable: " + err.Error()
			status = "degraded"
		} else {
			checks["settings"] = "ok"
		}
	} else {
		// Missing settings fall back to defaults, worth surfacing.
		checks["settings"] = "missing, using defaults"
	}

	for name, dir := range map[string]string{
		"input_dir":  s.paths.InputDir,
		"output_dir": s.paths.OutputDir,
	} {
		if dirExists(dir) {
			checks[name] = "ok"
		} else {
			checks[name] = "missing"
			status = "degraded"
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	report := &HealthStatus{
		Status:    status,
		Version:   s.version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Checks:    checks,
		Runtime: RuntimeStats{
			Goroutines: runtime.NumGoroutine(),
			AllocBytes: mem.Alloc,
			NumGC:      mem.NumGC,
			GoVersion:  runtime.Version(),
		},
	}
	if s.analysis != nil {
		report.Runtime.ActiveRuns = s.analysis.ActiveRuns()
	}
	if s.hub != nil {
		report.WebSocket = s.hub.Stats()
	}
	return report
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
