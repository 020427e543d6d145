package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"msacli/internal/config"
)

// SettingsBroadcaster announces settings changes to the dashboard.
type SettingsBroadcaster interface {
	BroadcastUpdate(eventType string, data interface{})
}

// SettingsService owns the settings file. Reads and writes are
// serialized so concurrent API calls cannot interleave a save.
type SettingsService struct {
	mu          sync.RWMutex
	path        string
	logger      *slog.Logger
	broadcaster SettingsBroadcaster
}

// NewSettingsService creates a settings service over the given file.
func NewSettingsService(path string, logger *slog.Logger) *SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{
		path:   path,
		logger: logger.With(slog.String("component", "settings_service")),
	}
}

// SetBroadcaster wires the websocket hub in once it exists.
func (s *SettingsService) SetBroadcaster(b SettingsBroadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

// Current loads the settings, falling back to defaults when the file
// is absent. Satisfies the analysis pipeline's settings provider.
func (s *SettingsService) Current() (*config.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return config.LoadSettings(s.path)
}

// Get returns the settings for the API.
func (s *SettingsService) Get(ctx context.Context) (*config.Settings, error) {
	settings, err := s.Current()
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "settings loaded",
		slog.Int("analyzers", len(settings.Analyzers)),
		slog.Int("days_per_year", settings.DaysPerYear))
	return settings, nil
}

// Update validates and persists new settings, then announces the
// change.
func (s *SettingsService) Update(ctx context.Context, settings *config.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	s.mu.Lock()
	err := config.SaveSettings(s.path, settings)
	broadcaster := s.broadcaster
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "settings updated",
		slog.Int("analyzers", len(settings.Analyzers)),
		slog.Int("days_per_year", settings.DaysPerYear))

	if broadcaster != nil {
		broadcaster.BroadcastUpdate("settings:updated", settings)
	}
	return nil
}

// Reset restores the defaults.
func (s *SettingsService) Reset(ctx context.Context) (*config.Settings, error) {
	defaults := config.DefaultSettings()
	if err := s.Update(ctx, defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}
