package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"msacli/internal/config"
	apierrors "msacli/internal/errors"
)

// SettingsServiceInterface is the settings surface the handler needs.
type SettingsServiceInterface interface {
	Get(ctx context.Context) (*config.Settings, error)
	Update(ctx context.Context, settings *config.Settings) error
	Reset(ctx context.Context) (*config.Settings, error)
}

// SettingsHandler serves the analysis settings endpoints.
type SettingsHandler struct {
	service SettingsServiceInterface
	errors  *apierrors.ErrorHandler
	logger  *slog.Logger
}

// NewSettingsHandler creates the settings handler.
func NewSettingsHandler(service SettingsServiceInterface, errHandler *apierrors.ErrorHandler, logger *slog.Logger) *SettingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsHandler{
		service: service,
		errors:  errHandler,
		logger:  logger.With(slog.String("handler", "settings")),
	}
}

// Routes returns the chi router for /api/settings.
func (h *SettingsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Put("/", h.Update)
	r.Post("/reset", h.Reset)
	return r
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Get(r.Context())
	if err != nil {
		h.errors.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, settings)
}

// Update handles PUT /api/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var settings config.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		h.errors.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.service.Update(r.Context(), &settings); err != nil {
		h.errors.HandleError(w, r, mapServiceError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "settings updated",
		slog.Int("analyzers", len(settings.Analyzers)))
	render.JSON(w, r, &settings)
}

// Reset handles POST /api/settings/reset.
func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	defaults, err := h.service.Reset(r.Context())
	if err != nil {
		h.errors.HandleError(w, r, mapServiceError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "settings reset to defaults")
	render.JSON(w, r, defaults)
}
