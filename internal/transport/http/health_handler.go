package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"msacli/internal/services"
)

// HealthServiceInterface is the health probe surface the handler needs.
type HealthServiceInterface interface {
	Check(ctx context.Context) *services.HealthStatus
}

// HealthHandler serves GET /api/health.
type HealthHandler struct {
	service HealthServiceInterface
	logger  *slog.Logger
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(service HealthServiceInterface, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// HealthCheck reports process health. Degraded reports still answer
// 200 so dashboards can display the failing checks.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Check(r.Context()))
}
