package http

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "msacli/internal/errors"
	"msacli/internal/operations"
	"msacli/internal/services"
)

// AnalysisHandler serves the analysis run endpoints.
type AnalysisHandler struct {
	service AnalysisServiceInterface
	errors  *apierrors.ErrorHandler
	logger  *slog.Logger
}

// NewAnalysisHandler creates the run handler.
func NewAnalysisHandler(service AnalysisServiceInterface, errHandler *apierrors.ErrorHandler, logger *slog.Logger) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{
		service: service,
		errors:  errHandler,
		logger:  logger.With(slog.String("handler", "analysis")),
	}
}

// Routes returns the chi router for /api/analysis.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.StartRun)
	r.Get("/", h.ListHistory)
	r.Get("/trends", h.Trend)
	r.Get("/{id}", h.GetRun)
	return r
}

// AnalysisRequest is the POST /api/analysis body.
type AnalysisRequest struct {
	Workbook     string `json:"workbook"`
	Sheet        string `json:"sheet,omitempty"`
	Month        string `json:"month,omitempty"`
	Analyzer     string `json:"analyzer"`
	Region       string `json:"region,omitempty"`
	IncludeValue bool   `json:"include_value,omitempty"`
	Export       bool   `json:"export,omitempty"`
}

// Bind implements render.Binder.
func (req *AnalysisRequest) Bind(r *http.Request) error {
	if req.Workbook == "" {
		return stderrors.New("workbook is required")
	}
	if req.Analyzer == "" {
		return stderrors.New("analyzer is required")
	}
	return nil
}

func (req *AnalysisRequest) toOperations() operations.Request {
	return operations.Request{
		Workbook:     req.Workbook,
		Sheet:        req.Sheet,
		Month:        req.Month,
		Analyzer:     req.Analyzer,
		Region:       req.Region,
		IncludeValue: req.IncludeValue,
		Export:       req.Export,
	}
}

// StartRun handles POST /api/analysis.
func (h *AnalysisHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := render.Bind(r, &req); err != nil {
		h.errors.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	state, err := h.service.StartRun(r.Context(), req.toOperations())
	if err != nil {
		h.errors.HandleError(w, r, mapServiceError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "run accepted",
		slog.String("run_id", state.ID),
		slog.String("analyzer", req.Analyzer),
		slog.String("workbook", req.Workbook))

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, state)
}

// GetRun handles GET /api/analysis/{id}. Live runs answer with their
// full stage state; completed runs that already left memory are served
// from the history store.
func (h *AnalysisHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	state, err := h.service.GetRun(r.Context(), id)
	if err == nil {
		render.JSON(w, r, state)
		return
	}
	if !stderrors.Is(err, services.ErrRunNotFound) {
		h.errors.HandleError(w, r, err)
		return
	}

	run, err := h.service.GetHistoricalRun(r.Context(), id)
	if err != nil {
		h.errors.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, run)
}

// ListHistory handles GET /api/analysis?limit=N.
func (h *AnalysisHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.errors.HandleError(w, r, apierrors.ErrValidation("limit", "must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	runs, err := h.service.ListHistory(r.Context(), limit)
	if err != nil {
		h.errors.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// Trend handles GET /api/analysis/trends?analyzer=IA&brand=BRANDA.
func (h *AnalysisHandler) Trend(w http.ResponseWriter, r *http.Request) {
	analyzer := r.URL.Query().Get("analyzer")
	brand := r.URL.Query().Get("brand")

	points, err := h.service.Trend(r.Context(), analyzer, brand)
	if err != nil {
		h.errors.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"analyzer": analyzer,
		"brand":    brand,
		"points":   points,
	})
}

// mapServiceError translates service sentinel errors into API errors
// so the error handler can pick the right status code.
func mapServiceError(err error) error {
	switch {
	case stderrors.Is(err, services.ErrInvalidInput):
		return apierrors.NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", err.Error())
	case stderrors.Is(err, services.ErrRunNotFound):
		return apierrors.ErrRunNotFound
	case stderrors.Is(err, services.ErrRunBusy):
		return apierrors.NewWithDetails(http.StatusConflict, "CONFLICT", "An analysis run is already in progress", err.Error())
	case stderrors.Is(err, services.ErrFileNotFound):
		return apierrors.NewWithDetails(http.StatusNotFound, "NOT_FOUND", "File not found", err.Error())
	case stderrors.Is(err, services.ErrInvalidFileType):
		return apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_PARAMETER", "Unsupported file type", err.Error())
	default:
		return err
	}
}
