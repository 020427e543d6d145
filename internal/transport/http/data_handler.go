package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "msacli/internal/errors"
	"msacli/internal/files"
)

// DataHandler serves workbook and export file endpoints.
type DataHandler struct {
	service DataServiceInterface
	errors  *apierrors.ErrorHandler
	logger  *slog.Logger
}

// NewDataHandler creates the file handler.
func NewDataHandler(service DataServiceInterface, errHandler *apierrors.ErrorHandler, logger *slog.Logger) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataHandler{
		service: service,
		errors:  errHandler,
		logger:  logger.With(slog.String("handler", "data")),
	}
}

// Routes returns the chi router for /api/files.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/workbooks", h.ListWorkbooks)
	r.Get("/exports", h.ListExports)
	r.Get("/months", h.ListMonths)
	r.Get("/sheets", h.ListSheets)
	r.Delete("/exports/{name}", h.DeleteExport)
	return r
}

// FileResponse is one file entry in a listing.
type FileResponse struct {
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	ModTime string `json:"mod_time"`
}

func toFileResponses(infos []files.FileInfo) []FileResponse {
	out := make([]FileResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, FileResponse{
			Name:    info.Name,
			Size:    info.Size,
			ModTime: info.ModTime.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	return out
}

// ListWorkbooks handles GET /api/files/workbooks?month=...
func (h *DataHandler) ListWorkbooks(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	workbooks, err := h.service.ListWorkbooks(r.Context(), month)
	if err != nil {
		h.errors.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"workbooks": toFileResponses(workbooks),
		"month":     month,
	})
}

// ListExports handles GET /api/files/exports?month=...
func (h *DataHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	exports, err := h.service.ListExports(r.Context(), month)
	if err != nil {
		h.errors.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"exports": toFileResponses(exports),
		"month":   month,
	})
}

// ListMonths handles GET /api/files/months.
func (h *DataHandler) ListMonths(w http.ResponseWriter, r *http.Request) {
	months, err := h.service.ListMonths(r.Context())
	if err != nil {
		h.errors.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{"months": months})
}

// ListSheets handles GET /api/files/sheets?workbook=...&month=...
func (h *DataHandler) ListSheets(w http.ResponseWriter, r *http.Request) {
	workbook := r.URL.Query().Get("workbook")
	month := r.URL.Query().Get("month")

	sheets, err := h.service.ListSheets(r.Context(), workbook, month)
	if err != nil {
		h.errors.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"workbook": workbook,
		"sheets":   sheets,
	})
}

// DeleteExport handles DELETE /api/files/exports/{name}?month=...
func (h *DataHandler) DeleteExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	month := r.URL.Query().Get("month")

	if err := h.service.DeleteExport(r.Context(), name, month); err != nil {
		h.errors.HandleError(w, r, mapServiceError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "export deleted", slog.String("file", name))
	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}
