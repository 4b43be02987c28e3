package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"asiacup/internal/config"
	apierrors "asiacup/internal/errors"
	"asiacup/internal/services"
	api "asiacup/pkg/contracts/api/v1"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// DashboardHandler serves the dashboard API with RFC 7807 errors
type DashboardHandler struct {
	service      DashboardServiceInterface
	exports      config.ExportsConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, exports config.ExportsConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		exports:      exports,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/options", h.GetOptions)
		r.Get("/view", h.GetView)
		r.Post("/view", h.PostView)
		r.Get("/kpis", h.GetKPIs)
		r.Get("/win-rate", h.GetWinRate)
		r.Get("/matches", h.GetMatches)
		r.Get("/panels", h.ListPanels)
		r.Get("/panels/{id}", h.GetPanel)
	})

	r.Route("/export", func(r chi.Router) {
		r.Get("/filtered.csv", h.ExportFilteredCSV)
		r.Get("/filtered.xlsx", h.ExportFilteredXLSX)
		r.Get("/full.csv", h.ExportFullCSV)
	})

	return r
}

// GetOptions handles GET /api/dashboard/options
func (h *DashboardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Options(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   opts,
	})
}

// GetView handles GET /api/dashboard/view
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	req, err := parseFilterQuery(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.renderView(w, r, req)
}

// PostView handles POST /api/dashboard/view with a JSON FilterRequest body
func (h *DashboardHandler) PostView(w http.ResponseWriter, r *http.Request) {
	var req api.FilterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	h.renderView(w, r, req)
}

func (h *DashboardHandler) renderView(w http.ResponseWriter, r *http.Request, req api.FilterRequest) {
	view, err := h.service.View(r.Context(), req, services.SourceHTTP)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "dashboard view served",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("rows", view.KPIs.TotalMatches))

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// GetKPIs handles GET /api/dashboard/kpis
func (h *DashboardHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	req, err := parseFilterQuery(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	kpis, err := h.service.KPIs(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   kpis,
	})
}

// GetWinRate handles GET /api/dashboard/win-rate
func (h *DashboardHandler) GetWinRate(w http.ResponseWriter, r *http.Request) {
	req, err := parseFilterQuery(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	series, err := h.service.WinRateSeries(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   series,
		"count":  len(series),
	})
}

// ListPanels handles GET /api/dashboard/panels
func (h *DashboardHandler) ListPanels(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.PanelIDs(),
	})
}

// GetPanel handles GET /api/dashboard/panels/{id}
func (h *DashboardHandler) GetPanel(w http.ResponseWriter, r *http.Request) {
	req, err := parseFilterQuery(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	panel, err := h.service.Panel(r.Context(), req, id)
	if err != nil {
		if errors.Is(err, services.ErrPanelNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError("panel "+id))
			return
		}
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   panel,
	})
}

// GetMatches handles GET /api/dashboard/matches
func (h *DashboardHandler) GetMatches(w http.ResponseWriter, r *http.Request) {
	req, err := parseFilterQuery(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	records, sel, err := h.service.Filter(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status":    "success",
		"data":      records,
		"count":     len(records),
		"selection": sel,
	})
}

// ExportFilteredCSV handles GET /api/dashboard/export/filtered.csv
func (h *DashboardHandler) ExportFilteredCSV(w http.ResponseWriter, r *http.Request) {
	h.exportFiltered(w, r, api.ExportCSV, h.exports.FilteredName, contentTypeCSV)
}

// ExportFilteredXLSX handles GET /api/dashboard/export/filtered.xlsx
func (h *DashboardHandler) ExportFilteredXLSX(w http.ResponseWriter, r *http.Request) {
	h.exportFiltered(w, r, api.ExportXLSX, config.FilteredXLSXName, contentTypeXLSX)
}

// ExportFullCSV handles GET /api/dashboard/export/full.csv
func (h *DashboardHandler) ExportFullCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := h.service.ExportFull(r.Context(), &buf); err != nil {
		h.handleExportError(w, r, "full dataset", err)
		return
	}
	h.sendFile(w, r, &buf, h.exports.FullName, contentTypeCSV)
}

func (h *DashboardHandler) exportFiltered(w http.ResponseWriter, r *http.Request, format api.ExportFormat, filename, contentType string) {
	req, err := parseFilterQuery(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if _, err := h.service.ExportFiltered(r.Context(), &buf, req, format); err != nil {
		h.handleExportError(w, r, "filtered dataset", err)
		return
	}
	h.sendFile(w, r, &buf, filename, contentType)
}

// sendFile writes a fully rendered export as an attachment.
func (h *DashboardHandler) sendFile(w http.ResponseWriter, r *http.Request, buf *bytes.Buffer, filename, contentType string) {
	var out []byte
	if h.exports.BOMPrefix && contentType == contentTypeCSV {
		out = append(out, 0xEF, 0xBB, 0xBF)
	}
	out = append(out, buf.Bytes()...)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		h.logger.WarnContext(r.Context(), "export download interrupted",
			slog.String("file", filename),
			slog.String("error", err.Error()))
	}
}

func (h *DashboardHandler) handleExportError(w http.ResponseWriter, r *http.Request, kind string, err error) {
	switch {
	case errors.Is(err, services.ErrUnsupportedFormat),
		errors.Is(err, services.ErrInvalidSelection),
		errors.Is(err, services.ErrDatasetNotLoaded),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		h.handleServiceError(w, r, err)
	default:
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("kind", kind),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.ExportError(kind, err))
	}
}

// handleServiceError maps service errors to API errors
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var selErr *services.SelectionError
	switch {
	case errors.As(err, &selErr):
		h.errorHandler.HandleError(w, r, apierrors.NewValidationErrors(selErr.Fields))
	case errors.Is(err, services.ErrDatasetNotLoaded):
		h.logger.ErrorContext(r.Context(), "dataset unavailable",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetUnavailable)
	case errors.Is(err, services.ErrUnsupportedFormat):
		h.errorHandler.HandleError(w, r, apierrors.ErrUnsupportedFormat)
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
