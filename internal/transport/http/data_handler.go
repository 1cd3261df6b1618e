package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "realtydash/internal/errors"
	"realtydash/internal/exporter"
	"realtydash/internal/infrastructure"
	mw "realtydash/internal/middleware"
	"realtydash/internal/services"
	api "realtydash/pkg/contracts/api/v1"
	"realtydash/pkg/contracts/domain"
)

// reservedParams are request options, never selection columns
var reservedParams = map[string]bool{
	"limit": true, "offset": true, "columns": true, "bom": true,
	"kind": true, "key": true, "value": true, "order": true,
	"where_column": true, "where_value": true,
	"row": true, "col": true, "transpose": true,
}

// SelectionFromQuery builds a Selection from the query string. Every
// parameter that is not a request option names a column; repeated
// parameters list several allowed values.
func SelectionFromQuery(q url.Values) domain.Selection {
	sel := domain.Selection{}
	for key, values := range q {
		if reservedParams[key] || len(values) == 0 {
			continue
		}
		sel[key] = append([]string(nil), values...)
	}
	return sel
}

// DataHandler serves the dataset, its aggregations, the dashboard and exports
type DataHandler struct {
	service      DataServiceInterface
	validator    *mw.Validator
	errorHandler *apierrors.ErrorHandler
	workbook     *exporter.WorkbookExporter
	metrics      *infrastructure.BusinessMetrics
	logger       *slog.Logger
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DataServiceInterface, validator *mw.Validator, errorHandler *apierrors.ErrorHandler,
	metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DataHandler {
	logger = logger.With(slog.String("component", "data_handler"))
	return &DataHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		workbook:     exporter.NewWorkbookExporter(logger),
		metrics:      metrics,
		logger:       logger,
	}
}

// Routes returns the data routes
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/dataset", h.GetDataset)
		r.Get("/aggregate", h.GetAggregate)
		r.Get("/crosstab", h.GetCrossTab)
		r.Get("/summary", h.GetSummary)
		r.Get("/dashboard", h.GetDashboard)
		r.With(mw.ContentTypeValidator("application/json"), h.validator.ValidateBody).
			Post("/dashboard", h.PostDashboard)
	})

	r.Get("/export.csv", h.ExportCSV)
	r.Get("/export.xlsx", h.ExportWorkbook)

	return r
}

// GetDataset handles GET /api/data/dataset
func (h *DataHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	var page api.PaginationRequest
	if err := h.validator.BindQuery(r, &page); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	q := r.URL.Query()
	columns := splitList(q["columns"])

	result, err := h.service.DatasetPage(r.Context(), SelectionFromQuery(q), columns, page.Limit, page.Offset)
	if err != nil {
		h.fail(w, r, "dataset", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
		"count":  len(result.Rows),
	})
}

// GetAggregate handles GET /api/data/aggregate
func (h *DataHandler) GetAggregate(w http.ResponseWriter, r *http.Request) {
	var query api.AggregateQuery
	if err := h.validator.BindQuery(r, &query); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Aggregate(r.Context(), services.AggregateParams{
		Selection:   SelectionFromQuery(r.URL.Query()),
		Request:     query.ToDomain(),
		WhereColumn: query.WhereColumn,
		WhereValue:  query.WhereValue,
	})
	if err != nil {
		h.fail(w, r, "aggregate", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
		"count":  len(result.Groups),
	})
}

// GetCrossTab handles GET /api/data/crosstab
func (h *DataHandler) GetCrossTab(w http.ResponseWriter, r *http.Request) {
	var query api.CrossTabQuery
	if err := h.validator.BindQuery(r, &query); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ct, err := h.service.CrossTab(r.Context(), SelectionFromQuery(r.URL.Query()), query.Row, query.Col)
	if err != nil {
		h.fail(w, r, "crosstab", err)
		return
	}
	if query.Transpose {
		ct = ct.Transpose()
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   ct,
	})
}

// GetSummary handles GET /api/data/summary
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.fail(w, r, "summary", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// GetDashboard handles GET /api/data/dashboard with the selection in the query string
func (h *DataHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	h.renderDashboard(w, r, SelectionFromQuery(r.URL.Query()))
}

// PostDashboard handles POST /api/data/dashboard with a JSON DashboardRequest
func (h *DataHandler) PostDashboard(w http.ResponseWriter, r *http.Request) {
	var req api.DashboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.renderDashboard(w, r, req.Selection)
}

func (h *DataHandler) renderDashboard(w http.ResponseWriter, r *http.Request, sel domain.Selection) {
	dash, err := h.service.Dashboard(r.Context(), sel)
	if err != nil {
		h.fail(w, r, "dashboard", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   dash,
	})
}

// ExportCSV handles GET /api/data/export.csv; bom=true prefixes a UTF-8 BOM for Excel
func (h *DataHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ds, err := h.service.FilteredDataset(r.Context(), SelectionFromQuery(q))
	if err != nil {
		h.fail(w, r, "export_csv", err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.WriteDataset(&buf, ds, q.Get("bom") == "true"); err != nil {
		h.fail(w, r, "export_csv", err)
		return
	}
	infrastructure.RecordExport(r.Context(), h.metrics, "csv", ds.Len())

	h.attachment(w, "text/csv; charset=utf-8", "ventas.csv")
	w.Write(buf.Bytes())
}

// ExportWorkbook handles GET /api/data/export.xlsx
func (h *DataHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Workbook(r.Context(), SelectionFromQuery(r.URL.Query()))
	if err != nil {
		h.fail(w, r, "export_xlsx", err)
		return
	}

	var buf bytes.Buffer
	if err := h.workbook.Write(&buf, data); err != nil {
		h.fail(w, r, "export_xlsx", err)
		return
	}
	rows := 0
	if data.Detail != nil {
		rows = data.Detail.Total
	}
	infrastructure.RecordExport(r.Context(), h.metrics, "xlsx", rows)

	h.attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "dashboard.xlsx")
	w.Write(buf.Bytes())
}

func (h *DataHandler) attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
}

// fail logs a service error and answers with its problem document
func (h *DataHandler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	level := slog.LevelError
	if apierrors.IsType(err, apierrors.ErrTypeValidation) {
		level = slog.LevelWarn
	}
	h.logger.Log(r.Context(), level, "data request failed",
		slog.String("action", action),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	h.errorHandler.HandleError(w, r, err)
}

// splitList accepts both repeated parameters and comma separated lists
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
