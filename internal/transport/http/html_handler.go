package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"realtydash/internal/config"
	apierrors "realtydash/internal/errors"
	"realtydash/internal/websocket"
	"realtydash/pkg/contracts/domain"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

type dashboardPage struct {
	AppName   string
	Dashboard *domain.Dashboard
}

// HTMLHandler serves the dashboard page. The page renders the unfiltered
// dashboard and then follows filter changes over the WebSocket.
type HTMLHandler struct {
	builder      websocket.DashboardBuilder
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewHTMLHandler creates the page handler
func NewHTMLHandler(builder websocket.DashboardBuilder, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *HTMLHandler {
	return &HTMLHandler{
		builder:      builder,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "html")),
	}
}

// ServeDashboard handles GET /
func (h *HTMLHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.builder.Dashboard(r.Context(), SelectionFromQuery(r.URL.Query()))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, dashboardPage{AppName: config.AppName, Dashboard: dash}); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render dashboard page", slog.String("error", err.Error()))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}
