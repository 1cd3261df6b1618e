package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "realtydash/internal/errors"
	"realtydash/internal/shared/testutil"
	"realtydash/pkg/contracts/domain"
)

func TestHTMLHandler_ServeDashboard(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	svc := new(MockDataService)
	svc.On("Dashboard", domain.Selection{}).Return(&domain.Dashboard{
		Title: "Ventas <Torre A>",
		Filters: []domain.FilterOption{
			{Column: "ESTADO", Label: "Estado", Values: []string{"SEPARADO", "VENDIDO"}},
		},
		Metrics: []domain.Metric{{Key: "units_total", Label: "Unidades", Value: 6, Formatted: "6"}},
	}, nil)
	svc.On("Dashboard", domain.Selection{"COLOR": {"ROJO"}}).
		Return(nil, apierrors.NewAppValidationError(`unknown column "COLOR"`))

	handler := NewHTMLHandler(svc, apierrors.NewErrorHandler(logger, false), logger)

	rec := httptest.NewRecorder()
	handler.ServeDashboard(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "Ventas &lt;Torre A&gt;")
	assert.Contains(t, body, `<option value="VENDIDO">VENDIDO</option>`)
	assert.Contains(t, body, `data-column="ESTADO"`)
	assert.Contains(t, body, `"units_total"`)

	rec = httptest.NewRecorder()
	handler.ServeDashboard(rec, httptest.NewRequest(http.MethodGet, "/?COLOR=ROJO", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
