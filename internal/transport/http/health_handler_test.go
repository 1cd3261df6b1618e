package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtydash/internal/dataprocessing"
	"realtydash/internal/services"
	"realtydash/internal/shared/testutil"
	"realtydash/pkg/contracts/domain"
)

// stubLoader satisfies services.DatasetLoader
type stubLoader struct {
	err error
}

func (s stubLoader) LoadResult(ctx context.Context) (*dataprocessing.PipelineResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	ds := domain.NewDataset([]string{"ESTADO"}, []domain.Record{{domain.Text("VENDIDO")}})
	return &dataprocessing.PipelineResult{Dataset: ds, LoadedAt: time.Now()}, nil
}

func newHealthRouter(t *testing.T, loader services.DatasetLoader) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hs := services.NewHealthServiceWithBuildInfo("v1.0.0-test", "unknown", "abc123", loader, logger)
	handler := NewHealthHandler(hs, logger)

	r := chi.NewRouter()
	r.Mount("/api/health", handler.Routes())
	r.Get("/api/version", handler.Version)
	return r
}

func TestHealthHandler_Endpoints(t *testing.T) {
	router := newHealthRouter(t, stubLoader{})

	tests := []struct {
		name           string
		endpoint       string
		expectedStatus int
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name:           "health check endpoint",
			endpoint:       "/api/health",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.Equal(t, "ok", response["status"])
				assert.Contains(t, response, "timestamp")
				assert.Equal(t, "v1.0.0-test", response["version"])
			},
		},
		{
			name:           "readiness check endpoint",
			endpoint:       "/api/health/ready",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.Equal(t, "ready", response["status"])
				data := response["services"].(map[string]interface{})["data"].(map[string]interface{})
				assert.Equal(t, float64(1), data["rows"])
			},
		},
		{
			name:           "liveness check endpoint",
			endpoint:       "/api/health/live",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.Equal(t, "alive", response["status"])
				assert.Contains(t, response, "runtime")
			},
		},
		{
			name:           "version endpoint",
			endpoint:       "/api/version",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.Equal(t, "v1.0.0-test", response["version"])
				assert.Equal(t, "abc123", response["git_commit"])
				assert.NotContains(t, response, "build_time")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.endpoint, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			tt.checkResponse(t, response)
		})
	}
}

func TestHealthHandler_NotReady(t *testing.T) {
	router := newHealthRouter(t, stubLoader{err: errors.New("open Base.txt: no such file")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "not_ready", response["status"])
}
