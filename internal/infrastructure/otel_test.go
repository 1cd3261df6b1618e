package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "realtydash-test",
		TraceExporter:  "none",
		MetricExporter: "none",
	}, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	// no-op fallbacks are always usable
	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Meter)

	_, span := providers.Tracer.Start(context.Background(), "load")
	span.End()

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{TraceExporter: "jaeger", MetricExporter: "none"}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")

	_, err = InitializeOTel(&OTelConfig{TraceExporter: "none", MetricExporter: "statsd"}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported metric exporter")
}

func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "realtydash-test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1,
	}, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())
	require.NotNil(t, providers.PrometheusHTTP)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordCacheLookup(ctx, metrics, true)
	RecordCacheLookup(ctx, metrics, false)
	RecordDatasetLoad(ctx, metrics, "Base.txt", 120, 3, 2, 15*time.Millisecond, nil)

	w := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "dataset_cache_hits_total")
	assert.Contains(t, body, "dataset_rows_loaded_total")
	assert.Contains(t, body, "currency_coercion_failures_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestInitializeOTel_TwiceDoesNotCollide(t *testing.T) {
	cfg := &OTelConfig{TraceExporter: "none", MetricExporter: "prometheus"}

	first, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	defer first.Shutdown(context.Background())

	second, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	defer second.Shutdown(context.Background())
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordCacheLookup(ctx, nil, true)
		RecordDatasetLoad(ctx, nil, "x", 1, 0, 0, time.Second, errors.New("boom"))
		RecordExport(ctx, nil, "csv", 10)
	})
}

func TestNoopBusinessMetrics(t *testing.T) {
	m := NewNoopBusinessMetrics()
	require.NotNil(t, m)
	assert.NotPanics(t, func() {
		RecordDatasetLoad(context.Background(), m, "x", 1, 0, 0, time.Second, errors.New("boom"))
		RecordExport(context.Background(), m, "xlsx", 3)
	})
}
