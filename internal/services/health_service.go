package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"realtydash/internal/dataprocessing"
	"realtydash/pkg/contracts"
)

// DatasetLoader reports whether the dataset can be produced.
// *DataService satisfies it.
type DatasetLoader interface {
	LoadResult(ctx context.Context) (*dataprocessing.PipelineResult, error)
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	gitCommit string
	data      DatasetLoader
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Rows    int    `json:"rows,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service with build information from contracts
func NewHealthService(data DatasetLoader, logger *slog.Logger) *HealthService {
	return NewHealthServiceWithBuildInfo(contracts.Version, contracts.BuildTime, contracts.Commit(), data, logger)
}

// NewHealthServiceWithBuildInfo creates a health service with explicit build information
func NewHealthServiceWithBuildInfo(version, buildTime, gitCommit string, data DatasetLoader, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "health_service"))

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("git_commit", gitCommit))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		gitCommit: gitCommit,
		data:      data,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready once the dataset loads and cleans
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	data := hs.checkDataHealth(ctx)
	status.Services["data"] = data
	if data.Status != "ready" {
		status.Status = "not_ready"
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"data_format":  contracts.DataFormatVersion,
		"api_version":  contracts.APIVersion,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" && hs.buildTime != "unknown" {
		result["build_time"] = hs.buildTime
	}
	if hs.gitCommit != "" && hs.gitCommit != "unknown" {
		result["git_commit"] = hs.gitCommit
	}
	return result
}

// checkDataHealth loads the dataset through the cache
func (hs *HealthService) checkDataHealth(ctx context.Context) ServiceHealth {
	if hs.data == nil {
		return ServiceHealth{Status: "not_ready", Message: "data service not initialized"}
	}

	res, err := hs.data.LoadResult(ctx)
	if err != nil {
		hs.logger.WarnContext(ctx, "readiness: dataset unavailable", slog.String("error", err.Error()))
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Dataset unavailable: %v", err),
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: "Dataset loaded",
		Rows:    res.Dataset.Len(),
		Uptime:  time.Since(res.LoadedAt).Round(time.Second).String(),
	}
}
