package dataprocessing

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"realtydash/internal/config"
	"realtydash/internal/infrastructure"
	"realtydash/pkg/contracts/domain"
)

// PipelineOptions bundles the load and clean settings
type PipelineOptions struct {
	Load  LoadOptions
	Clean CleanOptions
}

// PipelineOptionsFrom builds options from the data section of the config
func PipelineOptionsFrom(cfg config.DataConfig) PipelineOptions {
	return PipelineOptions{
		Load: LoadOptions{
			Delimiter:   cfg.Comma(),
			Sheet:       cfg.Sheet,
			TextColumns: cfg.CurrencyColumns,
		},
		Clean: CleanOptions{CurrencyColumns: cfg.CurrencyColumns},
	}
}

// PipelineResult is a cleaned Dataset and how it was produced
type PipelineResult struct {
	Dataset  *domain.Dataset
	Report   CleanReport
	Source   string
	LoadedAt time.Time
	Duration time.Duration
}

// Pipeline loads and cleans an input file
type Pipeline struct {
	opts    PipelineOptions
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
}

// NewPipeline creates a pipeline. A nil tracer falls back to the global provider.
func NewPipeline(opts PipelineOptions, logger *slog.Logger, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.InstrumentationName)
	}
	return &Pipeline{
		opts:    opts,
		logger:  logger.With(slog.String("component", "pipeline")),
		tracer:  tracer,
		metrics: metrics,
	}
}

// Run loads path and cleans it
func (p *Pipeline) Run(ctx context.Context, path string) (*PipelineResult, error) {
	ctx, span := p.tracer.Start(ctx, "dataset.load",
		trace.WithAttributes(attribute.String("dataset.path", path)))
	defer span.End()

	start := time.Now()
	source := filepath.Base(path)

	raw, err := Load(path, p.opts.Load)
	if err != nil {
		p.fail(ctx, source, start, err)
		return nil, err
	}

	cleaned, report, err := Clean(raw, p.opts.Clean)
	if err != nil {
		p.fail(ctx, source, start, err)
		return nil, err
	}

	duration := time.Since(start)
	infrastructure.RecordDatasetLoad(ctx, p.metrics, source, report.RowsIn, report.RowsPruned, len(report.Failures), duration, nil)
	span.SetAttributes(
		attribute.Int("dataset.rows_in", report.RowsIn),
		attribute.Int("dataset.rows_out", report.RowsOut),
		attribute.Int("dataset.coercion_failures", len(report.Failures)),
	)

	for _, f := range report.Failures {
		p.logger.DebugContext(ctx, "currency coercion failed",
			slog.Int("row", f.Row),
			slog.String("column", f.Column),
			slog.String("raw", f.Raw))
	}
	if len(report.Failures) > 0 {
		p.logger.WarnContext(ctx, "currency cells set to missing",
			slog.String("source", source),
			slog.Int("count", len(report.Failures)))
	}

	p.logger.InfoContext(ctx, "dataset loaded",
		slog.String("source", source),
		slog.Int("rows_in", report.RowsIn),
		slog.Int("rows_pruned", report.RowsPruned),
		slog.Int("rows", report.RowsOut),
		slog.Int("columns", len(cleaned.Columns())),
		slog.Duration("duration", duration))

	return &PipelineResult{
		Dataset:  cleaned,
		Report:   report,
		Source:   path,
		LoadedAt: time.Now(),
		Duration: duration,
	}, nil
}

func (p *Pipeline) fail(ctx context.Context, source string, start time.Time, err error) {
	infrastructure.RecordDatasetLoad(ctx, p.metrics, source, 0, 0, 0, time.Since(start), err)
	infrastructure.RecordError(ctx, err)
	p.logger.ErrorContext(ctx, "dataset load failed",
		slog.String("source", source),
		slog.String("error", err.Error()))
}
