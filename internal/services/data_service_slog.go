package services

import (
	"context"
	"log/slog"

	"realtydash/internal/infrastructure"
)

// logDataError logs a failed data service operation, tagged with the trace
// of ctx when one is active
func logDataError(ctx context.Context, logger *slog.Logger, action, message string, attrs ...slog.Attr) {
	allAttrs := []slog.Attr{slog.String("action", action)}
	if traceID := infrastructure.GetTraceID(ctx); traceID != "" {
		allAttrs = append(allAttrs, slog.String("trace_id", traceID))
	}
	allAttrs = append(allAttrs, attrs...)

	logger.LogAttrs(ctx, slog.LevelError, message, allAttrs...)
}
