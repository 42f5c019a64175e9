// Package observability provides tracing setup and the domain metrics and
// logging helpers shared by services.
package observability

import (
	"context"
	"log/slog"
)

// BestEffortFailure records a secondary step that failed after its primary
// operation succeeded. The failure is logged and counted, never returned.
func BestEffortFailure(ctx context.Context, operation string, err error, attrs ...slog.Attr) {
	BestEffortFailures.WithLabelValues(operation).Inc()

	args := make([]any, 0, len(attrs)+2)
	args = append(args, slog.String("operation", operation), slog.String("error", err.Error()))
	for _, a := range attrs {
		args = append(args, a)
	}
	slog.WarnContext(ctx, "best-effort step failed", args...)
	RecordErrorInContext(ctx, operation, err)
}
