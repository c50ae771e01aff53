package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span is one client operation (login, accept, ...) and the requests it makes.
type Span struct {
	name   string
	logger *slog.Logger
	start  time.Time
}

// StartSpan derives a context whose logger carries a trace id shared by every
// request the operation issues.
func StartSpan(ctx context.Context, logger *slog.Logger, name string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = FromContext(ctx)
	}

	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		traceID = uuid.NewString()
		ctx = WithTraceID(ctx, traceID)
	}

	logger = logger.With(slog.String("op", name), slog.String("trace_id", traceID))
	ctx = WithLogger(ctx, logger)

	return ctx, &Span{name: name, logger: logger, start: time.Now()}
}

// End emits a debug completion entry for the operation.
func (s *Span) End(err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.logger.Debug("operation failed", slog.Duration("duration", time.Since(s.start)), slog.String("error", err.Error()))
		return
	}
	s.logger.Debug("operation completed", slog.Duration("duration", time.Since(s.start)))
}
