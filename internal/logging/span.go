package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span times one service operation. Its log lines share the trace id of the
// request that started it.
type Span struct {
	name   string
	logger *slog.Logger
	start  time.Time
}

// StartSpan opens a span named after the operation, e.g. "videos.publish".
// attrs are attached to every line logged through the returned context.
func StartSpan(ctx context.Context, name string, attrs ...any) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	parent := ScopeFrom(ctx)
	spanID := uuid.NewString()
	traceID := parent.TraceID
	if traceID == "" {
		traceID = uuid.NewString()
	}
	ctx = withScope(ctx, func(s *Scope) {
		s.TraceID = traceID
		s.SpanID = spanID
	})

	logger := FromContext(ctx).With(
		slog.String("trace_id", traceID),
		slog.String("span_id", spanID),
		slog.String("span", name),
	)
	if parent.SpanID != "" {
		logger = logger.With(slog.String("parent_span_id", parent.SpanID))
	}
	if len(attrs) > 0 {
		logger = logger.With(attrs...)
	}

	return WithLogger(ctx, logger), &Span{name: name, logger: logger, start: time.Now()}
}

// End logs the elapsed time of the span at debug level.
func (s *Span) End() {
	if s == nil {
		return
	}
	s.logger.Debug("span finished", slog.Duration("elapsed", time.Since(s.start)))
}
