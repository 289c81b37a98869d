package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	scopeKey
)

// Scope carries the identifiers a request accumulates on its way through the
// API. The request id doubles as the trace id for spans started under it.
type Scope struct {
	RequestID string
	UserID    string
	TraceID   string
	SpanID    string
}

// ScopeFrom returns the identifiers recorded on ctx so far.
func ScopeFrom(ctx context.Context) Scope {
	if ctx == nil {
		return Scope{}
	}
	scope, _ := ctx.Value(scopeKey).(Scope)
	return scope
}

func withScope(ctx context.Context, update func(*Scope)) context.Context {
	scope := ScopeFrom(ctx)
	update(&scope)
	return context.WithValue(ctx, scopeKey, scope)
}

// WithLogger stores logger on ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the request-scoped logger or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// WithRequestID records the X-Request-ID of the current request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return withScope(ctx, func(s *Scope) {
		s.RequestID = requestID
		if s.TraceID == "" {
			s.TraceID = requestID
		}
	})
}

// WithUserID records the authenticated user on the context and its logger.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil || userID == "" {
		return ctx
	}
	ctx = withScope(ctx, func(s *Scope) { s.UserID = userID })
	return WithLogger(ctx, FromContext(ctx).With(slog.String("user_id", userID)))
}
