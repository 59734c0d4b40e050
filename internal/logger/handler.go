package logger

import (
	"context"
	"log/slog"

	"titledoctor/internal/middleware"
)

// ContextHandler decorates a slog handler so every record carries the
// correlation ID found in the context, for both HTTP handlers and event
// consumers.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(middleware.CorrelationKey).(string); ok && id != "" {
		r.AddAttrs(slog.String("correlation_id", id))
	}
	return h.Handler.Handle(ctx, r)
}
