package logger

import (
	"context"
	"log/slog"
	"stock-reorder-service/pkg/ctxutil"
)

// ContextHandler copies the request and correlation ids stored in the
// context onto every record.
type ContextHandler struct {
	slog.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		r.AddAttrs(slog.String("request_id", requestID))
	}
	if correlationID := ctxutil.GetCorrelationID(ctx); correlationID != "" {
		r.AddAttrs(slog.String("correlation_id", correlationID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}
