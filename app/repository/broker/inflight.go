package broker

import (
	"context"
	"fmt"
	"log/slog"
	"stock-reorder-service/app/domain"

	"golang.org/x/sync/errgroup"
)

const outcomePanicked domain.Outcome = "panicked"

// newRunner bounds how many messages are handled at once. Go blocks while
// every slot is busy, which holds back the next delivery.
func newRunner(limit int) *errgroup.Group {
	if limit < 1 {
		limit = 1
	}
	runner := &errgroup.Group{}
	runner.SetLimit(limit)
	return runner
}

// safeHandle keeps a panicking handler from taking the consumer down.
func safeHandle(ctx context.Context, handle domain.MessageHandler, msg domain.QueueMessage) (outcome domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "[broker] handler panicked", "panic", fmt.Sprint(r))
			outcome = outcomePanicked
		}
	}()
	return handle(ctx, msg)
}

// settle acknowledges confirmed messages and terminates every other outcome,
// so nothing is redelivered automatically.
func settle(ctx context.Context, outcome domain.Outcome, ack, term func() error) {
	if outcome.Succeeded() {
		if err := ack(); err != nil {
			slog.WarnContext(ctx, "[broker] settle", "ack", err)
		}
		return
	}
	if err := term(); err != nil {
		slog.WarnContext(ctx, "[broker] settle", "outcome", outcome, "term", err)
	}
}
