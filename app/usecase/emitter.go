package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"stock-reorder-service/app/domain"
	"stock-reorder-service/config"
	"stock-reorder-service/pkg/correlation"
	"stock-reorder-service/pkg/ctxutil"

	"github.com/go-playground/validator/v10"
)

type stockEventEmitter struct {
	publisher domain.StockEventPublisher
	validator *validator.Validate
	newID     correlation.Generator
	cfg       *config.Config
}

func NewStockEventEmitter(publisher domain.StockEventPublisher, validator *validator.Validate, newID correlation.Generator, cfg *config.Config) domain.StockEventEmitter {
	if newID == nil {
		newID = correlation.NewID
	}
	return &stockEventEmitter{publisher, validator, newID, cfg}
}

func (e *stockEventEmitter) Evaluate(ctx context.Context, level domain.StockLevel) (*domain.StockEvent, error) {
	if err := e.validator.Struct(level); err != nil {
		slog.ErrorContext(ctx, "[stockEventEmitter] Evaluate", "product", level.Product, "validation", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if level.CurrentStock > e.cfg.StockThreshold {
		slog.InfoContext(ctx, "[stockEventEmitter] Evaluate stock is fine, no event emitted",
			"product", level.Product,
			"currentStock", level.CurrentStock,
			"threshold", e.cfg.StockThreshold)
		return nil, nil
	}

	event := domain.NewStockEvent(level, e.newID())
	ctx = ctxutil.WithCorrelationID(ctx, event.CorrelationID)

	if err := e.publisher.PublishStockEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "[stockEventEmitter] Evaluate error emitting event",
			"product", level.Product,
			"error", err)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrPublishFailure, level.Product, err)
	}

	slog.InfoContext(ctx, "[stockEventEmitter] Evaluate emitted stock event",
		"product", event.Product,
		"currentStock", event.CurrentStock,
		"threshold", e.cfg.StockThreshold)
	return &event, nil
}

func (e *stockEventEmitter) EvaluateAll(ctx context.Context, levels []domain.StockLevel) []domain.StockEvent {
	var events []domain.StockEvent
	var failed int
	for _, level := range levels {
		event, err := e.Evaluate(ctx, level)
		if err != nil {
			failed++
			continue
		}
		if event != nil {
			events = append(events, *event)
		}
	}

	slog.InfoContext(ctx, "[stockEventEmitter] EvaluateAll",
		"evaluated", len(levels),
		"emitted", len(events),
		"failed", failed)
	return events
}
