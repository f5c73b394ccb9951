package usecase

import (
	"context"
	"errors"
	"log/slog"
	"stock-reorder-service/app/domain"
	"stock-reorder-service/config"
	"stock-reorder-service/pkg/correlation"
	"stock-reorder-service/pkg/ctxutil"

	"github.com/go-playground/validator/v10"
)

type stockEventDispatcher struct {
	client    domain.OrderClient
	validator *validator.Validate
	supplier  config.SupplierConfig
}

func NewStockEventDispatcher(client domain.OrderClient, validator *validator.Validate, supplier config.SupplierConfig) domain.StockEventDispatcher {
	return &stockEventDispatcher{client, validator, supplier}
}

// Dispatch processes one queue message end to end and reports its terminal
// outcome. It never panics or returns an error; every failure is logged here.
func (d *stockEventDispatcher) Dispatch(ctx context.Context, msg domain.QueueMessage) domain.Outcome {
	event, err := domain.DecodeStockEvent(msg.Body)
	if err == nil {
		err = d.validator.Struct(event)
	}
	if err != nil {
		ctx = ctxutil.WithCorrelationID(ctx, recoverID(msg))
		slog.ErrorContext(ctx, "[stockEventDispatcher] Dispatch malformed message dropped",
			"error_class", "DecodeFailure",
			"error", err)
		return domain.OutcomeDecodeFailed
	}

	if event.CorrelationID == "" {
		event.CorrelationID = correlation.NotAvailable
	}
	ctx = ctxutil.WithCorrelationID(ctx, event.CorrelationID)

	slog.InfoContext(ctx, "[stockEventDispatcher] Dispatch processing stock event",
		"product", event.Product,
		"currentStock", event.CurrentStock)

	if d.supplier.ApiUrl == "" || d.supplier.ApiKey == "" {
		slog.ErrorContext(ctx, "[stockEventDispatcher] Dispatch supplier API URL or API key is not configured",
			"error_class", "ConfigurationError",
			"supplierUrlSet", d.supplier.ApiUrl != "",
			"supplierKeySet", d.supplier.ApiKey != "")
		return domain.OutcomeConfigMissing
	}

	resp, err := d.client.Submit(ctx, event.OrderRequest(), d.supplier.ApiUrl, d.supplier.ApiKey)
	outcome := classify(err)
	if err != nil {
		slog.WarnContext(ctx, "[stockEventDispatcher] Dispatch order not placed",
			"product", event.Product,
			"outcome", outcome)
		return outcome
	}

	slog.InfoContext(ctx, "[stockEventDispatcher] Dispatch order placed",
		"product", event.Product,
		"status", resp.Status,
		"outcome", outcome)
	return outcome
}

func classify(err error) domain.Outcome {
	switch {
	case err == nil:
		return domain.OutcomeConfirmed
	case errors.Is(err, domain.ErrConfiguration):
		return domain.OutcomeConfigMissing
	case errors.Is(err, domain.ErrRemoteRejection):
		return domain.OutcomeRemoteRejected
	default:
		return domain.OutcomeTransportFailed
	}
}

func recoverID(msg domain.QueueMessage) string {
	if id := domain.RecoverCorrelationID(msg.Body); id != "" {
		return id
	}
	if msg.CorrelationID != "" {
		return msg.CorrelationID
	}
	return correlation.Unknown
}
