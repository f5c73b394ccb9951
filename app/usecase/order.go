package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"stock-reorder-service/app/domain"
	"stock-reorder-service/pkg/ctxutil"
)

type orderUsecase struct {
	ledger domain.OrderLedger
}

func NewOrderUsecase(ledger domain.OrderLedger) domain.OrderService {
	return &orderUsecase{ledger}
}

// PlaceOrder accepts every authenticated order. Missing fields fall back to
// placeholders; repeats are only detected while a ledger is configured.
func (u *orderUsecase) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResponse, error) {
	req = req.WithDefaults()
	ctx = ctxutil.WithCorrelationID(ctx, req.CorrelationID)

	slog.InfoContext(ctx, "[orderUsecase] PlaceOrder received order",
		"product", req.Product,
		"quantity", req.Quantity)

	status := domain.OrderStatusConfirmed
	if req.CorrelationID != domain.DefaultOrderCorrelationID {
		first, err := u.ledger.Remember(ctx, req.CorrelationID)
		if err != nil {
			slog.WarnContext(ctx, "[orderUsecase] PlaceOrder ledger unavailable, accepting order", "error", err)
		} else if !first {
			slog.WarnContext(ctx, "[orderUsecase] PlaceOrder duplicate order", "product", req.Product)
			status = domain.OrderStatusDuplicate
		}
	}

	message := fmt.Sprintf("Order for %s received successfully!", req.Product)
	if status == domain.OrderStatusDuplicate {
		message = fmt.Sprintf("Order for %s already received.", req.Product)
	}

	return domain.OrderResponse{
		Message:       message,
		CorrelationID: req.CorrelationID,
		Status:        status,
	}, nil
}
