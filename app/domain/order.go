package domain

import "context"

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusDuplicate is only returned while the order ledger is enabled.
	OrderStatusDuplicate OrderStatus = "duplicate"
)

const (
	DefaultOrderProduct       = "Unknown Product"
	DefaultOrderQuantity      = 0
	DefaultOrderCorrelationID = "N/A"
)

type OrderRequest struct {
	Product       string `json:"product"`
	Quantity      int64  `json:"quantity"`
	CorrelationID string `json:"correlationId"`
}

// WithDefaults fills missing fields with placeholders instead of rejecting
// the request.
func (r OrderRequest) WithDefaults() OrderRequest {
	if r.Product == "" {
		r.Product = DefaultOrderProduct
	}
	if r.CorrelationID == "" {
		r.CorrelationID = DefaultOrderCorrelationID
	}
	return r
}

type OrderResponse struct {
	Message       string      `json:"message"`
	CorrelationID string      `json:"correlationId"`
	Status        OrderStatus `json:"status"`
}

type OrderClient interface {
	Submit(ctx context.Context, req OrderRequest, endpoint, apiKey string) (*OrderResponse, error)
}

type OrderService interface {
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderResponse, error)
}

// OrderLedger remembers correlation ids already ordered.
type OrderLedger interface {
	// Remember reports true the first time correlationID is seen.
	Remember(ctx context.Context, correlationID string) (bool, error)
}
