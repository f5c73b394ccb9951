package domain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

type StockEvent struct {
	Product       string `json:"product" validate:"required"`
	CurrentStock  int64  `json:"currentStock" validate:"gte=0"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId"`
}

// StockLevel is an already-known stock reading handed to the emitter.
type StockLevel struct {
	Product      string `json:"product" validate:"required"`
	CurrentStock int64  `json:"currentStock" validate:"gte=0"`
}

func NewStockEvent(level StockLevel, correlationID string) StockEvent {
	return StockEvent{
		Product:       level.Product,
		CurrentStock:  level.CurrentStock,
		Message:       fmt.Sprintf("Product %s stock is low (%d). Please reorder.", level.Product, level.CurrentStock),
		CorrelationID: correlationID,
	}
}

// OrderRequest maps the event onto the supplier order payload. The
// correlation id is copied unchanged.
func (e StockEvent) OrderRequest() OrderRequest {
	return OrderRequest{
		Product:       e.Product,
		Quantity:      e.CurrentStock,
		CorrelationID: e.CorrelationID,
	}
}

// Encode renders the event as base64-wrapped JSON, safe for any queue that
// only guarantees text payloads.
func (e StockEvent) Encode() ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(out, raw)
	return out, nil
}

// DecodeStockEvent reverses Encode. A bare JSON object is accepted as well;
// '{' is outside the base64 alphabet so the two forms cannot be confused.
func DecodeStockEvent(payload []byte) (StockEvent, error) {
	raw, err := unwrapPayload(payload)
	if err != nil {
		return StockEvent{}, err
	}

	var event StockEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return StockEvent{}, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	return event, nil
}

// RecoverCorrelationID digs the correlation id out of a payload that failed
// to decode as a StockEvent. It returns "" when nothing can be recovered.
func RecoverCorrelationID(payload []byte) string {
	raw, err := unwrapPayload(payload)
	if err != nil {
		return ""
	}

	var partial map[string]json.RawMessage
	if err := json.Unmarshal(raw, &partial); err != nil {
		return ""
	}
	var id string
	if err := json.Unmarshal(partial["correlationId"], &id); err != nil {
		return ""
	}
	return id
}

func unwrapPayload(payload []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecodeFailure)
	}
	if trimmed[0] == '{' {
		return trimmed, nil
	}

	raw := make([]byte, base64.StdEncoding.DecodedLen(len(trimmed)))
	n, err := base64.StdEncoding.Decode(raw, trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrDecodeFailure, err)
	}
	return raw[:n], nil
}

type StockLevelSource interface {
	ListStockLevels(ctx context.Context) ([]StockLevel, error)
}

type StockEventEmitter interface {
	// Evaluate publishes a StockEvent when the level is at or below the
	// threshold. It returns nil, nil when no event is due.
	Evaluate(ctx context.Context, level StockLevel) (*StockEvent, error)
	// EvaluateAll runs Evaluate sequentially over levels and returns the
	// events that were published. A failed level never stops the batch.
	EvaluateAll(ctx context.Context, levels []StockLevel) []StockEvent
}
