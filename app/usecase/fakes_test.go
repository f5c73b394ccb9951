package usecase

import (
	"context"
	"errors"
	"fmt"
	"stock-reorder-service/app/domain"
	"sync"
)

// memoryQueue is an in-process queue channel that records encoded payloads.
type memoryQueue struct {
	mu       sync.Mutex
	messages []domain.QueueMessage
	failFor  map[string]bool
}

func (q *memoryQueue) PublishStockEvent(ctx context.Context, event domain.StockEvent) error {
	if q.failFor[event.Product] {
		return errors.New("queue unavailable")
	}
	payload, err := event.Encode()
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, domain.QueueMessage{Body: payload, CorrelationID: event.CorrelationID})
	return nil
}

func (q *memoryQueue) Subscribe(ctx context.Context, handle domain.MessageHandler) error {
	q.mu.Lock()
	pending := q.messages
	q.messages = nil
	q.mu.Unlock()
	for _, msg := range pending {
		handle(ctx, msg)
	}
	return nil
}

type fakeOrderClient struct {
	mu       sync.Mutex
	requests []domain.OrderRequest
	err      error
}

func (c *fakeOrderClient) Submit(ctx context.Context, req domain.OrderRequest, endpoint, apiKey string) (*domain.OrderResponse, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return &domain.OrderResponse{
		Message:       fmt.Sprintf("Order for %s received successfully!", req.Product),
		CorrelationID: req.CorrelationID,
		Status:        domain.OrderStatusConfirmed,
	}, nil
}

type fakeLedger struct {
	seen map[string]bool
	err  error
}

func (l *fakeLedger) Remember(ctx context.Context, correlationID string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.seen == nil {
		l.seen = map[string]bool{}
	}
	first := !l.seen[correlationID]
	l.seen[correlationID] = true
	return first, nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("corr-%d", n)
	}
}
