package domain

import "context"

// QueueMessage is one delivery from the queue channel. CorrelationID holds the
// id carried by the transport (header or message property), if any.
type QueueMessage struct {
	Body          []byte
	CorrelationID string
}

// Outcome is the terminal state of a single message.
type Outcome string

const (
	OutcomeConfirmed       Outcome = "confirmed"
	OutcomeDecodeFailed    Outcome = "decode_failed"
	OutcomeConfigMissing   Outcome = "config_missing"
	OutcomeRemoteRejected  Outcome = "remote_rejected"
	OutcomeTransportFailed Outcome = "transport_failed"
)

func (o Outcome) Succeeded() bool {
	return o == OutcomeConfirmed
}

type MessageHandler func(ctx context.Context, msg QueueMessage) Outcome

type StockEventPublisher interface {
	PublishStockEvent(ctx context.Context, event StockEvent) error
}

type StockEventSubscriber interface {
	// Subscribe delivers messages to handle until ctx is cancelled.
	Subscribe(ctx context.Context, handle MessageHandler) error
}

type StockEventDispatcher interface {
	Dispatch(ctx context.Context, msg QueueMessage) Outcome
}
