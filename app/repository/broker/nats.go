package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"stock-reorder-service/app/domain"
	"stock-reorder-service/config"
	"stock-reorder-service/pkg/ctxutil"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const HeaderCorrelationID = "X-Correlation-ID"

// EnsureNatsStream creates the stock stream if it does not exist yet.
func EnsureNatsStream(ctx context.Context, js jetstream.JetStream, cfg config.QueueConfig) error {
	_, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.NatsStream(),
		Subjects: []string{cfg.NatsSubjects()},
		Storage:  jetstream.FileStorage,
	})
	if err != nil && !errors.Is(err, jetstream.ErrStreamNameAlreadyInUse) {
		return fmt.Errorf("create %s stream: %w", cfg.NatsStream(), err)
	}
	return nil
}

type NatsStockEventBroker struct {
	js  jetstream.JetStream
	cfg config.QueueConfig
}

func NewNatsStockEventBroker(js jetstream.JetStream, cfg config.QueueConfig) *NatsStockEventBroker {
	return &NatsStockEventBroker{
		js:  js,
		cfg: cfg,
	}
}

// PublishStockEvent uses the correlation id as the JetStream message id, so a
// retried publish inside the stream's duplicate window is stored once.
func (b *NatsStockEventBroker) PublishStockEvent(ctx context.Context, event domain.StockEvent) error {
	payload, err := event.Encode()
	if err != nil {
		slog.ErrorContext(ctx, "[NatsStockEventBroker] PublishStockEvent", "encode", err)
		return err
	}

	msg := nats.NewMsg(b.cfg.NatsSubject())
	msg.Data = payload
	msg.Header.Set(HeaderCorrelationID, event.CorrelationID)

	ctx, cancel := context.WithTimeout(ctx, b.cfg.PublishTimeout)
	defer cancel()

	ack, err := b.js.PublishMsg(ctx, msg, jetstream.WithMsgID(event.CorrelationID))
	if err != nil {
		slog.ErrorContext(ctx, "[NatsStockEventBroker] PublishStockEvent", "publish", err)
		return err
	}

	slog.InfoContext(ctx, "[NatsStockEventBroker] PublishStockEvent",
		"subject", msg.Subject,
		"stream", ack.Stream,
		"sequence", ack.Sequence,
		"duplicate", ack.Duplicate)
	return nil
}

func (b *NatsStockEventBroker) Subscribe(ctx context.Context, handle domain.MessageHandler) error {
	consumer, err := b.js.CreateOrUpdateConsumer(ctx, b.cfg.NatsStream(), jetstream.ConsumerConfig{
		Durable:       b.cfg.NatsDurable(),
		FilterSubject: b.cfg.NatsSubject(),
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		slog.ErrorContext(ctx, "[NatsStockEventBroker] Subscribe", "createConsumer", err)
		return err
	}

	runner := newRunner(b.cfg.Concurrency)
	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		qm := domain.QueueMessage{
			Body:          msg.Data(),
			CorrelationID: msg.Headers().Get(HeaderCorrelationID),
		}
		// Messages run to completion even while the subscription shuts down.
		msgCtx := context.WithoutCancel(ctx)
		runner.Go(func() error {
			outcome := safeHandle(msgCtx, handle, qm)
			settle(ctxutil.WithCorrelationID(msgCtx, qm.CorrelationID), outcome, msg.Ack, msg.Term)
			return nil
		})
	}, jetstream.PullMaxMessages(b.cfg.Concurrency))
	if err != nil {
		slog.ErrorContext(ctx, "[NatsStockEventBroker] Subscribe", "consume", err)
		return err
	}

	slog.InfoContext(ctx, "[NatsStockEventBroker] Subscribe listening",
		"stream", b.cfg.NatsStream(),
		"subject", b.cfg.NatsSubject(),
		"durable", b.cfg.NatsDurable())

	<-ctx.Done()
	consumeCtx.Stop()
	<-consumeCtx.Closed()
	_ = runner.Wait()
	slog.InfoContext(ctx, "[NatsStockEventBroker] Subscribe stopped")
	return nil
}
