package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"stock-reorder-service/app/domain"
	"stock-reorder-service/config"
	"stock-reorder-service/pkg/ctxutil"

	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Publisher confirms let a failed publish surface as an error.
	if err := channel.Confirm(false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	return &RabbitMQ{
		conn:    conn,
		channel: channel,
	}, nil
}

// DeclareQueue creates a durable queue if it doesn't exist
func (r *RabbitMQ) DeclareQueue(name string) error {
	_, err := r.channel.QueueDeclare(
		name,  // queue name
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	return nil
}

func (r *RabbitMQ) Close() {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}

// stockEventPublishing carries the correlation id as both message id and
// correlation id.
func stockEventPublishing(correlationID string, payload []byte) amqp.Publishing {
	return amqp.Publishing{
		ContentType:   "text/plain",
		DeliveryMode:  amqp.Persistent,
		MessageId:     correlationID,
		CorrelationId: correlationID,
		Body:          payload,
	}
}

func queueMessage(d amqp.Delivery) domain.QueueMessage {
	correlationID := d.CorrelationId
	if correlationID == "" {
		correlationID = d.MessageId
	}
	return domain.QueueMessage{Body: d.Body, CorrelationID: correlationID}
}

type RabbitStockEventBroker struct {
	mq  *RabbitMQ
	cfg config.QueueConfig
}

func NewRabbitStockEventBroker(mq *RabbitMQ, cfg config.QueueConfig) (*RabbitStockEventBroker, error) {
	if err := mq.DeclareQueue(cfg.Name); err != nil {
		return nil, err
	}
	return &RabbitStockEventBroker{mq: mq, cfg: cfg}, nil
}

func (b *RabbitStockEventBroker) PublishStockEvent(ctx context.Context, event domain.StockEvent) error {
	payload, err := event.Encode()
	if err != nil {
		slog.ErrorContext(ctx, "[RabbitStockEventBroker] PublishStockEvent", "encode", err)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.PublishTimeout)
	defer cancel()

	confirmation, err := b.mq.channel.PublishWithDeferredConfirmWithContext(ctx,
		"",         // exchange
		b.cfg.Name, // routing key (queue name)
		false,      // mandatory
		false,      // immediate
		stockEventPublishing(event.CorrelationID, payload),
	)
	if err != nil {
		slog.ErrorContext(ctx, "[RabbitStockEventBroker] PublishStockEvent", "publish", err)
		return err
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "[RabbitStockEventBroker] PublishStockEvent", "confirm", err)
		return err
	}
	if !acked {
		slog.ErrorContext(ctx, "[RabbitStockEventBroker] PublishStockEvent", "confirm", "nacked by broker")
		return errors.New("message nacked by broker")
	}

	slog.InfoContext(ctx, "[RabbitStockEventBroker] PublishStockEvent", "queue", b.cfg.Name)
	return nil
}

func (b *RabbitStockEventBroker) Subscribe(ctx context.Context, handle domain.MessageHandler) error {
	if err := b.mq.channel.Qos(b.cfg.Concurrency, 0, false); err != nil {
		slog.ErrorContext(ctx, "[RabbitStockEventBroker] Subscribe", "qos", err)
		return err
	}

	deliveries, err := b.mq.channel.Consume(
		b.cfg.Name, // queue name
		"",         // consumer tag
		false,      // auto-ack (false = manual ack)
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		slog.ErrorContext(ctx, "[RabbitStockEventBroker] Subscribe", "consume", err)
		return err
	}

	slog.InfoContext(ctx, "[RabbitStockEventBroker] Subscribe listening", "queue", b.cfg.Name)

	runner := newRunner(b.cfg.Concurrency)
	defer runner.Wait()
	msgCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "[RabbitStockEventBroker] Subscribe stopped")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				slog.ErrorContext(ctx, "[RabbitStockEventBroker] Subscribe", "deliveries", "channel closed")
				return errors.New("rabbitmq delivery channel closed")
			}
			qm := queueMessage(d)
			runner.Go(func() error {
				outcome := safeHandle(msgCtx, handle, qm)
				settle(ctxutil.WithCorrelationID(msgCtx, qm.CorrelationID), outcome,
					func() error { return d.Ack(false) },
					func() error { return d.Nack(false, false) })
				return nil
			})
		}
	}
}
