package broker

import (
	"context"
	"fmt"
	"log/slog"
	"stock-reorder-service/app/domain"
	"stock-reorder-service/config"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Broker is the queue channel selected by QUEUE_DRIVER.
type Broker struct {
	Publisher  domain.StockEventPublisher
	Subscriber domain.StockEventSubscriber
	close      func()
}

func Connect(ctx context.Context, cfg config.QueueConfig) (*Broker, error) {
	switch cfg.Driver {
	case config.QueueDriverNats:
		return connectNats(ctx, cfg)
	case config.QueueDriverRabbitMQ:
		return connectRabbitMQ(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown queue driver %q", cfg.Driver)
	}
}

func (b *Broker) Close() {
	if b.close != nil {
		b.close()
	}
}

func connectNats(ctx context.Context, cfg config.QueueConfig) (*Broker, error) {
	nc, err := nats.Connect(cfg.NatsUrl)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	if err := EnsureNatsStream(ctx, js, cfg); err != nil {
		nc.Close()
		return nil, err
	}

	slog.InfoContext(ctx, "[broker] Connect", "driver", cfg.Driver, "url", cfg.NatsUrl)
	b := NewNatsStockEventBroker(js, cfg)
	return &Broker{
		Publisher:  b,
		Subscriber: b,
		close: func() {
			if err := nc.Drain(); err != nil {
				slog.WarnContext(ctx, "[broker] Close", "drain", err)
			}
		},
	}, nil
}

func connectRabbitMQ(ctx context.Context, cfg config.QueueConfig) (*Broker, error) {
	mq, err := NewRabbitMQ(cfg.RabbitMQUrl)
	if err != nil {
		return nil, err
	}

	b, err := NewRabbitStockEventBroker(mq, cfg)
	if err != nil {
		mq.Close()
		return nil, err
	}

	slog.InfoContext(ctx, "[broker] Connect", "driver", cfg.Driver, "queue", cfg.Name)
	return &Broker{
		Publisher:  b,
		Subscriber: b,
		close:      mq.Close,
	}, nil
}
