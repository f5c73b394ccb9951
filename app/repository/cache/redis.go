package cache

import (
	"context"
	"fmt"
	"log/slog"
	"stock-reorder-service/app/domain"
	"stock-reorder-service/config"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.InfoContext(ctx, "[cache] NewRedisClient connected", "addr", addr)
	return client, nil
}

const orderKeyPrefix = "supplier:order:"

type redisOrderLedger struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisOrderLedger keys orders by correlation id for ttl, long enough to
// cover queue redeliveries of the same event.
func NewRedisOrderLedger(client *redis.Client, ttl time.Duration) domain.OrderLedger {
	return &redisOrderLedger{client: client, ttl: ttl}
}

func (l *redisOrderLedger) Remember(ctx context.Context, correlationID string) (bool, error) {
	first, err := l.client.SetNX(ctx, orderKeyPrefix+correlationID, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		slog.ErrorContext(ctx, "[redisOrderLedger] Remember", "setNX", err)
		return false, err
	}
	return first, nil
}

// NewOrderLedger picks the Redis ledger when an address is configured and
// reachable. An unreachable Redis falls back to the noop ledger, the same way
// a runtime ledger error still accepts the order. The returned func releases
// the client.
func NewOrderLedger(ctx context.Context, cfg config.RedisConfig) (domain.OrderLedger, func()) {
	if cfg.Addr == "" {
		return NewNoopOrderLedger(), func() {}
	}

	client, err := NewRedisClient(ctx, cfg.Addr, cfg.Password)
	if err != nil {
		slog.WarnContext(ctx, "[cache] NewOrderLedger, duplicate detection disabled", "addr", cfg.Addr, "error", err)
		return NewNoopOrderLedger(), func() {}
	}
	return NewRedisOrderLedger(client, cfg.LedgerTTL), func() { client.Close() }
}
