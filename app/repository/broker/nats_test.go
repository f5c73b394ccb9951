package broker

import (
	"context"
	"stock-reorder-service/app/domain"
	"stock-reorder-service/config"
	"sync"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type NatsBrokerSuite struct {
	suite.Suite
	nc     *nats.Conn
	js     jetstream.JetStream
	cfg    config.QueueConfig
	broker *NatsStockEventBroker
}

func TestNatsBrokerSuite(t *testing.T) {
	suite.Run(t, new(NatsBrokerSuite))
}

func (s *NatsBrokerSuite) SetupTest() {
	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	opts.JetStream = true
	opts.StoreDir = s.T().TempDir()
	srv := natsserver.RunServer(&opts)
	s.T().Cleanup(srv.Shutdown)

	nc, err := nats.Connect(srv.ClientURL())
	s.Require().NoError(err)
	s.T().Cleanup(nc.Close)
	s.nc = nc

	s.js, err = jetstream.New(nc)
	s.Require().NoError(err)

	s.cfg = config.QueueConfig{
		Name:           "product-stock-events",
		StreamName:     "stock",
		PublishTimeout: 2 * time.Second,
		Concurrency:    2,
	}
	s.Require().NoError(EnsureNatsStream(context.Background(), s.js, s.cfg))
	s.broker = NewNatsStockEventBroker(s.js, s.cfg)
}

func (s *NatsBrokerSuite) event(product string, stock int64, id string) domain.StockEvent {
	return domain.NewStockEvent(domain.StockLevel{Product: product, CurrentStock: stock}, id)
}

func (s *NatsBrokerSuite) TestEnsureStreamIsIdempotent() {
	s.NoError(EnsureNatsStream(context.Background(), s.js, s.cfg))
}

func (s *NatsBrokerSuite) TestPublishCarriesCorrelationID() {
	ctx := context.Background()
	event := s.event("Laptop", 5, "abc-123")

	s.Require().NoError(s.broker.PublishStockEvent(ctx, event))

	stream, err := s.js.Stream(ctx, s.cfg.NatsStream())
	s.Require().NoError(err)
	msg, err := stream.GetMsg(ctx, 1)
	s.Require().NoError(err)

	s.Equal(s.cfg.NatsSubject(), msg.Subject)
	s.Equal("abc-123", msg.Header.Get(HeaderCorrelationID))
	s.Equal("abc-123", msg.Header.Get(nats.MsgIdHdr))

	decoded, err := domain.DecodeStockEvent(msg.Data)
	s.Require().NoError(err)
	s.Equal(event, decoded)
}

func (s *NatsBrokerSuite) TestRepublishIsStoredOnce() {
	ctx := context.Background()
	event := s.event("Keyboard", 8, "dup-1")

	s.Require().NoError(s.broker.PublishStockEvent(ctx, event))
	s.Require().NoError(s.broker.PublishStockEvent(ctx, event))

	stream, err := s.js.Stream(ctx, s.cfg.NatsStream())
	s.Require().NoError(err)
	info, err := stream.Info(ctx)
	s.Require().NoError(err)
	s.Equal(uint64(1), info.State.Msgs)
}

func (s *NatsBrokerSuite) TestSubscribeSettlesWithoutRedelivery() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	seen := map[string]int{}
	handle := func(_ context.Context, msg domain.QueueMessage) domain.Outcome {
		event, err := domain.DecodeStockEvent(msg.Body)
		if !assert.NoError(s.T(), err) {
			return domain.OutcomeDecodeFailed
		}
		assert.Equal(s.T(), event.CorrelationID, msg.CorrelationID)

		mu.Lock()
		seen[msg.CorrelationID]++
		mu.Unlock()

		if event.Product == "Laptop" {
			return domain.OutcomeConfirmed
		}
		return domain.OutcomeRemoteRejected
	}

	done := make(chan error, 1)
	go func() { done <- s.broker.Subscribe(ctx, handle) }()

	s.Require().NoError(s.broker.PublishStockEvent(ctx, s.event("Laptop", 5, "id-laptop")))
	s.Require().NoError(s.broker.PublishStockEvent(ctx, s.event("Keyboard", 8, "id-keyboard")))

	s.Eventually(func() bool {
		consumer, err := s.js.Consumer(ctx, s.cfg.NatsStream(), s.cfg.NatsDurable())
		if err != nil {
			return false
		}
		info, err := consumer.Info(ctx)
		if err != nil {
			return false
		}
		return info.Delivered.Consumer == 2 && info.NumAckPending == 0
	}, 5*time.Second, 20*time.Millisecond)

	consumer, err := s.js.Consumer(ctx, s.cfg.NatsStream(), s.cfg.NatsDurable())
	s.Require().NoError(err)
	info, err := consumer.Info(ctx)
	s.Require().NoError(err)
	s.Zero(info.NumRedelivered)
	s.Zero(info.NumPending)

	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(5 * time.Second):
		s.Fail("subscribe did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	s.Equal(map[string]int{"id-laptop": 1, "id-keyboard": 1}, seen)
}
