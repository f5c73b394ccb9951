package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"stock-reorder-service/app/domain"
	"stock-reorder-service/app/repository/broker"
	"stock-reorder-service/app/repository/db"
	"stock-reorder-service/app/repository/static"
	"stock-reorder-service/app/usecase"
	"stock-reorder-service/config"
	"stock-reorder-service/pkg/correlation"
	"stock-reorder-service/pkg/logger"
	"syscall"

	"github.com/go-playground/validator/v10"
)

// Usage: emitter [product=stock ...]
// Without arguments and with STOCK_SOURCE=args the simulated stock drop is used.
func main() {
	logger.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("emitter failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.InitConfig(ctx)
	if err != nil {
		return err
	}

	source, closeSource, err := newStockLevelSource(cfg, args)
	if err != nil {
		return err
	}
	defer closeSource()

	levels, err := source.ListStockLevels(ctx)
	if err != nil {
		return err
	}

	queue, err := broker.Connect(ctx, cfg.Queue)
	if err != nil {
		return err
	}
	defer queue.Close()

	emitter := usecase.NewStockEventEmitter(queue.Publisher, validator.New(), correlation.NewID, cfg)
	events := emitter.EvaluateAll(ctx, levels)

	slog.InfoContext(ctx, "emitter finished", "levels", len(levels), "events", len(events))
	return nil
}

func newStockLevelSource(cfg *config.Config, args []string) (domain.StockLevelSource, func(), error) {
	if cfg.StockSource != config.StockSourcePostgres {
		src, err := static.NewArgsStockLevelSource(args)
		return src, func() {}, err
	}

	dbConn, err := db.NewPostgres(cfg.Db)
	if err != nil {
		return nil, nil, err
	}
	return db.NewStockLevelRepository(dbConn), func() { dbConn.Close() }, nil
}
