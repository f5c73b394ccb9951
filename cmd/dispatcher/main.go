package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"stock-reorder-service/app/repository/broker"
	"stock-reorder-service/app/repository/supplier"
	"stock-reorder-service/app/usecase"
	"stock-reorder-service/config"
	"stock-reorder-service/pkg/logger"
	"syscall"

	"github.com/go-playground/validator/v10"
)

func main() {
	logger.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("dispatcher failed", "error", err)
		stop()
		os.Exit(1)
	}
	slog.Info("Gracefully shutdown")
}

func run(ctx context.Context) error {
	cfg, err := config.InitConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Supplier.ApiUrl == "" || cfg.Supplier.ApiKey == "" {
		slog.WarnContext(ctx, "supplier API URL or API key is not configured, every message will fail until it is")
	}

	queue, err := broker.Connect(ctx, cfg.Queue)
	if err != nil {
		return err
	}
	defer queue.Close()

	orderClient := supplier.NewOrderClient(cfg.Supplier.Timeout)
	dispatcher := usecase.NewStockEventDispatcher(orderClient, validator.New(), cfg.Supplier)

	// Blocks until SIGINT/SIGTERM; in-flight messages finish first.
	return queue.Subscriber.Subscribe(ctx, dispatcher.Dispatch)
}
