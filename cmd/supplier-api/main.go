package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	handler "stock-reorder-service/app/handler/api"
	"stock-reorder-service/app/middleware"
	"stock-reorder-service/app/repository/cache"
	"stock-reorder-service/app/usecase"
	"stock-reorder-service/config"
	"stock-reorder-service/pkg/logger"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/recover"
	slogfiber "github.com/samber/slog-fiber"
	"golang.org/x/sync/errgroup"
)

func main() {
	// init logger
	logger.InitLogger()

	ctx := context.Background()
	// init config
	cfg, err := config.InitConfig(ctx)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	ledger, closeLedger := cache.NewOrderLedger(ctx, cfg.Redis)
	defer closeLedger()

	orderUsecase := usecase.NewOrderUsecase(ledger)
	orderHandler := handler.NewOrderHandler(orderUsecase)

	// Initialize HTTP web framework
	app := fiber.New()
	app.Use(healthcheck.New(healthcheck.Config{
		LivenessProbe: func(c *fiber.Ctx) bool {
			return true
		},
		LivenessEndpoint: "/live",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			return true
		},
		ReadinessEndpoint: "/ready",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(slogfiber.New(logger.New(os.Stdout)))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	handler.SetupRouter(app, orderHandler, cfg)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		slog.Info("Supplier API listening", "port", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Gracefully shutdown")
		return app.Shutdown()
	})

	if err := g.Wait(); err != nil {
		slog.Warn("Unfortunately the shutdown wasn't smooth", "err", err)
	}
}
