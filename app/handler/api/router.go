package handler

import (
	"stock-reorder-service/app/middleware"
	"stock-reorder-service/config"

	"github.com/gofiber/fiber/v2"
)

func SetupRouter(app *fiber.App, orderHandler *OrderHandler, cfg *config.Config) {
	app.Get("/", Greeting)

	app.Post("/order", middleware.APIKeyAuth(cfg), orderHandler.PlaceOrder)
}
