package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"stock-reorder-service/app/domain"
	"stock-reorder-service/app/handler/api/response"
	"stock-reorder-service/app/middleware"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	orderUsecase domain.OrderService
}

func NewOrderHandler(orderUsecase domain.OrderService) *OrderHandler {
	return &OrderHandler{
		orderUsecase: orderUsecase,
	}
}

// PlaceOrder accepts an order. An empty body is treated like an empty object
// so every field falls back to its default.
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	req, err := parseOrderRequest(c)
	if err != nil {
		slog.ErrorContext(c.Context(), "[orderHandler] PlaceOrder", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	resp, err := h.orderUsecase.PlaceOrder(c.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[orderHandler] PlaceOrder", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// parseOrderRequest rejects only a malformed body of a known content type.
// A body without a usable content type is read as JSON when possible and
// ignored otherwise.
func parseOrderRequest(c *fiber.Ctx) (domain.OrderRequest, error) {
	var req domain.OrderRequest
	if len(c.Body()) == 0 {
		return req, nil
	}

	err := c.BodyParser(&req)
	if !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return req, err
	}

	slog.WarnContext(c.Context(), "[orderHandler] PlaceOrder unsupported content type, reading body as JSON",
		"contentType", string(c.Request().Header.ContentType()))
	req = domain.OrderRequest{}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return domain.OrderRequest{}, nil
	}
	return req, nil
}

func Greeting(c *fiber.Ctx) error {
	return c.SendString("Supplier API is running. POST orders to /order with the " + middleware.APIKeyHeader + " header.")
}
