package middleware

import (
	"crypto/subtle"
	"log/slog"
	"stock-reorder-service/app/domain"
	"stock-reorder-service/app/handler/api/response"
	"stock-reorder-service/config"

	"github.com/gofiber/fiber/v2"
)

const APIKeyHeader = "x-api-key"

// APIKeyAuth rejects any request whose x-api-key header does not exactly
// match the configured key. The handler behind it is never reached.
func APIKeyAuth(cfg *config.Config) fiber.Handler {
	expected := []byte(cfg.ApiKey)
	return func(c *fiber.Ctx) error {
		apiKey := c.Get(APIKeyHeader)
		if apiKey == "" {
			slog.WarnContext(c.Context(), "[middleware] APIKeyAuth", "apiKey", "missing")
			return c.Status(fiber.StatusUnauthorized).JSON(response.Error(domain.ErrUnauthorized))
		}
		if subtle.ConstantTimeCompare([]byte(apiKey), expected) != 1 {
			slog.WarnContext(c.Context(), "[middleware] APIKeyAuth", "apiKey", "mismatch")
			return c.Status(fiber.StatusUnauthorized).JSON(response.Error(domain.ErrUnauthorized))
		}

		return c.Next()
	}
}
