package response

import (
	"errors"
	"stock-reorder-service/app/domain"

	"github.com/gofiber/fiber/v2"
)

const UnauthorizedMessage = "Unauthorized. Invalid or missing API Key."

type Response struct {
	Error string `json:"error"`
}

func Error(err error) *Response {
	if errors.Is(err, domain.ErrUnauthorized) {
		return &Response{Error: UnauthorizedMessage}
	}
	return &Response{Error: err.Error()}
}

func FromError(err error) (int, *Response) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest, Error(err)
	case errors.Is(err, domain.ErrBadRequest):
		return fiber.StatusBadRequest, Error(err)
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, Error(err)
	default:
		return fiber.StatusInternalServerError, Error(domain.ErrInternal)
	}
}
