package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/client"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/repository"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/service"
	"github.com/sony/gobreaker"
)

func statusFromError(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, client.ErrOutOfStock):
		return fiber.StatusBadRequest
	case errors.Is(err, repository.ErrOrderNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, repository.ErrAlreadyFinalized):
		return fiber.StatusConflict
	case errors.Is(err, client.ErrUpstreamTimeout):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, client.ErrRemoteFailure):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
