package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/client"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/repository"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/service"
	"github.com/sony/gobreaker"
)

func statusFromError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidSignature):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrMalformedEvent):
		return fiber.StatusBadRequest
	case errors.Is(err, repository.ErrPaymentNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, client.ErrUpstreamTimeout),
		errors.Is(err, client.ErrRemoteFailure),
		errors.Is(err, gobreaker.ErrOpenState):
		// Tells the provider to redeliver.
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
