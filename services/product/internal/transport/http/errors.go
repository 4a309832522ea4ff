package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/product/internal/repository"
)

func statusFromError(err error) int {
	switch {
	case errors.Is(err, repository.ErrOutOfStock):
		return fiber.StatusBadRequest
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrSizeNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, repository.ErrInsufficientReservation):
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}
