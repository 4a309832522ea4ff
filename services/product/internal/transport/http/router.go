package http

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *ProductHandler) {
	products := app.Group("/products/v1")

	products.Put("/order", h.ReserveStock)
	products.Post("/reserved-stocks/release", h.ReleaseStock)
	products.Post("/confirm-stocks/count", h.ConfirmStock)

	products.Get("/get/:productId", h.FindByID)
	products.Post("/add", h.Create)
}
