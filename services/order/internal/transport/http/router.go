package http

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *OrderHandler) {
	orders := app.Group("/orders/v1")

	orders.Post("/checkout", h.Checkout)
	orders.Get("/get/:orderId", h.GetOrder)
	orders.Post("/:orderId/payment-status", h.ApplyPaymentStatus)

	carts := app.Group("/carts/v1")

	carts.Get("/:username", h.GetCart)
	carts.Put("/:username", h.PutCart)
	carts.Delete("/:username", h.ClearCart)
}
