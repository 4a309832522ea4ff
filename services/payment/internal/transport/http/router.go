package http

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *PaymentHandler) {
	payments := app.Group("/payments/v1")

	payments.Post("/checkout/:orderId", h.CreateCheckout)
	payments.Get("/status/:orderId", h.GetStatus)

	app.Post("/webhook/razorpay", h.HandleWebhook)
}
