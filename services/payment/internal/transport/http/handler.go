package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/utils"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/service"
	"go.uber.org/zap"
)

const (
	signatureHeader = "X-Razorpay-Signature"
	eventIDHeader   = "X-Razorpay-Event-Id"
)

type PaymentHandler struct {
	payments service.PaymentService
	webhooks service.WebhookService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewPaymentHandler(
	payments service.PaymentService,
	webhooks service.WebhookService,
	logger *zap.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		webhooks: webhooks,
		validate: validator.New(),
		logger:   logger,
	}
}

type CheckoutInput struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Username string `json:"username" validate:"required"`
}

func (h *PaymentHandler) CreateCheckout(c *fiber.Ctx) error {
	ctx := c.UserContext()

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		logging.Warn(ctx, h.logger, "invalid order id", zap.String("id", c.Params("orderId")))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid order id",
		})
	}

	input := new(CheckoutInput)
	if err := c.BodyParser(input); err != nil {
		logging.Warn(ctx, h.logger, "failed to parse checkout body", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "error parsing body",
		})
	}

	if err := h.validate.Struct(input); err != nil {
		logging.Warn(ctx, h.logger, "failed to validate checkout input", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	link, err := h.payments.CreateCheckout(ctx, orderID, input.Amount, input.Username)
	if err != nil {
		logging.Error(
			ctx,
			h.logger,
			"create checkout failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)

		return c.Status(statusFromError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(link)
}

func (h *PaymentHandler) GetStatus(c *fiber.Ctx) error {
	ctx := c.UserContext()

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		logging.Warn(ctx, h.logger, "invalid order id", zap.String("id", c.Params("orderId")))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid order id",
		})
	}

	payment, err := h.payments.GetStatus(ctx, orderID)
	if err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"get payment status failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)

		return c.Status(statusFromError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(payment)
}

func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	ctx := c.UserContext()

	signature := c.Get(signatureHeader)
	eventID := c.Get(eventIDHeader)

	// fiber reuses the body buffer after the handler returns.
	body := make([]byte, len(c.Body()))
	copy(body, c.Body())

	if err := h.webhooks.HandleWebhook(ctx, body, signature, eventID); err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"webhook handling failed",
			zap.String("event_id", eventID),
			zap.Error(err),
		)

		return c.Status(statusFromError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ok",
	})
}
