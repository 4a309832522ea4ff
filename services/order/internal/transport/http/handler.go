package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	generalDomain "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/utils"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/repository"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/service"
	"go.uber.org/zap"
)

type OrderHandler struct {
	checkout service.CheckoutService
	orders   service.OrderService
	carts    repository.CartRepository
	validate *validator.Validate
	logger   *zap.Logger
}

func NewOrderHandler(
	checkout service.CheckoutService,
	orders service.OrderService,
	carts repository.CartRepository,
	logger *zap.Logger,
) *OrderHandler {
	return &OrderHandler{
		checkout: checkout,
		orders:   orders,
		carts:    carts,
		validate: validator.New(),
		logger:   logger,
	}
}

type CheckoutInput struct {
	Username string                    `json:"username" validate:"required"`
	Items    []generalDomain.OrderItem `json:"items" validate:"dive"`
	Address  struct {
		Street  string `json:"street" validate:"required"`
		City    string `json:"city" validate:"required"`
		State   string `json:"state"`
		Country string `json:"country" validate:"required"`
		ZipCode string `json:"zip_code" validate:"required"`
	} `json:"address"`
}

func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	ctx := c.UserContext()

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

	req := &service.CheckoutRequest{Items: input.Items}
	req.Address.Street = input.Address.Street
	req.Address.City = input.Address.City
	req.Address.State = input.Address.State
	req.Address.Country = input.Address.Country
	req.Address.ZipCode = input.Address.ZipCode

	result, err := h.checkout.Checkout(ctx, input.Username, req)
	if err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"checkout failed",
			zap.String("username", input.Username),
			zap.Error(err),
		)

		return c.Status(statusFromError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	ctx := c.UserContext()

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		logging.Warn(ctx, h.logger, "invalid order id", zap.String("id", c.Params("orderId")))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid order id",
		})
	}

	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"get order failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)

		return c.Status(statusFromError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(order)
}

func (h *OrderHandler) ApplyPaymentStatus(c *fiber.Ctx) error {
	ctx := c.UserContext()

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		logging.Warn(ctx, h.logger, "invalid order id", zap.String("id", c.Params("orderId")))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid order id",
		})
	}

	update := new(service.PaymentStatusUpdate)
	if err := c.BodyParser(update); err != nil {
		logging.Warn(ctx, h.logger, "failed to parse payment status body", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "error parsing body",
		})
	}

	if err := h.validate.Struct(update); err != nil {
		logging.Warn(ctx, h.logger, "failed to validate payment status", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	result, err := h.orders.ApplyPaymentStatus(ctx, orderID, update)
	if err != nil {
		logging.Error(
			ctx,
			h.logger,
			"apply payment status failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)

		return c.Status(statusFromError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *OrderHandler) GetCart(c *fiber.Ctx) error {
	ctx := c.UserContext()

	items, err := h.carts.Get(ctx, c.Params("username"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"items": items,
	})
}

func (h *OrderHandler) PutCart(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var items []generalDomain.OrderItem
	if err := c.BodyParser(&items); err != nil {
		logging.Warn(ctx, h.logger, "failed to parse cart body", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "error parsing body",
		})
	}

	if err := h.validate.Var(items, "required,min=1,dive"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	if err := h.carts.Put(ctx, c.Params("username"), items); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}

func (h *OrderHandler) ClearCart(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if err := h.carts.Clear(ctx, c.Params("username")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}
