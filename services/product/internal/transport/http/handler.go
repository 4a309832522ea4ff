package http

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/utils"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/product/internal/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/product/internal/service"
	"go.uber.org/zap"
)

type ProductHandler struct {
	products  service.ProductService
	inventory service.InventoryService
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewProductHandler(
	products service.ProductService,
	inventory service.InventoryService,
	logger *zap.Logger,
) *ProductHandler {
	return &ProductHandler{
		products:  products,
		inventory: inventory,
		validate:  validator.New(),
		logger:    logger,
	}
}

type CreateProductInput struct {
	Name    string `json:"name" validate:"required,min=3,max=100"`
	Brand   string `json:"brand" validate:"max=100"`
	Color   string `json:"color" validate:"max=50"`
	Price   int64  `json:"price" validate:"required,gt=0"`
	Enabled bool   `json:"enabled"`
	Sizes   []struct {
		Name     string `json:"name" validate:"required"`
		Quantity int64  `json:"quantity" validate:"gte=0"`
	} `json:"sizes" validate:"required,min=1,dive"`
}

func (h *ProductHandler) parseStockItems(c *fiber.Ctx) ([]domain.StockItem, error) {
	var items []domain.StockItem
	if err := c.BodyParser(&items); err != nil {
		return nil, err
	}

	if err := h.validate.Var(items, "required,min=1,dive"); err != nil {
		return nil, err
	}

	return items, nil
}

func (h *ProductHandler) ReserveStock(c *fiber.Ctx) error {
	ctx := c.UserContext()

	items, err := h.parseStockItems(c)
	if err != nil {
		logging.Warn(ctx, h.logger, "invalid reserve request", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	if err := h.inventory.Reserve(ctx, items); err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"reserve stock failed",
			zap.Int("items", len(items)),
			zap.Error(err),
		)

		return c.Status(statusFromError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	logging.Info(ctx, h.logger, "stock reserved", zap.Int("items", len(items)))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}

func (h *ProductHandler) ReleaseStock(c *fiber.Ctx) error {
	ctx := c.UserContext()

	items, err := h.parseStockItems(c)
	if err != nil {
		logging.Warn(ctx, h.logger, "invalid release request", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	if err := h.inventory.Release(ctx, items); err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"release stock failed",
			zap.Int("items", len(items)),
			zap.Error(err),
		)

		return c.Status(statusFromError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}

func (h *ProductHandler) ConfirmStock(c *fiber.Ctx) error {
	ctx := c.UserContext()

	items, err := h.parseStockItems(c)
	if err != nil {
		logging.Warn(ctx, h.logger, "invalid confirm request", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	if err := h.inventory.Confirm(ctx, items); err != nil {
		logging.Error(
			ctx,
			h.logger,
			"confirm stock failed",
			zap.Int("items", len(items)),
			zap.Error(err),
		)

		return c.Status(statusFromError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	logging.Info(ctx, h.logger, "stock confirmed", zap.Int("items", len(items)))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}

func (h *ProductHandler) FindByID(c *fiber.Ctx) error {
	ctx := c.UserContext()

	idStr := c.Params("productId")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		logging.Warn(ctx, h.logger, "invalid product id", zap.String("id", idStr))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid product id",
		})
	}

	product, err := h.products.FindByID(ctx, id)
	if err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"find by id failed",
			zap.Int64("product_id", id),
			zap.Error(err),
		)

		return c.Status(statusFromError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(product)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	ctx := c.UserContext()

	input := new(CreateProductInput)
	if err := c.BodyParser(input); err != nil {
		logging.Warn(ctx, h.logger, "failed to parse body in create", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "error parsing body",
		})
	}

	if err := h.validate.Struct(input); err != nil {
		logging.Warn(ctx, h.logger, "failed to validate input", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	product := &domain.Product{
		Name:    input.Name,
		Brand:   input.Brand,
		Color:   input.Color,
		Price:   input.Price,
		Enabled: input.Enabled,
	}
	for _, s := range input.Sizes {
		product.Sizes = append(product.Sizes, domain.Size{
			Name:     s.Name,
			Quantity: s.Quantity,
		})
	}

	id, err := h.products.Create(ctx, product)
	if err != nil {
		logging.Error(ctx, h.logger, "create product failed", zap.Error(err))

		return c.Status(statusFromError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	logging.Info(ctx, h.logger, "product created", zap.Int64("product_id", id))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":     id,
		"status": "success",
	})
}
