package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/product/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ProductRepository interface {
	Create(ctx context.Context, tx pgx.Tx, product *domain.Product) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

type productRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewProductRepository(pool *pgxpool.Pool, logger *zap.Logger) ProductRepository {
	return &productRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("product/product_repo"),
	}
}

func (r *productRepo) Create(ctx context.Context, tx pgx.Tx, product *domain.Product) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("name", product.Name),
	)

	query := `
		INSERT INTO products (name, brand, color, price, product_count, enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
	`

	var productCount int64
	for _, size := range product.Sizes {
		productCount += size.Quantity
	}

	err := tx.QueryRow(
		ctx,
		query,
		product.Name,
		product.Brand,
		product.Color,
		product.Price,
		productCount,
		product.Enabled,
	).Scan(&product.ID)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error creating product",
			zap.Error(err),
		)

		return 0, fmt.Errorf("error creating product: %w", err)
	}

	sizeQuery := `
		INSERT INTO product_sizes (product_id, name, quantity, reserved_quantity)
		VALUES ($1, $2, $3, 0);
	`

	for _, size := range product.Sizes {
		if _, err := tx.Exec(ctx, sizeQuery, product.ID, size.Name, size.Quantity); err != nil {
			span.RecordError(err)

			logging.Error(
				ctx,
				r.logger,
				"Error creating product size",
				zap.Int64("product_id", product.ID),
				zap.String("size", size.Name),
				zap.Error(err),
			)

			return 0, fmt.Errorf("error creating product size: %w", err)
		}
	}

	product.ProductCount = productCount

	return product.ID, nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		SELECT id, name, brand, color, price, product_count, enabled, created_at, updated_at
		FROM products
		WHERE id = $1;
	`

	var res domain.Product
	if err := r.pool.QueryRow(ctx, query, id).
		Scan(&res.ID, &res.Name, &res.Brand, &res.Color, &res.Price,
			&res.ProductCount, &res.Enabled, &res.CreatedAt, &res.UpdatedAt,
		); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error get by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting product: %w", err)
	}

	sizeQuery := `
		SELECT name, quantity, reserved_quantity
		FROM product_sizes
		WHERE product_id = $1
		ORDER BY name;
	`

	rows, err := r.pool.Query(ctx, sizeQuery, id)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("error getting product sizes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.Size
		if err := rows.Scan(&s.Name, &s.Quantity, &s.ReservedQuantity); err != nil {
			span.RecordError(err)

			return nil, fmt.Errorf("error scanning size row: %w", err)
		}
		res.Sizes = append(res.Sizes, s)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return &res, nil
}
