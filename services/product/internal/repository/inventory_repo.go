package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// InventoryRepository mutates the per-size stock counters. Every mutation is
// a single conditional UPDATE so concurrent requests cannot interleave a read
// and a write and oversell the last unit.
type InventoryRepository interface {
	Reserve(ctx context.Context, tx pgx.Tx, productID int64, size string, quantity int64) error
	Release(ctx context.Context, tx pgx.Tx, productID int64, size string, quantity int64) (bool, error)
	Confirm(ctx context.Context, tx pgx.Tx, productID int64, size string, quantity int64) error
	RecomputeProductCount(ctx context.Context, tx pgx.Tx, productID int64) error
}

type inventoryRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewInventoryRepository(pool *pgxpool.Pool, logger *zap.Logger) InventoryRepository {
	return &inventoryRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("product/inventory_repo"),
	}
}

func (r *inventoryRepo) Reserve(ctx context.Context, tx pgx.Tx, productID int64, size string, quantity int64) error {
	ctx, span := r.tracer.Start(ctx, "InventoryRepository.Reserve")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product_id", productID),
		attribute.String("size", size),
		attribute.Int64("quantity", quantity),
	)

	query := `
		UPDATE product_sizes
		SET reserved_quantity = reserved_quantity + $3
		WHERE product_id = $1
			AND name = $2
			AND quantity - reserved_quantity >= $3;
	`

	commandTag, err := tx.Exec(ctx, query, productID, size, quantity)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error reserving stock",
			zap.Int64("product_id", productID),
			zap.String("size", size),
			zap.Error(err),
		)

		return fmt.Errorf("error reserving stock for product %d: %w", productID, err)
	}

	if commandTag.RowsAffected() == 0 {
		return r.classifyMiss(ctx, tx, productID, size, ErrOutOfStock)
	}

	return nil
}

func (r *inventoryRepo) Release(ctx context.Context, tx pgx.Tx, productID int64, size string, quantity int64) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "InventoryRepository.Release")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product_id", productID),
		attribute.String("size", size),
		attribute.Int64("quantity", quantity),
	)

	query := `
		UPDATE product_sizes
		SET reserved_quantity = reserved_quantity - $3
		WHERE product_id = $1
			AND name = $2
			AND reserved_quantity >= $3;
	`

	commandTag, err := tx.Exec(ctx, query, productID, size, quantity)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error releasing stock",
			zap.Int64("product_id", productID),
			zap.String("size", size),
			zap.Error(err),
		)

		return false, fmt.Errorf("error releasing stock for product %d: %w", productID, err)
	}

	// Release more than reserved is a no-op, not a failure. Compensation
	// paths may retry after a partial reserve.
	return commandTag.RowsAffected() > 0, nil
}

func (r *inventoryRepo) Confirm(ctx context.Context, tx pgx.Tx, productID int64, size string, quantity int64) error {
	ctx, span := r.tracer.Start(ctx, "InventoryRepository.Confirm")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product_id", productID),
		attribute.String("size", size),
		attribute.Int64("quantity", quantity),
	)

	query := `
		UPDATE product_sizes
		SET quantity = quantity - $3,
			reserved_quantity = reserved_quantity - $3
		WHERE product_id = $1
			AND name = $2
			AND reserved_quantity >= $3;
	`

	commandTag, err := tx.Exec(ctx, query, productID, size, quantity)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error confirming stock",
			zap.Int64("product_id", productID),
			zap.String("size", size),
			zap.Error(err),
		)

		return fmt.Errorf("error confirming stock for product %d: %w", productID, err)
	}

	if commandTag.RowsAffected() == 0 {
		return r.classifyMiss(ctx, tx, productID, size, ErrInsufficientReservation)
	}

	return nil
}

func (r *inventoryRepo) RecomputeProductCount(ctx context.Context, tx pgx.Tx, productID int64) error {
	ctx, span := r.tracer.Start(ctx, "InventoryRepository.RecomputeProductCount")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product_id", productID),
	)

	query := `
		UPDATE products
		SET product_count = (
			SELECT COALESCE(SUM(quantity), 0)
			FROM product_sizes
			WHERE product_id = $1
		), updated_at = NOW()
		WHERE id = $1;
	`

	commandTag, err := tx.Exec(ctx, query, productID)
	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("error recomputing product count for %d: %w", productID, err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

// classifyMiss distinguishes a missing counter row from a counter row whose
// guard condition failed, so callers get 404 for the former and the
// operation's own error for the latter.
func (r *inventoryRepo) classifyMiss(ctx context.Context, tx pgx.Tx, productID int64, size string, opErr error) error {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT true FROM product_sizes WHERE product_id = $1 AND name = $2`,
		productID, size).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("product %d size %q: %w", productID, size, ErrSizeNotFound)
		}

		return fmt.Errorf("error checking size row for product %d: %w", productID, err)
	}

	return fmt.Errorf("product %d size %q: %w", productID, size, opErr)
}
