package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	generalDomain "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	GetByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	SetPaymentID(ctx context.Context, orderID uuid.UUID, paymentID string) error
	UpdateStatusFromAwaiting(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status domain.OrderStatus) error
	GetItems(ctx context.Context, orderID uuid.UUID) ([]generalDomain.OrderItem, error)
	// ListReapable returns AWAITING_PAYMENT orders older than olderThan plus
	// every CANCELLING order regardless of age, so a failed release is
	// retried on the next pass.
	ListReapable(ctx context.Context, olderThan time.Time) ([]*domain.Order, error)
	MarkCancelled(ctx context.Context, orderID uuid.UUID) error
}

type orderRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewOrderRepository(pool *pgxpool.Pool, logger *zap.Logger) OrderRepository {
	return &orderRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("order/order_repository"),
	}
}

func (r *orderRepo) CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.String("username", order.Username),
		attribute.Int("items_count", len(order.Items)),
	)

	queryOrder := `
		INSERT INTO orders (id, username, status, total_amount,
			address_street, address_city, address_state, address_country, address_zip_code,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if err := tx.QueryRow(
		ctx,
		queryOrder,
		order.ID,
		order.Username,
		string(order.Status),
		order.TotalAmount,
		order.Address.Street,
		order.Address.City,
		order.Address.State,
		order.Address.Country,
		order.Address.ZipCode,
	).Scan(
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		span.RecordError(err)

		logging.Warn(
			ctx,
			r.logger,
			"Failed to insert order",
			zap.Error(err),
		)

		return err
	}

	queryItem := `
		INSERT INTO order_items (order_id, product_id, size, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, item := range order.Items {
		_, err := tx.Exec(
			ctx,
			queryItem,
			order.ID,
			item.ProductID,
			item.Size,
			item.Quantity,
			item.Price,
		)
		if err != nil {
			span.RecordError(err)

			logging.Error(
				ctx,
				r.logger,
				"Failed to insert order item",
				zap.Error(err),
			)

			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", orderID.String()),
	)

	query := `
		SELECT id, username, status, total_amount, payment_id,
			address_street, address_city, address_state, address_country, address_zip_code,
			created_at, updated_at
		FROM orders
		WHERE id = $1;
	`

	var order domain.Order
	var status string
	if err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&order.ID,
		&order.Username,
		&status,
		&order.TotalAmount,
		&order.PaymentID,
		&order.Address.Street,
		&order.Address.City,
		&order.Address.State,
		&order.Address.Country,
		&order.Address.ZipCode,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to query order",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	order.Status = domain.OrderStatus(status)

	items, err := r.GetItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

func (r *orderRepo) GetItems(ctx context.Context, orderID uuid.UUID) ([]generalDomain.OrderItem, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetItems")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", orderID.String()),
	)

	query := `
		SELECT product_id, size, quantity, price
		FROM order_items
		WHERE order_id = $1;
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to query order_items",
			zap.Error(err),
		)

		return nil, err
	}
	defer rows.Close()

	var result []generalDomain.OrderItem
	for rows.Next() {
		var item generalDomain.OrderItem
		if err := rows.Scan(
			&item.ProductID,
			&item.Size,
			&item.Quantity,
			&item.Price,
		); err != nil {
			span.RecordError(err)

			return nil, err
		}

		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)

		return nil, err
	}

	return result, nil
}

func (r *orderRepo) SetPaymentID(ctx context.Context, orderID uuid.UUID, paymentID string) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.SetPaymentID")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", orderID.String()),
		attribute.String("payment_id", paymentID),
	)

	query := `
		UPDATE orders
		SET payment_id = $1, updated_at = NOW()
		WHERE id = $2;
	`

	commandTag, err := r.pool.Exec(ctx, query, paymentID, orderID)
	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("failed to set payment id: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// UpdateStatusFromAwaiting moves the order out of AWAITING_PAYMENT. The
// status predicate makes redelivered webhooks a no-op: the second update
// matches zero rows and surfaces ErrAlreadyFinalized.
func (r *orderRepo) UpdateStatusFromAwaiting(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status domain.OrderStatus) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.UpdateStatusFromAwaiting")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", orderID.String()),
		attribute.String("status", string(status)),
	)

	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3;
	`

	commandTag, err := tx.Exec(ctx, query, string(status), orderID, string(domain.StatusAwaitingPayment))
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to update order status",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)

		return fmt.Errorf("failed to update order status: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT true FROM orders WHERE id = $1`, orderID).Scan(&exists); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}

			return fmt.Errorf("failed to check order existence: %w", err)
		}

		return ErrAlreadyFinalized
	}

	return nil
}

func (r *orderRepo) MarkCancelled(ctx context.Context, orderID uuid.UUID) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.MarkCancelled")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", orderID.String()),
	)

	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3;
	`

	if _, err := r.pool.Exec(ctx, query,
		string(domain.StatusCancelled), orderID, string(domain.StatusCancelling)); err != nil {
		span.RecordError(err)

		return fmt.Errorf("failed to mark order cancelled: %w", err)
	}

	return nil
}

func (r *orderRepo) ListReapable(ctx context.Context, olderThan time.Time) ([]*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListReapable")
	defer span.End()

	query := `
		SELECT id, username, status, total_amount, created_at
		FROM orders
		WHERE (status = $1 AND created_at < $2) OR status = $3;
	`

	rows, err := r.pool.Query(ctx, query,
		string(domain.StatusAwaitingPayment), olderThan, string(domain.StatusCancelling))
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to query reapable orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order := &domain.Order{}
		var status string
		if err := rows.Scan(&order.ID, &order.Username, &status, &order.TotalAmount, &order.CreatedAt); err != nil {
			span.RecordError(err)

			return nil, err
		}
		order.Status = domain.OrderStatus(status)

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)

		return nil, err
	}

	for _, order := range orders {
		items, err := r.GetItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}

	span.SetAttributes(attribute.Int("result_count", len(orders)))

	return orders, nil
}
