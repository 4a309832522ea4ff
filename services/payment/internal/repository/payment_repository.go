package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error)
	// ApplyOutcome records the webhook verdict. A row missing at webhook time
	// is created with the given status so the payment trail has no gaps. It
	// reports whether this payment's stock step already ran, so a redelivery
	// after a partial failure can pick the step back up.
	ApplyOutcome(ctx context.Context, tx pgx.Tx, paymentID string, orderID uuid.UUID, status domain.PaymentStatus, method string, amount int64) (stockSettled bool, err error)
	MarkStockSettled(ctx context.Context, tx pgx.Tx, paymentID string) error
}

type paymentRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewPaymentRepository(pool *pgxpool.Pool, logger *zap.Logger) PaymentRepository {
	return &paymentRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("payment/payment_repository"),
	}
}

func (r *paymentRepo) Create(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error {
	ctx, span := r.tracer.Start(ctx, "PaymentRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("payment_id", payment.PaymentID),
		attribute.String("order_id", payment.OrderID.String()),
	)

	query := `
		INSERT INTO payments (payment_id, order_id, status, method, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if err := tx.QueryRow(
		ctx,
		query,
		payment.PaymentID,
		payment.OrderID,
		string(payment.Status),
		payment.Method,
		payment.TotalAmount,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt); err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error creating payment",
			zap.String("payment_id", payment.PaymentID),
			zap.Error(err),
		)

		return fmt.Errorf("error creating payment: %w", err)
	}

	return nil
}

func (r *paymentRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	ctx, span := r.tracer.Start(ctx, "PaymentRepository.GetByOrderID")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", orderID.String()),
	)

	query := `
		SELECT payment_id, order_id, status, method, total_amount, stock_settled, created_at, updated_at
		FROM payments
		WHERE order_id = $1;
	`

	var payment domain.Payment
	var status string
	if err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&payment.PaymentID,
		&payment.OrderID,
		&status,
		&payment.Method,
		&payment.TotalAmount,
		&payment.StockSettled,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}

		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error getting payment",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting payment: %w", err)
	}
	payment.Status = domain.PaymentStatus(status)

	return &payment, nil
}

func (r *paymentRepo) ApplyOutcome(ctx context.Context, tx pgx.Tx, paymentID string, orderID uuid.UUID, status domain.PaymentStatus, method string, amount int64) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "PaymentRepository.ApplyOutcome")
	defer span.End()

	span.SetAttributes(
		attribute.String("payment_id", paymentID),
		attribute.String("status", string(status)),
	)

	// The upsert leaves stock_settled untouched, so the returned value is
	// the row's current settlement state (false for a fresh row).
	query := `
		INSERT INTO payments (payment_id, order_id, status, method, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (payment_id) DO UPDATE
		SET status = EXCLUDED.status,
			method = EXCLUDED.method,
			updated_at = NOW()
		RETURNING stock_settled;
	`

	var stockSettled bool
	if err := tx.QueryRow(ctx, query, paymentID, orderID, string(status), method, amount).Scan(&stockSettled); err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error applying payment outcome",
			zap.String("payment_id", paymentID),
			zap.Error(err),
		)

		return false, fmt.Errorf("error applying payment outcome: %w", err)
	}

	return stockSettled, nil
}

func (r *paymentRepo) MarkStockSettled(ctx context.Context, tx pgx.Tx, paymentID string) error {
	ctx, span := r.tracer.Start(ctx, "PaymentRepository.MarkStockSettled")
	defer span.End()

	span.SetAttributes(
		attribute.String("payment_id", paymentID),
	)

	query := `
		UPDATE payments
		SET stock_settled = TRUE, updated_at = NOW()
		WHERE payment_id = $1;
	`

	if _, err := tx.Exec(ctx, query, paymentID); err != nil {
		span.RecordError(err)

		return fmt.Errorf("error marking stock settled: %w", err)
	}

	return nil
}
