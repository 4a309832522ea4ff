package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	generalDomain "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	outboxDomain "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/outbox/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/outbox/worker"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/repository"
	"go.uber.org/zap"
)

type PaymentStatusUpdate struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=SUCCESS FAILED"`
	PaymentID     string `json:"payment_id" validate:"required"`
	PaymentMethod string `json:"payment_method"`
}

type PaymentStatusResult struct {
	OrderID          uuid.UUID                 `json:"order_id"`
	Status           domain.OrderStatus        `json:"status"`
	AlreadyFinalized bool                      `json:"already_finalized"`
	Items            []generalDomain.OrderItem `json:"items"`
}

type OrderService interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	ApplyPaymentStatus(ctx context.Context, orderID uuid.UUID, update *PaymentStatusUpdate) (*PaymentStatusResult, error)
}

type orderService struct {
	orderRepo  repository.OrderRepository
	outboxRepo worker.OutboxRepository
	pool       *pgxpool.Pool
	logger     *zap.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	outboxRepo worker.OutboxRepository,
	pool *pgxpool.Pool,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		pool:       pool,
		logger:     logger,
	}
}

func (s *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			s.logger.Warn("order not found", zap.String("order_id", orderID.String()))
			return nil, err
		}

		s.logger.Error("error getting order", zap.Error(err))
		return nil, fmt.Errorf("error getting order: %w", err)
	}

	return order, nil
}

// ApplyPaymentStatus finalizes an order from the payment outcome. A replayed
// update finds the order already finalized and reports that instead of
// finalizing twice.
func (s *orderService) ApplyPaymentStatus(ctx context.Context, orderID uuid.UUID, update *PaymentStatusUpdate) (*PaymentStatusResult, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	newStatus := domain.StatusPaymentFailed
	if update.PaymentStatus == "SUCCESS" {
		newStatus = domain.StatusConfirmed
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logging.Error(ctx, s.logger, "Error starting transaction", zap.Error(err))
		return nil, err
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)
		err := tx.Rollback(cleanupCtx)

		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logging.Warn(ctx, s.logger, "Error rolling back transaction", zap.Error(err))
		}
	}()

	err = s.orderRepo.UpdateStatusFromAwaiting(ctx, tx, orderID, newStatus)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyFinalized) {
			logging.Info(ctx, s.logger, "payment status replay, order already finalized",
				zap.String("order_id", orderID.String()),
				zap.String("current_status", string(order.Status)))

			// The items still go back: the caller may have finalized the
			// order on a previous delivery and lost its stock step, and
			// needs them to settle it now.
			return &PaymentStatusResult{
				OrderID:          orderID,
				Status:           order.Status,
				AlreadyFinalized: true,
				Items:            order.Items,
			}, nil
		}

		return nil, err
	}

	outboxEvent, err := s.buildPaymentOutcomeEvent(order, update, newStatus)
	if err != nil {
		return nil, err
	}

	if err := s.outboxRepo.SaveOutboxEvent(ctx, tx, outboxEvent); err != nil {
		return nil, fmt.Errorf("failed to save outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logging.Info(ctx, s.logger, "order finalized",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(newStatus)))

	return &PaymentStatusResult{
		OrderID: orderID,
		Status:  newStatus,
		Items:   order.Items,
	}, nil
}

func (s *orderService) buildPaymentOutcomeEvent(
	order *domain.Order,
	update *PaymentStatusUpdate,
	newStatus domain.OrderStatus,
) (*outboxDomain.OutboxEvent, error) {
	var eventType string
	var payload any

	if newStatus == domain.StatusConfirmed {
		eventType = "OrderConfirmed"
		payload = generalDomain.OrderConfirmedEvent{
			OrderID:       order.ID.String(),
			Username:      order.Username,
			PaymentID:     update.PaymentID,
			PaymentMethod: update.PaymentMethod,
			TotalAmount:   order.TotalAmount,
			ConfirmedAt:   time.Now(),
		}
	} else {
		eventType = "OrderPaymentFailed"
		payload = generalDomain.OrderPaymentFailedEvent{
			OrderID:   order.ID.String(),
			Username:  order.Username,
			PaymentID: update.PaymentID,
			FailedAt:  time.Now(),
		}
	}

	payloadBytes, err := json.Marshal(map[string]any{
		"event":   eventType,
		"payload": payload,
	})
	if err != nil {
		return nil, fmt.Errorf("event payload marshal error: %w", err)
	}

	return &outboxDomain.OutboxEvent{
		Topic:         "order_events",
		AggregateType: "Order",
		AggregateID:   order.ID.String(),
		EventType:     eventType,
		Payload:       payloadBytes,
	}, nil
}
