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
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/client"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/repository"
	"go.uber.org/zap"
)

var ErrEmptyCart = errors.New("cart is empty")

type CheckoutRequest struct {
	Items   []generalDomain.OrderItem `json:"items"`
	Address domain.Address            `json:"address"`
}

type CheckoutResult struct {
	OrderID    uuid.UUID `json:"order_id"`
	PaymentURL string    `json:"payment_url"`
}

// CheckoutService runs the order placement saga: reserve stock, persist the
// order awaiting payment, obtain a payment link. A failure after the
// reservation releases it before the error is returned.
type CheckoutService interface {
	Checkout(ctx context.Context, username string, req *CheckoutRequest) (*CheckoutResult, error)
}

type checkoutService struct {
	orderRepo  repository.OrderRepository
	cartRepo   repository.CartRepository
	outboxRepo worker.OutboxRepository
	inventory  client.InventoryClient
	payments   client.PaymentClient
	pool       *pgxpool.Pool
	logger     *zap.Logger
}

func NewCheckoutService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	outboxRepo worker.OutboxRepository,
	inventory client.InventoryClient,
	payments client.PaymentClient,
	pool *pgxpool.Pool,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo:  orderRepo,
		cartRepo:   cartRepo,
		outboxRepo: outboxRepo,
		inventory:  inventory,
		payments:   payments,
		pool:       pool,
		logger:     logger,
	}
}

func (s *checkoutService) Checkout(ctx context.Context, username string, req *CheckoutRequest) (*CheckoutResult, error) {
	items := req.Items
	fromCart := false

	if len(items) == 0 {
		cartItems, err := s.cartRepo.Get(ctx, username)
		if err != nil {
			return nil, err
		}

		items = cartItems
		fromCart = true
	}

	if len(items) == 0 {
		logging.Warn(ctx, s.logger, "checkout with empty cart", zap.String("username", username))
		return nil, ErrEmptyCart
	}

	var total int64
	for _, item := range items {
		total += item.Price * int64(item.Quantity)
	}

	if err := s.inventory.Reserve(ctx, items); err != nil {
		logging.Warn(ctx, s.logger, "stock reservation failed",
			zap.String("username", username), zap.Error(err))

		return nil, err
	}

	order := &domain.Order{
		ID:          uuid.New(),
		Username:    username,
		Status:      domain.StatusAwaitingPayment,
		TotalAmount: total,
		Address:     req.Address,
		Items:       items,
	}

	if err := s.persistOrder(ctx, order); err != nil {
		s.compensate(ctx, order, items)
		return nil, err
	}

	link, err := s.payments.CreateLink(ctx, order.ID.String(), total, username)
	if err != nil {
		logging.Warn(ctx, s.logger, "payment link creation failed, compensating",
			zap.String("order_id", order.ID.String()), zap.Error(err))

		s.compensate(ctx, order, items)
		return nil, err
	}

	if err := s.orderRepo.SetPaymentID(ctx, order.ID, link.PaymentID); err != nil {
		logging.Warn(ctx, s.logger, "failed to record payment id",
			zap.String("order_id", order.ID.String()), zap.Error(err))
	}

	if fromCart {
		if err := s.cartRepo.Clear(ctx, username); err != nil {
			// The order is placed, a stale cart is annoying but not fatal.
			logging.Warn(ctx, s.logger, "failed to clear cart",
				zap.String("username", username), zap.Error(err))
		}
	}

	logging.Info(ctx, s.logger, "order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("username", username),
		zap.Int64("total_amount", total))

	return &CheckoutResult{
		OrderID:    order.ID,
		PaymentURL: link.PaymentURL,
	}, nil
}

func (s *checkoutService) persistOrder(ctx context.Context, order *domain.Order) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logging.Error(ctx, s.logger, "Error starting transaction", zap.Error(err))
		return err
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)
		err := tx.Rollback(cleanupCtx)

		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logging.Warn(ctx, s.logger, "Error rolling back transaction", zap.Error(err))
		}
	}()

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	event := generalDomain.OrderPlacedEvent{
		OrderID:     order.ID.String(),
		Username:    order.Username,
		TotalAmount: order.TotalAmount,
		Items:       order.Items,
		PlacedAt:    time.Now(),
	}

	payloadBytes, err := json.Marshal(map[string]any{
		"event":   "OrderPlaced",
		"payload": event,
	})
	if err != nil {
		return fmt.Errorf("event payload marshal error: %w", err)
	}

	outboxEvent := &outboxDomain.OutboxEvent{
		Topic:         "order_events",
		AggregateType: "Order",
		AggregateID:   order.ID.String(),
		EventType:     "OrderPlaced",
		Payload:       payloadBytes,
	}

	if err := s.outboxRepo.SaveOutboxEvent(ctx, tx, outboxEvent); err != nil {
		return fmt.Errorf("failed to save outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// compensate returns reserved units to stock and cancels the order if it was
// already persisted. Failures here are logged, not returned: the reaper picks
// up orders stuck in AWAITING_PAYMENT later.
func (s *checkoutService) compensate(ctx context.Context, order *domain.Order, items []generalDomain.OrderItem) {
	cleanupCtx := context.WithoutCancel(ctx)

	if err := s.inventory.Release(cleanupCtx, items); err != nil {
		logging.Error(cleanupCtx, s.logger, "compensating release failed",
			zap.String("order_id", order.ID.String()), zap.Error(err))
	}

	tx, err := s.pool.Begin(cleanupCtx)
	if err != nil {
		logging.Error(cleanupCtx, s.logger, "failed to begin cancel transaction", zap.Error(err))
		return
	}
	defer func() {
		if err := tx.Rollback(cleanupCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logging.Warn(cleanupCtx, s.logger, "Error rolling back transaction", zap.Error(err))
		}
	}()

	err = s.orderRepo.UpdateStatusFromAwaiting(cleanupCtx, tx, order.ID, domain.StatusCancelled)
	if err != nil {
		if !errors.Is(err, repository.ErrOrderNotFound) {
			logging.Error(cleanupCtx, s.logger, "failed to cancel order after compensation",
				zap.String("order_id", order.ID.String()), zap.Error(err))
		}
		return
	}

	if err := tx.Commit(cleanupCtx); err != nil {
		logging.Error(cleanupCtx, s.logger, "failed to commit cancel transaction", zap.Error(err))
	}
}
