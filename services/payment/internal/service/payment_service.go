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
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	outboxDomain "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/outbox/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/outbox/worker"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/provider"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/repository"
	"go.uber.org/zap"
)

type CheckoutLink struct {
	PaymentID  string `json:"payment_id"`
	PaymentURL string `json:"payment_url"`
}

type PaymentService interface {
	CreateCheckout(ctx context.Context, orderID uuid.UUID, amount int64, username string) (*CheckoutLink, error)
	GetStatus(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	outboxRepo  worker.OutboxRepository
	gateway     provider.Provider
	pool        *pgxpool.Pool
	logger      *zap.Logger
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	outboxRepo worker.OutboxRepository,
	gateway provider.Provider,
	pool *pgxpool.Pool,
	logger *zap.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		gateway:     gateway,
		pool:        pool,
		logger:      logger,
	}
}

func (s *paymentService) CreateCheckout(ctx context.Context, orderID uuid.UUID, amount int64, username string) (*CheckoutLink, error) {
	link, err := s.gateway.CreatePaymentLink(ctx, &provider.CreateLinkRequest{
		OrderID:  orderID.String(),
		Amount:   amount,
		Username: username,
	})
	if err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		PaymentID:   link.ID,
		OrderID:     orderID,
		Status:      domain.PaymentPending,
		TotalAmount: amount,
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

	if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
		return nil, err
	}

	payloadBytes, err := json.Marshal(map[string]any{
		"event": "PaymentLinkCreated",
		"payload": map[string]any{
			"payment_id": link.ID,
			"order_id":   orderID.String(),
			"amount":     amount,
			"created_at": time.Now(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("event payload marshal error: %w", err)
	}

	outboxEvent := &outboxDomain.OutboxEvent{
		Topic:         "payment_events",
		AggregateType: "Payment",
		AggregateID:   link.ID,
		EventType:     "PaymentLinkCreated",
		Payload:       payloadBytes,
	}

	if err := s.outboxRepo.SaveOutboxEvent(ctx, tx, outboxEvent); err != nil {
		return nil, fmt.Errorf("failed to save outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logging.Info(ctx, s.logger, "payment link issued",
		zap.String("order_id", orderID.String()),
		zap.String("payment_id", link.ID))

	return &CheckoutLink{
		PaymentID:  link.ID,
		PaymentURL: link.ShortURL,
	}, nil
}

func (s *paymentService) GetStatus(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			s.logger.Warn("payment not found", zap.String("order_id", orderID.String()))
			return nil, err
		}

		s.logger.Error("error getting payment", zap.Error(err))
		return nil, fmt.Errorf("error getting payment status: %w", err)
	}

	return payment, nil
}
