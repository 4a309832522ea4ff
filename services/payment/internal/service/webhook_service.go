package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/client"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/provider"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

const paidEventType = "payment_link.paid"

// WebhookService reconciles provider webhook deliveries with the order and
// stock state. Returning nil acknowledges the delivery; any error tells the
// transport to ask for a redelivery.
type WebhookService interface {
	HandleWebhook(ctx context.Context, body []byte, signature, eventID string) error
}

type webhookService struct {
	gateway     provider.Provider
	paymentRepo repository.PaymentRepository
	eventRepo   repository.WebhookEventRepository
	orders      client.OrderClient
	inventory   client.InventoryClient
	pool        *pgxpool.Pool
	logger      *zap.Logger
}

func NewWebhookService(
	gateway provider.Provider,
	paymentRepo repository.PaymentRepository,
	eventRepo repository.WebhookEventRepository,
	orders client.OrderClient,
	inventory client.InventoryClient,
	pool *pgxpool.Pool,
	logger *zap.Logger,
) WebhookService {
	return &webhookService{
		gateway:     gateway,
		paymentRepo: paymentRepo,
		eventRepo:   eventRepo,
		orders:      orders,
		inventory:   inventory,
		pool:        pool,
		logger:      logger,
	}
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		PaymentLink struct {
			Entity struct {
				ID          string `json:"id"`
				Status      string `json:"status"`
				ReferenceID string `json:"reference_id"`
				Amount      int64  `json:"amount"`
			} `json:"entity"`
		} `json:"payment_link"`
		Payment struct {
			Entity struct {
				ID     string `json:"id"`
				Method string `json:"method"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

func (s *webhookService) HandleWebhook(ctx context.Context, body []byte, signature, eventID string) error {
	// Authenticity first. A tampered payload must not touch anything,
	// including the processed-events table.
	if !s.gateway.VerifyWebhookSignature(body, signature) {
		logging.Warn(ctx, s.logger, "webhook signature verification failed",
			zap.String("event_id", eventID))

		return ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		logging.Warn(ctx, s.logger, "failed to parse webhook body", zap.Error(err))

		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	if event.Event != paidEventType {
		logging.Info(ctx, s.logger, "ignoring webhook event",
			zap.String("event", event.Event),
			zap.String("event_id", eventID))

		return nil
	}

	linkEntity := event.Payload.PaymentLink.Entity
	if linkEntity.ID == "" {
		return fmt.Errorf("%w: missing payment_link entity id", ErrMalformedEvent)
	}

	orderID, err := uuid.Parse(linkEntity.ReferenceID)
	if err != nil {
		return fmt.Errorf("%w: bad reference_id %q", ErrMalformedEvent, linkEntity.ReferenceID)
	}

	outcome := domain.ParseLinkOutcome(linkEntity.Status)

	method := event.Payload.Payment.Entity.Method
	if method == "" && event.Payload.Payment.Entity.ID != "" {
		// Best effort. The verdict stands even if the method lookup fails.
		if fetched, err := s.gateway.FetchPaymentMethod(ctx, event.Payload.Payment.Entity.ID); err == nil {
			method = fetched
		}
	}

	return s.reconcile(ctx, eventID, linkEntity.ID, orderID, outcome, method, linkEntity.Amount/100)
}

// reconcile runs the dedup mark, the payment write and the collaborator
// calls under one transaction. A failure rolls the dedup mark back, so the
// provider's redelivery gets a clean retry.
func (s *webhookService) reconcile(
	ctx context.Context,
	eventID string,
	paymentID string,
	orderID uuid.UUID,
	outcome domain.LinkOutcome,
	method string,
	amount int64,
) error {
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

	if eventID != "" {
		already, err := s.eventRepo.MarkProcessed(ctx, tx, eventID)
		if err != nil {
			return err
		}

		if already {
			logging.Info(ctx, s.logger, "duplicate webhook delivery, skipping",
				zap.String("event_id", eventID),
				zap.String("payment_id", paymentID))

			return nil
		}
	} else {
		logging.Warn(ctx, s.logger, "webhook delivery without event id, processing without dedup",
			zap.String("payment_id", paymentID))
	}

	paymentStatus := domain.PaymentFailed
	if outcome == domain.LinkOutcomePaid {
		paymentStatus = domain.PaymentSuccess
	}

	stockSettled, err := s.paymentRepo.ApplyOutcome(ctx, tx, paymentID, orderID, paymentStatus, method, amount)
	if err != nil {
		return err
	}

	result, err := s.orders.ApplyPaymentStatus(ctx, orderID.String(), string(paymentStatus), paymentID, method)
	if err != nil {
		logging.Error(ctx, s.logger, "failed to update order from webhook",
			zap.String("order_id", orderID.String()), zap.Error(err))

		return err
	}

	if result.AlreadyFinalized {
		logging.Info(ctx, s.logger, "order already finalized",
			zap.String("order_id", orderID.String()),
			zap.String("order_status", result.Status))
	}

	// The stock step keys off the payment row, not the order-status guard.
	// A redelivery after a partial failure finds the order finalized but the
	// stock unsettled and picks the step back up; the event-id dedup and the
	// settled mark prevent double-apply. The branch follows the order's
	// terminal status so a replay settles consistently with it.
	if !stockSettled {
		if result.Status == client.OrderStatusConfirmed {
			err = s.inventory.Confirm(ctx, result.Items)
		} else {
			err = s.inventory.Release(ctx, result.Items)
		}
		if err != nil {
			logging.Error(ctx, s.logger, "failed to finalize stock from webhook",
				zap.String("order_id", orderID.String()),
				zap.String("outcome", outcome.String()),
				zap.Error(err))

			return err
		}

		if err := s.paymentRepo.MarkStockSettled(ctx, tx, paymentID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reconciliation: %w", err)
	}

	logging.Info(ctx, s.logger, "webhook reconciled",
		zap.String("order_id", orderID.String()),
		zap.String("payment_id", paymentID),
		zap.String("outcome", outcome.String()))

	return nil
}
