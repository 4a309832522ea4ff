package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/client"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/repository"
	"go.uber.org/zap"
)

// ReservationReaper cancels orders that sat in AWAITING_PAYMENT past maxAge
// and returns their reserved stock. Without it an abandoned payment link
// holds inventory forever.
type ReservationReaper struct {
	orderRepo repository.OrderRepository
	inventory client.InventoryClient
	pool      *pgxpool.Pool
	logger    *zap.Logger
	interval  time.Duration
	maxAge    time.Duration
}

func NewReservationReaper(
	orderRepo repository.OrderRepository,
	inventory client.InventoryClient,
	pool *pgxpool.Pool,
	logger *zap.Logger,
	interval time.Duration,
	maxAge time.Duration,
) *ReservationReaper {
	return &ReservationReaper{
		orderRepo: orderRepo,
		inventory: inventory,
		pool:      pool,
		logger:    logger,
		interval:  interval,
		maxAge:    maxAge,
	}
}

func (w *ReservationReaper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logging.Info(ctx, w.logger, "reservation reaper started",
		zap.Duration("interval", w.interval),
		zap.Duration("max_age", w.maxAge))

	for {
		select {
		case <-ctx.Done():
			logging.Info(ctx, w.logger, "reservation reaper stopped")
			return
		case <-ticker.C:
			w.reapExpired(ctx)
		}
	}
}

func (w *ReservationReaper) reapExpired(ctx context.Context) {
	cutoff := time.Now().Add(-w.maxAge)

	orders, err := w.orderRepo.ListReapable(ctx, cutoff)
	if err != nil {
		logging.Error(ctx, w.logger, "failed to list expired orders", zap.Error(err))
		return
	}

	for _, order := range orders {
		if err := w.reapOne(ctx, order); err != nil {
			logging.Error(ctx, w.logger, "failed to reap expired order",
				zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}
}

func (w *ReservationReaper) reapOne(ctx context.Context, order *domain.Order) error {
	// Move out of AWAITING_PAYMENT first. Once the order left it a late
	// webhook cannot finalize it, so releasing afterwards cannot race a
	// confirm. CANCELLING rather than CANCELLED: the order stays reapable
	// until the release below has actually landed.
	if order.Status == domain.StatusAwaitingPayment {
		if err := w.markCancelling(ctx, order.ID); err != nil {
			if errors.Is(err, repository.ErrAlreadyFinalized) {
				// A webhook beat us to it.
				return nil
			}

			return err
		}
	}

	if err := w.inventory.Release(ctx, order.Items); err != nil {
		logging.Error(ctx, w.logger, "failed to release stock of expired order",
			zap.String("order_id", order.ID.String()), zap.Error(err))

		return err
	}

	if err := w.orderRepo.MarkCancelled(ctx, order.ID); err != nil {
		return err
	}

	logging.Info(ctx, w.logger, "expired order cancelled",
		zap.String("order_id", order.ID.String()),
		zap.Time("created_at", order.CreatedAt))

	return nil
}

func (w *ReservationReaper) markCancelling(ctx context.Context, orderID uuid.UUID) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)
		if err := tx.Rollback(cleanupCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logging.Warn(ctx, w.logger, "Error rolling back transaction", zap.Error(err))
		}
	}()

	if err := w.orderRepo.UpdateStatusFromAwaiting(ctx, tx, orderID, domain.StatusCancelling); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
