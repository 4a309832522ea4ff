package utils

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"go.uber.org/zap"
)

const uniqueViolationCode = "23505"

// ProcessWithDeduplication records eventID in processed_events before invoking
// handler. A duplicate insert means the event was already handled, so the
// handler is skipped and nil is returned. Transient failures are retried up to
// three times.
func ProcessWithDeduplication(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger *zap.Logger,
	consumerGroup string,
	eventID string,
	handler func(ctx context.Context) error,
) error {
	if eventID == "" {
		logging.Warn(ctx, logger, "event without id, processing without dedup",
			zap.String("consumer_group", consumerGroup))

		return handler(ctx)
	}

	var lastErr error

	for attempt := 1; attempt <= 3; attempt++ {
		err := processOnce(ctx, pool, logger, consumerGroup, eventID, handler)
		if err == nil {
			return nil
		}

		lastErr = err
		logging.Warn(ctx, logger, "event processing failed, retrying",
			zap.String("event_id", eventID),
			zap.Int("attempt", attempt),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
		}
	}

	return lastErr
}

func processOnce(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger *zap.Logger,
	consumerGroup string,
	eventID string,
	handler func(ctx context.Context) error,
) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		rollbackCtx := context.WithoutCancel(ctx)
		_ = tx.Rollback(rollbackCtx)
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO processed_events (consumer_group, event_id) VALUES ($1, $2)`,
		consumerGroup, eventID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			logging.Info(ctx, logger, "event already processed, skipping",
				zap.String("event_id", eventID),
				zap.String("consumer_group", consumerGroup))

			return nil
		}

		return err
	}

	if err := handler(ctx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
