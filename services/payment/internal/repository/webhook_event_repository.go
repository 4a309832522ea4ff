package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// WebhookEventRepository remembers which provider event ids were already
// handled, making at-least-once webhook delivery effectively exactly-once.
type WebhookEventRepository interface {
	// MarkProcessed records eventID inside the reconciliation transaction
	// and reports whether it had been recorded before. Rolling the
	// transaction back un-marks the event, so a failed reconciliation can
	// be redelivered.
	MarkProcessed(ctx context.Context, tx pgx.Tx, eventID string) (bool, error)
}

type webhookEventRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewWebhookEventRepository(pool *pgxpool.Pool, logger *zap.Logger) WebhookEventRepository {
	return &webhookEventRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("payment/webhook_event_repository"),
	}
}

func (r *webhookEventRepo) MarkProcessed(ctx context.Context, tx pgx.Tx, eventID string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "WebhookEventRepository.MarkProcessed")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
	)

	query := `
		INSERT INTO processed_webhook_events (event_id)
		VALUES ($1);
	`

	if _, err := tx.Exec(ctx, query, eventID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			logging.Info(ctx, r.logger, "webhook event already processed",
				zap.String("event_id", eventID))

			return true, nil
		}

		span.RecordError(err)

		return false, fmt.Errorf("error recording webhook event: %w", err)
	}

	return false, nil
}
