package worker

import (
	"context"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/outbox/domain"
	"go.uber.org/zap"
)

type OutboxRepository interface {
	SaveOutboxEvent(ctx context.Context, tx pgx.Tx, event *domain.OutboxEvent) error
	GetUnpublishedEvents(ctx context.Context, tx pgx.Tx, batchSize int) ([]*domain.OutboxEvent, error)
	MarkEventPublished(ctx context.Context, tx pgx.Tx, eventID int64) error
	MarkEventFailed(ctx context.Context, tx pgx.Tx, eventID int64, errMsg string) error
}

type Producer interface {
	SendMessage(ctx context.Context, topic string, key []byte, value []byte, headers []sarama.RecordHeader) error
}

type OutboxProcessor struct {
	pool      *pgxpool.Pool
	repo      OutboxRepository
	producer  Producer
	logger    *zap.Logger
	batchSize int
	interval  time.Duration
}

func NewOutboxProcessor(
	pool *pgxpool.Pool,
	repo OutboxRepository,
	producer Producer,
	logger *zap.Logger,
) *OutboxProcessor {
	return &OutboxProcessor{
		pool:      pool,
		repo:      repo,
		producer:  producer,
		logger:    logger,
		batchSize: 50,
		interval:  500 * time.Millisecond,
	}
}

// Start runs the relay loop until ctx is cancelled.
func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	logging.Info(ctx, p.logger, "outbox processor started")

	for {
		select {
		case <-ctx.Done():
			logging.Info(ctx, p.logger, "outbox processor stopped")
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				logging.Error(ctx, p.logger, "failed to process outbox batch", zap.Error(err))
			}
		}
	}
}

func (p *OutboxProcessor) processBatch(ctx context.Context) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		rollbackCtx := context.WithoutCancel(ctx)
		if rbErr := tx.Rollback(rollbackCtx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			logging.Error(ctx, p.logger, "failed to rollback outbox tx", zap.Error(rbErr))
		}
	}()

	events, err := p.repo.GetUnpublishedEvents(ctx, tx, p.batchSize)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return tx.Commit(ctx)
	}

	for _, event := range events {
		// event_id lets consumers deduplicate redeliveries.
		headers := []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(strconv.FormatInt(event.Id, 10))},
			{Key: []byte("event_type"), Value: []byte(event.EventType)},
			{Key: []byte("aggregate_type"), Value: []byte(event.AggregateType)},
		}

		err := p.producer.SendMessage(ctx, event.Topic, []byte(event.AggregateID), event.Payload, headers)
		if err != nil {
			logging.Error(ctx, p.logger, "failed to publish outbox event",
				zap.Int64("event_id", event.Id),
				zap.String("topic", event.Topic),
				zap.Error(err))

			if markErr := p.repo.MarkEventFailed(ctx, tx, event.Id, err.Error()); markErr != nil {
				return markErr
			}

			continue
		}

		if err := p.repo.MarkEventPublished(ctx, tx, event.Id); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
