package service

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/domain"
	outboxUtils "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/outbox/utils"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/notification/internal/infrastructure/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const consumerGroup = "notification-service-group"

// NotificationService turns order lifecycle events into customer emails.
// The username on each event is the customer's login email.
type NotificationService struct {
	emailSender email.Sender
	logger      *zap.Logger
	pool        *pgxpool.Pool
	tracer      trace.Tracer
}

func NewNotificationService(emailSender email.Sender, logger *zap.Logger, pool *pgxpool.Pool) *NotificationService {
	return &NotificationService{
		emailSender: emailSender,
		logger:      logger,
		pool:        pool,
		tracer:      otel.Tracer("notification-service"),
	}
}

func (s *NotificationService) HandleOrderPlaced(ctx context.Context, eventID string, event domain.OrderPlacedEvent) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleOrderPlaced")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("order_id", event.OrderID),
	)

	return outboxUtils.ProcessWithDeduplication(ctx, s.pool, s.logger, consumerGroup, eventID, func(ctx context.Context) error {
		return s.emailSender.SendOrderPlacedEmail(ctx, event.Username, event)
	})
}

func (s *NotificationService) HandleOrderConfirmed(ctx context.Context, eventID string, event domain.OrderConfirmedEvent) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleOrderConfirmed")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("order_id", event.OrderID),
	)

	return outboxUtils.ProcessWithDeduplication(ctx, s.pool, s.logger, consumerGroup, eventID, func(ctx context.Context) error {
		return s.emailSender.SendOrderConfirmedEmail(ctx, event.Username, event)
	})
}

func (s *NotificationService) HandleOrderPaymentFailed(ctx context.Context, eventID string, event domain.OrderPaymentFailedEvent) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleOrderPaymentFailed")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("order_id", event.OrderID),
	)

	return outboxUtils.ProcessWithDeduplication(ctx, s.pool, s.logger, consumerGroup, eventID, func(ctx context.Context) error {
		return s.emailSender.SendPaymentFailedEmail(ctx, event.Username, event)
	})
}
