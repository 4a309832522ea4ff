package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/kafka"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/notification/internal/service"
	"go.uber.org/zap"
)

type Consumer struct {
	service *service.NotificationService
	logger  *zap.Logger
}

func NewConsumer(service *service.NotificationService, logger *zap.Logger) *Consumer {
	return &Consumer{
		service: service,
		logger:  logger,
	}
}

func (c *Consumer) Start(ctx context.Context, brokers []string) {
	consumerGroup := kafka.NewConsumerGroup(
		brokers,
		"notification-service-group",
		[]string{"order_events"},
		c.processMessage,
		c.logger,
	)

	consumerGroup.Run(ctx)
}

func (c *Consumer) processMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	logging.Info(
		ctx,
		c.logger,
		"Processing message",
		zap.String("topic", msg.Topic),
	)

	type EventWrapper struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}

	var wrapper EventWrapper
	if err := json.Unmarshal(msg.Value, &wrapper); err != nil {
		logging.Error(ctx, c.logger, "Error unmarshalling wrapper", zap.Error(err))
		return err
	}

	eventID := headerValue(msg, "event_id")

	switch wrapper.Event {
	case "OrderPlaced":
		var event domain.OrderPlacedEvent
		if err := json.Unmarshal(wrapper.Payload, &event); err != nil {
			logging.Error(ctx, c.logger, "Error parsing order placed event", zap.Error(err))
			return nil
		}

		return c.service.HandleOrderPlaced(ctx, eventID, event)
	case "OrderConfirmed":
		var event domain.OrderConfirmedEvent
		if err := json.Unmarshal(wrapper.Payload, &event); err != nil {
			logging.Error(ctx, c.logger, "Error parsing order confirmed event", zap.Error(err))
			return nil
		}

		return c.service.HandleOrderConfirmed(ctx, eventID, event)
	case "OrderPaymentFailed":
		var event domain.OrderPaymentFailedEvent
		if err := json.Unmarshal(wrapper.Payload, &event); err != nil {
			logging.Error(ctx, c.logger, "Error parsing payment failed event", zap.Error(err))
			return nil
		}

		return c.service.HandleOrderPaymentFailed(ctx, eventID, event)
	default:
		logging.Info(ctx, c.logger, "Ignored event type", zap.String("event", wrapper.Event))
	}

	return nil
}

func headerValue(msg *sarama.ConsumerMessage, key string) string {
	for _, header := range msg.Headers {
		if string(header.Key) == key {
			return string(header.Value)
		}
	}

	return ""
}
