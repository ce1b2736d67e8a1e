package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/otoor/marketplace-backend/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes order and notification events. Publishing is
// best-effort: failures are logged and never fail the calling operation.
type Producer struct {
	orderWriter        *kafka.Writer
	notificationWriter *kafka.Writer
	logger             *zap.Logger
}

// NewProducer creates a Producer for the given brokers and topics.
func NewProducer(brokers []string, orderTopic, notificationTopic string, logger *zap.Logger) *Producer {
	return &Producer{
		orderWriter: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    orderTopic,
			Balancer: &kafka.LeastBytes{},
		},
		notificationWriter: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    notificationTopic,
			Balancer: &kafka.LeastBytes{},
		},
		logger: logger,
	}
}

// SendOrderEvent publishes an order lifecycle event keyed by order id.
func (p *Producer) SendOrderEvent(ctx context.Context, event models.OrderEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal order event", zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.OrderID), 10)),
		Value: data,
	}
	if err := p.orderWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish order event",
			zap.Uint("order_id", event.OrderID),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
	}
}

// SendNotificationEvent publishes a notification event keyed by user id.
func (p *Producer) SendNotificationEvent(ctx context.Context, event models.NotificationEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal notification event", zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.UserID), 10)),
		Value: data,
	}
	if err := p.notificationWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish notification event",
			zap.Uint("user_id", event.UserID),
			zap.Error(err),
		)
	}
}

// Close flushes and closes the underlying writers.
func (p *Producer) Close() error {
	orderErr := p.orderWriter.Close()
	if err := p.notificationWriter.Close(); err != nil {
		return err
	}
	return orderErr
}
