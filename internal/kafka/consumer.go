package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Consumer struct {
	reader *kafka.Reader
	log    *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// ConsumeCheckoutEvents decodes every message as a CheckoutEvent. Messages
// that do not decode are logged and skipped.
func (c *Consumer) ConsumeCheckoutEvents(ctx context.Context, handler func(context.Context, CheckoutEvent) error) error {
	return c.Consume(ctx, DecodeCheckout(c.log, handler))
}

// DecodeCheckout adapts a CheckoutEvent handler to raw messages.
func DecodeCheckout(log *zap.Logger, handler func(context.Context, CheckoutEvent) error) func(context.Context, kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		var event CheckoutEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Warn("skipping malformed checkout event",
				zap.String("key", string(msg.Key)),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			return nil
		}
		return handler(ctx, event)
	}
}
