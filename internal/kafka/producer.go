package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventCheckoutSucceeded = "checkout.succeeded"
	EventCheckoutFailed    = "checkout.failed"
)

// CheckoutEvent is published once per terminal checkout outcome.
type CheckoutEvent struct {
	Type            string    `json:"type"`
	AttemptID       string    `json:"attempt_id"`
	UserID          int64     `json:"user_id,omitempty"`
	Kind            string    `json:"kind"`
	ResourceID      int64     `json:"resource_id"`
	Quantity        int       `json:"quantity"`
	CustomerName    string    `json:"customer_name"`
	AmountCents     int64     `json:"amount_cents"`
	PaymentIntentID string    `json:"payment_intent_id,omitempty"`
	Step            string    `json:"step,omitempty"`
	Failure         string    `json:"failure,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
	log     *zap.Logger
}

func NewProducer(brokers []string, log *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
		log:     log,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal kafka payload")
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return errors.Wrapf(err, "write message to %s", topic)
	}

	p.log.Debug("published to kafka", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and reads its partition list.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return errors.Wrap(err, "connect to kafka")
	}
	defer conn.Close()

	if _, err := conn.ReadPartitions(); err != nil {
		return errors.Wrap(err, "read partitions")
	}
	return nil
}
