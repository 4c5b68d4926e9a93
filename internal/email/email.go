package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"go.uber.org/zap"
)

type Message struct {
	Subject string
	Body    string
}

// Sender delivers checkout receipts. Delivery is a structured log line until
// a mail provider is configured.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.CheckoutEvent) error {
	msg := Receipt(event)
	s.log.Info("send receipt",
		zap.Int64("user_id", event.UserID),
		zap.String("attempt_id", event.AttemptID),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

// Receipt renders the confirmation sent after a successful checkout.
func Receipt(event kafka.CheckoutEvent) Message {
	unit := "seat"
	if domain.ResourceKind(event.Kind) == domain.KindProperty {
		unit = "night"
	}
	if event.Quantity != 1 {
		unit += "s"
	}
	total := domain.ToDisplayAmount(event.AmountCents, domain.ScaleMinor)
	return Message{
		Subject: fmt.Sprintf("Your %s booking is confirmed", event.Kind),
		Body: fmt.Sprintf("Hi %s, your booking of %d %s for %s #%d is confirmed. Total charged: %s. Payment reference: %s.",
			event.CustomerName, event.Quantity, unit, event.Kind, event.ResourceID, total, event.PaymentIntentID),
	}
}
