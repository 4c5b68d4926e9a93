package payment

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

// Card is the card input collected by Stripe.js in the browser, already
// exchanged for a single-use card token.
type Card struct {
	Token string `json:"token"`
}

type BillingDetails struct {
	Name string
}

type Intent struct {
	ID     string
	Status string
}

func (i *Intent) Succeeded() bool {
	return i != nil && i.Status == statusSucceeded
}

// Processor is the card processor boundary used by checkout.
type Processor interface {
	// CreatePaymentMethod tokenizes the card and returns the payment method id.
	CreatePaymentMethod(ctx context.Context, card Card, billing BillingDetails) (string, error)
	// ConfirmCardPayment finalizes the intent identified by clientSecret.
	ConfirmCardPayment(ctx context.Context, clientSecret, paymentMethodID string) (*Intent, error)
}

var ErrInvalidClientSecret = errors.New("payment: invalid client secret")

// IntentID extracts the PaymentIntent id from a client secret of the form
// "pi_123_secret_abc".
func IntentID(clientSecret string) (string, error) {
	id, _, found := strings.Cut(clientSecret, "_secret_")
	if !found || !strings.HasPrefix(id, "pi_") || len(id) == len("pi_") {
		return "", ErrInvalidClientSecret
	}
	return id, nil
}

// Error is a processor-side rejection. Message is safe to show to users.
type Error struct {
	Code        string
	DeclineCode string
	Message     string
	Err         error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
