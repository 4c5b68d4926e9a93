package payment

import (
	"context"

	"github.com/Domenick1991/travelbooking/config"
	"github.com/cockroachdb/errors"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"go.uber.org/zap"
)

const statusSucceeded = string(stripe.PaymentIntentStatusSucceeded)

// StripeProcessor implements Processor with the Stripe API. Network retries
// are disabled: a repeated confirmation must never be issued behind the
// caller's back.
type StripeProcessor struct {
	api *client.API
	log *zap.Logger
}

func NewStripeProcessor(cfg config.StripeConfig, log *zap.Logger) *StripeProcessor {
	backendCfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     log.Sugar(),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackend(stripe.ConnectBackend),
		Uploads: stripe.GetBackend(stripe.UploadsBackend),
	})
	return &StripeProcessor{api: api, log: log}
}

func (p *StripeProcessor) CreatePaymentMethod(ctx context.Context, card Card, billing BillingDetails) (string, error) {
	if card.Token == "" {
		return "", &Error{Code: "missing_card", Message: "Card details are required"}
	}
	params := &stripe.PaymentMethodParams{
		Type: stripe.String(string(stripe.PaymentMethodTypeCard)),
		Card: &stripe.PaymentMethodCardParams{Token: stripe.String(card.Token)},
		BillingDetails: &stripe.PaymentMethodBillingDetailsParams{
			Name: stripe.String(billing.Name),
		},
	}
	params.Context = ctx

	pm, err := p.api.PaymentMethods.New(params)
	if err != nil {
		return "", translate(err, "create payment method")
	}
	return pm.ID, nil
}

func (p *StripeProcessor) ConfirmCardPayment(ctx context.Context, clientSecret, paymentMethodID string) (*Intent, error) {
	id, err := IntentID(clientSecret)
	if err != nil {
		return nil, err
	}
	params := &stripe.PaymentIntentConfirmParams{PaymentMethod: stripe.String(paymentMethodID)}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.Confirm(id, params)
	if err != nil {
		return nil, translate(err, "confirm payment intent")
	}
	p.log.Debug("payment intent confirmed", zap.String("payment_intent", pi.ID), zap.String("status", string(pi.Status)))
	return &Intent{ID: pi.ID, Status: string(pi.Status)}, nil
}

func translate(err error, op string) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		msg := se.Msg
		if msg == "" {
			msg = "Your card could not be processed"
		}
		return &Error{Code: string(se.Code), DeclineCode: string(se.DeclineCode), Message: msg, Err: err}
	}
	return errors.Wrap(err, op)
}

var _ Processor = (*StripeProcessor)(nil)
