package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Domenick1991/travelbooking/config"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStripeServer(t *testing.T, mux *http.ServeMux) *StripeProcessor {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewStripeProcessor(config.StripeConfig{SecretKey: "sk_test_123", APIURL: srv.URL}, zap.NewNop())
}

func TestIntentID(t *testing.T) {
	id, err := IntentID("pi_3Nabc_secret_xyz")
	require.NoError(t, err)
	assert.Equal(t, "pi_3Nabc", id)

	for _, bad := range []string{"", "pi_123", "seti_1_secret_2", "pi__secret_x"} {
		_, err := IntentID(bad)
		assert.ErrorIs(t, err, ErrInvalidClientSecret, bad)
	}
}

func TestStripeProcessor_CreatePaymentMethod(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/payment_methods", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "card", r.PostForm.Get("type"))
		assert.Equal(t, "tok_visa", r.PostForm.Get("card[token]"))
		assert.Equal(t, "Ann Lee", r.PostForm.Get("billing_details[name]"))
		_, _ = w.Write([]byte(`{"id":"pm_123","object":"payment_method","type":"card"}`))
	})
	p := newStripeServer(t, mux)

	id, err := p.CreatePaymentMethod(context.Background(), Card{Token: "tok_visa"}, BillingDetails{Name: "Ann Lee"})

	require.NoError(t, err)
	assert.Equal(t, "pm_123", id)
}

func TestStripeProcessor_CreatePaymentMethod_Declined(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/payment_methods", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","decline_code":"insufficient_funds","message":"Your card has insufficient funds."}}`))
	})
	p := newStripeServer(t, mux)

	_, err := p.CreatePaymentMethod(context.Background(), Card{Token: "tok_chargeDeclined"}, BillingDetails{Name: "Ann"})

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "card_declined", perr.Code)
	assert.Equal(t, "insufficient_funds", perr.DeclineCode)
	assert.Equal(t, "Your card has insufficient funds.", err.Error())
	assert.Equal(t, int32(1), hits.Load())
}

func TestStripeProcessor_CreatePaymentMethod_MissingCard(t *testing.T) {
	p := NewStripeProcessor(config.StripeConfig{SecretKey: "sk_test_123", APIURL: "http://127.0.0.1:1"}, zap.NewNop())

	_, err := p.CreatePaymentMethod(context.Background(), Card{}, BillingDetails{Name: "Ann"})

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "missing_card", perr.Code)
}

func TestStripeProcessor_ConfirmCardPayment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/payment_intents/pi_1/confirm", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "pm_123", r.PostForm.Get("payment_method"))
		_, _ = w.Write([]byte(`{"id":"pi_1","object":"payment_intent","status":"succeeded"}`))
	})
	mux.HandleFunc("POST /v1/payment_intents/pi_2/confirm", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"pi_2","object":"payment_intent","status":"requires_action"}`))
	})
	p := newStripeServer(t, mux)

	intent, err := p.ConfirmCardPayment(context.Background(), "pi_1_secret_abc", "pm_123")
	require.NoError(t, err)
	assert.True(t, intent.Succeeded())

	intent, err = p.ConfirmCardPayment(context.Background(), "pi_2_secret_abc", "pm_123")
	require.NoError(t, err)
	assert.False(t, intent.Succeeded())
	assert.Equal(t, "requires_action", intent.Status)
}

func TestStripeProcessor_ConfirmCardPayment_BadSecret(t *testing.T) {
	p := NewStripeProcessor(config.StripeConfig{SecretKey: "sk_test_123", APIURL: "http://127.0.0.1:1"}, zap.NewNop())

	_, err := p.ConfirmCardPayment(context.Background(), "garbage", "pm_1")
	assert.ErrorIs(t, err, ErrInvalidClientSecret)
}
