package accessor

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/remote"
)

type FlightReservation struct {
	Flight          int64       `json:"flight"`
	Seats           int         `json:"seats"`
	CustomerName    string      `json:"customer_name"`
	Amount          json.Number `json:"amount"`
	PaymentMethodID string      `json:"payment_method_id"`
}

type PropertyPaymentIntent struct {
	Property        int64       `json:"property"`
	Nights          int         `json:"nights"`
	CustomerName    string      `json:"customer_name"`
	Amount          json.Number `json:"amount"`
	PaymentMethodID string      `json:"payment_method_id"`
}

type IntentResponse struct {
	ClientSecret string `json:"client_secret"`
}

// CreateFlightReservation asks the backend to price the seats and open a
// payment intent.
func (a *API) CreateFlightReservation(ctx context.Context, in FlightReservation) (IntentResponse, error) {
	var out IntentResponse
	err := a.client.Do(ctx, http.MethodPost, "/payments/create-flight-reservation/", in, &out)
	return out, err
}

func (a *API) CreatePropertyPaymentIntent(ctx context.Context, in PropertyPaymentIntent) (IntentResponse, error) {
	var out IntentResponse
	err := a.client.Do(ctx, http.MethodPost, "/payments/create-payment-intent/", in, &out)
	return out, err
}

func (a *API) Tickets(ctx context.Context) ([]domain.Ticket, error) {
	return remote.Fetch[[]domain.Ticket](ctx, a.client, remote.Private(ctx, QueryTickets), "/payments/flights/")
}

func (a *API) Payments(ctx context.Context) ([]domain.Payment, error) {
	return remote.Fetch[[]domain.Payment](ctx, a.client, remote.Private(ctx, QueryPayments), "/payments/properties/")
}

// Invalidate drops the named private queries of the current session.
func (a *API) Invalidate(ctx context.Context, names ...string) error {
	return a.client.Invalidate(ctx, names...)
}
