package domain

import (
	"time"

	"github.com/google/uuid"
)

type ResourceKind string

const (
	KindFlight   ResourceKind = "flight"
	KindProperty ResourceKind = "property"
)

func (k ResourceKind) Valid() bool {
	return k == KindFlight || k == KindProperty
}

// Resource is anything a traveler can book. Scale declares how UnitPrice is
// denominated.
type Resource interface {
	Kind() ResourceKind
	ResourceID() int64
	UnitPrice() int64
	Scale() UnitScale
}

// BookingRequest is built per checkout attempt and never stored.
type BookingRequest struct {
	Kind         ResourceKind
	ResourceID   int64
	Quantity     int
	CustomerName string
	Amount       Money
}

type CheckoutStage string

const (
	CheckoutStageStarted       CheckoutStage = "STARTED"
	CheckoutStageIntentCreated CheckoutStage = "INTENT_CREATED"
	CheckoutStageSucceeded     CheckoutStage = "SUCCEEDED"
	CheckoutStageFailed        CheckoutStage = "FAILED"
	CheckoutStageAbandoned     CheckoutStage = "ABANDONED"
)

// CheckoutAttempt is the ledger row for one run of the checkout sequence.
type CheckoutAttempt struct {
	ID              uuid.UUID     `json:"id"`
	SessionID       string        `json:"-"`
	UserID          int64         `json:"user_id"`
	Kind            ResourceKind  `json:"kind"`
	ResourceID      int64         `json:"resource_id"`
	Quantity        int           `json:"quantity"`
	CustomerName    string        `json:"customer_name"`
	AmountCents     int64         `json:"amount_cents"`
	Stage           CheckoutStage `json:"stage"`
	PaymentIntentID string        `json:"payment_intent_id,omitempty"`
	Failure         string        `json:"failure,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

var (
	_ Resource = Flight{}
	_ Resource = Property{}
)
