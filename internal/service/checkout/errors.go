package checkout

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrSubmissionInFlight is returned while another submission for the same
// form is pending.
var ErrSubmissionInFlight = errors.New("checkout: submission already in flight")

// PaymentMethodError means the processor rejected the card during
// tokenization. No booking was requested.
type PaymentMethodError struct {
	Message string
	Err     error
}

func (e *PaymentMethodError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "payment method rejected"
}

func (e *PaymentMethodError) Unwrap() error { return e.Err }

// BookingRequestError means the backend refused to create the booking or
// payment intent. Status and Body are the upstream response, untouched.
type BookingRequestError struct {
	Status  int
	Body    string
	Message string
	Err     error
}

func (e *BookingRequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != 0 {
		return fmt.Sprintf("booking request failed with status %d", e.Status)
	}
	return "booking request failed"
}

func (e *BookingRequestError) Unwrap() error { return e.Err }

// PaymentConfirmationError means the charge was not confirmed. The intent
// may still exist server-side.
type PaymentConfirmationError struct {
	PaymentIntentID string
	Status          string
	Message         string
	Err             error
}

func (e *PaymentConfirmationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != "" {
		return fmt.Sprintf("payment not completed (status %s)", e.Status)
	}
	return "payment confirmation failed"
}

func (e *PaymentConfirmationError) Unwrap() error { return e.Err }
