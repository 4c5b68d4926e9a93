package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/internal/accessor"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/payment"
	"github.com/Domenick1991/travelbooking/internal/remote"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	FieldCard = "card"

	defaultFailure = "Something went wrong with your payment"
	releaseTimeout = 2 * time.Second
)

type Forms interface {
	Prepare(ctx context.Context, kind domain.ResourceKind, id int64, rawQuantity, customerName string) (*booking.Prepared, error)
}

// Bookings opens payment intents on the backend. accessor.API implements it.
type Bookings interface {
	CreateFlightReservation(ctx context.Context, in accessor.FlightReservation) (accessor.IntentResponse, error)
	CreatePropertyPaymentIntent(ctx context.Context, in accessor.PropertyPaymentIntent) (accessor.IntentResponse, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context, names ...string) error
}

// Locker holds the pending flag of a checkout form. The flag is owned by
// token: a release with another token leaves it in place.
type Locker interface {
	AcquireCheckoutLock(ctx context.Context, form, token string, ttl time.Duration) (bool, error)
	ReleaseCheckoutLock(ctx context.Context, form, token string) error
}

type Ledger interface {
	Create(ctx context.Context, attempt *domain.CheckoutAttempt) error
	UpdateStage(ctx context.Context, id uuid.UUID, stage domain.CheckoutStage, paymentIntentID, failure string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

type Submission struct {
	Kind         domain.ResourceKind
	ResourceID   int64
	Quantity     string
	CustomerName string
	Card         payment.Card
}

type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"`
}

// Outcome is what the page shows after a terminal result. Redirect is set
// only on success.
type Outcome struct {
	Succeeded       bool          `json:"succeeded"`
	Notification    Notification  `json:"notification"`
	Redirect        string        `json:"redirect,omitempty"`
	FailedStep      Step          `json:"failed_step,omitempty"`
	PaymentIntentID string        `json:"payment_intent_id,omitempty"`
	AttemptID       uuid.UUID     `json:"attempt_id"`
	Quote           booking.Quote `json:"quote"`
}

type Sequencer struct {
	forms     Forms
	processor payment.Processor
	bookings  Bookings
	queries   Invalidator
	locks     Locker
	ledger    Ledger
	events    Producer
	topic     string
	lockTTL   time.Duration
	log       *zap.Logger
	now       func() time.Time
}

type Option func(*Sequencer)

func WithLedger(l Ledger) Option {
	return func(s *Sequencer) { s.ledger = l }
}

// WithEvents publishes terminal outcomes to topic.
func WithEvents(p Producer, topic string) Option {
	return func(s *Sequencer) {
		s.events = p
		s.topic = topic
	}
}

func WithLockTTL(ttl time.Duration) Option {
	return func(s *Sequencer) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Sequencer) { s.log = l }
}

func NewSequencer(forms Forms, processor payment.Processor, bookings Bookings, queries Invalidator, locks Locker, opts ...Option) *Sequencer {
	s := &Sequencer{
		forms:     forms,
		processor: processor,
		bookings:  bookings,
		queries:   queries,
		locks:     locks,
		lockTTL:   2 * time.Minute,
		log:       zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs tokenize, create intent and confirm in order and stops at the
// first failure. A failed step yields both an Outcome carrying the user
// notification and the typed step error. Validation errors and
// ErrSubmissionInFlight come back without an Outcome.
func (s *Sequencer) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	if !sub.Kind.Valid() {
		return nil, errors.Newf("unknown resource kind %q", sub.Kind)
	}
	if strings.TrimSpace(sub.Card.Token) == "" {
		return nil, missingCard(sub)
	}

	prepared, err := s.forms.Prepare(ctx, sub.Kind, sub.ResourceID, sub.Quantity, sub.CustomerName)
	if err != nil {
		return nil, err
	}
	req := prepared.Request

	attemptID := uuid.New()
	form := formKey(ctx, req)
	acquired, err := s.locks.AcquireCheckoutLock(ctx, form, attemptID.String(), s.lockTTL)
	if err != nil {
		return nil, errors.Wrap(err, "acquire checkout lock")
	}
	if !acquired {
		return nil, ErrSubmissionInFlight
	}
	defer s.release(ctx, form, attemptID.String())

	attempt := s.begin(ctx, attemptID, req)
	log := s.log.With(
		zap.String("attempt_id", attempt.ID.String()),
		zap.String("kind", string(req.Kind)),
		zap.Int64("resource_id", req.ResourceID),
	)

	pm := s.tokenize(ctx, sub.Card, req)
	if pm.Failed() {
		return s.fail(ctx, log, attempt, prepared, pm.Step, "", pm.Err)
	}

	secret := s.createIntent(ctx, req, pm.Value)
	if secret.Failed() {
		return s.fail(ctx, log, attempt, prepared, secret.Step, "", secret.Err)
	}
	intentID, err := payment.IntentID(secret.Value)
	if err != nil {
		return s.fail(ctx, log, attempt, prepared, StepCreateIntent, "",
			&BookingRequestError{Message: "The booking service returned a payment that cannot be confirmed", Err: err})
	}
	s.stage(ctx, attempt, domain.CheckoutStageIntentCreated, intentID, "")

	confirmed := s.confirm(ctx, secret.Value, intentID, pm.Value)
	if confirmed.Failed() {
		return s.fail(ctx, log, attempt, prepared, confirmed.Step, intentID, confirmed.Err)
	}

	return s.succeed(ctx, log, attempt, prepared, confirmed.Value.ID), nil
}

func (s *Sequencer) tokenize(ctx context.Context, card payment.Card, req domain.BookingRequest) StepResult[string] {
	id, err := s.processor.CreatePaymentMethod(ctx, card, payment.BillingDetails{Name: req.CustomerName})
	if err != nil {
		return failed[string](StepTokenize, &PaymentMethodError{Message: processorMessage(err), Err: err})
	}
	return ok(StepTokenize, id)
}

// createIntent is never retried: a repeated request could open a second
// charge.
func (s *Sequencer) createIntent(ctx context.Context, req domain.BookingRequest, paymentMethodID string) StepResult[string] {
	var (
		resp accessor.IntentResponse
		err  error
	)
	switch req.Kind {
	case domain.KindFlight:
		resp, err = s.bookings.CreateFlightReservation(ctx, accessor.FlightReservation{
			Flight:          req.ResourceID,
			Seats:           req.Quantity,
			CustomerName:    req.CustomerName,
			Amount:          req.Amount.Major(),
			PaymentMethodID: paymentMethodID,
		})
	case domain.KindProperty:
		resp, err = s.bookings.CreatePropertyPaymentIntent(ctx, accessor.PropertyPaymentIntent{
			Property:        req.ResourceID,
			Nights:          req.Quantity,
			CustomerName:    req.CustomerName,
			Amount:          req.Amount.Major(),
			PaymentMethodID: paymentMethodID,
		})
	}
	if err != nil {
		return failed[string](StepCreateIntent, bookingRequestError(err))
	}
	if resp.ClientSecret == "" {
		return failed[string](StepCreateIntent, &BookingRequestError{Message: "The booking service did not return a payment to confirm"})
	}
	return ok(StepCreateIntent, resp.ClientSecret)
}

func (s *Sequencer) confirm(ctx context.Context, clientSecret, intentID, paymentMethodID string) StepResult[*payment.Intent] {
	intent, err := s.processor.ConfirmCardPayment(ctx, clientSecret, paymentMethodID)
	if err != nil {
		return failed[*payment.Intent](StepConfirm, &PaymentConfirmationError{
			PaymentIntentID: intentID,
			Message:         processorMessage(err),
			Err:             err,
		})
	}
	if intent == nil {
		return failed[*payment.Intent](StepConfirm, &PaymentConfirmationError{PaymentIntentID: intentID})
	}
	if !intent.Succeeded() {
		return failed[*payment.Intent](StepConfirm, &PaymentConfirmationError{PaymentIntentID: intent.ID, Status: intent.Status})
	}
	return ok(StepConfirm, intent)
}

func (s *Sequencer) succeed(ctx context.Context, log *zap.Logger, attempt *domain.CheckoutAttempt, prepared *booking.Prepared, intentID string) *Outcome {
	s.stage(ctx, attempt, domain.CheckoutStageSucceeded, intentID, "")

	if err := s.queries.Invalidate(ctx, accessor.QueryTickets, accessor.QueryPayments); err != nil {
		log.Warn("booking listings not invalidated", zap.Error(err))
	}
	s.publish(ctx, log, kafka.EventCheckoutSucceeded, attempt, "", "")

	log.Info("checkout succeeded", zap.String("payment_intent", intentID))
	return &Outcome{
		Succeeded: true,
		Notification: Notification{
			Title:       "Payment Successful",
			Description: "Your booking has been confirmed!",
		},
		Redirect:        "/",
		PaymentIntentID: intentID,
		AttemptID:       attempt.ID,
		Quote:           prepared.Quote,
	}
}

func (s *Sequencer) fail(ctx context.Context, log *zap.Logger, attempt *domain.CheckoutAttempt, prepared *booking.Prepared, step Step, intentID string, err error) (*Outcome, error) {
	s.stage(ctx, attempt, domain.CheckoutStageFailed, intentID, err.Error())
	s.publish(ctx, log, kafka.EventCheckoutFailed, attempt, step, err.Error())

	log.Warn("checkout failed", zap.String("step", string(step)), zap.String("payment_intent", intentID), zap.Error(err))

	return &Outcome{
		Notification: Notification{
			Title:       "Payment Failed",
			Description: notificationText(err),
			Variant:     "destructive",
		},
		FailedStep:      step,
		PaymentIntentID: intentID,
		AttemptID:       attempt.ID,
		Quote:           prepared.Quote,
	}, err
}

func (s *Sequencer) begin(ctx context.Context, attemptID uuid.UUID, req domain.BookingRequest) *domain.CheckoutAttempt {
	id := remote.IdentityFrom(ctx)
	now := s.now()
	attempt := &domain.CheckoutAttempt{
		ID:           attemptID,
		SessionID:    id.SessionID,
		UserID:       id.UserID,
		Kind:         req.Kind,
		ResourceID:   req.ResourceID,
		Quantity:     req.Quantity,
		CustomerName: req.CustomerName,
		AmountCents:  req.Amount.Cents,
		Stage:        domain.CheckoutStageStarted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if s.ledger != nil {
		if err := s.ledger.Create(ctx, attempt); err != nil {
			s.log.Warn("checkout attempt not recorded", zap.String("attempt_id", attempt.ID.String()), zap.Error(err))
		}
	}
	return attempt
}

func (s *Sequencer) stage(ctx context.Context, attempt *domain.CheckoutAttempt, stage domain.CheckoutStage, intentID, failure string) {
	attempt.Stage = stage
	attempt.PaymentIntentID = intentID
	attempt.Failure = failure
	attempt.UpdatedAt = s.now()
	if s.ledger == nil {
		return
	}
	if err := s.ledger.UpdateStage(context.WithoutCancel(ctx), attempt.ID, stage, intentID, failure); err != nil {
		s.log.Warn("checkout stage not recorded",
			zap.String("attempt_id", attempt.ID.String()),
			zap.String("stage", string(stage)),
			zap.Error(err),
		)
	}
}

func (s *Sequencer) publish(ctx context.Context, log *zap.Logger, eventType string, attempt *domain.CheckoutAttempt, step Step, failure string) {
	if s.events == nil {
		return
	}
	event := kafka.CheckoutEvent{
		Type:            eventType,
		AttemptID:       attempt.ID.String(),
		UserID:          attempt.UserID,
		Kind:            string(attempt.Kind),
		ResourceID:      attempt.ResourceID,
		Quantity:        attempt.Quantity,
		CustomerName:    attempt.CustomerName,
		AmountCents:     attempt.AmountCents,
		PaymentIntentID: attempt.PaymentIntentID,
		Step:            string(step),
		Failure:         failure,
		OccurredAt:      s.now().UTC(),
	}
	if err := s.events.Publish(context.WithoutCancel(ctx), s.topic, event.AttemptID, event); err != nil {
		log.Warn("checkout event not published", zap.String("type", eventType), zap.Error(err))
	}
}

// release clears this attempt's pending flag even when the caller has gone
// away.
func (s *Sequencer) release(ctx context.Context, form, token string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := s.locks.ReleaseCheckoutLock(releaseCtx, form, token); err != nil {
		s.log.Error("checkout lock not released", zap.String("form", form), zap.Error(err))
	}
}

// formKey identifies one checkout form instance: the session, the resource
// kind and the resource id.
func formKey(ctx context.Context, req domain.BookingRequest) string {
	session := remote.IdentityFrom(ctx).SessionID
	if session == "" {
		session = "anonymous"
	}
	return fmt.Sprintf("%s:%s:%d", session, req.Kind, req.ResourceID)
}

func missingCard(sub Submission) error {
	fields := booking.Form{
		Quantity:     booking.ParseQuantity(sub.Quantity),
		CustomerName: sub.CustomerName,
	}.Validate(sub.Kind)
	if fields == nil {
		fields = booking.FieldErrors{}
	}
	fields[FieldCard] = "Card details are required"
	return &booking.ValidationError{Fields: fields}
}

// notificationText is the message shown to the user for a failed step.
func notificationText(err error) string {
	var msg string
	switch e := err.(type) {
	case *PaymentMethodError:
		msg = e.Message
	case *BookingRequestError:
		msg = e.Message
	case *PaymentConfirmationError:
		msg = e.Message
		if msg == "" && e.Status != "" {
			msg = e.Error()
		}
	}
	if msg == "" {
		return defaultFailure
	}
	return msg
}

func processorMessage(err error) string {
	var pe *payment.Error
	if errors.As(err, &pe) {
		return pe.Message
	}
	return ""
}

func bookingRequestError(err error) *BookingRequestError {
	var se *remote.StatusError
	if errors.As(err, &se) {
		return &BookingRequestError{Status: se.Status, Body: se.Body, Message: se.Message(), Err: err}
	}
	return &BookingRequestError{Err: err}
}
