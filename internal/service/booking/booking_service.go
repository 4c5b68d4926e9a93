package booking

import (
	"context"
	"strconv"
	"strings"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/remote"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const (
	FieldSeats        = "seats"
	FieldNights       = "nights"
	FieldCustomerName = "customer_name"

	minNameLength = 2
)

type BookingUseCase interface {
	LoadFlight(ctx context.Context, id int64) remote.Result[domain.Flight]
	LoadProperty(ctx context.Context, id int64) remote.Result[domain.Property]
	Prepare(ctx context.Context, kind domain.ResourceKind, id int64, rawQuantity, customerName string) (*Prepared, error)
}

// Catalog loads bookable resources. accessor.API implements it.
type Catalog interface {
	Flight(ctx context.Context, id int64) (domain.Flight, error)
	Property(ctx context.Context, id int64) (domain.Property, error)
}

type BookingService struct {
	catalog Catalog
	log     *zap.Logger
}

func NewBookingService(catalog Catalog, log *zap.Logger) *BookingService {
	return &BookingService{catalog: catalog, log: log}
}

// Prepared is a validated booking ready for checkout.
type Prepared struct {
	Request domain.BookingRequest
	Quote   Quote
}

func (s *BookingService) LoadFlight(ctx context.Context, id int64) remote.Result[domain.Flight] {
	flight, err := s.catalog.Flight(ctx, id)
	if err != nil {
		return remote.Failure[domain.Flight](err)
	}
	return remote.Success(flight)
}

func (s *BookingService) LoadProperty(ctx context.Context, id int64) remote.Result[domain.Property] {
	property, err := s.catalog.Property(ctx, id)
	if err != nil {
		return remote.Failure[domain.Property](err)
	}
	return remote.Success(property)
}

// Prepare validates the form, then loads the resource and prices the
// booking. Invalid input is rejected before any backend call.
func (s *BookingService) Prepare(ctx context.Context, kind domain.ResourceKind, id int64, rawQuantity, customerName string) (*Prepared, error) {
	if !kind.Valid() {
		return nil, errors.Newf("unknown resource kind %q", kind)
	}
	form := Form{Quantity: ParseQuantity(rawQuantity), CustomerName: strings.TrimSpace(customerName)}
	if fields := form.Validate(kind); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	resource, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s %d", kind, id)
	}

	quote := QuoteFor(resource, form.Quantity)
	s.log.Debug("booking priced",
		zap.String("kind", string(kind)),
		zap.Int64("resource_id", id),
		zap.Int("quantity", form.Quantity),
		zap.Int64("total_cents", quote.Total.Cents),
	)
	return &Prepared{
		Request: domain.BookingRequest{
			Kind:         kind,
			ResourceID:   id,
			Quantity:     form.Quantity,
			CustomerName: form.CustomerName,
			Amount:       quote.Total,
		},
		Quote: quote,
	}, nil
}

func (s *BookingService) load(ctx context.Context, kind domain.ResourceKind, id int64) (domain.Resource, error) {
	if kind == domain.KindFlight {
		return s.catalog.Flight(ctx, id)
	}
	return s.catalog.Property(ctx, id)
}

// ParseQuantity converts raw form input into a quantity. Empty, non-numeric
// and negative input all give 0.
func ParseQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

type Form struct {
	Quantity     int
	CustomerName string
}

// Validate returns nil for a submittable form, otherwise one message per
// offending field.
func (f Form) Validate(kind domain.ResourceKind) FieldErrors {
	fields := FieldErrors{}
	if f.Quantity < 1 {
		fields[QuantityField(kind)] = quantityMessage(kind)
	}
	if len([]rune(strings.TrimSpace(f.CustomerName))) < minNameLength {
		fields[FieldCustomerName] = "Name must be at least 2 characters"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// QuantityField is the form field holding the quantity for kind.
func QuantityField(kind domain.ResourceKind) string {
	if kind == domain.KindProperty {
		return FieldNights
	}
	return FieldSeats
}

func quantityMessage(kind domain.ResourceKind) string {
	if kind == domain.KindProperty {
		return "Must stay at least 1 night"
	}
	return "Must book at least 1 seat"
}

type Quote struct {
	UnitPrice domain.Money `json:"unit_price"`
	Quantity  int          `json:"quantity"`
	Total     domain.Money `json:"total"`
}

// QuoteFor prices quantity units of r. It is recomputed on every call.
func QuoteFor(r domain.Resource, quantity int) Quote {
	unit := domain.ToDisplayAmount(r.UnitPrice(), r.Scale())
	if quantity < 0 {
		quantity = 0
	}
	return Quote{UnitPrice: unit, Quantity: quantity, Total: unit.Times(quantity)}
}

var _ BookingUseCase = (*BookingService)(nil)
