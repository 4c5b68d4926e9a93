package booking

import (
	"context"
	"testing"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/remote"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Flight(ctx context.Context, id int64) (domain.Flight, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Flight), args.Error(1)
}

func (m *MockCatalog) Property(ctx context.Context, id int64) (domain.Property, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Property), args.Error(1)
}

func TestParseQuantity(t *testing.T) {
	tests := map[string]int{
		"":     0,
		"   ":  0,
		"abc":  0,
		"2.5":  0,
		"-3":   0,
		"0":    0,
		"1":    1,
		" 4 ":  4,
		"12":   12,
		"1e3":  0,
		"0x10": 0,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseQuantity(raw), "raw %q", raw)
	}
}

func TestForm_Validate(t *testing.T) {
	tests := []struct {
		name string
		kind domain.ResourceKind
		form Form
		want FieldErrors
	}{
		{name: "valid flight", kind: domain.KindFlight, form: Form{Quantity: 2, CustomerName: "Ann"}},
		{name: "valid property", kind: domain.KindProperty, form: Form{Quantity: 1, CustomerName: "Bo"}},
		{
			name: "zero seats",
			kind: domain.KindFlight,
			form: Form{Quantity: 0, CustomerName: "Ann"},
			want: FieldErrors{FieldSeats: "Must book at least 1 seat"},
		},
		{
			name: "zero nights and short name",
			kind: domain.KindProperty,
			form: Form{Quantity: 0, CustomerName: "A"},
			want: FieldErrors{
				FieldNights:       "Must stay at least 1 night",
				FieldCustomerName: "Name must be at least 2 characters",
			},
		},
		{
			name: "blank name",
			kind: domain.KindFlight,
			form: Form{Quantity: 1, CustomerName: "   "},
			want: FieldErrors{FieldCustomerName: "Name must be at least 2 characters"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.form.Validate(tt.kind))
		})
	}
}

func TestQuoteFor(t *testing.T) {
	flight := domain.Flight{ID: 1, PricePerTicket: 15000}
	q := QuoteFor(flight, 2)
	assert.Equal(t, "$150.00", q.UnitPrice.String())
	assert.Equal(t, "$300.00", q.Total.String())

	property := domain.Property{ID: 2, PricePerNight: 80}
	q = QuoteFor(property, 3)
	assert.Equal(t, "$80", q.UnitPrice.String())
	assert.Equal(t, "$240", q.Total.String())

	q = QuoteFor(property, ParseQuantity(""))
	assert.True(t, q.Total.IsZero())

	for qty := 1; qty <= 20; qty++ {
		assert.Equal(t, int64(15000*qty), QuoteFor(flight, qty).Total.Cents)
		assert.Equal(t, int64(8000*qty), QuoteFor(property, qty).Total.Cents)
	}
}

func TestBookingService_Prepare_Flight(t *testing.T) {
	catalog := &MockCatalog{}
	service := NewBookingService(catalog, zap.NewNop())
	ctx := context.Background()

	catalog.On("Flight", ctx, int64(12)).Return(domain.Flight{ID: 12, PricePerTicket: 15000}, nil).Once()

	prepared, err := service.Prepare(ctx, domain.KindFlight, 12, "2", "  Ann Lee ")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingRequest{
		Kind:         domain.KindFlight,
		ResourceID:   12,
		Quantity:     2,
		CustomerName: "Ann Lee",
		Amount:       domain.ToDisplayAmount(30000, domain.ScaleMinor),
	}, prepared.Request)
	assert.Equal(t, "$300.00", prepared.Quote.Total.String())
	catalog.AssertExpectations(t)
}

func TestBookingService_Prepare_Property(t *testing.T) {
	catalog := &MockCatalog{}
	service := NewBookingService(catalog, zap.NewNop())
	ctx := context.Background()

	catalog.On("Property", ctx, int64(5)).Return(domain.Property{ID: 5, PricePerNight: 80}, nil).Once()

	prepared, err := service.Prepare(ctx, domain.KindProperty, 5, "3", "Bo")

	require.NoError(t, err)
	assert.Equal(t, 3, prepared.Request.Quantity)
	assert.Equal(t, "$240", prepared.Request.Amount.String())
	catalog.AssertExpectations(t)
}

func TestBookingService_Prepare_ValidationSkipsBackend(t *testing.T) {
	catalog := &MockCatalog{}
	service := NewBookingService(catalog, zap.NewNop())

	tests := []struct {
		name     string
		quantity string
		customer string
		field    string
	}{
		{name: "empty quantity", quantity: "", customer: "Ann", field: FieldSeats},
		{name: "non numeric", quantity: "two", customer: "Ann", field: FieldSeats},
		{name: "short name", quantity: "1", customer: "A", field: FieldCustomerName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Prepare(context.Background(), domain.KindFlight, 1, tt.quantity, tt.customer)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
	catalog.AssertNotCalled(t, "Flight", mock.Anything, mock.Anything)
}

func TestBookingService_Prepare_LoadFailure(t *testing.T) {
	catalog := &MockCatalog{}
	service := NewBookingService(catalog, zap.NewNop())
	ctx := context.Background()

	catalog.On("Property", ctx, int64(9)).Return(domain.Property{}, remote.ErrNotFound).Once()

	_, err := service.Prepare(ctx, domain.KindProperty, 9, "1", "Ann")

	assert.True(t, errors.Is(err, remote.ErrNotFound))
}

func TestBookingService_LoadFlight(t *testing.T) {
	catalog := &MockCatalog{}
	service := NewBookingService(catalog, zap.NewNop())
	ctx := context.Background()

	catalog.On("Flight", ctx, int64(1)).Return(domain.Flight{ID: 1, FlightNumber: "BA1"}, nil).Once()
	catalog.On("Flight", ctx, int64(2)).Return(domain.Flight{}, errors.New("backend down")).Once()

	ok := service.LoadFlight(ctx, 1)
	assert.True(t, ok.IsSuccess())
	assert.Equal(t, "BA1", ok.Data.FlightNumber)

	failed := service.LoadFlight(ctx, 2)
	assert.True(t, failed.IsError())
	assert.Equal(t, "backend down", failed.Error)
}

func TestMessagesFor(t *testing.T) {
	assert.Equal(t, Messages{
		Loading: "Loading flight...",
		Failed:  "Error loading flight",
		Missing: "No flight found",
	}, MessagesFor(domain.KindFlight))
	assert.Equal(t, "No property found", MessagesFor(domain.KindProperty).Missing)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Fields: FieldErrors{FieldSeats: "Must book at least 1 seat", FieldCustomerName: "Name must be at least 2 characters"}}
	assert.Equal(t, "validation failed: customer_name: Name must be at least 2 characters; seats: Must book at least 1 seat", err.Error())
}
