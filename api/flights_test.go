package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/remote"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) LoadFlight(ctx context.Context, id int64) remote.Result[domain.Flight] {
	args := m.Called(ctx, id)
	return args.Get(0).(remote.Result[domain.Flight])
}

func (m *MockBookingUseCase) LoadProperty(ctx context.Context, id int64) remote.Result[domain.Property] {
	args := m.Called(ctx, id)
	return args.Get(0).(remote.Result[domain.Property])
}

func (m *MockBookingUseCase) Prepare(ctx context.Context, kind domain.ResourceKind, id int64, rawQuantity, customerName string) (*booking.Prepared, error) {
	args := m.Called(ctx, kind, id, rawQuantity, customerName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Prepared), args.Error(1)
}

type MockFlightLister struct {
	mock.Mock
}

func (m *MockFlightLister) Flights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

type registerer interface {
	Register(router *gin.RouterGroup)
}

func newRouter(h registerer, middleware ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("", middleware...)
	h.Register(g)
	return r
}

func serve(r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestFlightHandler_list(t *testing.T) {
	forms := &MockBookingUseCase{}
	flights := &MockFlightLister{}
	handler := NewFlightHandler(forms, flights)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights", nil)

	flights.On("Flights", c.Request.Context()).Return([]domain.Flight{
		{ID: 1, FlightNumber: "SU100", PricePerTicket: 15000},
	}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []domain.Flight
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "SU100", got[0].FlightNumber)
	flights.AssertExpectations(t)
}

func TestFlightHandler_listUpstreamFailure(t *testing.T) {
	flights := &MockFlightLister{}
	flights.On("Flights", mock.Anything).Return(nil, &remote.StatusError{Status: http.StatusServiceUnavailable})

	w := serve(newRouter(NewFlightHandler(&MockBookingUseCase{}, flights)), http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), decodeBody(t, w)["error"])
}

func TestFlightHandler_get(t *testing.T) {
	flight := domain.Flight{ID: 12, FlightNumber: "SU100", PricePerTicket: 15000}

	tests := []struct {
		name       string
		target     string
		result     remote.Result[domain.Flight]
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "prices the entered seats",
			target:     "/12?seats=2&customer_name=Ann",
			result:     remote.Success(flight),
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "success", body["state"])
				quote := body["quote"].(map[string]any)
				assert.Equal(t, "$150.00", quote["unit_price"].(map[string]any)["display"])
				assert.Equal(t, "$300.00", quote["total"].(map[string]any)["display"])
				assert.Equal(t, true, body["can_submit"])
				assert.Nil(t, body["fields"])
			},
		},
		{
			name:       "defaults to one seat",
			target:     "/12",
			result:     remote.Success(flight),
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				quote := body["quote"].(map[string]any)
				assert.Equal(t, float64(1), quote["quantity"])
				assert.Equal(t, "$150.00", quote["total"].(map[string]any)["display"])
				// the untouched name field blocks submit without showing an error
				assert.Equal(t, false, body["can_submit"])
				assert.Nil(t, body["fields"])
			},
		},
		{
			name:       "zero seats shows the field error",
			target:     "/12?seats=0&customer_name=Ann",
			result:     remote.Success(flight),
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "$0.00", body["quote"].(map[string]any)["total"].(map[string]any)["display"])
				assert.Equal(t, map[string]any{"seats": "Must book at least 1 seat"}, body["fields"])
				assert.Equal(t, false, body["can_submit"])
			},
		},
		{
			name:       "loading",
			target:     "/12",
			result:     remote.Loading[domain.Flight](),
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "loading", body["state"])
				assert.Equal(t, "Loading flight...", body["message"])
				assert.Nil(t, body["resource"])
			},
		},
		{
			name:       "not found",
			target:     "/12",
			result:     remote.Failure[domain.Flight](&remote.StatusError{Status: http.StatusNotFound}),
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "No flight found", body["message"])
			},
		},
		{
			name:       "upstream failure",
			target:     "/12",
			result:     remote.Failure[domain.Flight](errors.New("connection refused")),
			wantStatus: http.StatusBadGateway,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "error", body["state"])
				assert.Equal(t, "Error loading flight", body["message"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forms := &MockBookingUseCase{}
			forms.On("LoadFlight", mock.Anything, int64(12)).Return(tt.result)

			w := serve(newRouter(NewFlightHandler(forms, &MockFlightLister{})), http.MethodGet, tt.target, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			tt.check(t, decodeBody(t, w))
			forms.AssertExpectations(t)
		})
	}
}

func TestFlightHandler_getInvalidID(t *testing.T) {
	forms := &MockBookingUseCase{}

	w := serve(newRouter(NewFlightHandler(forms, &MockFlightLister{})), http.MethodGet, "/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid id", decodeBody(t, w)["error"])
	forms.AssertNotCalled(t, "LoadFlight", mock.Anything, mock.Anything)
}
