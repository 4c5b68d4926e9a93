package accessor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/remote"
	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memStore) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *memStore) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

const flightJSON = `{
	"id": 12,
	"flight_number": "BA117",
	"airline": {"id": 1, "name": "British Airways", "IATA_code": "BA"},
	"departure_airport": {"id": 3, "code": "LHR", "name": "Heathrow", "city": "London", "country": "UK"},
	"arrival_airport": {"id": 4, "code": "JFK", "name": "Kennedy", "city": "New York", "country": "US"},
	"departure_time": "2025-03-01T10:00:00Z",
	"arrival_time": "2025-03-01T18:00:00Z",
	"duration_minutes": 480,
	"price_per_ticket": 15000
}`

// brokenStore serves reads but cannot drop keys.
type brokenStore struct{ memStore }

func (b *brokenStore) DeletePrefix(context.Context, string) (int, error) {
	return 0, errors.New("redis down")
}

func newAPI(t *testing.T, mux *http.ServeMux) *API {
	t.Helper()
	return newAPIWithStore(t, mux, &memStore{data: map[string][]byte{}})
}

func newAPIWithStore(t *testing.T, mux *http.ServeMux, store remote.Store) *API {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	client := remote.New(srv.URL,
		remote.WithStore(store),
		remote.WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	)
	return New(client)
}

func TestAPI_Flight(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /flights/12/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(flightJSON))
	})
	api := newAPI(t, mux)

	flight, err := api.Flight(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "BA117", flight.FlightNumber)
	assert.Equal(t, "London", flight.DepartureAirport.City)
	assert.Equal(t, int64(15000), flight.PricePerTicket)
	assert.Equal(t, domain.ScaleMinor, flight.Scale())

	_, err = api.Flight(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestAPI_Property_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /properties/9", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Not found."}`, http.StatusNotFound)
	})
	api := newAPI(t, mux)

	_, err := api.Property(context.Background(), 9)
	assert.True(t, errors.Is(err, remote.ErrNotFound))
}

func TestAPI_CreateFlightReservation(t *testing.T) {
	var body map[string]any
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /payments/create-flight-reservation/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		_, _ = w.Write([]byte(`{"client_secret":"pi_1_secret_x"}`))
	})
	api := newAPI(t, mux)

	out, err := api.CreateFlightReservation(context.Background(), FlightReservation{
		Flight:          12,
		Seats:           2,
		CustomerName:    "Ann Lee",
		Amount:          domain.ToDisplayAmount(15000, domain.ScaleMinor).Times(2).Major(),
		PaymentMethodID: "pm_1",
	})

	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret_x", out.ClientSecret)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, float64(12), body["flight"])
	assert.Equal(t, float64(2), body["seats"])
	assert.Equal(t, "Ann Lee", body["customer_name"])
	assert.Equal(t, float64(300), body["amount"])
	assert.Equal(t, "pm_1", body["payment_method_id"])
}

func TestAPI_CreatePropertyPaymentIntent_Rejected(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /payments/create-payment-intent/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, `{"detail":"Property unavailable"}`, http.StatusServiceUnavailable)
	})
	api := newAPI(t, mux)

	_, err := api.CreatePropertyPaymentIntent(context.Background(), PropertyPaymentIntent{Property: 5, Nights: 3})

	var se *remote.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Property unavailable", se.Message())
	assert.Equal(t, int32(1), hits.Load())
}

func TestAPI_MarkNotificationRead_InvalidatesList(t *testing.T) {
	var listHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /notifications/", func(w http.ResponseWriter, r *http.Request) {
		listHits.Add(1)
		_, _ = w.Write([]byte(`[{"id":1,"content":"Booked","read_status":false}]`))
	})
	mux.HandleFunc("POST /notifications/1/mark-as-read/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	api := newAPI(t, mux)
	ctx := remote.WithIdentity(context.Background(), remote.Identity{SessionID: "s1", Token: "t"})

	_, err := api.Notifications(ctx)
	require.NoError(t, err)
	_, err = api.Notifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), listHits.Load())

	require.NoError(t, api.MarkNotificationRead(ctx, 1))

	_, err = api.Notifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), listHits.Load())
}

func TestAPI_MeResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":4,"username":"ann","user_type":"Traveler"}`))
	})
	api := newAPI(t, mux)

	anon := api.MeResult(context.Background(), true)
	assert.True(t, anon.IsError())
	assert.True(t, errors.Is(anon.Err, remote.ErrUnauthorized))

	ctx := remote.WithIdentity(context.Background(), remote.Identity{SessionID: "s1", Token: "tok"})
	res := api.MeResult(ctx, true)
	require.True(t, res.IsSuccess())
	assert.Equal(t, domain.RoleTraveler, res.Data.UserType)
}

func TestAPI_AllProperties_ClampsPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /properties/all", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"count":1,"next":null,"previous":null,"results":[{"id":5,"name":"Loft","price_per_night":80}]}`))
	})
	api := newAPI(t, mux)

	page, err := api.AllProperties(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
	assert.Equal(t, int64(80), page.Results[0].PricePerNight)
}

func TestAPI_Writes_ReportStaleQueries(t *testing.T) {
	var posts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /flights/", func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		_, _ = w.Write([]byte(flightJSON))
	})
	mux.HandleFunc("DELETE /properties/5/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /notifications/3/mark-as-read/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	api := newAPIWithStore(t, mux, &brokenStore{memStore{data: map[string][]byte{}}})
	ctx := remote.WithIdentity(context.Background(), remote.Identity{SessionID: "s1", UserID: 7, Token: "tok"})

	flight, err := api.CreateFlight(ctx, domain.FlightInput{FlightNumber: "BA117"})
	assert.ErrorIs(t, err, ErrStaleQueries)
	assert.ErrorContains(t, err, "redis down")
	assert.Equal(t, int64(12), flight.ID)
	assert.Equal(t, int32(1), posts.Load())

	err = api.DeleteProperty(ctx, 5)
	assert.ErrorIs(t, err, ErrStaleQueries)

	err = api.MarkNotificationRead(ctx, 3)
	assert.ErrorIs(t, err, ErrStaleQueries)
}

func TestAPI_Writes_BackendErrorIsNotStale(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /flights/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"bad"}`, http.StatusBadRequest)
	})
	api := newAPIWithStore(t, mux, &brokenStore{memStore{data: map[string][]byte{}}})

	_, err := api.CreateFlight(context.Background(), domain.FlightInput{})

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrStaleQueries))
}
