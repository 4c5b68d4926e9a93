// Package accessor wraps each booking backend endpoint in a typed call.
// Reads are cached queries; writes are single requests that invalidate the
// queries they affect and are never retried.
package accessor

import (
	"context"
	"strconv"

	"github.com/Domenick1991/travelbooking/internal/remote"
	"github.com/cockroachdb/errors"
)

// Query names, used as the first part of cache keys.
const (
	QueryFlight        = "flight"
	QueryFlights       = "flights"
	QueryAirline       = "airline"
	QueryAirlines      = "airlines"
	QueryAirport       = "airport"
	QueryAirports      = "airports"
	QueryProperty      = "property"
	QueryProperties    = "properties"
	QueryOwnProperties = "own-properties"
	QueryTickets       = "tickets"
	QueryPayments      = "payments"
	QueryNotifications = "notifications"
	QueryUser          = "user"
)

type API struct {
	client *remote.Client
}

func New(client *remote.Client) *API {
	return &API{client: client}
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

// ErrStaleQueries marks a write the backend accepted whose cached queries
// could not be dropped. Callers must not repeat the write.
var ErrStaleQueries = errors.New("cached queries may be stale")

func stale(err error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, ErrStaleQueries)
}

func (a *API) invalidateShared(ctx context.Context, names ...string) error {
	return stale(a.client.InvalidateShared(ctx, names...))
}

func (a *API) invalidate(ctx context.Context, names ...string) error {
	return stale(a.client.Invalidate(ctx, names...))
}
