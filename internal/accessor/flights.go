package accessor

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/remote"
)

func (a *API) Flight(ctx context.Context, flightID int64) (domain.Flight, error) {
	return remote.Fetch[domain.Flight](ctx, a.client, remote.Shared(QueryFlight, id(flightID)), fmt.Sprintf("/flights/%d/", flightID))
}

func (a *API) Flights(ctx context.Context) ([]domain.Flight, error) {
	return remote.Fetch[[]domain.Flight](ctx, a.client, remote.Shared(QueryFlights), "/flights/")
}

func (a *API) CreateFlight(ctx context.Context, in domain.FlightInput) (domain.Flight, error) {
	var out domain.Flight
	if err := a.client.Do(ctx, http.MethodPost, "/flights/", in, &out); err != nil {
		return out, err
	}
	return out, a.invalidateShared(ctx, QueryFlights)
}

func (a *API) UpdateFlight(ctx context.Context, flightID int64, in domain.FlightInput) (domain.Flight, error) {
	var out domain.Flight
	if err := a.client.Do(ctx, http.MethodPut, fmt.Sprintf("/flights/%d/", flightID), in, &out); err != nil {
		return out, err
	}
	return out, a.invalidateShared(ctx, QueryFlights, QueryFlight)
}

func (a *API) DeleteFlight(ctx context.Context, flightID int64) error {
	if err := a.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/flights/%d/", flightID), nil, nil); err != nil {
		return err
	}
	return a.invalidateShared(ctx, QueryFlights, QueryFlight)
}

func (a *API) Airlines(ctx context.Context) ([]domain.Airline, error) {
	return remote.Fetch[[]domain.Airline](ctx, a.client, remote.Shared(QueryAirlines), "/flights/airlines/")
}

func (a *API) Airline(ctx context.Context, airlineID int64) (domain.Airline, error) {
	return remote.Fetch[domain.Airline](ctx, a.client, remote.Shared(QueryAirline, id(airlineID)), fmt.Sprintf("/flights/airlines/%d", airlineID))
}

func (a *API) CreateAirline(ctx context.Context, in domain.Airline) (domain.Airline, error) {
	var out domain.Airline
	if err := a.client.Do(ctx, http.MethodPost, "/flights/airlines/", in, &out); err != nil {
		return out, err
	}
	return out, a.invalidateShared(ctx, QueryAirlines)
}

func (a *API) UpdateAirline(ctx context.Context, airlineID int64, in domain.Airline) (domain.Airline, error) {
	var out domain.Airline
	if err := a.client.Do(ctx, http.MethodPut, fmt.Sprintf("/flights/airlines/%d/", airlineID), in, &out); err != nil {
		return out, err
	}
	return out, a.invalidateShared(ctx, QueryAirlines, QueryAirline, QueryFlight, QueryFlights)
}

func (a *API) DeleteAirline(ctx context.Context, airlineID int64) error {
	if err := a.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/flights/airlines/%d/", airlineID), nil, nil); err != nil {
		return err
	}
	return a.invalidateShared(ctx, QueryAirlines, QueryAirline, QueryFlight, QueryFlights)
}

func (a *API) Airports(ctx context.Context) ([]domain.Airport, error) {
	return remote.Fetch[[]domain.Airport](ctx, a.client, remote.Shared(QueryAirports), "/flights/airport/")
}

func (a *API) Airport(ctx context.Context, airportID int64) (domain.Airport, error) {
	return remote.Fetch[domain.Airport](ctx, a.client, remote.Shared(QueryAirport, id(airportID)), fmt.Sprintf("/flights/airport/%d/", airportID))
}

func (a *API) CreateAirport(ctx context.Context, in domain.Airport) (domain.Airport, error) {
	var out domain.Airport
	if err := a.client.Do(ctx, http.MethodPost, "/flights/airport/", in, &out); err != nil {
		return out, err
	}
	return out, a.invalidateShared(ctx, QueryAirports)
}

func (a *API) UpdateAirport(ctx context.Context, airportID int64, in domain.Airport) (domain.Airport, error) {
	var out domain.Airport
	if err := a.client.Do(ctx, http.MethodPut, fmt.Sprintf("/flights/airport/%d/", airportID), in, &out); err != nil {
		return out, err
	}
	return out, a.invalidateShared(ctx, QueryAirports, QueryAirport, QueryFlight, QueryFlights)
}

func (a *API) DeleteAirport(ctx context.Context, airportID int64) error {
	if err := a.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/flights/airport/%d/", airportID), nil, nil); err != nil {
		return err
	}
	return a.invalidateShared(ctx, QueryAirports, QueryAirport, QueryFlight, QueryFlights)
}
