package domain

import "time"

type Airline struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`
	IATACode string `json:"IATA_code"`
}

type Airport struct {
	ID      int64  `json:"id,omitempty"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Flight as returned by the backend. PricePerTicket is in cents.
type Flight struct {
	ID               int64     `json:"id"`
	FlightNumber     string    `json:"flight_number"`
	Airline          Airline   `json:"airline"`
	DepartureAirport Airport   `json:"departure_airport"`
	ArrivalAirport   Airport   `json:"arrival_airport"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	DurationMinutes  int       `json:"duration_minutes"`
	PricePerTicket   int64     `json:"price_per_ticket"`
}

func (f Flight) Kind() ResourceKind { return KindFlight }
func (f Flight) ResourceID() int64  { return f.ID }
func (f Flight) UnitPrice() int64   { return f.PricePerTicket }
func (f Flight) Scale() UnitScale   { return ScaleMinor }

// FlightInput is the write model for flights; related records are sent by id.
type FlightInput struct {
	Airline          int64     `json:"airline"`
	FlightNumber     string    `json:"flight_number"`
	DepartureAirport int64     `json:"departure_airport"`
	ArrivalAirport   int64     `json:"arrival_airport"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	DurationMinutes  int       `json:"duration_minutes"`
	PricePerTicket   int64     `json:"price_per_ticket"`
}
