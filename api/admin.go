package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

type FlightAdmin interface {
	Airports(ctx context.Context) ([]domain.Airport, error)
	Airport(ctx context.Context, airportID int64) (domain.Airport, error)
	CreateAirport(ctx context.Context, in domain.Airport) (domain.Airport, error)
	UpdateAirport(ctx context.Context, airportID int64, in domain.Airport) (domain.Airport, error)
	DeleteAirport(ctx context.Context, airportID int64) error

	Airlines(ctx context.Context) ([]domain.Airline, error)
	Airline(ctx context.Context, airlineID int64) (domain.Airline, error)
	CreateAirline(ctx context.Context, in domain.Airline) (domain.Airline, error)
	UpdateAirline(ctx context.Context, airlineID int64, in domain.Airline) (domain.Airline, error)
	DeleteAirline(ctx context.Context, airlineID int64) error

	Flights(ctx context.Context) ([]domain.Flight, error)
	Flight(ctx context.Context, flightID int64) (domain.Flight, error)
	CreateFlight(ctx context.Context, in domain.FlightInput) (domain.Flight, error)
	UpdateFlight(ctx context.Context, flightID int64, in domain.FlightInput) (domain.Flight, error)
	DeleteFlight(ctx context.Context, flightID int64) error
}

type PropertyAdmin interface {
	OwnProperties(ctx context.Context) ([]domain.Property, error)
	Property(ctx context.Context, propertyID int64) (domain.Property, error)
	CreateProperty(ctx context.Context, in domain.Property) (domain.Property, error)
	UpdateProperty(ctx context.Context, propertyID int64, in domain.Property) (domain.Property, error)
	DeleteProperty(ctx context.Context, propertyID int64) error
}

// RoleGate admits only users of one role. guard.Guard implements it.
type RoleGate interface {
	Require(required domain.Role) gin.HandlerFunc
}

// AdminHandler proxies the management screens: airports, airlines and
// flights for Staff, own properties for Hosts.
type AdminHandler struct {
	flights    FlightAdmin
	properties PropertyAdmin
	gate       RoleGate
}

func NewAdminHandler(flights FlightAdmin, properties PropertyAdmin, gate RoleGate) *AdminHandler {
	return &AdminHandler{flights: flights, properties: properties, gate: gate}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	staff := router.Group("", h.gate.Require(domain.RoleStaff))
	registerCRUD(staff.Group("/airports"), crud[domain.Airport, domain.Airport]{
		list:   h.flights.Airports,
		get:    h.flights.Airport,
		create: h.flights.CreateAirport,
		update: h.flights.UpdateAirport,
		remove: h.flights.DeleteAirport,
	})
	registerCRUD(staff.Group("/airlines"), crud[domain.Airline, domain.Airline]{
		list:   h.flights.Airlines,
		get:    h.flights.Airline,
		create: h.flights.CreateAirline,
		update: h.flights.UpdateAirline,
		remove: h.flights.DeleteAirline,
	})
	registerCRUD(staff.Group("/flights"), crud[domain.Flight, domain.FlightInput]{
		list:   h.flights.Flights,
		get:    h.flights.Flight,
		create: h.flights.CreateFlight,
		update: h.flights.UpdateFlight,
		remove: h.flights.DeleteFlight,
	})

	host := router.Group("/properties", h.gate.Require(domain.RoleHost))
	registerCRUD(host, crud[domain.Property, domain.Property]{
		list:   h.properties.OwnProperties,
		get:    h.properties.Property,
		create: h.properties.CreateProperty,
		update: h.properties.UpdateProperty,
		remove: h.properties.DeleteProperty,
	})
}

// crud is one management resource: T is what the backend returns, In what
// it accepts on create and update.
type crud[T, In any] struct {
	list   func(ctx context.Context) ([]T, error)
	get    func(ctx context.Context, id int64) (T, error)
	create func(ctx context.Context, in In) (T, error)
	update func(ctx context.Context, id int64, in In) (T, error)
	remove func(ctx context.Context, id int64) error
}

func registerCRUD[T, In any](router *gin.RouterGroup, r crud[T, In]) {
	router.GET("", func(c *gin.Context) {
		items, err := r.list(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		c.JSON(http.StatusOK, items)
	})

	router.GET("/:id", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		item, err := r.get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})

	router.POST("", func(c *gin.Context) {
		var in In
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		item, err := r.create(c.Request.Context(), in)
		if writeFailed(c, err) {
			return
		}
		c.JSON(http.StatusCreated, item)
	})

	router.PUT("/:id", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		var in In
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		item, err := r.update(c.Request.Context(), id, in)
		if writeFailed(c, err) {
			return
		}
		c.JSON(http.StatusOK, item)
	})

	router.DELETE("/:id", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		if writeFailed(c, r.remove(c.Request.Context(), id)) {
			return
		}
		c.Status(http.StatusNoContent)
	})
}
