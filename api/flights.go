package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type FlightLister interface {
	Flights(ctx context.Context) ([]domain.Flight, error)
}

type FlightHandler struct {
	forms   booking.BookingUseCase
	flights FlightLister
}

func NewFlightHandler(forms booking.BookingUseCase, flights FlightLister) *FlightHandler {
	return &FlightHandler{forms: forms, flights: flights}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *FlightHandler) list(c *gin.Context) {
	flights, err := h.flights.Flights(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

// get renders the flight booking page. ?seats= and ?customer_name= carry the
// form input and are priced on every request.
func (h *FlightHandler) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	renderResourcePage(c, domain.KindFlight, h.forms.LoadFlight(c.Request.Context(), id))
}
