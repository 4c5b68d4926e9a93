package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type PropertyLister interface {
	AllProperties(ctx context.Context, page int) (domain.PropertyPage, error)
}

type PropertyHandler struct {
	forms      booking.BookingUseCase
	properties PropertyLister
}

func NewPropertyHandler(forms booking.BookingUseCase, properties PropertyLister) *PropertyHandler {
	return &PropertyHandler{forms: forms, properties: properties}
}

func (h *PropertyHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *PropertyHandler) list(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	result, err := h.properties.AllProperties(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PropertyHandler) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	renderResourcePage(c, domain.KindProperty, h.forms.LoadProperty(c.Request.Context(), id))
}
