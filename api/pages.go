package api

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/remote"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

// resourcePage is everything a booking page renders: the resource, the
// live quote for the entered quantity and the form state.
type resourcePage[T any] struct {
	State     remote.State        `json:"state"`
	Message   string              `json:"message,omitempty"`
	Resource  *T                  `json:"resource,omitempty"`
	Quote     *booking.Quote      `json:"quote,omitempty"`
	Fields    booking.FieldErrors `json:"fields,omitempty"`
	CanSubmit bool                `json:"can_submit"`
}

func renderResourcePage[T domain.Resource](c *gin.Context, kind domain.ResourceKind, result remote.Result[T]) {
	msgs := booking.MessagesFor(kind)

	switch {
	case result.IsLoading():
		c.JSON(http.StatusOK, resourcePage[T]{State: remote.StateLoading, Message: msgs.Loading})
		return
	case result.IsError():
		status, msg := http.StatusBadGateway, msgs.Failed
		if errors.Is(result.Err, remote.ErrNotFound) {
			status, msg = http.StatusNotFound, msgs.Missing
		}
		c.JSON(status, resourcePage[T]{State: remote.StateError, Message: msg})
		return
	}

	quantityField := booking.QuantityField(kind)
	form := booking.Form{
		Quantity:     booking.ParseQuantity(c.DefaultQuery(quantityField, "1")),
		CustomerName: strings.TrimSpace(c.Query(booking.FieldCustomerName)),
	}
	quote := booking.QuoteFor(result.Data, form.Quantity)
	fields := form.Validate(kind)

	resource := result.Data
	c.JSON(http.StatusOK, resourcePage[T]{
		State:     remote.StateSuccess,
		Resource:  &resource,
		Quote:     &quote,
		Fields:    touched(c, fields),
		CanSubmit: fields == nil,
	})
}

// touched keeps only the errors of fields present in the query.
func touched(c *gin.Context, fields booking.FieldErrors) booking.FieldErrors {
	var out booking.FieldErrors
	for name, msg := range fields {
		if _, ok := c.GetQuery(name); !ok {
			continue
		}
		if out == nil {
			out = booking.FieldErrors{}
		}
		out[name] = msg
	}
	return out
}
