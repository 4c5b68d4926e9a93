package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/payment"
	"github.com/Domenick1991/travelbooking/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

type Submitter interface {
	Submit(ctx context.Context, sub checkout.Submission) (*checkout.Outcome, error)
}

type CheckoutHandler struct {
	checkout Submitter
}

func NewCheckoutHandler(s Submitter) *CheckoutHandler {
	return &CheckoutHandler{checkout: s}
}

func (h *CheckoutHandler) Register(router *gin.RouterGroup) {
	router.POST("/flights/:id", h.submit(domain.KindFlight))
	router.POST("/properties/:id", h.submit(domain.KindProperty))
}

// rawQuantity accepts the quantity as a JSON number or as the text typed
// into the form.
type rawQuantity string

func (q *rawQuantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*q = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = rawQuantity(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*q = rawQuantity(n.String())
	return nil
}

type checkoutRequest struct {
	Seats        rawQuantity `json:"seats"`
	Nights       rawQuantity `json:"nights"`
	CustomerName string      `json:"customer_name"`
	CardToken    string      `json:"card_token"`
}

func (r checkoutRequest) quantity(kind domain.ResourceKind) string {
	if kind == domain.KindProperty {
		return string(r.Nights)
	}
	return string(r.Seats)
}

type checkoutResponse struct {
	*checkout.Outcome
	Error string `json:"error,omitempty"`
}

func (h *CheckoutHandler) submit(kind domain.ResourceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		outcome, err := h.checkout.Submit(c.Request.Context(), checkout.Submission{
			Kind:         kind,
			ResourceID:   id,
			Quantity:     req.quantity(kind),
			CustomerName: req.CustomerName,
			Card:         payment.Card{Token: req.CardToken},
		})
		if err != nil && outcome == nil {
			respondError(c, err)
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.JSON(statusFor(err), checkoutResponse{Outcome: outcome, Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, checkoutResponse{Outcome: outcome})
	}
}
