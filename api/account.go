package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/session"
	"github.com/gin-gonic/gin"
)

const defaultAttemptLimit = 20

type Account interface {
	Tickets(ctx context.Context) ([]domain.Ticket, error)
	Payments(ctx context.Context) ([]domain.Payment, error)
	Notifications(ctx context.Context) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID int64) error
}

type AttemptLister interface {
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.CheckoutAttempt, error)
}

// AccountHandler serves the signed-in user's own records. Routes must sit
// behind session.RequireAuthenticated.
type AccountHandler struct {
	account  Account
	attempts AttemptLister
}

func NewAccountHandler(account Account, attempts AttemptLister) *AccountHandler {
	return &AccountHandler{account: account, attempts: attempts}
}

func (h *AccountHandler) Register(router *gin.RouterGroup) {
	router.GET("/tickets", h.tickets)
	router.GET("/payments", h.payments)
	router.GET("/notifications", h.notifications)
	router.POST("/notifications/:id/read", h.markRead)
	if h.attempts != nil {
		router.GET("/checkout/attempts", h.checkoutAttempts)
	}
}

func (h *AccountHandler) tickets(c *gin.Context) {
	tickets, err := h.account.Tickets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *AccountHandler) payments(c *gin.Context) {
	payments, err := h.account.Payments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *AccountHandler) notifications(c *gin.Context) {
	notifications, err := h.account.Notifications(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *AccountHandler) markRead(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if writeFailed(c, h.account.MarkNotificationRead(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AccountHandler) checkoutAttempts(c *gin.Context) {
	s, ok := session.From(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": "/login"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAttemptLimit)))
	if err != nil || limit < 1 || limit > 100 {
		limit = defaultAttemptLimit
	}
	attempts, err := h.attempts.ListByUser(c.Request.Context(), s.UserID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if attempts == nil {
		attempts = []domain.CheckoutAttempt{}
	}
	c.JSON(http.StatusOK, attempts)
}
