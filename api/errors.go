package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/travelbooking/internal/accessor"
	"github.com/Domenick1991/travelbooking/internal/remote"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/checkout"
	"github.com/Domenick1991/travelbooking/internal/session"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

// statusFor maps an error to the HTTP status the pages expect.
func statusFor(err error) int {
	var (
		verr   *booking.ValidationError
		pmErr  *checkout.PaymentMethodError
		brErr  *checkout.BookingRequestError
		pcErr  *checkout.PaymentConfirmationError
		status *remote.StatusError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		return http.StatusConflict
	case errors.As(err, &pmErr), errors.As(err, &pcErr):
		return http.StatusPaymentRequired
	case errors.As(err, &brErr):
		if brErr.Status >= 400 && brErr.Status < 500 {
			return brErr.Status
		}
		return http.StatusBadGateway
	case errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized
	case errors.As(err, &status):
		if status.Status >= 400 && status.Status < 500 {
			return status.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var verr *booking.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verr.Fields})
		return
	}
	if errors.Is(err, checkout.ErrSubmissionInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": "A payment for this booking is already being processed", "pending": true})
		return
	}

	status := statusFor(err)
	c.JSON(status, gin.H{"error": publicMessage(err, status)})
}

// writeFailed responds with err and reports true unless the backend applied
// the write and only the cached listings could not be dropped. A stale cache
// is flagged with a Warning header instead, so clients do not repeat the write.
func writeFailed(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, accessor.ErrStaleQueries) {
		_ = c.Error(err)
		c.Header("Warning", `110 - "cached listings may be stale"`)
		return false
	}
	respondError(c, err)
	return true
}

// publicMessage hides internal failures and passes backend messages through.
func publicMessage(err error, status int) string {
	var se *remote.StatusError
	if errors.As(err, &se) && status < http.StatusInternalServerError {
		return se.Message()
	}
	if status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
