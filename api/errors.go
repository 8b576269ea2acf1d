package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quantumair/qbooking/internal/domain"
)

// writeError maps domain sentinels to HTTP statuses. Anything
// unclassified is reported as a generic 500 so internals never leak
// to the client.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrFlightNotFound), errors.Is(err, domain.ErrSeatNotFound), errors.Is(err, domain.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSeatAlreadyBooked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCryptoUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cryptographic backend unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
