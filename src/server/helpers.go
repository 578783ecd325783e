package server

import (
	"errors"
	"net/http"
	"slices"
	"strconv"

	"twsclient/src/helpers"
	"twsclient/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

// pathID parses the :id segment and answers 400 itself when it is not an
// integer.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return 0, false
	}
	return id, true
}

// -----------------------------------------------------------------------------

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": key + " must be a positive integer"})
		return 0, false
	}
	return v, true
}

// -----------------------------------------------------------------------------

// statusOf maps client errors to HTTP codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, helpers.ErrNotConnected), errors.Is(err, helpers.ErrDisconnected):
		return http.StatusServiceUnavailable
	case errors.Is(err, helpers.ErrProtocolTooOld):
		return http.StatusNotImplemented
	case errors.Is(err, helpers.ErrUnknownSymbol), errors.Is(err, helpers.ErrUnknownSubscription):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// -----------------------------------------------------------------------------

func policyView(p models.MSessionPolicy) gin.H {
	return gin.H{
		"duplicate_timeout_ms":        p.DuplicateTimeout.Milliseconds(),
		"generate_trades_from_last":   p.GenerateTradesFromLast,
		"generate_trades_from_volume": p.GenerateTradesFromVolume,
		"suppress_size_with_price":    p.SuppressSizeWithPrice,
	}
}

// -----------------------------------------------------------------------------

// wants reports whether a listener filtered to ids should see requestID.
func wants(ids []int, requestID int) bool {
	return len(ids) == 0 || slices.Contains(ids, requestID)
}
