package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmoralesq/tienda-orders/internal/order"
)

// Error renders a domain error as a structured JSON body with a
// machine-readable kind. Internal details never reach the client; the
// retryable flag is the only hint persistence failures carry.
func Error(c *gin.Context, err error) {
	var (
		validationErr  *order.ValidationError
		notFoundErr    *order.NotFoundError
		stockErr       *order.InsufficientStockError
		transitionErr  *order.InvalidTransitionError
		persistenceErr *order.PersistenceError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":  "validation",
			"error": validationErr.Reason,
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{
			"kind":  "not_found",
			"error": notFoundErr.Error(),
		})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"kind":       "insufficient_stock",
			"error":      stockErr.Error(),
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{
			"kind":  "invalid_transition",
			"error": transitionErr.Error(),
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})
	case errors.Is(err, order.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"kind":  "forbidden",
			"error": "admin capability required",
		})
	case errors.As(err, &persistenceErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"kind":      "persistence",
			"error":     "store temporarily unavailable",
			"retryable": true,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"kind":  "internal",
			"error": "internal error",
		})
	}
}
