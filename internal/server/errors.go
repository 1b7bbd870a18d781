package server

import (
	"errors"
	"net/http"

	orderdomain "github.com/Tejaramidi0118/parcel-management-sub000/internal/order/domain"
	storedomain "github.com/Tejaramidi0118/parcel-management-sub000/internal/store/domain"
	"github.com/gin-gonic/gin"
)

type errorPayload struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Shortages []orderdomain.Shortage `json:"shortages,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	// Shortages are rendered per item so the caller can show all
	// problems at once.
	if shortage, ok := orderdomain.AsInsufficientStock(err); ok {
		return http.StatusConflict, errorPayload{
			Type:      "insufficient_stock",
			Message:   shortage.Error(),
			Shortages: shortage.Shortages,
		}
	}

	switch {
	case errors.Is(err, orderdomain.ErrLockUnavailable):
		// Retryable: the attempt had no side effects.
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "lock_unavailable",
			Message: "store is busy, please retry",
		}
	case errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, storedomain.ErrNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, orderdomain.ErrInvalidTransition):
		return http.StatusConflict, errorPayload{
			Type:    "invalid_transition",
			Message: err.Error(),
		}
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, orderdomain.ErrInvalidID),
		errors.Is(err, orderdomain.ErrEmptyItems),
		errors.Is(err, orderdomain.ErrInvalidQuantity),
		errors.Is(err, orderdomain.ErrInvalidStatus),
		errors.Is(err, orderdomain.ErrStoreInactive),
		errors.Is(err, storedomain.ErrInvalidID),
		errors.Is(err, storedomain.ErrInvalidCoordinates),
		errors.Is(err, storedomain.ErrInvalidRadius):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
