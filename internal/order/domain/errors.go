package domain

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

var (
	// ErrLockUnavailable means another order holds the store lock. No side
	// effects occurred; callers may retry.
	ErrLockUnavailable = errors.New("store_lock_unavailable")

	ErrNotFound          = errors.New("not_found")
	ErrInvalidID         = errors.New("invalid_id")
	ErrEmptyItems        = errors.New("empty_items")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrStoreInactive     = errors.New("store_inactive")
)

// Shortage is one under-stocked line of a rejected order.
type Shortage struct {
	ProductID snowflake.ID `json:"product_id"`
	Requested int64        `json:"requested"`
	Available int64        `json:"available"`
}

// InsufficientStockError aggregates every short item of an attempt so the
// caller can show all problems at once. The whole order is rejected; there
// is no partial fulfillment.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d item(s)", len(e.Shortages))
}

// AsInsufficientStock unwraps err into an InsufficientStockError, if any.
func AsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var target *InsufficientStockError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
