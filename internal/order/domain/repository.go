package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertOrder(ctx context.Context, tx *gorm.DB, order *Order) error
	InsertItems(ctx context.Context, tx *gorm.DB, items []OrderItem) error
	InsertStatusLog(ctx context.Context, tx *gorm.DB, log *OrderStatusLog) error

	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]Order, error)

	// LockByID reads the order row under FOR UPDATE for a status change.
	LockByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Order, error)
	// SetStatus writes the new status and the status-specific timestamp
	// column; timestampColumn comes from the per-status metadata map and
	// may be empty.
	SetStatus(ctx context.Context, tx *gorm.DB, id snowflake.ID, status OrderStatus, timestampColumn string, now time.Time) error
}
