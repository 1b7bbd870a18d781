package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the only path to inventory rows. Both operations take the
// caller's open transaction; Decrement must only run on rows previously
// locked by LockForOrder in the same transaction.
type Repository interface {
	LockForOrder(ctx context.Context, tx *gorm.DB, storeID snowflake.ID, productIDs []snowflake.ID) ([]LockedItem, error)
	Decrement(ctx context.Context, tx *gorm.DB, storeID, productID snowflake.ID, quantity int64) error
}
