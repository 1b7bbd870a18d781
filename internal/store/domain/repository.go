package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Store, error)
	// ListActive returns active stores that have a location.
	ListActive(ctx context.Context, db *gorm.DB) ([]*Store, error)
	ListAvailability(ctx context.Context, db *gorm.DB, storeID snowflake.ID) ([]ProductAvailability, error)
}
