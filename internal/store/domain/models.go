package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Store is a fulfillment hub. Location is immutable once orders reference it.
type Store struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"not null" json:"name"`
	Active    bool              `gorm:"not null;default:true" json:"active"`
	Latitude  *float64          `json:"latitude,omitempty"`
	Longitude *float64          `json:"longitude,omitempty"`
	RadiusKm  float64           `gorm:"not null;default:5" json:"radius_km"`
	Capacity  int               `gorm:"not null;default:0" json:"capacity"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Store) TableName() string { return "stores" }

// Product belongs to a store's catalog. UnitPrice is the live price; orders
// snapshot it at creation time and never read it back.
type Product struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	StoreID   snowflake.ID      `gorm:"not null;index" json:"store_id"`
	Name      string            `gorm:"not null" json:"name"`
	Unit      string            `gorm:"not null;default:'pc'" json:"unit"`
	UnitPrice decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Available bool              `gorm:"not null;default:true" json:"available"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string { return "products" }
