package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InventoryRecord is the unit of contention: one row per (store, product).
// Invariant: 0 <= reserved_quantity <= stock_quantity. Rows are created at
// product onboarding and only ever adjusted, never deleted.
type InventoryRecord struct {
	StoreID          snowflake.ID `gorm:"primaryKey" json:"store_id"`
	ProductID        snowflake.ID `gorm:"primaryKey" json:"product_id"`
	StockQuantity    int64        `gorm:"not null;default:0" json:"stock_quantity"`
	ReservedQuantity int64        `gorm:"not null;default:0" json:"reserved_quantity"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (InventoryRecord) TableName() string { return "inventory_records" }

// LockedItem is an inventory row read under FOR UPDATE, joined with the
// catalog fields the order needs to snapshot.
type LockedItem struct {
	ProductID snowflake.ID
	Name      string
	UnitPrice decimal.Decimal
	Stock     int64
	Reserved  int64
}

// Available is the sellable quantity: reserved-but-unconfirmed stock is
// never offered twice.
func (i LockedItem) Available() int64 {
	return i.Stock - i.Reserved
}
