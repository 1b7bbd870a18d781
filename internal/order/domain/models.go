package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusAssigned  OrderStatus = "ASSIGNED"
	StatusPickedUp  OrderStatus = "PICKED_UP"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// Order is immutable after creation except for status fields. The delivery
// address is a snapshot: later profile edits never reach existing orders.
type Order struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`
	StoreID    snowflake.ID `gorm:"not null;index" json:"store_id"`

	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	DeliveryFee decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"delivery_fee"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`

	Status        OrderStatus   `gorm:"not null" json:"status"`
	PaymentMethod string        `gorm:"not null" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"not null" json:"payment_status"`

	DeliveryStreet  string  `gorm:"not null" json:"delivery_street"`
	DeliveryArea    string  `json:"delivery_area"`
	DeliveryCity    string  `gorm:"not null" json:"delivery_city"`
	DeliveryPincode string  `gorm:"not null" json:"delivery_pincode"`
	DeliveryLat     float64 `json:"delivery_lat"`
	DeliveryLng     float64 `json:"delivery_lng"`
	DeliveryPhone   string  `gorm:"not null" json:"delivery_phone"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []OrderItem `gorm:"-" json:"items"`
}

func (Order) TableName() string { return "orders" }

// OrderItem carries the price snapshot taken while the inventory row was
// locked. It is never recomputed from the live catalog.
type OrderItem struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrderID      snowflake.ID    `gorm:"not null;index" json:"order_id"`
	ProductID    snowflake.ID    `gorm:"not null" json:"product_id"`
	ProductName  string          `gorm:"not null" json:"product_name"`
	Quantity     int64           `gorm:"not null" json:"quantity"`
	PriceAtOrder decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_at_order"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (OrderItem) TableName() string { return "order_items" }

// OrderStatusLog is the append-only audit trail; rows are never updated.
type OrderStatusLog struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID   snowflake.ID `gorm:"not null;index" json:"order_id"`
	OldStatus OrderStatus  `json:"old_status"`
	NewStatus OrderStatus  `gorm:"not null" json:"new_status"`
	ActorID   snowflake.ID `json:"actor_id"`
	Note      string       `json:"note,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (OrderStatusLog) TableName() string { return "order_status_logs" }
