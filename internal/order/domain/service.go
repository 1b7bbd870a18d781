package domain

import (
	"context"
	"time"
)

type DeliverySnapshot struct {
	Street  string
	Area    string
	City    string
	Pincode string
	Lat     float64
	Lng     float64
	Phone   string
}

type OrderItemRequest struct {
	ProductID string
	Quantity  int64
}

type CreateOrderRequest struct {
	CustomerID    string
	StoreID       string
	Items         []OrderItemRequest
	Delivery      DeliverySnapshot
	PaymentMethod string
}

type UpdateStatusRequest struct {
	OrderID   string
	NewStatus OrderStatus
	ActorID   string
	Note      string
}

type Service interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error)
	GetOrder(ctx context.Context, orderID string) (Order, error)
	ListCustomerOrders(ctx context.Context, customerID string) ([]Order, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (Order, error)
}

// StoreLocker is the distributed mutual-exclusion contract the transaction
// manager depends on. Acquisition is a single non-blocking attempt.
type StoreLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// DispatchNotifier is told about created orders, fire-and-forget.
type DispatchNotifier interface {
	OrderCreated(ctx context.Context, order Order)
}
