package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Tejaramidi0118/parcel-management-sub000/internal/order/domain"
	pkgdb "github.com/Tejaramidi0118/parcel-management-sub000/pkg/db"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertOrder(ctx context.Context, tx *gorm.DB, order *domain.Order) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO orders (
			id, customer_id, store_id,
			subtotal, delivery_fee, total,
			status, payment_method, payment_status,
			delivery_street, delivery_area, delivery_city, delivery_pincode,
			delivery_lat, delivery_lng, delivery_phone,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.CustomerID,
		order.StoreID,
		order.Subtotal,
		order.DeliveryFee,
		order.Total,
		order.Status,
		order.PaymentMethod,
		order.PaymentStatus,
		order.DeliveryStreet,
		order.DeliveryArea,
		order.DeliveryCity,
		order.DeliveryPincode,
		order.DeliveryLat,
		order.DeliveryLng,
		order.DeliveryPhone,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) InsertItems(ctx context.Context, tx *gorm.DB, items []domain.OrderItem) error {
	for i := range items {
		err := tx.WithContext(ctx).Exec(
			`INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price_at_order, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			items[i].ID,
			items[i].OrderID,
			items[i].ProductID,
			items[i].ProductName,
			items[i].Quantity,
			items[i].PriceAtOrder,
			items[i].CreatedAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) InsertStatusLog(ctx context.Context, tx *gorm.DB, log *domain.OrderStatusLog) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO order_status_logs (id, order_id, old_status, new_status, actor_id, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		log.OrderID,
		log.OldStatus,
		log.NewStatus,
		log.ActorID,
		log.Note,
		log.CreatedAt,
	).Error
}

const orderColumns = `id, customer_id, store_id,
	subtotal, delivery_fee, total,
	status, payment_method, payment_status,
	delivery_street, delivery_area, delivery_city, delivery_pincode,
	delivery_lat, delivery_lng, delivery_phone,
	confirmed_at, assigned_at, picked_up_at, delivered_at, cancelled_at,
	created_at, updated_at`

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`,
		id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}

	items, err := r.listItems(ctx, db, []snowflake.ID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return &order, nil
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]domain.Order, error) {
	var orders []domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = ? ORDER BY created_at DESC, id DESC`,
		customerID,
	).Scan(&orders).Error
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]snowflake.ID, 0, len(orders))
	for i := range orders {
		ids = append(ids, orders[i].ID)
	}
	items, err := r.listItems(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *repo) listItems(ctx context.Context, db *gorm.DB, orderIDs []snowflake.ID) (map[snowflake.ID][]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, product_id, product_name, quantity, price_at_order, created_at
		 FROM order_items WHERE order_id IN ? ORDER BY id`,
		orderIDs,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}

	grouped := make(map[snowflake.ID][]domain.OrderItem, len(orderIDs))
	for _, item := range items {
		grouped[item.OrderID] = append(grouped[item.OrderID], item)
	}
	return grouped, nil
}

func (r *repo) LockByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := tx.WithContext(ctx).Raw(
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`+pkgdb.ForUpdate(tx),
		id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) SetStatus(ctx context.Context, tx *gorm.DB, id snowflake.ID, status domain.OrderStatus, timestampColumn string, now time.Time) error {
	if timestampColumn == "" {
		return tx.WithContext(ctx).Exec(
			`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
			status, now, id,
		).Error
	}
	// timestampColumn is a constant from the per-status metadata map,
	// never caller input.
	query := fmt.Sprintf(
		`UPDATE orders SET status = ?, %s = COALESCE(%s, ?), updated_at = ? WHERE id = ?`,
		timestampColumn, timestampColumn,
	)
	return tx.WithContext(ctx).Exec(query, status, now, now, id).Error
}
