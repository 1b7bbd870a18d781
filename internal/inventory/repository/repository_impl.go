package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Tejaramidi0118/parcel-management-sub000/internal/inventory/domain"
	pkgdb "github.com/Tejaramidi0118/parcel-management-sub000/pkg/db"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrNoRowDecremented = errors.New("inventory decrement touched no row")

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) LockForOrder(ctx context.Context, tx *gorm.DB, storeID snowflake.ID, productIDs []snowflake.ID) ([]domain.LockedItem, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	var items []domain.LockedItem
	err := tx.WithContext(ctx).Raw(
		`SELECT i.product_id, p.name, p.unit_price,
		        i.stock_quantity AS stock, i.reserved_quantity AS reserved
		 FROM inventory_records i
		 JOIN products p ON p.store_id = i.store_id AND p.id = i.product_id
		 WHERE i.store_id = ? AND i.product_id IN ? AND p.available = ?
		 ORDER BY i.product_id`+pkgdb.ForUpdate(tx),
		storeID,
		productIDs,
		true,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Decrement(ctx context.Context, tx *gorm.DB, storeID, productID snowflake.ID, quantity int64) error {
	result := tx.WithContext(ctx).Exec(
		`UPDATE inventory_records
		 SET stock_quantity = stock_quantity - ?,
		     updated_at = ?
		 WHERE store_id = ? AND product_id = ?
		   AND stock_quantity - reserved_quantity >= ?`,
		quantity,
		time.Now().UTC(),
		storeID,
		productID,
		quantity,
	)
	if result.Error != nil {
		return result.Error
	}
	// The guard in WHERE is a backstop; validation already ran under the
	// row lock, so an untouched row means the discipline was broken.
	if result.RowsAffected == 0 {
		return ErrNoRowDecremented
	}
	return nil
}
