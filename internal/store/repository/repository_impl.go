package repository

import (
	"context"

	"github.com/Tejaramidi0118/parcel-management-sub000/internal/store/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Store, error) {
	var store domain.Store
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, active, latitude, longitude, radius_km, capacity, metadata, created_at, updated_at
		 FROM stores WHERE id = ?`,
		id,
	).Scan(&store).Error
	if err != nil {
		return nil, err
	}
	if store.ID == 0 {
		return nil, nil
	}
	return &store, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]*domain.Store, error) {
	var stores []*domain.Store
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, active, latitude, longitude, radius_km, capacity, metadata, created_at, updated_at
		 FROM stores
		 WHERE active = ? AND latitude IS NOT NULL AND longitude IS NOT NULL
		 ORDER BY id`,
		true,
	).Scan(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *repo) ListAvailability(ctx context.Context, db *gorm.DB, storeID snowflake.ID) ([]domain.ProductAvailability, error) {
	var rows []domain.ProductAvailability
	err := db.WithContext(ctx).Raw(
		`SELECT p.id AS product_id, p.name, p.unit, p.unit_price,
		        i.stock_quantity AS stock, i.reserved_quantity AS reserved,
		        i.stock_quantity - i.reserved_quantity AS available
		 FROM products p
		 JOIN inventory_records i ON i.store_id = p.store_id AND i.product_id = p.id
		 WHERE p.store_id = ? AND p.available = ?
		 ORDER BY p.name, p.id`,
		storeID,
		true,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
