package seed

import (
	"context"
	"errors"
	"time"

	inventorydomain "github.com/Tejaramidi0118/parcel-management-sub000/internal/inventory/domain"
	storedomain "github.com/Tejaramidi0118/parcel-management-sub000/internal/store/domain"
	pkgdb "github.com/Tejaramidi0118/parcel-management-sub000/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type demoProduct struct {
	name  string
	unit  string
	price string
	stock int64
}

var demoProducts = []demoProduct{
	{name: "Milk 500ml", unit: "pc", price: "30.00", stock: 120},
	{name: "Bread Loaf", unit: "pc", price: "45.00", stock: 60},
	{name: "Eggs", unit: "dozen", price: "84.00", stock: 40},
	{name: "Rice 1kg", unit: "kg", price: "95.00", stock: 80},
}

// EnsureDemoData seeds a pair of demo stores with stocked catalogs for
// local bootstrap. It is a no-op when any store already exists.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&storedomain.Store{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		stores := []struct {
			name     string
			lat, lng float64
		}{
			{name: "Indiranagar Hub", lat: 12.9716, lng: 77.6412},
			{name: "Koramangala Hub", lat: 12.9352, lng: 77.6245},
		}
		now := time.Now().UTC()

		for _, meta := range stores {
			lat, lng := meta.lat, meta.lng
			store := storedomain.Store{
				ID:        node.Generate(),
				Name:      meta.name,
				Active:    true,
				Latitude:  &lat,
				Longitude: &lng,
				RadiusKm:  5,
				Capacity:  100,
				Metadata:  datatypes.JSONMap{},
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&store).Error; err != nil {
				return err
			}

			for _, dp := range demoProducts {
				price, err := decimal.NewFromString(dp.price)
				if err != nil {
					return err
				}
				product := storedomain.Product{
					ID:        node.Generate(),
					StoreID:   store.ID,
					Name:      dp.name,
					Unit:      dp.unit,
					UnitPrice: price,
					Available: true,
					Metadata:  datatypes.JSONMap{},
					CreatedAt: now,
					UpdatedAt: now,
				}
				if err := tx.Create(&product).Error; err != nil {
					return err
				}
				record := inventorydomain.InventoryRecord{
					StoreID:       store.ID,
					ProductID:     product.ID,
					StockQuantity: dp.stock,
					UpdatedAt:     now,
				}
				if err := tx.Create(&record).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	// Two instances booting at once can both pass the count check; the
	// loser's inserts collide and the data is already there.
	if pkgdb.IsDuplicateKeyErr(err) {
		return nil
	}
	return err
}
