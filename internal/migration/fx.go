package migration

import (
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/config"
	inventorydomain "github.com/Tejaramidi0118/parcel-management-sub000/internal/inventory/domain"
	orderdomain "github.com/Tejaramidi0118/parcel-management-sub000/internal/order/domain"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/seed"
	storedomain "github.com/Tejaramidi0118/parcel-management-sub000/internal/store/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			err := conn.AutoMigrate(
				&storedomain.Store{},
				&storedomain.Product{},
				&inventorydomain.InventoryRecord{},
				&orderdomain.Order{},
				&orderdomain.OrderItem{},
				&orderdomain.OrderStatusLog{},
			)
			if err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoData(conn)
		}
		return nil
	}),
)
