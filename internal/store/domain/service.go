package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type NearestStoresRequest struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Limit     int
}

// StoreSummary is one row of a proximity search result.
type StoreSummary struct {
	Store            Store   `json:"store"`
	DistanceMeters   float64 `json:"distance_meters"`
	DeliveryPossible bool    `json:"delivery_possible"`
}

// ProductAvailability is a catalog row joined with its inventory record.
// Available is stock minus reserved, never raw stock.
type ProductAvailability struct {
	ProductID snowflake.ID    `json:"product_id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int64           `json:"stock"`
	Reserved  int64           `json:"reserved"`
	Available int64           `json:"available"`
}

type Service interface {
	NearestStores(ctx context.Context, req NearestStoresRequest) ([]StoreSummary, error)
	StoreAvailability(ctx context.Context, storeID string) ([]ProductAvailability, error)
}

var (
	ErrInvalidCoordinates = errors.New("invalid_coordinates")
	ErrInvalidRadius      = errors.New("invalid_radius")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
)
