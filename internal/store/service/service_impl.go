package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Tejaramidi0118/parcel-management-sub000/internal/cache"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/config"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/geo"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/store/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultLimit = 10

type Params struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Cache cache.Client `optional:"true"`
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	repo            domain.Repository
	cache           cache.Client
	proximityTTL    time.Duration
	availabilityTTL time.Duration
}

func New(p Params) domain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("store.service"),
		repo:            p.Repo,
		cache:           p.Cache,
		proximityTTL:    time.Duration(p.Cfg.ProximityCacheTTLSeconds) * time.Second,
		availabilityTTL: time.Duration(p.Cfg.AvailabilityCacheTTLSeconds) * time.Second,
	}
}

func (s *Service) NearestStores(ctx context.Context, req domain.NearestStoresRequest) ([]domain.StoreSummary, error) {
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return nil, domain.ErrInvalidCoordinates
	}
	if req.RadiusKm <= 0 {
		return nil, domain.ErrInvalidRadius
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	key := geo.ProximityKey(req.Latitude, req.Longitude, req.RadiusKm, limit)
	if s.cache != nil {
		var cached []domain.StoreSummary
		if s.cache.GetJSON(ctx, key, &cached) {
			return cached, nil
		}
	}

	stores, err := s.repo.ListActive(ctx, s.db)
	if err != nil {
		return nil, err
	}

	maxMeters := req.RadiusKm * 1000
	summaries := make([]domain.StoreSummary, 0, len(stores))
	for _, store := range stores {
		if store == nil || store.Latitude == nil || store.Longitude == nil {
			continue
		}
		distance := geo.DistanceMeters(req.Latitude, req.Longitude, *store.Latitude, *store.Longitude)
		if distance > maxMeters {
			continue
		}
		summaries = append(summaries, domain.StoreSummary{
			Store:            *store,
			DistanceMeters:   distance,
			DeliveryPossible: distance <= store.RadiusKm*1000,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].DistanceMeters < summaries[j].DistanceMeters
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}

	if s.cache != nil {
		s.cache.SetJSON(ctx, key, summaries, s.proximityTTL)
	}
	return summaries, nil
}

func (s *Service) StoreAvailability(ctx context.Context, storeID string) ([]domain.ProductAvailability, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(storeID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}

	key := cache.AvailabilityKey(id)
	if s.cache != nil {
		var cached []domain.ProductAvailability
		if s.cache.GetJSON(ctx, key, &cached) {
			return cached, nil
		}
	}

	store, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if store == nil || !store.Active {
		return nil, domain.ErrNotFound
	}

	rows, err := s.repo.ListAvailability(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetJSON(ctx, key, rows, s.availabilityTTL)
	}
	return rows, nil
}
