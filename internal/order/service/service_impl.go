package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Tejaramidi0118/parcel-management-sub000/internal/cache"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/clock"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/config"
	inventorydomain "github.com/Tejaramidi0118/parcel-management-sub000/internal/inventory/domain"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/lock"
	obsmetrics "github.com/Tejaramidi0118/parcel-management-sub000/internal/observability/metrics"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/order/domain"
	storedomain "github.com/Tejaramidi0118/parcel-management-sub000/internal/store/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// txTimeout bounds how long a stuck order can hold row locks.
const txTimeout = 10 * time.Second

type Params struct {
	fx.In

	Cfg       config.Config
	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	StoreRepo storedomain.Repository
	Inventory inventorydomain.Repository
	Locker    domain.StoreLocker
	Cache     cache.Client            `optional:"true"`
	Dispatch  domain.DispatchNotifier `optional:"true"`
	Metrics   *obsmetrics.Metrics     `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	storeRepo storedomain.Repository
	inventory inventorydomain.Repository
	locker    domain.StoreLocker
	cache     cache.Client
	dispatch  domain.DispatchNotifier
	metrics   *obsmetrics.Metrics

	lockTTL      time.Duration
	feeThreshold decimal.Decimal
	flatFee      decimal.Decimal
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("order.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		storeRepo:    p.StoreRepo,
		inventory:    p.Inventory,
		locker:       p.Locker,
		cache:        p.Cache,
		dispatch:     p.Dispatch,
		metrics:      p.Metrics,
		lockTTL:      time.Duration(p.Cfg.StoreLockTTLSeconds) * time.Second,
		feeThreshold: decimal.NewFromInt(p.Cfg.FreeDeliveryThreshold),
		flatFee:      decimal.NewFromInt(p.Cfg.DeliveryFlatFee),
	}
}

// CreateOrder acquires the store lock, then validates, prices, persists and
// decrements inside one transaction. The lock is released on every exit
// path; cache invalidation and the dispatch event only fire after commit.
func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.Order{}, err
	}
	storeID, err := parseID(req.StoreID)
	if err != nil {
		return domain.Order{}, err
	}
	quantities, productIDs, err := normalizeItems(req.Items)
	if err != nil {
		return domain.Order{}, err
	}

	store, err := s.storeRepo.FindByID(ctx, s.db, storeID)
	if err != nil {
		return domain.Order{}, err
	}
	if store == nil {
		return domain.Order{}, fmt.Errorf("store %s: %w", storeID, domain.ErrNotFound)
	}
	if !store.Active {
		return domain.Order{}, domain.ErrStoreInactive
	}

	key := lock.StoreKey(storeID)
	token, ok, err := s.locker.TryLock(ctx, key, s.lockTTL)
	if err != nil {
		return domain.Order{}, fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		s.metrics.IncLockUnavailable(ctx)
		return domain.Order{}, domain.ErrLockUnavailable
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := s.locker.Release(releaseCtx, key, token); err != nil {
			s.log.Warn("store lock release failed",
				zap.String("store_id", storeID.String()),
				zap.Error(err),
			)
		}
	}()

	txCtx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	var created domain.Order
	err = s.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		lockStart := time.Now()
		locked, err := s.inventory.LockForOrder(txCtx, tx, storeID, productIDs)
		s.metrics.ObserveInventoryLockWait(txCtx, time.Since(lockStart))
		if err != nil {
			return err
		}

		byProduct := make(map[snowflake.ID]inventorydomain.LockedItem, len(locked))
		for _, item := range locked {
			byProduct[item.ProductID] = item
		}

		var shortages []domain.Shortage
		for _, productID := range productIDs {
			item, ok := byProduct[productID]
			if !ok {
				return fmt.Errorf("product %s at store %s: %w", productID, storeID, domain.ErrNotFound)
			}
			if item.Available() < quantities[productID] {
				shortages = append(shortages, domain.Shortage{
					ProductID: productID,
					Requested: quantities[productID],
					Available: item.Available(),
				})
			}
		}
		if len(shortages) > 0 {
			return &domain.InsufficientStockError{Shortages: shortages}
		}

		subtotal := decimal.Zero
		for _, productID := range productIDs {
			item := byProduct[productID]
			subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(quantities[productID])))
		}
		deliveryFee := s.flatFee
		if subtotal.GreaterThanOrEqual(s.feeThreshold) {
			deliveryFee = decimal.Zero
		}

		now := s.clock.Now()
		order := domain.Order{
			ID:              s.genID.Generate(),
			CustomerID:      customerID,
			StoreID:         storeID,
			Subtotal:        subtotal,
			DeliveryFee:     deliveryFee,
			Total:           subtotal.Add(deliveryFee),
			Status:          domain.StatusPending,
			PaymentMethod:   strings.TrimSpace(req.PaymentMethod),
			PaymentStatus:   domain.PaymentPending,
			DeliveryStreet:  strings.TrimSpace(req.Delivery.Street),
			DeliveryArea:    strings.TrimSpace(req.Delivery.Area),
			DeliveryCity:    strings.TrimSpace(req.Delivery.City),
			DeliveryPincode: strings.TrimSpace(req.Delivery.Pincode),
			DeliveryLat:     req.Delivery.Lat,
			DeliveryLng:     req.Delivery.Lng,
			DeliveryPhone:   strings.TrimSpace(req.Delivery.Phone),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.repo.InsertOrder(txCtx, tx, &order); err != nil {
			return err
		}

		items := make([]domain.OrderItem, 0, len(productIDs))
		for _, productID := range productIDs {
			item := byProduct[productID]
			items = append(items, domain.OrderItem{
				ID:           s.genID.Generate(),
				OrderID:      order.ID,
				ProductID:    productID,
				ProductName:  item.Name,
				Quantity:     quantities[productID],
				PriceAtOrder: item.UnitPrice,
				CreatedAt:    now,
			})
		}
		if err := s.repo.InsertItems(txCtx, tx, items); err != nil {
			return err
		}

		for _, productID := range productIDs {
			if err := s.inventory.Decrement(txCtx, tx, storeID, productID, quantities[productID]); err != nil {
				return err
			}
		}

		if err := s.repo.InsertStatusLog(txCtx, tx, &domain.OrderStatusLog{
			ID:        s.genID.Generate(),
			OrderID:   order.ID,
			NewStatus: domain.StatusPending,
			ActorID:   customerID,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		order.Items = items
		created = order
		return nil
	})
	if err != nil {
		if _, ok := domain.AsInsufficientStock(err); ok {
			s.metrics.IncInsufficientStock(ctx)
		}
		return domain.Order{}, err
	}

	if s.cache != nil {
		s.cache.InvalidateStore(ctx, storeID)
	}
	if s.dispatch != nil {
		s.dispatch.OrderCreated(ctx, created)
	}
	s.metrics.IncOrderCreated(ctx)

	s.log.Info("order created",
		zap.String("order_id", created.ID.String()),
		zap.String("store_id", storeID.String()),
		zap.String("total", created.Total.String()),
		zap.Int("items", len(created.Items)),
	)
	return created, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	id, err := parseID(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrNotFound
	}
	return *order, nil
}

func (s *Service) ListCustomerOrders(ctx context.Context, customerID string) ([]domain.Order, error) {
	id, err := parseID(customerID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByCustomer(ctx, s.db, id)
}

// UpdateStatus runs the lifecycle state machine in a transaction scoped to
// the order row. It never touches the inventory lock.
func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.Order, error) {
	id, err := parseID(req.OrderID)
	if err != nil {
		return domain.Order{}, err
	}
	actorID, err := parseID(req.ActorID)
	if err != nil {
		return domain.Order{}, err
	}
	if !validStatus(req.NewStatus) {
		return domain.Order{}, domain.ErrInvalidStatus
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !canTransition(order.Status, req.NewStatus) {
			return fmt.Errorf("%s -> %s: %w", order.Status, req.NewStatus, domain.ErrInvalidTransition)
		}

		now := s.clock.Now()
		if err := s.repo.SetStatus(ctx, tx, id, req.NewStatus, statusTimestampColumn[req.NewStatus], now); err != nil {
			return err
		}
		return s.repo.InsertStatusLog(ctx, tx, &domain.OrderStatusLog{
			ID:        s.genID.Generate(),
			OrderID:   id,
			OldStatus: order.Status,
			NewStatus: req.NewStatus,
			ActorID:   actorID,
			Note:      strings.TrimSpace(req.Note),
			CreatedAt: now,
		})
	})
	if err != nil {
		return domain.Order{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Order{}, err
	}
	if updated == nil {
		return domain.Order{}, domain.ErrNotFound
	}
	return *updated, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

// normalizeItems merges duplicate product lines and keeps a stable product
// order for deterministic lock acquisition.
func normalizeItems(items []domain.OrderItemRequest) (map[snowflake.ID]int64, []snowflake.ID, error) {
	if len(items) == 0 {
		return nil, nil, domain.ErrEmptyItems
	}

	quantities := make(map[snowflake.ID]int64, len(items))
	order := make([]snowflake.ID, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, nil, domain.ErrInvalidQuantity
		}
		productID, err := parseID(item.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if _, seen := quantities[productID]; !seen {
			order = append(order, productID)
		}
		quantities[productID] += item.Quantity
	}
	return quantities, order, nil
}
