package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Tejaramidi0118/parcel-management-sub000/internal/clock"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/config"
	inventorydomain "github.com/Tejaramidi0118/parcel-management-sub000/internal/inventory/domain"
	inventoryrepo "github.com/Tejaramidi0118/parcel-management-sub000/internal/inventory/repository"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/order/domain"
	orderrepo "github.com/Tejaramidi0118/parcel-management-sub000/internal/order/repository"
	storedomain "github.com/Tejaramidi0118/parcel-management-sub000/internal/store/domain"
	storerepo "github.com/Tejaramidi0118/parcel-management-sub000/internal/store/repository"
	pkgdb "github.com/Tejaramidi0118/parcel-management-sub000/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// -- Fakes --

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]string
	seq      int
	releases int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]string{}}
}

func (f *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.held[key]; ok {
		return "", false, nil
	}
	f.seq++
	token := fmt.Sprintf("token-%d", f.seq)
	f.held[key] = token
	return token, true, nil
}

func (f *fakeLocker) Release(ctx context.Context, key, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[key] == token {
		delete(f.held, key)
		f.releases++
	}
	return nil
}

func (f *fakeLocker) heldCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.held)
}

func (f *fakeLocker) releaseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.releases
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []snowflake.ID
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (f *fakeCache) GetJSON(ctx context.Context, key string, dest any) bool {
	f.mu.Lock()
	raw, ok := f.entries[key]
	f.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (f *fakeCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	f.mu.Lock()
	f.entries[key] = raw
	f.mu.Unlock()
}

func (f *fakeCache) InvalidateStore(ctx context.Context, storeID snowflake.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, storeID)
	for key := range f.entries {
		if strings.HasPrefix(key, "proximity:") || strings.HasPrefix(key, "availability:store:"+storeID.String()) {
			delete(f.entries, key)
		}
	}
}

func (f *fakeCache) invalidations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.invalidated)
}

// failingOrderRepo fails a chosen step to exercise rollback paths.
type failingOrderRepo struct {
	domain.Repository
	failStatusLog bool
}

func (r *failingOrderRepo) InsertStatusLog(ctx context.Context, tx *gorm.DB, log *domain.OrderStatusLog) error {
	if r.failStatusLog {
		return errors.New("status log write failed")
	}
	return r.Repository.InsertStatusLog(ctx, tx, log)
}

// -- Test env --

type testEnv struct {
	t        *testing.T
	db       *gorm.DB
	node     *snowflake.Node
	locker   *fakeLocker
	cache    *fakeCache
	cfg      config.Config
	storeID  snowflake.ID
	products []snowflake.ID
}

type testProduct struct {
	price int64
	stock int64
}

func newTestEnv(t *testing.T, products ...testProduct) *testEnv {
	t.Helper()

	conn, err := pkgdb.NewTest()
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// One connection keeps sqlite happy under concurrent callers.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(
		&storedomain.Store{},
		&storedomain.Product{},
		&inventorydomain.InventoryRecord{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.OrderStatusLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	lat, lng := 12.9716, 77.5946
	store := storedomain.Store{
		ID:        node.Generate(),
		Name:      "Test Hub",
		Active:    true,
		Latitude:  &lat,
		Longitude: &lng,
		RadiusKm:  5,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, conn.Create(&store).Error)

	env := &testEnv{
		t:      t,
		db:     conn,
		node:   node,
		locker: newFakeLocker(),
		cache:  newFakeCache(),
		cfg: config.Config{
			StoreLockTTLSeconds:         15,
			FreeDeliveryThreshold:       200,
			DeliveryFlatFee:             40,
			ProximityCacheTTLSeconds:    60,
			AvailabilityCacheTTLSeconds: 30,
		},
		storeID: store.ID,
	}

	for i, p := range products {
		product := storedomain.Product{
			ID:        node.Generate(),
			StoreID:   store.ID,
			Name:      fmt.Sprintf("Product %d", i+1),
			Unit:      "pc",
			UnitPrice: decimal.NewFromInt(p.price),
			Available: true,
			Metadata:  datatypes.JSONMap{},
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		require.NoError(t, conn.Create(&product).Error)
		require.NoError(t, conn.Create(&inventorydomain.InventoryRecord{
			StoreID:       store.ID,
			ProductID:     product.ID,
			StockQuantity: p.stock,
			UpdatedAt:     time.Now().UTC(),
		}).Error)
		env.products = append(env.products, product.ID)
	}
	return env
}

func (e *testEnv) service() domain.Service {
	return e.serviceWithRepo(orderrepo.Provide())
}

func (e *testEnv) serviceWithRepo(repo domain.Repository) domain.Service {
	return New(Params{
		Cfg:       e.cfg,
		DB:        e.db,
		Log:       zap.NewNop(),
		GenID:     e.node,
		Clock:     clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)),
		Repo:      repo,
		StoreRepo: storerepo.Provide(),
		Inventory: inventoryrepo.Provide(),
		Locker:    e.locker,
		Cache:     e.cache,
	})
}

func (e *testEnv) createReq(quantities ...int64) domain.CreateOrderRequest {
	items := make([]domain.OrderItemRequest, 0, len(quantities))
	for i, qty := range quantities {
		items = append(items, domain.OrderItemRequest{
			ProductID: e.products[i].String(),
			Quantity:  qty,
		})
	}
	return domain.CreateOrderRequest{
		CustomerID: e.node.Generate().String(),
		StoreID:    e.storeID.String(),
		Items:      items,
		Delivery: domain.DeliverySnapshot{
			Street:  "12 MG Road",
			Area:    "Indiranagar",
			City:    "Bengaluru",
			Pincode: "560038",
			Lat:     12.9719,
			Lng:     77.6412,
			Phone:   "9800000000",
		},
		PaymentMethod: "COD",
	}
}

func (e *testEnv) stockOf(productID snowflake.ID) int64 {
	var record inventorydomain.InventoryRecord
	require.NoError(e.t, e.db.Where("store_id = ? AND product_id = ?", e.storeID, productID).First(&record).Error)
	return record.StockQuantity
}

// -- Tests --

func TestCreateOrderFreeDeliveryAboveThreshold(t *testing.T) {
	env := newTestEnv(t, testProduct{price: 50, stock: 100})
	svc := env.service()

	order, err := svc.CreateOrder(context.Background(), env.createReq(5))
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(250)), "subtotal %s", order.Subtotal)
	assert.True(t, order.DeliveryFee.IsZero(), "fee %s", order.DeliveryFee)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(250)), "total %s", order.Total)
	assert.Equal(t, domain.StatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].PriceAtOrder.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, int64(95), env.stockOf(env.products[0]))

	// Initial audit row exists.
	var logs []domain.OrderStatusLog
	require.NoError(t, env.db.Where("order_id = ?", order.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.StatusPending, logs[0].NewStatus)
}

func TestCreateOrderFlatFeeBelowThreshold(t *testing.T) {
	env := newTestEnv(t, testProduct{price: 50, stock: 100})
	svc := env.service()

	order, err := svc.CreateOrder(context.Background(), env.createReq(3))
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(150)))
	assert.True(t, order.DeliveryFee.Equal(decimal.NewFromInt(40)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(190)))

	// Exactly on the threshold the fee is waived.
	boundary, err := svc.CreateOrder(context.Background(), env.createReq(4))
	require.NoError(t, err)
	assert.True(t, boundary.Subtotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, boundary.DeliveryFee.IsZero())
}

func TestCreateOrderInsufficientStockAggregates(t *testing.T) {
	env := newTestEnv(t,
		testProduct{price: 50, stock: 2},
		testProduct{price: 30, stock: 10},
		testProduct{price: 20, stock: 1},
	)
	svc := env.service()

	_, err := svc.CreateOrder(context.Background(), env.createReq(3, 2, 4))
	require.Error(t, err)

	shortage, ok := domain.AsInsufficientStock(err)
	require.True(t, ok, "expected InsufficientStockError, got %v", err)
	require.Len(t, shortage.Shortages, 2)
	assert.Equal(t, env.products[0], shortage.Shortages[0].ProductID)
	assert.Equal(t, int64(3), shortage.Shortages[0].Requested)
	assert.Equal(t, int64(2), shortage.Shortages[0].Available)
	assert.Equal(t, env.products[2], shortage.Shortages[1].ProductID)

	// Whole order rejected: nothing was decremented, nothing persisted.
	assert.Equal(t, int64(2), env.stockOf(env.products[0]))
	assert.Equal(t, int64(10), env.stockOf(env.products[1]))
	var count int64
	require.NoError(t, env.db.Model(&domain.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Zero(t, env.locker.heldCount())
}

func TestCreateOrderScenarioSequentialContention(t *testing.T) {
	env := newTestEnv(t, testProduct{price: 50, stock: 5})
	svc := env.service()

	_, err := svc.CreateOrder(context.Background(), env.createReq(3))
	require.NoError(t, err)
	assert.Equal(t, int64(2), env.stockOf(env.products[0]))

	_, err = svc.CreateOrder(context.Background(), env.createReq(3))
	shortage, ok := domain.AsInsufficientStock(err)
	require.True(t, ok)
	require.Len(t, shortage.Shortages, 1)
	assert.Equal(t, int64(3), shortage.Shortages[0].Requested)
	assert.Equal(t, int64(2), shortage.Shortages[0].Available)
	assert.Equal(t, int64(2), env.stockOf(env.products[0]))
}

func TestCreateOrderConcurrentNoOversell(t *testing.T) {
	const initialStock = 5
	const workers = 12

	env := newTestEnv(t, testProduct{price: 50, stock: initialStock})
	svc := env.service()

	var wg sync.WaitGroup
	var successes, shortages atomic.Int64
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				_, err := svc.CreateOrder(context.Background(), env.createReq(1))
				if err == nil {
					successes.Add(1)
					return
				}
				if errors.Is(err, domain.ErrLockUnavailable) {
					time.Sleep(time.Millisecond)
					continue
				}
				if _, ok := domain.AsInsufficientStock(err); ok {
					shortages.Add(1)
					return
				}
				errCh <- err
				return
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal(t, int64(initialStock), successes.Load())
	assert.Equal(t, int64(workers-initialStock), shortages.Load())
	assert.Equal(t, int64(0), env.stockOf(env.products[0]))
	assert.Zero(t, env.locker.heldCount())
}

func TestCreateOrderRollbackReleasesLock(t *testing.T) {
	env := newTestEnv(t, testProduct{price: 50, stock: 10})
	svc := env.serviceWithRepo(&failingOrderRepo{
		Repository:    orderrepo.Provide(),
		failStatusLog: true,
	})

	_, err := svc.CreateOrder(context.Background(), env.createReq(2))
	require.Error(t, err)

	// Full rollback: no order rows, stock untouched.
	var orders, items int64
	require.NoError(t, env.db.Model(&domain.Order{}).Count(&orders).Error)
	require.NoError(t, env.db.Model(&domain.OrderItem{}).Count(&items).Error)
	assert.Zero(t, orders)
	assert.Zero(t, items)
	assert.Equal(t, int64(10), env.stockOf(env.products[0]))

	// The lock was released on the failure path; a fresh acquire works.
	assert.Equal(t, 1, env.locker.releaseCount())
	_, ok, err := env.locker.TryLock(context.Background(), "order:lock:store:"+env.storeID.String(), time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	// Nothing was invalidated for a failed order.
	assert.Zero(t, env.cache.invalidations())
}

func TestCreateOrderLockUnavailable(t *testing.T) {
	env := newTestEnv(t, testProduct{price: 50, stock: 10})
	svc := env.service()

	key := "order:lock:store:" + env.storeID.String()
	_, ok, err := env.locker.TryLock(context.Background(), key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.CreateOrder(context.Background(), env.createReq(1))
	assert.ErrorIs(t, err, domain.ErrLockUnavailable)

	// No database side effects at all.
	var count int64
	require.NoError(t, env.db.Model(&domain.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, int64(10), env.stockOf(env.products[0]))
}

func TestPriceSnapshotImmutable(t *testing.T) {
	env := newTestEnv(t, testProduct{price: 50, stock: 10})
	svc := env.service()

	order, err := svc.CreateOrder(context.Background(), env.createReq(2))
	require.NoError(t, err)

	// Reprice the live catalog after the order.
	require.NoError(t, env.db.Exec(
		`UPDATE products SET unit_price = ? WHERE id = ?`,
		decimal.NewFromInt(99), env.products[0],
	).Error)

	reloaded, err := svc.GetOrder(context.Background(), order.ID.String())
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.True(t, reloaded.Items[0].PriceAtOrder.Equal(decimal.NewFromInt(50)))
	assert.True(t, reloaded.Subtotal.Equal(decimal.NewFromInt(100)))
}

func TestCreateOrderInvalidatesCache(t *testing.T) {
	env := newTestEnv(t, testProduct{price: 50, stock: 10})
	svc := env.service()

	// Pre-warmed cache entries for this store and a proximity page.
	env.cache.SetJSON(context.Background(), "availability:store:"+env.storeID.String(), []string{"stale"}, time.Minute)
	env.cache.SetJSON(context.Background(), "proximity:12.972:77.595:10:10", []string{"stale"}, time.Minute)

	_, err := svc.CreateOrder(context.Background(), env.createReq(1))
	require.NoError(t, err)

	var dest []string
	assert.False(t, env.cache.GetJSON(context.Background(), "availability:store:"+env.storeID.String(), &dest))
	assert.False(t, env.cache.GetJSON(context.Background(), "proximity:12.972:77.595:10:10", &dest))
	assert.Equal(t, 1, env.cache.invalidations())
}

func TestCreateOrderMergesDuplicateLines(t *testing.T) {
	env := newTestEnv(t, testProduct{price: 50, stock: 10})
	svc := env.service()

	req := env.createReq(2)
	req.Items = append(req.Items, domain.OrderItemRequest{
		ProductID: env.products[0].String(),
		Quantity:  3,
	})

	order, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(5), order.Items[0].Quantity)
	assert.Equal(t, int64(5), env.stockOf(env.products[0]))
}

func TestCreateOrderValidation(t *testing.T) {
	env := newTestEnv(t, testProduct{price: 50, stock: 10})
	svc := env.service()

	req := env.createReq(1)
	req.Items = nil
	_, err := svc.CreateOrder(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrEmptyItems)

	req = env.createReq(1)
	req.Items[0].Quantity = 0
	_, err = svc.CreateOrder(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	req = env.createReq(1)
	req.StoreID = env.node.Generate().String()
	_, err = svc.CreateOrder(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListCustomerOrders(t *testing.T) {
	env := newTestEnv(t, testProduct{price: 50, stock: 100})
	svc := env.service()

	req := env.createReq(1)
	first, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
		CustomerID:    req.CustomerID,
		StoreID:       req.StoreID,
		Items:         req.Items,
		Delivery:      req.Delivery,
		PaymentMethod: req.PaymentMethod,
	})
	require.NoError(t, err)

	orders, err := svc.ListCustomerOrders(context.Background(), req.CustomerID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	ids := []snowflake.ID{orders[0].ID, orders[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
	for _, order := range orders {
		assert.Len(t, order.Items, 1)
	}
}

func TestUpdateStatusLifecycle(t *testing.T) {
	env := newTestEnv(t, testProduct{price: 50, stock: 10})
	svc := env.service()

	order, err := svc.CreateOrder(context.Background(), env.createReq(1))
	require.NoError(t, err)
	actor := env.node.Generate().String()

	updated, err := svc.UpdateStatus(context.Background(), domain.UpdateStatusRequest{
		OrderID:   order.ID.String(),
		NewStatus: domain.StatusConfirmed,
		ActorID:   actor,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)
	require.NotNil(t, updated.ConfirmedAt)

	updated, err = svc.UpdateStatus(context.Background(), domain.UpdateStatusRequest{
		OrderID:   order.ID.String(),
		NewStatus: domain.StatusDelivered,
		ActorID:   actor,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, updated.Status)
	require.NotNil(t, updated.DeliveredAt)

	// Terminal states reject every further transition.
	_, err = svc.UpdateStatus(context.Background(), domain.UpdateStatusRequest{
		OrderID:   order.ID.String(),
		NewStatus: domain.StatusCancelled,
		ActorID:   actor,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Audit trail: creation + two transitions.
	var logs []domain.OrderStatusLog
	require.NoError(t, env.db.Where("order_id = ?", order.ID).Order("id").Find(&logs).Error)
	require.Len(t, logs, 3)
	assert.Equal(t, domain.StatusPending, logs[1].OldStatus)
	assert.Equal(t, domain.StatusConfirmed, logs[1].NewStatus)
	assert.Equal(t, domain.StatusConfirmed, logs[2].OldStatus)
	assert.Equal(t, domain.StatusDelivered, logs[2].NewStatus)
}

func TestUpdateStatusCancelFromNonTerminal(t *testing.T) {
	env := newTestEnv(t, testProduct{price: 50, stock: 10})
	svc := env.service()

	order, err := svc.CreateOrder(context.Background(), env.createReq(1))
	require.NoError(t, err)
	actor := env.node.Generate().String()

	updated, err := svc.UpdateStatus(context.Background(), domain.UpdateStatusRequest{
		OrderID:   order.ID.String(),
		NewStatus: domain.StatusCancelled,
		ActorID:   actor,
		Note:      "customer asked",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	require.NotNil(t, updated.CancelledAt)
}

func TestUpdateStatusRejectsBackward(t *testing.T) {
	env := newTestEnv(t, testProduct{price: 50, stock: 10})
	svc := env.service()

	order, err := svc.CreateOrder(context.Background(), env.createReq(1))
	require.NoError(t, err)
	actor := env.node.Generate().String()

	_, err = svc.UpdateStatus(context.Background(), domain.UpdateStatusRequest{
		OrderID:   order.ID.String(),
		NewStatus: domain.StatusAssigned,
		ActorID:   actor,
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), domain.UpdateStatusRequest{
		OrderID:   order.ID.String(),
		NewStatus: domain.StatusConfirmed,
		ActorID:   actor,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestGetOrderNotFound(t *testing.T) {
	env := newTestEnv(t, testProduct{price: 50, stock: 10})
	svc := env.service()

	_, err := svc.GetOrder(context.Background(), env.node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
