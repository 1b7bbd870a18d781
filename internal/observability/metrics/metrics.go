package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Tejaramidi0118/parcel-management-sub000/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("metrics",
	fx.Provide(NewProvider),
	fx.Provide(New),
)

// Metrics exposes the order-path instruments.
type Metrics struct {
	ordersCreated     metric.Int64Counter
	insufficientStock metric.Int64Counter
	lockUnavailable   metric.Int64Counter
	inventoryLockWait metric.Float64Histogram
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.MetricsEnabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.MetricsProtocol, cfg.MetricsEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down meter provider")
			return provider.Shutdown(ctx)
		},
	})

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.MetricsEndpoint),
		zap.String("protocol", cfg.MetricsProtocol),
	)
	return provider, nil
}

// New configures the domain instruments.
func New(cfg config.Config, provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(cfg.AppName)

	ordersCreated, err := meter.Int64Counter("orders_created_total",
		metric.WithDescription("Orders committed successfully"))
	if err != nil {
		return nil, err
	}
	insufficientStock, err := meter.Int64Counter("orders_insufficient_stock_total",
		metric.WithDescription("Orders rejected for stock shortages"))
	if err != nil {
		return nil, err
	}
	lockUnavailable, err := meter.Int64Counter("store_lock_unavailable_total",
		metric.WithDescription("Order attempts that lost the store lock race"))
	if err != nil {
		return nil, err
	}
	inventoryLockWait, err := meter.Float64Histogram("inventory_lock_wait_seconds",
		metric.WithDescription("Time spent acquiring inventory row locks"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ordersCreated:     ordersCreated,
		insufficientStock: insufficientStock,
		lockUnavailable:   lockUnavailable,
		inventoryLockWait: inventoryLockWait,
	}, nil
}

func (m *Metrics) IncOrderCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.ordersCreated.Add(ctx, 1)
}

func (m *Metrics) IncInsufficientStock(ctx context.Context) {
	if m == nil {
		return
	}
	m.insufficientStock.Add(ctx, 1)
}

func (m *Metrics) IncLockUnavailable(ctx context.Context) {
	if m == nil {
		return
	}
	m.lockUnavailable.Add(ctx, 1)
}

func (m *Metrics) ObserveInventoryLockWait(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.inventoryLockWait.Record(ctx, d.Seconds())
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported metrics protocol %q", protocol)
	}
}
