package dispatch

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Tejaramidi0118/parcel-management-sub000/internal/config"
	orderdomain "github.com/Tejaramidi0118/parcel-management-sub000/internal/order/domain"
	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("dispatch",
	fx.Provide(New),
	fx.Provide(func(p *Publisher) orderdomain.DispatchNotifier { return p }),
)

// orderCreatedEvent is what the downstream parcel consumer receives.
type orderCreatedEvent struct {
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
	StoreID    string `json:"store_id"`
	Total      string `json:"total"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// Publisher notifies the dispatch consumer about created orders. Delivery is
// fire-and-forget: a broker outage never fails or delays an order.
type Publisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *Publisher {
	if !cfg.DispatchEnabled {
		return nil
	}

	brokers := strings.Split(cfg.DispatchBrokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  cfg.DispatchTopic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return writer.Close()
		},
	})

	return &Publisher{
		writer: writer,
		log:    log.Named("dispatch"),
	}
}

func (p *Publisher) OrderCreated(ctx context.Context, order orderdomain.Order) {
	if p == nil || p.writer == nil {
		return
	}

	payload, err := json.Marshal(orderCreatedEvent{
		OrderID:    order.ID.String(),
		CustomerID: order.CustomerID.String(),
		StoreID:    order.StoreID.String(),
		Total:      order.Total.String(),
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		p.log.Warn("order event encode failed", zap.Error(err))
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(order.StoreID.String()),
		Value: payload,
	})
	if err != nil {
		p.log.Warn("order event publish failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}
