package order

import (
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/lock"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/order/domain"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/order/repository"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(func(l *lock.Locker) domain.StoreLocker { return l }),
	fx.Provide(service.New),
)
