package store

import (
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/store/repository"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/store/service"
	"go.uber.org/fx"
)

var Module = fx.Module("store.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
