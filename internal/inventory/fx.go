package inventory

import (
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/inventory/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("inventory",
	fx.Provide(repository.Provide),
)
