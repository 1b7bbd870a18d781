package main

import (
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/cache"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/clock"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/config"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/dispatch"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/inventory"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/lock"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/migration"
	obsmetrics "github.com/Tejaramidi0118/parcel-management-sub000/internal/observability/metrics"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/order"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/server"
	"github.com/Tejaramidi0118/parcel-management-sub000/internal/store"
	"github.com/Tejaramidi0118/parcel-management-sub000/pkg/db"
	"github.com/Tejaramidi0118/parcel-management-sub000/pkg/log"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		obsmetrics.Module,
		migration.Module,

		// Coordination and caching
		lock.Module,
		cache.Module,

		// Functional domains
		store.Module,
		inventory.Module,
		order.Module,
		dispatch.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
