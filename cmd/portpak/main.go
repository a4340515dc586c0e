package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/portpak/portpak/internal/config"
	"github.com/portpak/portpak/internal/migration"
	"github.com/portpak/portpak/internal/seed"
	"github.com/portpak/portpak/internal/server"
	"github.com/portpak/portpak/pkg/db"
	"github.com/portpak/portpak/pkg/log"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		server.Module,
		fx.Invoke(Migrate),
		fx.Invoke(SeedDefaults),
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

func Migrate(gdb *gorm.DB) error {
	return migration.AutoMigrate(gdb)
}

// SeedDefaults installs the default fee table for the configured
// company on startup. No-op unless both SEED_ON_START and
// DEFAULT_COMPANY are set.
func SeedDefaults(lc fx.Lifecycle, cfg config.Config, gdb *gorm.DB, genID *snowflake.Node, logger *zap.Logger) {
	if !cfg.SeedOnStart || cfg.DefaultCompanyID == 0 {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			companyID := snowflake.ParseInt64(cfg.DefaultCompanyID)
			return seed.Fees(ctx, gdb, genID, companyID, logger)
		},
	})
}
