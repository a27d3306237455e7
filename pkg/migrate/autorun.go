package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/moments-backend/pkg/config"
	"github.com/angelmondragon/moments-backend/pkg/db"
	"github.com/angelmondragon/moments-backend/pkg/db/models"
	"github.com/angelmondragon/moments-backend/pkg/logger"
)

// MaybeRunDev brings the schema up to date at boot. SQLite is always
// auto-migrated from the models since the SQL files are Postgres-only.
// Postgres runs the embedded goose migrations only in dev with the
// auto-migrate flag set.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client.Dialect() == config.DBDriverSQLite {
		logg.Info(ctx, "migrate.sqlite.automigrate")
		return AutoMigrateModels(ctx, client)
	}
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	applied, err := Up(ctx, sqlDB, Embedded())
	if err != nil {
		return err
	}
	versions := make([]int64, 0, len(applied))
	for _, a := range applied {
		versions = append(versions, a.Version)
	}
	logg.Info(logg.WithField(ctx, "applied", versions), "migrate.dev.complete")
	return nil
}

// AutoMigrateModels creates the gallery tables from the gorm models.
func AutoMigrateModels(ctx context.Context, client *db.Client) error {
	if err := client.DB().WithContext(ctx).AutoMigrate(&models.Media{}, &models.Uploader{}); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}
	return nil
}
