package audit

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hcc-raf-server/internal/config"
	"github.com/hcc-raf-server/internal/database"
	"github.com/hcc-raf-server/internal/domain"
)

// NewStore opens the store selected by the audit configuration. For postgres the
// pending migrations are applied first.
func NewStore(ctx context.Context, cfg domain.AuditConfig, logger *logrus.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		store, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", cfg.SQLitePath).Info("SQLite audit store opened")
		return store, nil

	case "postgres":
		runner, err := database.NewMigrationRunner(config.DatabaseURL(cfg.Postgres), cfg.MigrationsPath, logger)
		if err != nil {
			return nil, err
		}
		migrateErr := runner.Up(ctx)
		if err := runner.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close migration runner")
		}
		if migrateErr != nil {
			return nil, migrateErr
		}

		db, err := database.NewConnection(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		store, err := NewPostgresStoreFromPool(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported audit driver: %s", cfg.Driver)
	}
}
