package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

// MigrationRunner applies the audit schema migrations under migrations/
type MigrationRunner struct {
	migrate *migrate.Migrate
	path    string
	log     *logrus.Logger
}

// SchemaVersion is the migration state of the audit database
type SchemaVersion struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

// NewMigrationRunner opens the migration source directory and the target database
func NewMigrationRunner(databaseURL, migrationsPath string, logger *logrus.Logger) (*MigrationRunner, error) {
	abs, err := filepath.Abs(migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("resolving migrations path %s: %w", migrationsPath, err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(abs), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating migration instance: %w", err)
	}

	return &MigrationRunner{migrate: m, path: abs, log: logger}, nil
}

// Up applies all pending migrations
func (mr *MigrationRunner) Up(ctx context.Context) error {
	return mr.apply(ctx, "up", mr.migrate.Up)
}

// Down rolls back the most recent migration
func (mr *MigrationRunner) Down(ctx context.Context) error {
	return mr.apply(ctx, "down", func() error { return mr.migrate.Steps(-1) })
}

// apply runs one migration operation. Cancelling ctx asks migrate to stop after the
// migration in progress.
func (mr *MigrationRunner) apply(ctx context.Context, direction string, run func() error) error {
	logger := mr.log.WithFields(logrus.Fields{"direction": direction, "path": mr.path})
	logger.Info("Running audit schema migrations")

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			mr.migrate.GracefulStop <- true
		case <-done:
		}
	}()

	err := run()
	close(done)
	<-exited
	// drop a stop request that arrived after run returned
	select {
	case <-mr.migrate.GracefulStop:
	default:
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("running migrations %s: %w", direction, ctxErr)
	}
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Audit schema already up to date")
			return nil
		}
		return fmt.Errorf("running migrations %s: %w", direction, err)
	}

	status, err := mr.Version()
	if err != nil {
		logger.WithError(err).Warn("Could not read schema version")
		return nil
	}
	logger.WithFields(logrus.Fields{
		"version": status.Version,
		"dirty":   status.Dirty,
	}).Info("Audit schema migrated")
	return nil
}

// Version returns the current schema version. A database with no migrations applied
// reports version 0.
func (mr *MigrationRunner) Version() (SchemaVersion, error) {
	version, dirty, err := mr.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return SchemaVersion{}, nil
	}
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("reading schema version: %w", err)
	}
	return SchemaVersion{Version: version, Dirty: dirty}, nil
}

// Close releases the migration source and database handles
func (mr *MigrationRunner) Close() error {
	sourceErr, dbErr := mr.migrate.Close()
	return errors.Join(sourceErr, dbErr)
}
