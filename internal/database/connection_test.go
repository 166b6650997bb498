package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hcc-raf-server/internal/domain"
)

// startPostgres runs a disposable PostgreSQL container and returns its connection settings
func startPostgres(t *testing.T) domain.DatabaseConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return domain.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		Database:        "testdb",
		Username:        "testuser",
		Password:        "testpass",
		SSLMode:         "disable",
		MaxConns:        10,
		MinConns:        2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel) // Reduce noise in tests
	return logger
}

func TestDatabaseConnection(t *testing.T) {
	config := startPostgres(t)
	ctx := context.Background()

	db, err := NewConnection(ctx, config, quietLogger())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Health(ctx))

	stats := db.Stats()
	assert.NotZero(t, stats.TotalConns(), "Expected at least one connection in pool")

	sqlDB := db.SQL()
	var one int
	require.NoError(t, sqlDB.QueryRowContext(ctx, "SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
	require.NoError(t, sqlDB.Close())

	// The pool outlives the database/sql handle
	assert.NoError(t, db.Health(ctx))
}

func TestDatabaseConnection_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewConnection(ctx, domain.DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     1,
		Database: "none",
		Username: "none",
		SSLMode:  "disable",
	}, quietLogger())
	assert.Error(t, err)
}

func TestMigrationRunner(t *testing.T) {
	config := startPostgres(t)
	ctx := context.Background()

	url := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		config.Username, config.Password, config.Host, config.Port, config.Database)

	runner, err := NewMigrationRunner(url, "../../migrations", quietLogger())
	require.NoError(t, err)
	defer runner.Close()

	status, err := runner.Version()
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion{}, status)

	require.NoError(t, runner.Up(ctx))
	status, err = runner.Version()
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion{Version: 1, Dirty: false}, status)

	// A second run has nothing to apply
	require.NoError(t, runner.Up(ctx))

	db, err := NewConnection(ctx, config, quietLogger())
	require.NoError(t, err)
	defer db.Close()

	var exists bool
	require.NoError(t, db.Pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'calculation_audit')",
	).Scan(&exists))
	assert.True(t, exists)

	require.NoError(t, runner.Down(ctx))
	require.NoError(t, db.Pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'calculation_audit')",
	).Scan(&exists))
	assert.False(t, exists)
}

func TestMigrationRunner_CancelledContext(t *testing.T) {
	config := startPostgres(t)

	url := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		config.Username, config.Password, config.Host, config.Port, config.Database)

	runner, err := NewMigrationRunner(url, "../../migrations", quietLogger())
	require.NoError(t, err)
	defer runner.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = runner.Up(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// the runner stays usable with a live context
	require.NoError(t, runner.Up(context.Background()))
}

func TestNewMigrationRunner_BadSource(t *testing.T) {
	_, err := NewMigrationRunner("postgres://u:p@127.0.0.1:1/db?sslmode=disable", t.TempDir()+"/absent", quietLogger())
	assert.ErrorContains(t, err, "creating migration instance")
}
