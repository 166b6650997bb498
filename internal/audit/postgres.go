package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hcc-raf-server/internal/database"
	"github.com/hcc-raf-server/internal/domain"
)

// PostgresStore implements Store on PostgreSQL. The schema is created by the
// migrations under migrations/.
type PostgresStore struct {
	db      *sql.DB
	release func()
}

// NewPostgresStore wraps an open database handle, usually database.DB.SQL()
func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromPool builds a store over a connection pool. Closing the store
// closes the pool.
func NewPostgresStoreFromPool(ctx context.Context, pool *database.DB) (*PostgresStore, error) {
	return newPooledStore(ctx, pool.SQL(), pool.Close)
}

// newPooledStore owns db: it is closed when the store cannot be opened. The caller
// still owns whatever release closes.
func newPooledStore(ctx context.Context, db *sql.DB, release func()) (*PostgresStore, error) {
	store, err := NewPostgresStore(ctx, db)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}
	store.release = release
	return store, nil
}

// Record appends a calculation record
func (s *PostgresStore) Record(ctx context.Context, record *domain.CalculationRecord) error {
	if err := prepare(record); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calculation_audit (
			id, request_id, mode, model_name, diagnosis_count,
			risk_score, community, duration_ms, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		record.ID, record.RequestID, record.Mode, record.ModelName, record.DiagnosisCount,
		nullableScore(record.RiskScore), record.Community, record.Duration.Milliseconds(),
		record.ErrorMessage, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// List returns records newest first
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*domain.CalculationRecord, error) {
	limit, offset = normalizePage(limit, offset)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id::text, request_id, mode, model_name, diagnosis_count,
			risk_score, community, duration_ms, error_message, created_at
		FROM calculation_audit
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	return scanAll(rows)
}

// Count returns the number of stored records
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM calculation_audit").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit records: %w", err)
	}
	return count, nil
}

// Close closes the database handle and the pool behind it, if the store owns one
func (s *PostgresStore) Close() error {
	err := s.db.Close()
	if s.release != nil {
		s.release()
	}
	return err
}
