package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/hcc-raf-server/internal/domain"
)

// SQLiteStore implements Store on a local SQLite file. It is the default for
// single-process deployments.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens the audit database, creating the file and schema if needed
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single writer keeps SQLite from returning SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// createSchema mirrors migrations/000001_create_calculation_audit.up.sql
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS calculation_audit (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL DEFAULT '',
		mode TEXT NOT NULL,
		model_name TEXT NOT NULL,
		diagnosis_count INTEGER NOT NULL DEFAULT 0,
		risk_score REAL,
		community TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_calculation_audit_created_at ON calculation_audit(created_at);
	CREATE INDEX IF NOT EXISTS idx_calculation_audit_request_id ON calculation_audit(request_id);
	`

	_, err := db.Exec(schema)
	return err
}

// Record appends a calculation record
func (s *SQLiteStore) Record(ctx context.Context, record *domain.CalculationRecord) error {
	if err := prepare(record); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calculation_audit (
			id, request_id, mode, model_name, diagnosis_count,
			risk_score, community, duration_ms, error_message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*domain.CalculationRecord, error) {
	limit, offset = normalizePage(limit, offset)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, mode, model_name, diagnosis_count,
			risk_score, community, duration_ms, error_message, created_at
		FROM calculation_audit
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	return scanAll(rows)
}

// Count returns the number of stored records
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM calculation_audit").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit records: %w", err)
	}
	return count, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
