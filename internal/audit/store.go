// Package audit keeps an append-only trail of completed calculations.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hcc-raf-server/internal/domain"
)

// Store persists calculation records
type Store interface {
	domain.AuditRecorder
	List(ctx context.Context, limit, offset int) ([]*domain.CalculationRecord, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

const defaultListLimit = 50

// prepare fills the generated fields of a record before it is written
func prepare(record *domain.CalculationRecord) error {
	if record == nil {
		return fmt.Errorf("audit record is required")
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	return nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans a row into a CalculationRecord
func scanRecord(s scanner) (*domain.CalculationRecord, error) {
	record := &domain.CalculationRecord{}
	var score sql.NullFloat64
	var durationMS int64

	err := s.Scan(
		&record.ID, &record.RequestID, &record.Mode, &record.ModelName,
		&record.DiagnosisCount, &score, &record.Community, &durationMS,
		&record.ErrorMessage, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if score.Valid {
		value := score.Float64
		record.RiskScore = &value
	}
	record.Duration = time.Duration(durationMS) * time.Millisecond
	return record, nil
}

func nullableScore(score *float64) sql.NullFloat64 {
	if score == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *score, Valid: true}
}

func scanAll(rows *sql.Rows) ([]*domain.CalculationRecord, error) {
	defer rows.Close()

	records := []*domain.CalculationRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit records: %w", err)
	}
	return records, nil
}
