package domain

import (
	"context"
	"time"
)

// CalculationRecord is one audited calculation. It is written after the response is
// built and never read back into a response.
type CalculationRecord struct {
	ID             string        `json:"id"`
	RequestID      string        `json:"request_id"`
	Mode           string        `json:"mode"`
	ModelName      string        `json:"model_name"`
	DiagnosisCount int           `json:"diagnosis_count"`
	RiskScore      *float64      `json:"risk_score,omitempty"`
	Community      string        `json:"community"`
	Duration       time.Duration `json:"duration"`
	ErrorMessage   string        `json:"error_message,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// AuditRecorder persists calculation records
type AuditRecorder interface {
	Record(ctx context.Context, record *CalculationRecord) error
}

type requestIDKey struct{}

// WithRequestID attaches the correlation id of the inbound request to ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the correlation id attached to ctx, if any
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
