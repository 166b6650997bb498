package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hcc-raf-server/internal/domain"
)

// Calculator runs one risk-adjustment calculation end to end: boundary validation,
// alias normalization, the engine call and formatting of the engine's result.
type Calculator struct {
	logger    *logrus.Logger
	engine    domain.RiskEngine
	formatter *Formatter
	audit     domain.AuditRecorder
}

// NewCalculator creates a calculator. audit may be nil when the audit trail is disabled.
func NewCalculator(logger *logrus.Logger, engine domain.RiskEngine, formatter *Formatter, audit domain.AuditRecorder) *Calculator {
	return &Calculator{
		logger:    logger,
		engine:    engine,
		formatter: formatter,
		audit:     audit,
	}
}

// Formatter returns the formatter the calculator labels results with
func (c *Calculator) Formatter() *Formatter {
	return c.formatter
}

// CalculateRAF scores a set of diagnosis codes and returns the full breakdown.
// Validation and engine errors are returned with their original message.
func (c *Calculator) CalculateRAF(ctx context.Context, req *domain.RAFRequest) (*domain.FullResponse, error) {
	startTime := time.Now()

	if err := ValidateRAFRequest(req); err != nil {
		return nil, err
	}

	engineReq := BuildEngineRequest(req.DiagnosisCodes, req.PatientParams, c.formatter.Profile().Model)
	raw, err := c.callEngine(ctx, engineReq, domain.ModeFull)
	if err != nil {
		c.record(ctx, engineReq, domain.ModeFull, nil, "", startTime, err)
		return nil, err
	}

	resp := c.formatter.FormatFull(raw)

	c.logger.WithFields(logrus.Fields{
		"request_id":            domain.RequestIDFromContext(ctx),
		"mode":                  domain.ModeFull.String(),
		"model":                 engineReq.ModelName,
		"diagnosis_codes":       len(engineReq.DiagnosisCodes),
		"risk_score":            resp.RiskScore,
		"risk_score_normalized": resp.RiskScoreNormalized,
		"conditions":            len(resp.Conditions),
		"interactions":          len(resp.Interactions),
		"duration_ms":           time.Since(startTime).Milliseconds(),
	}).Info("RAF calculation completed")

	score := resp.RiskScore
	c.record(ctx, engineReq, domain.ModeFull, &score, resp.Community, startTime, nil)
	return resp, nil
}

// CalculateHCC reports what a single diagnosis code contributes: community and
// conditions only, no score and no interactions.
func (c *Calculator) CalculateHCC(ctx context.Context, req *domain.HCCRequest) (*domain.ReducedResponse, error) {
	startTime := time.Now()

	if err := ValidateHCCRequest(req); err != nil {
		return nil, err
	}

	engineReq := BuildEngineRequest([]string{req.DiagnosisCode}, req.PatientParams, c.formatter.Profile().Model)
	raw, err := c.callEngine(ctx, engineReq, domain.ModeReduced)
	if err != nil {
		c.record(ctx, engineReq, domain.ModeReduced, nil, "", startTime, err)
		return nil, err
	}

	resp := c.formatter.FormatReduced(raw)

	c.logger.WithFields(logrus.Fields{
		"request_id":     domain.RequestIDFromContext(ctx),
		"mode":           domain.ModeReduced.String(),
		"model":          engineReq.ModelName,
		"diagnosis_code": engineReq.DiagnosisCodes[0],
		"conditions":     len(resp.Conditions),
		"duration_ms":    time.Since(startTime).Milliseconds(),
	}).Info("HCC contribution calculated")

	c.record(ctx, engineReq, domain.ModeReduced, nil, resp.Community, startTime, nil)
	return resp, nil
}

func (c *Calculator) callEngine(ctx context.Context, req *domain.EngineRequest, mode domain.Mode) (*domain.RawModelResult, error) {
	raw, err := c.engine.Calculate(ctx, req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"request_id": domain.RequestIDFromContext(ctx),
			"mode":       mode.String(),
			"model":      req.ModelName,
		}).WithError(err).Warn("Risk engine call failed")
		return nil, err
	}
	return raw, nil
}

func (c *Calculator) record(ctx context.Context, req *domain.EngineRequest, mode domain.Mode, score *float64, community string, startTime time.Time, calcErr error) {
	if c.audit == nil {
		return
	}

	record := &domain.CalculationRecord{
		ID:             uuid.New().String(),
		RequestID:      domain.RequestIDFromContext(ctx),
		Mode:           mode.String(),
		ModelName:      req.ModelName,
		DiagnosisCount: len(req.DiagnosisCodes),
		RiskScore:      score,
		Community:      community,
		Duration:       time.Since(startTime),
		CreatedAt:      time.Now().UTC(),
	}
	if calcErr != nil {
		record.ErrorMessage = calcErr.Error()
	}

	if err := c.audit.Record(ctx, record); err != nil {
		c.logger.WithError(err).WithField("request_id", record.RequestID).Warn("Failed to record calculation audit entry")
	}
}
