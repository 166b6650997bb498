package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hcc-raf-server/internal/domain"
)

// CalculateRAFParams defines parameters for the calculate_raf tool
type CalculateRAFParams struct {
	DiagnosisCodes []string `json:"diagnosis_codes" jsonschema:"ICD-10 diagnosis codes to score"`
	Age            int      `json:"age" jsonschema:"age in years, at least 1"`
	Sex            string   `json:"sex" jsonschema:"M, F, 1 or 2"`
	DualElgblCd    string   `json:"dual_elgbl_cd,omitempty" jsonschema:"dual eligibility code 00-10, or FBDual, PBDual, NonDual"`
	OREC           string   `json:"orec,omitempty" jsonschema:"original reason for entitlement code 0-3"`
	CREC           string   `json:"crec,omitempty" jsonschema:"current reason for entitlement code 0-4"`
	NewEnrollee    bool     `json:"new_enrollee,omitempty" jsonschema:"score as a new enrollee"`
	SNP            bool     `json:"snp,omitempty" jsonschema:"enrolled in a special needs plan"`
}

// CalculateHCCParams defines parameters for the calculate_hcc_contribution tool
type CalculateHCCParams struct {
	DiagnosisCode string `json:"diagnosis_code" jsonschema:"a single ICD-10 diagnosis code"`
	Age           int    `json:"age" jsonschema:"age in years, at least 1"`
	Sex           string `json:"sex" jsonschema:"M, F, 1 or 2"`
	DualElgblCd   string `json:"dual_elgbl_cd,omitempty" jsonschema:"dual eligibility code 00-10, or FBDual, PBDual, NonDual"`
	OREC          string `json:"orec,omitempty" jsonschema:"original reason for entitlement code 0-3"`
	CREC          string `json:"crec,omitempty" jsonschema:"current reason for entitlement code 0-4"`
	NewEnrollee   bool   `json:"new_enrollee,omitempty" jsonschema:"score as a new enrollee"`
	SNP           bool   `json:"snp,omitempty" jsonschema:"enrolled in a special needs plan"`
}

func patientParams(age int, sex, dual, orec, crec string, newEnrollee, snp bool) domain.PatientParams {
	return domain.PatientParams{
		Age:         age,
		Sex:         sex,
		DualElgblCd: dual,
		OREC:        orec,
		CREC:        crec,
		NewEnrollee: newEnrollee,
		SNP:         snp,
	}
}

// handleCalculateRAF handles the calculate_raf tool invocation
func (s *Server) handleCalculateRAF(ctx context.Context, req *mcp.CallToolRequest, params CalculateRAFParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolCalculateRAF).Debug("Tool invoked")

	resp, err := s.calculator.CalculateRAF(ctx, &domain.RAFRequest{
		DiagnosisCodes: params.DiagnosisCodes,
		PatientParams:  patientParams(params.Age, params.Sex, params.DualElgblCd, params.OREC, params.CREC, params.NewEnrollee, params.SNP),
	})
	if err != nil {
		return createErrorResult(err), nil, nil
	}
	return createJSONResult(resp)
}

// handleCalculateHCC handles the calculate_hcc_contribution tool invocation
func (s *Server) handleCalculateHCC(ctx context.Context, req *mcp.CallToolRequest, params CalculateHCCParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolCalculateHCC).Debug("Tool invoked")

	resp, err := s.calculator.CalculateHCC(ctx, &domain.HCCRequest{
		DiagnosisCode: params.DiagnosisCode,
		PatientParams: patientParams(params.Age, params.Sex, params.DualElgblCd, params.OREC, params.CREC, params.NewEnrollee, params.SNP),
	})
	if err != nil {
		return createErrorResult(err), nil, nil
	}
	return createJSONResult(resp)
}

// createJSONResult returns the payload as JSON text
func createJSONResult(payload interface{}) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode tool result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

// createErrorResult reports a failed calculation with its original message
func createErrorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: err.Error()},
		},
		IsError: true,
	}
}
