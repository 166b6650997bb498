package service

import (
	"fmt"
	"strings"

	"github.com/hcc-raf-server/internal/domain"
)

var (
	validSexCodes  = map[string]bool{"M": true, "F": true, "1": true, "2": true}
	validOrecCodes = map[string]bool{"0": true, "1": true, "2": true, "3": true}
	validCrecCodes = map[string]bool{"0": true, "1": true, "2": true, "3": true, "4": true}
)

// ValidateRAFRequest checks multi-condition boundary input
func ValidateRAFRequest(req *domain.RAFRequest) error {
	if req == nil {
		return domain.NewValidationError("request", "request body is required", nil)
	}
	if len(req.DiagnosisCodes) == 0 {
		return domain.NewValidationError("diagnosis_codes", "at least one diagnosis code is required", req.DiagnosisCodes)
	}
	for i, code := range req.DiagnosisCodes {
		if strings.TrimSpace(code) == "" {
			return domain.NewValidationError(fmt.Sprintf("diagnosis_codes[%d]", i), "diagnosis code must not be empty", code)
		}
	}
	return validatePatient(&req.PatientParams)
}

// ValidateHCCRequest checks single-condition boundary input
func ValidateHCCRequest(req *domain.HCCRequest) error {
	if req == nil {
		return domain.NewValidationError("request", "request body is required", nil)
	}
	if strings.TrimSpace(req.DiagnosisCode) == "" {
		return domain.NewValidationError("diagnosis_code", "diagnosis code is required", req.DiagnosisCode)
	}
	return validatePatient(&req.PatientParams)
}

func validatePatient(p *domain.PatientParams) error {
	if p.Age < 1 {
		return domain.NewValidationError("age", "must be at least 1", p.Age)
	}
	if !validSexCodes[p.Sex] {
		return domain.NewValidationError("sex", "must be one of M, F, 1, 2", p.Sex)
	}
	if !validDualCode(p.DualElgblCd) {
		return domain.NewValidationError("dual_elgbl_cd", "must be a code 00-10 or one of FBDual, PBDual, NonDual", p.DualElgblCd)
	}
	if p.OREC != "" && !validOrecCodes[p.OREC] {
		return domain.NewValidationError("orec", "must be one of 0, 1, 2, 3", p.OREC)
	}
	if p.CREC != "" && !validCrecCodes[p.CREC] {
		return domain.NewValidationError("crec", "must be one of 0, 1, 2, 3, 4", p.CREC)
	}
	return nil
}

func validDualCode(value string) bool {
	if value == "" || IsDualAlias(value) {
		return true
	}
	if len(value) != 2 {
		return false
	}
	switch {
	case value == "10":
		return true
	case value[0] == '0' && value[1] >= '0' && value[1] <= '9':
		return true
	}
	return false
}
