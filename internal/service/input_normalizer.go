package service

import (
	"strings"

	"github.com/hcc-raf-server/internal/domain"
)

// Dual-eligibility aliases accepted from callers
const (
	DualAliasFull    = "FBDual"
	DualAliasPartial = "PBDual"
	DualAliasNone    = "NonDual"
)

// dualAliases maps caller-facing dual-eligibility aliases to engine codes.
// An empty code means the engine treats the subject as non-dual.
var dualAliases = map[string]string{
	DualAliasFull:    "02",
	DualAliasPartial: "01",
	DualAliasNone:    "",
}

// NormalizeDualStatus translates a dual-eligibility alias into the engine's code.
// Literal codes and unknown values pass through unchanged.
func NormalizeDualStatus(value string) string {
	if code, ok := dualAliases[value]; ok {
		return code
	}
	return value
}

// IsDualAlias reports whether value is one of the caller-facing aliases
func IsDualAlias(value string) bool {
	_, ok := dualAliases[value]
	return ok
}

// BuildEngineRequest converts boundary input into the engine's input contract.
// defaultModel is used when the caller did not name a model.
func BuildEngineRequest(codes []string, params domain.PatientParams, defaultModel string) *domain.EngineRequest {
	trimmed := make([]string, 0, len(codes))
	for _, code := range codes {
		trimmed = append(trimmed, strings.TrimSpace(code))
	}

	model := strings.TrimSpace(params.ModelName)
	if model == "" {
		model = defaultModel
	}

	return &domain.EngineRequest{
		DiagnosisCodes: trimmed,
		ModelName:      model,
		Age:            params.Age,
		Sex:            params.Sex,
		DualElgblCd:    NormalizeDualStatus(params.DualElgblCd),
		OREC:           params.OREC,
		CREC:           params.CREC,
		NewEnrollee:    params.NewEnrollee,
		SNP:            params.SNP,
	}
}
