package service

import "github.com/hcc-raf-server/internal/domain"

// ComposeFull assembles the multi-condition payload
func ComposeFull(scores domain.ScoreSummary, community string, breakdown domain.CoefficientBreakdown) *domain.FullResponse {
	return &domain.FullResponse{
		RiskScore:           scores.RiskScore,
		RiskScoreNormalized: scores.RiskScoreNormalized,
		Community:           community,
		Interactions:        nonNilEntries(breakdown.Interactions),
		Conditions:          nonNilConditions(breakdown.Conditions),
		Demographics:        nonNilEntries(breakdown.Demographics),
	}
}

// ComposeReduced assembles the single-condition payload
func ComposeReduced(community string, breakdown domain.CoefficientBreakdown) *domain.ReducedResponse {
	return &domain.ReducedResponse{
		Community:  community,
		Conditions: nonNilConditions(breakdown.Conditions),
	}
}

// empty groups serialize as [] rather than null
func nonNilEntries(entries []domain.CoefficientEntry) []domain.CoefficientEntry {
	if entries == nil {
		return []domain.CoefficientEntry{}
	}
	return entries
}

func nonNilConditions(entries []domain.ConditionEntry) []domain.ConditionEntry {
	if entries == nil {
		return []domain.ConditionEntry{}
	}
	return entries
}
