package service

import (
	"strings"

	"github.com/hcc-raf-server/internal/domain"
	"github.com/hcc-raf-server/internal/registry"
)

// FallbackSource is reported for a condition whose triggering input codes are unknown
const FallbackSource = "Unidentified Diagnosis Code"

// demographicLabelSeparator joins the labels collected for the demographic entry
const demographicLabelSeparator = ", "

// CoefficientClassifier partitions an engine result's coefficient table into
// conditions, interactions and demographics using the profile's labels.
type CoefficientClassifier struct {
	profile *registry.Profile
}

// NewCoefficientClassifier creates a classifier bound to a model-year profile
func NewCoefficientClassifier(profile *registry.Profile) *CoefficientClassifier {
	return &CoefficientClassifier{profile: profile}
}

// Classify builds the breakdown for raw. Groups are derived from membership in the
// condition list and the interaction flags, never from what is left of the coefficient
// table, so no code lands in two groups and raw is not modified. Interactions are
// left empty in reduced mode.
func (c *CoefficientClassifier) Classify(raw *domain.RawModelResult, mode domain.Mode) domain.CoefficientBreakdown {
	emitted := make(map[string]bool, len(raw.ConditionList)+len(raw.Interactions))

	breakdown := domain.CoefficientBreakdown{
		Conditions:   c.conditions(raw, emitted),
		Interactions: []domain.CoefficientEntry{},
		Demographics: c.demographics(raw),
	}
	if mode == domain.ModeFull {
		breakdown.Interactions = c.interactions(raw, emitted)
	}
	return breakdown
}

func (c *CoefficientClassifier) conditions(raw *domain.RawModelResult, emitted map[string]bool) []domain.ConditionEntry {
	entries := make([]domain.ConditionEntry, 0, len(raw.ConditionList))
	for _, code := range raw.ConditionList {
		coefficient, ok := raw.Coefficients[code]
		if !ok || emitted[code] {
			continue
		}
		emitted[code] = true

		entries = append(entries, domain.ConditionEntry{
			Code:        code,
			Source:      sourceCodes(raw.CodeToSource, code),
			Label:       c.profile.Labels.Condition(code),
			Coefficient: coefficient,
		})
	}
	return entries
}

func sourceCodes(codeToSource map[string]domain.SourceCodes, code string) []string {
	sources, ok := codeToSource[code]
	if !ok || len(sources) == 0 {
		return []string{FallbackSource}
	}
	return append([]string(nil), sources...)
}

func (c *CoefficientClassifier) interactions(raw *domain.RawModelResult, emitted map[string]bool) []domain.CoefficientEntry {
	entries := make([]domain.CoefficientEntry, 0)
	for _, flag := range raw.Interactions {
		if !flag.Triggered() || c.profile.IsExcludedInteraction(flag.Code) {
			continue
		}
		coefficient, ok := raw.Coefficients[flag.Code]
		if !ok || emitted[flag.Code] {
			continue
		}
		emitted[flag.Code] = true

		entries = append(entries, domain.CoefficientEntry{
			Code:        flag.Code,
			Label:       c.profile.Labels.Interaction(flag.Code),
			Coefficient: coefficient,
		})
	}
	return entries
}

// demographics always yields exactly one entry: the demographic bucket with the
// labels of every set flag and every recognised string value.
func (c *CoefficientClassifier) demographics(raw *domain.RawModelResult) []domain.CoefficientEntry {
	var labels []string
	seen := make(map[string]bool)
	add := func(label string) {
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}

	for _, field := range raw.Demographics.OrderedFields() {
		switch value := field.Value.(type) {
		case bool:
			if !value {
				continue
			}
			if label, ok := c.profile.Labels.LookupDemographic(field.Name); ok {
				add(label)
			}
		case string:
			if label, ok := c.profile.Labels.LookupDemographic(value); ok {
				add(label)
			}
		}
	}

	return []domain.CoefficientEntry{{
		Code:        raw.Demographics.Category,
		Label:       strings.Join(labels, demographicLabelSeparator),
		Coefficient: raw.RiskScoreDemographics,
	}}
}
