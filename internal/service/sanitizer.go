package service

import (
	"sort"

	"github.com/hcc-raf-server/internal/domain"
)

// Sanitize returns an independent, well-formed copy of an engine result.
// Set-typed fields become ordered, duplicate-free sequences: the condition list keeps
// the engine's first-seen order, source codes are sorted. The input is never modified.
func Sanitize(raw *domain.RawModelResult) *domain.RawModelResult {
	if raw == nil {
		return &domain.RawModelResult{
			Coefficients:  map[string]float64{},
			ConditionList: []string{},
			CodeToSource:  map[string]domain.SourceCodes{},
			Interactions:  domain.InteractionFlags{},
		}
	}

	out := &domain.RawModelResult{
		ModelName:             raw.ModelName,
		RiskScore:             raw.RiskScore,
		RiskScoreDemographics: raw.RiskScoreDemographics,
		Coefficients:          make(map[string]float64, len(raw.Coefficients)),
		ConditionList:         dedupStrings(raw.ConditionList),
		CodeToSource:          make(map[string]domain.SourceCodes, len(raw.CodeToSource)),
		Interactions:          make(domain.InteractionFlags, 0, len(raw.Interactions)),
		Demographics:          copyDemographics(raw.Demographics),
	}

	for code, coefficient := range raw.Coefficients {
		out.Coefficients[code] = coefficient
	}

	for code, sources := range raw.CodeToSource {
		sorted := dedupStrings(sources)
		sort.Strings(sorted)
		out.CodeToSource[code] = sorted
	}

	seen := make(map[string]bool, len(raw.Interactions))
	for _, flag := range raw.Interactions {
		if seen[flag.Code] {
			continue
		}
		seen[flag.Code] = true
		out.Interactions = append(out.Interactions, flag)
	}

	return out
}

func dedupStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func copyDemographics(d domain.Demographics) domain.Demographics {
	fields := make([]domain.DemographicField, 0, len(d.Fields))
	for _, f := range d.Fields {
		fields = append(fields, domain.DemographicField{Name: f.Name, Value: copyValue(f.Value)})
	}
	d.Fields = fields
	return d
}

// copyValue deep-copies the container types produced by JSON decoding.
// Anything else is passed through unchanged.
func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, item := range val {
			m[k] = copyValue(item)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(val))
		for i, item := range val {
			s[i] = copyValue(item)
		}
		return s
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}
