// Package registry holds the versioned, read-only configuration of a risk model year:
// the human-readable label tables and the normalization factor.
package registry

import (
	"fmt"
	"strings"
)

// Fallback labels for codes missing from a table
const (
	FallbackCondition   = "Unidentified HCC"
	FallbackInteraction = "Unidentified Interaction"
	FallbackDemographic = "Unidentified Demographic"
)

// LabelRegistry maps condition, interaction and demographic codes to descriptions.
// It is immutable after construction and safe for concurrent use.
type LabelRegistry struct {
	conditions   map[string]string
	interactions map[string]string
	demographics map[string]string
}

// Stats reports the size of each label table
type Stats struct {
	Conditions   int `json:"conditions" yaml:"conditions"`
	Interactions int `json:"interactions" yaml:"interactions"`
	Demographics int `json:"demographics" yaml:"demographics"`
}

// NewLabelRegistry creates a registry from the three tables. The tables are copied,
// so later changes to the arguments do not affect the registry.
func NewLabelRegistry(conditions, interactions, demographics map[string]string) *LabelRegistry {
	return &LabelRegistry{
		conditions:   copyTable(conditions),
		interactions: copyTable(interactions),
		demographics: copyTable(demographics),
	}
}

// Condition returns the label for a condition code
func (r *LabelRegistry) Condition(code string) string {
	if label, ok := r.conditions[code]; ok {
		return label
	}
	return FallbackCondition
}

// Interaction returns the label for an interaction code
func (r *LabelRegistry) Interaction(code string) string {
	if label, ok := r.interactions[code]; ok {
		return label
	}
	return FallbackInteraction
}

// Demographic returns the label for a demographic code
func (r *LabelRegistry) Demographic(code string) string {
	if label, ok := r.demographics[code]; ok {
		return label
	}
	return FallbackDemographic
}

// LookupDemographic returns the label for a demographic code and whether it exists
func (r *LabelRegistry) LookupDemographic(code string) (string, bool) {
	label, ok := r.demographics[code]
	return label, ok
}

// Stats returns the table sizes
func (r *LabelRegistry) Stats() Stats {
	return Stats{
		Conditions:   len(r.conditions),
		Interactions: len(r.interactions),
		Demographics: len(r.demographics),
	}
}

func copyTable(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Profile is the configuration of one model year. Profiles are shared between
// concurrent requests and must not be modified after construction.
type Profile struct {
	Model            string
	Year             int
	NormFactor       float64
	NormFactorSource string

	// ExcludedInteractionMarkers are substrings identifying interaction terms the
	// engine uses internally for dual/Medicaid status. They are never displayed.
	ExcludedInteractionMarkers []string

	Labels *LabelRegistry
}

// Validate checks that the profile can be used for formatting
func (p *Profile) Validate() error {
	if p.Model == "" {
		return fmt.Errorf("model name is required")
	}
	if p.NormFactor <= 0 {
		return fmt.Errorf("normalization factor must be positive, got %v", p.NormFactor)
	}
	if p.Labels == nil {
		return fmt.Errorf("label registry is required")
	}
	for _, marker := range p.ExcludedInteractionMarkers {
		if strings.TrimSpace(marker) == "" {
			return fmt.Errorf("excluded interaction markers must not be blank")
		}
	}
	return nil
}

// IsExcludedInteraction reports whether an interaction code is an engine-internal term
func (p *Profile) IsExcludedInteraction(code string) bool {
	for _, marker := range p.ExcludedInteractionMarkers {
		if strings.Contains(code, marker) {
			return true
		}
	}
	return false
}

// Default returns the compiled-in profile: CMS-HCC V28, payment year 2025
func Default() *Profile {
	p := *v28Profile
	p.ExcludedInteractionMarkers = append([]string(nil), v28Profile.ExcludedInteractionMarkers...)
	return &p
}
