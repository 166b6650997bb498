package service

import (
	"github.com/hcc-raf-server/internal/domain"
	"github.com/hcc-raf-server/internal/registry"
)

// Formatter turns engine results into response payloads for one model-year profile.
// It holds no per-request state and is safe for concurrent use.
type Formatter struct {
	profile    *registry.Profile
	classifier *CoefficientClassifier
}

// NewFormatter creates a formatter for the given profile
func NewFormatter(profile *registry.Profile) *Formatter {
	return &Formatter{
		profile:    profile,
		classifier: NewCoefficientClassifier(profile),
	}
}

// Profile returns the model-year profile the formatter labels with
func (f *Formatter) Profile() *registry.Profile {
	return f.profile
}

// FormatFull produces the multi-condition payload
func (f *Formatter) FormatFull(raw *domain.RawModelResult) *domain.FullResponse {
	clean := Sanitize(raw)
	breakdown := f.classifier.Classify(clean, domain.ModeFull)
	scores := NormalizeScore(clean.RiskScore, f.profile.NormFactor)
	return ComposeFull(scores, ClassifyCommunity(clean.Demographics), breakdown)
}

// FormatReduced produces the single-condition payload
func (f *Formatter) FormatReduced(raw *domain.RawModelResult) *domain.ReducedResponse {
	clean := Sanitize(raw)
	breakdown := f.classifier.Classify(clean, domain.ModeReduced)
	return ComposeReduced(ClassifyCommunity(clean.Demographics), breakdown)
}

// Format produces the payload for mode, as a value ready for JSON encoding
func (f *Formatter) Format(raw *domain.RawModelResult, mode domain.Mode) interface{} {
	if mode == domain.ModeReduced {
		return f.FormatReduced(raw)
	}
	return f.FormatFull(raw)
}
