package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcc-raf-server/internal/domain"
	"github.com/hcc-raf-server/internal/registry"
)

func emittedCodes(b domain.CoefficientBreakdown) []string {
	var codes []string
	for _, e := range b.Conditions {
		codes = append(codes, e.Code)
	}
	for _, e := range b.Interactions {
		codes = append(codes, e.Code)
	}
	for _, e := range b.Demographics {
		codes = append(codes, e.Code)
	}
	return codes
}

func TestCoefficientClassifier_Disjoint(t *testing.T) {
	c := NewCoefficientClassifier(registry.Default())

	raw := newEngineResult()
	// the engine reporting a condition code as a flagged interaction too
	raw.Interactions = append(raw.Interactions, domain.InteractionFlag{Code: "38", Flag: 1})
	raw.ConditionList = append(raw.ConditionList, "226")

	b := c.Classify(Sanitize(raw), domain.ModeFull)

	codes := emittedCodes(b)
	seen := make(map[string]int)
	for _, code := range codes {
		seen[code]++
	}
	for code, n := range seen {
		assert.Equal(t, 1, n, "code %s emitted %d times", code, n)
	}
	assert.ElementsMatch(t, []string{"226", "38", "DIABETES_HF_V28", "F70_74"}, codes)
}

func TestCoefficientClassifier_Conditions(t *testing.T) {
	c := NewCoefficientClassifier(registry.Default())

	t.Run("unknown code uses fallbacks", func(t *testing.T) {
		raw := &domain.RawModelResult{
			Coefficients:  map[string]float64{"999": 0.5},
			ConditionList: []string{"999"},
		}

		b := c.Classify(raw, domain.ModeFull)

		require.Len(t, b.Conditions, 1)
		assert.Equal(t, registry.FallbackCondition, b.Conditions[0].Label)
		assert.Equal(t, []string{FallbackSource}, b.Conditions[0].Source)
		assert.Equal(t, 0.5, b.Conditions[0].Coefficient)
	})

	t.Run("condition without coefficient is skipped", func(t *testing.T) {
		raw := &domain.RawModelResult{
			Coefficients:  map[string]float64{"38": 0.166},
			ConditionList: []string{"226", "38"},
		}

		b := c.Classify(raw, domain.ModeFull)

		require.Len(t, b.Conditions, 1)
		assert.Equal(t, "38", b.Conditions[0].Code)
	})

	t.Run("keeps engine order", func(t *testing.T) {
		raw := &domain.RawModelResult{
			Coefficients:  map[string]float64{"1": 0.1, "226": 0.36, "38": 0.166},
			ConditionList: []string{"226", "1", "38"},
		}

		b := c.Classify(raw, domain.ModeFull)

		assert.Equal(t, []string{"226", "1", "38", ""}, emittedCodes(b))
	})
}

func TestCoefficientClassifier_Interactions(t *testing.T) {
	c := NewCoefficientClassifier(registry.Default())

	tests := []struct {
		name  string
		flags domain.InteractionFlags
		want  []string
	}{
		{
			name:  "triggered terms only",
			flags: domain.InteractionFlags{{Code: "DIABETES_HF_V28", Flag: 1}, {Code: "HF_KIDNEY_V28", Flag: 0}},
			want:  []string{"DIABETES_HF_V28"},
		},
		{
			name:  "internal medicaid terms are excluded",
			flags: domain.InteractionFlags{{Code: "MCAID_Female_Aged", Flag: 1}, {Code: "NMCAID_NORIGDIS", Flag: 1}},
			want:  []string{},
		},
		{
			name:  "any non-zero flag triggers",
			flags: domain.InteractionFlags{{Code: "HF_KIDNEY_V28", Flag: 2}},
			want:  []string{"HF_KIDNEY_V28"},
		},
		{
			name:  "flagged term without coefficient is skipped",
			flags: domain.InteractionFlags{{Code: "D3", Flag: 1}},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &domain.RawModelResult{
				Coefficients: map[string]float64{
					"DIABETES_HF_V28":   0.112,
					"HF_KIDNEY_V28":     0.1,
					"MCAID_Female_Aged": 0.2,
					"NMCAID_NORIGDIS":   0.05,
				},
				Interactions: tt.flags,
			}

			b := c.Classify(raw, domain.ModeFull)

			got := make([]string, 0, len(b.Interactions))
			for _, e := range b.Interactions {
				got = append(got, e.Code)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown interaction uses fallback label", func(t *testing.T) {
		raw := &domain.RawModelResult{
			Coefficients: map[string]float64{"NEW_TERM_V29": 0.3},
			Interactions: domain.InteractionFlags{{Code: "NEW_TERM_V29", Flag: 1}},
		}

		b := c.Classify(raw, domain.ModeFull)

		require.Len(t, b.Interactions, 1)
		assert.Equal(t, registry.FallbackInteraction, b.Interactions[0].Label)
	})

	t.Run("skipped in reduced mode", func(t *testing.T) {
		b := c.Classify(newEngineResult(), domain.ModeReduced)

		assert.NotNil(t, b.Interactions)
		assert.Empty(t, b.Interactions)
	})
}

func TestCoefficientClassifier_Demographics(t *testing.T) {
	c := NewCoefficientClassifier(registry.Default())

	tests := []struct {
		name   string
		fields []domain.DemographicField
		want   string
	}{
		{
			name:   "no labelled fields",
			fields: []domain.DemographicField{{Name: "age", Value: 40}, {Name: "sex", Value: "M"}},
			want:   "",
		},
		{
			name: "flags and bucket in engine order",
			fields: []domain.DemographicField{
				{Name: "disabled", Value: true},
				{Name: "category", Value: "M45_54"},
				{Name: "pbd", Value: true},
				{Name: "fbd", Value: false},
			},
			want: "Disabled, Male, Age 45-54, Partial Benefit Dual",
		},
		{
			name:   "unlabelled true flag is ignored",
			fields: []domain.DemographicField{{Name: "category", Value: "F95_GT"}, {Name: "graft_months", Value: true}},
			want:   "Female, Age 95+",
		},
		{
			name:   "string flag values are not flags",
			fields: []domain.DemographicField{{Name: "esrd", Value: "true"}},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &domain.RawModelResult{
				RiskScoreDemographics: 0.42,
				Demographics:          domain.NewDemographics(tt.fields),
			}

			b := c.Classify(raw, domain.ModeFull)

			require.Len(t, b.Demographics, 1)
			assert.Equal(t, tt.want, b.Demographics[0].Label)
			assert.Equal(t, 0.42, b.Demographics[0].Coefficient)
			assert.Equal(t, raw.Demographics.Category, b.Demographics[0].Code)
		})
	}
}
