package domain

// Mode selects which response shape a calculation produces
type Mode int

const (
	// ModeFull is the multi-condition breakdown: scores, community and all three groups.
	ModeFull Mode = iota
	// ModeReduced is the single-condition breakdown: community and conditions only.
	ModeReduced
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeReduced:
		return "reduced"
	default:
		return "unknown"
	}
}

// RawModelResult is the engine's output for one subject. It is shared read-only:
// nothing downstream of the engine may modify it.
type RawModelResult struct {
	ModelName             string                 `json:"model_name,omitempty"`
	RiskScore             float64                `json:"risk_score"`
	RiskScoreDemographics float64                `json:"risk_score_demographics"`
	Coefficients          map[string]float64     `json:"coefficients"`
	ConditionList         []string               `json:"hcc_list"`
	CodeToSource          map[string]SourceCodes `json:"cc_to_dx"`
	Interactions          InteractionFlags       `json:"interactions"`
	Demographics          Demographics           `json:"demographics"`
}

// InteractionFlag is one interaction term and whether the engine triggered it
type InteractionFlag struct {
	Code string
	Flag int
}

// Triggered reports whether the interaction term applies to the subject
func (f InteractionFlag) Triggered() bool {
	return f.Flag != 0
}

// InteractionFlags keeps the engine's interaction terms in the order it emitted them
type InteractionFlags []InteractionFlag

// DemographicField is one field of the engine's demographic record
type DemographicField struct {
	Name  string
	Value interface{}
}

// Demographics is the engine's demographic record. Fields holds every field in the
// order the engine supplied it; the typed members are derived from it.
type Demographics struct {
	Category           string
	PartialBenefitDual bool
	FullBenefitDual    bool
	Disabled           bool
	NewEnrollee        bool
	Fields             []DemographicField
}

// NewDemographics builds a record from ordered fields, deriving the typed members.
// Both the engine's short names (pbd, fbd) and the long names are recognised.
func NewDemographics(fields []DemographicField) Demographics {
	d := Demographics{Fields: fields}
	for _, f := range fields {
		switch f.Name {
		case "category":
			if s, ok := f.Value.(string); ok {
				d.Category = s
			}
		case "pbd", "partial_benefit_dual":
			d.PartialBenefitDual = isTrue(f.Value)
		case "fbd", "full_benefit_dual":
			d.FullBenefitDual = isTrue(f.Value)
		case "disabled":
			d.Disabled = isTrue(f.Value)
		case "new_enrollee":
			d.NewEnrollee = isTrue(f.Value)
		}
	}
	return d
}

// OrderedFields returns the record's fields in engine order. A record built from typed
// members alone yields the fields those members stand for.
func (d Demographics) OrderedFields() []DemographicField {
	if len(d.Fields) > 0 {
		return d.Fields
	}
	return []DemographicField{
		{Name: "category", Value: d.Category},
		{Name: "new_enrollee", Value: d.NewEnrollee},
		{Name: "disabled", Value: d.Disabled},
		{Name: "fbd", Value: d.FullBenefitDual},
		{Name: "pbd", Value: d.PartialBenefitDual},
	}
}

func isTrue(v interface{}) bool {
	b, ok := v.(bool)
	return ok && b
}

// CoefficientEntry is one labelled coefficient in the breakdown
type CoefficientEntry struct {
	Code        string  `json:"code"`
	Label       string  `json:"label"`
	Coefficient float64 `json:"coefficient"`
}

// ConditionEntry is a condition coefficient with the input codes that triggered it
type ConditionEntry struct {
	Code        string   `json:"code"`
	Source      []string `json:"source"`
	Label       string   `json:"label"`
	Coefficient float64  `json:"coefficient"`
}

// CoefficientBreakdown partitions the engine's coefficient table into three disjoint groups
type CoefficientBreakdown struct {
	Conditions   []ConditionEntry
	Interactions []CoefficientEntry
	Demographics []CoefficientEntry
}

// ScoreSummary holds the display-rounded raw score and its year-normalized counterpart
type ScoreSummary struct {
	RiskScore           float64
	RiskScoreNormalized float64
}

// FullResponse is the multi-condition payload
type FullResponse struct {
	RiskScore           float64            `json:"risk_score"`
	RiskScoreNormalized float64            `json:"risk_score_normalized"`
	Community           string             `json:"community"`
	Interactions        []CoefficientEntry `json:"interactions"`
	Conditions          []ConditionEntry   `json:"conditions"`
	Demographics        []CoefficientEntry `json:"demographics"`
}

// ReducedResponse is the single-condition payload: no scores, no interactions
type ReducedResponse struct {
	Community  string           `json:"community"`
	Conditions []ConditionEntry `json:"conditions"`
}

// PatientParams are the subject attributes shared by both request modes
type PatientParams struct {
	Age         int    `json:"age"`
	Sex         string `json:"sex"`
	DualElgblCd string `json:"dual_elgbl_cd,omitempty"`
	OREC        string `json:"orec,omitempty"`
	CREC        string `json:"crec,omitempty"`
	NewEnrollee bool   `json:"new_enrollee,omitempty"`
	SNP         bool   `json:"snp,omitempty"`
	ModelName   string `json:"model_name,omitempty"`
}

// RAFRequest is a multi-condition calculation request
type RAFRequest struct {
	DiagnosisCodes []string `json:"diagnosis_codes"`
	PatientParams
}

// HCCRequest is a single-condition calculation request
type HCCRequest struct {
	DiagnosisCode string `json:"diagnosis_code"`
	PatientParams
}

// EngineRequest is the input contract of the external engine. Empty optional codes
// are omitted so the engine applies its own defaults.
type EngineRequest struct {
	DiagnosisCodes []string `json:"diagnosis_codes"`
	ModelName      string   `json:"model_name"`
	Age            int      `json:"age"`
	Sex            string   `json:"sex"`
	DualElgblCd    string   `json:"dual_elgbl_cd,omitempty"`
	OREC           string   `json:"orec,omitempty"`
	CREC           string   `json:"crec,omitempty"`
	NewEnrollee    bool     `json:"new_enrollee"`
	SNP            bool     `json:"snp"`
}
