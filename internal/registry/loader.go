package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// profileFile is the on-disk layout of a model-year profile
type profileFile struct {
	Model                      string   `yaml:"model"`
	Year                       int      `yaml:"year"`
	NormFactor                 float64  `yaml:"norm_factor"`
	NormFactorSource           string   `yaml:"norm_factor_source"`
	ExcludedInteractionMarkers []string `yaml:"excluded_interaction_markers"`

	// InheritDefaultLabels fills tables missing from the file with the compiled-in ones,
	// so a new year that only revises the factor can ship a three-line file.
	InheritDefaultLabels bool `yaml:"inherit_default_labels"`

	Labels struct {
		Conditions   map[string]string `yaml:"conditions"`
		Interactions map[string]string `yaml:"interactions"`
		Demographics map[string]string `yaml:"demographics"`
	} `yaml:"labels"`
}

// LoadProfile reads a model-year profile from a YAML file
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	profile, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return profile, nil
}

// ParseProfile decodes and validates a YAML model-year profile
func ParseProfile(data []byte) (*Profile, error) {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}

	conditions := file.Labels.Conditions
	interactions := file.Labels.Interactions
	demographics := file.Labels.Demographics
	markers := file.ExcludedInteractionMarkers

	if file.InheritDefaultLabels {
		if conditions == nil {
			conditions = v28ConditionLabels
		}
		if interactions == nil {
			interactions = v28InteractionLabels
		}
		if demographics == nil {
			demographics = v28DemographicLabels
		}
		if markers == nil {
			markers = v28InternalInteractionMarkers
		}
	}

	trimmed := make([]string, 0, len(markers))
	for _, m := range markers {
		trimmed = append(trimmed, strings.TrimSpace(m))
	}

	profile := &Profile{
		Model:                      strings.TrimSpace(file.Model),
		Year:                       file.Year,
		NormFactor:                 file.NormFactor,
		NormFactorSource:           file.NormFactorSource,
		ExcludedInteractionMarkers: trimmed,
		Labels:                     NewLabelRegistry(conditions, interactions, demographics),
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	if profile.NormFactorSource == "" {
		return nil, fmt.Errorf("invalid profile: norm_factor_source must document where the factor comes from")
	}
	return profile, nil
}
