package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hcc-raf-server/internal/registry"
)

// profileSummary is what "rafctl registry" prints
type profileSummary struct {
	Model                      string         `json:"model" yaml:"model"`
	Year                       int            `json:"year" yaml:"year"`
	NormFactor                 float64        `json:"norm_factor" yaml:"norm_factor"`
	NormFactorSource           string         `json:"norm_factor_source" yaml:"norm_factor_source"`
	ExcludedInteractionMarkers []string       `json:"excluded_interaction_markers" yaml:"excluded_interaction_markers"`
	Labels                     registry.Stats `json:"labels" yaml:"labels"`
}

func newRegistryCmd(root *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Print the model-year profile in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := root.loadProfile(cmd)
			if err != nil {
				return err
			}

			summary := profileSummary{
				Model:                      profile.Model,
				Year:                       profile.Year,
				NormFactor:                 profile.NormFactor,
				NormFactorSource:           profile.NormFactorSource,
				ExcludedInteractionMarkers: profile.ExcludedInteractionMarkers,
				Labels:                     profile.Labels.Stats(),
			}

			switch output {
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(summary); err != nil {
					return err
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			default:
				return fmt.Errorf("invalid output format %q: must be yaml or json", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml or json")
	return cmd
}
