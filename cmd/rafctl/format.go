package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hcc-raf-server/internal/domain"
	"github.com/hcc-raf-server/internal/service"
)

func newFormatCmd(root *rootOptions) *cobra.Command {
	var mode string
	var compact bool

	cmd := &cobra.Command{
		Use:   "format [--mode full|reduced] <raw.json>",
		Short: "Format a saved engine result",
		Long: `Format runs a saved engine result through sanitization, coefficient
classification, normalization and composition, and prints the payload the
server would return. Use "-" to read the result from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parseMode(mode)
			if err != nil {
				return err
			}

			raw, err := readRawResult(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			profile, err := root.loadProfile(cmd)
			if err != nil {
				return err
			}

			payload := service.NewFormatter(profile).Format(raw, m)

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(payload)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "full", "response shape: full or reduced")
	cmd.Flags().BoolVar(&compact, "compact", false, "print JSON on one line")
	return cmd
}

func parseMode(s string) (domain.Mode, error) {
	switch strings.ToLower(s) {
	case "full", "":
		return domain.ModeFull, nil
	case "reduced":
		return domain.ModeReduced, nil
	default:
		return 0, fmt.Errorf("invalid mode %q: must be full or reduced", s)
	}
}

func readRawResult(stdin io.Reader, path string) (*domain.RawModelResult, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read engine result: %w", err)
	}

	var raw domain.RawModelResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode engine result: %w", err)
	}
	return &raw, nil
}
