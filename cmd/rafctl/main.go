// Command rafctl runs the result formatter offline and manages MCP client setup.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hcc-raf-server/internal/app"
	"github.com/hcc-raf-server/internal/domain"
	"github.com/hcc-raf-server/internal/registry"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	profilePath string
	modelName   string
	verbose     bool
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "rafctl",
		Short: "Offline tools for the HCC risk adjustment server",
		Long: `rafctl formats saved engine results without a running engine,
prints the model-year profile in use and registers the MCP server with
desktop MCP clients.`,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&opts.profilePath, "profile", "", "model-year profile YAML (default: compiled-in profile)")
	root.PersistentFlags().StringVar(&opts.modelName, "model", "", "override the profile's model name")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log profile loading to stderr")

	root.AddCommand(
		newFormatCmd(opts),
		newRegistryCmd(opts),
		newSetupCmd(),
	)
	return root
}

// loadProfile resolves the profile the same way the servers do
func (o *rootOptions) loadProfile(cmd *cobra.Command) (*registry.Profile, error) {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logrus.WarnLevel)
	if o.verbose {
		logger.SetLevel(logrus.InfoLevel)
	}

	profile, err := app.LoadProfile(domain.ModelConfig{Name: o.modelName, ProfilePath: o.profilePath}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load model profile: %w", err)
	}
	return profile, nil
}
