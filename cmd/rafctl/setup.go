package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hcc-raf-server/internal/config"
	"github.com/hcc-raf-server/internal/setup"
)

func newSetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server with desktop MCP clients",
	}
	cmd.AddCommand(newSetupInstallCmd(), newSetupStatusCmd())
	return cmd
}

func newSetupInstallCmd() *cobra.Command {
	var (
		configPath string
		binaryPath string
		envPairs   []string
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Add the server to the client's mcpServers",
		Long: `Install writes an mcpServers entry pointing at the mcp-server binary.
Other entries in the client config are kept. Environment overrides are passed
with --env and must use the RAF_ prefix, e.g. --env RAF_ENGINE_BASE_URL=http://engine:8000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := parseEnv(envPairs)
			if err != nil {
				return err
			}

			written, err := setup.Register(setup.Options{
				ConfigPath: configPath,
				BinaryPath: binaryPath,
				Env:        env,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s in %s\n", setup.ServerName, written)
			fmt.Fprintln(cmd.OutOrStdout(), "Restart the MCP client to load the server.")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "client config file (default: desktop client location)")
	cmd.Flags().StringVar(&binaryPath, "binary", "", "path to mcp-server (default: search PATH)")
	cmd.Flags().StringArrayVar(&envPairs, "env", nil, "KEY=VALUE passed to the server, repeatable")
	return cmd
}

func newSetupStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the server is registered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := setup.GetStatus(configPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config:     %s\n", status.ConfigPath)
			fmt.Fprintf(out, "Registered: %t\n", status.Registered)
			if status.Registered {
				fmt.Fprintf(out, "Server:     %s\n", status.ServerPath)
				if len(status.EnvKeys) > 0 {
					fmt.Fprintf(out, "Env:        %s\n", strings.Join(status.EnvKeys, ", "))
				}
			}
			for _, issue := range status.Issues {
				fmt.Fprintf(out, "  ! %s\n", issue)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "client config file (default: desktop client location)")
	return cmd
}

func parseEnv(pairs []string) (map[string]string, error) {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env %q: expected KEY=VALUE", pair)
		}
		if !strings.HasPrefix(key, config.EnvPrefix+"_") {
			return nil, fmt.Errorf("invalid --env %q: key must start with %s_", pair, config.EnvPrefix)
		}
		env[key] = value
	}
	return env, nil
}
