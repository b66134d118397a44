package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/shikc/wotan/pkg/buildinfo"
	"github.com/shikc/wotan/pkg/config"
)

// configFlag is the path of the TOML configuration file, set by --config.
// Empty means built-in defaults.
var configFlag string

// loadConfig returns the configuration selected by --config, or the
// defaults when no file was given.
func loadConfig() (*config.Config, error) {
	if configFlag == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	return config.Load(configFlag)
}

// Execute runs the wotan CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (analyze,
// export, serve, cache), configures logging based on the --verbose flag,
// and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI under the given context. Cancellation stops
// in-flight analyses and shuts the API server down.
func ExecuteContext(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "wotan",
		Short:        "Wotan estimates the routability of FPGA routing fabrics",
		Long:         `Wotan analyzes an FPGA routing resource graph without running a router: it enumerates paths for a sample of source-sink connections, converts path counts into per-wire demand, and estimates the probability that each connection can be routed under that congestion.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "path of the TOML configuration file")

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCacheCmd())

	return root.ExecuteContext(ctx)
}
