package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/danielpatrickdp/launch-gate/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Version info (set via ldflags)
	Version   = "dev"
	GitCommit = "none"
)

var (
	configPath string
	verbose    bool
)

// #region main
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "launchgate",
		Short: "Launch-time update gate",
		Long: `launchgate decides at launch whether an application may show its content,
must force an update, may offer an optional update, or must show a notice.

Examples:
  # Run a gate session against a status file
  launchgate run --config launchgate.toml

  # Serve a status document over gRPC
  launchgate serve --status status.json --addr :7070

  # Re-verify a recorded session
  launchgate replay --db launchgate.db --session <id>`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", envOr("LAUNCHGATE_CONFIG", "launchgate.toml"), "Path to TOML config")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newReplayCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// #endregion main

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "launchgate %s (%s)\n", Version, GitCommit)
		},
	}
}

// #region helpers
func loadConfig() (config.Config, error) {
	return config.LoadAndValidate(configPath)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
