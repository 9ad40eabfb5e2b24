// Package main is the entry point for the models.json resolver CLI and server.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))
	slog.SetDefault(logger)

	if err := newRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	if os.Getenv("OPENCLAW_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// globalFlags are shared by every subcommand
type globalFlags struct {
	configFile string
	envFile    string
	agentDir   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "openclaw-models",
		Short: "Generate models.json for OpenClaw agents",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "path to config.yaml (default: ./config/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file overlaid on the environment")
	rootCmd.PersistentFlags().StringVar(&flags.agentDir, "agent-dir", "", "directory to write models.json to (precedence: flag, OPENCLAW_AGENT_DIR, PI_CODING_AGENT_DIR, config agent_dir, HOME)")

	rootCmd.AddCommand(
		newEnsureCmd(flags),
		newServeCmd(flags),
		newProvidersCmd(),
		newEnvCmd(flags),
		newVersionCmd(),
	)

	return rootCmd
}
