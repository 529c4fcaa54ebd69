// Package main is the entry point for the tgupload CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flemzord/tgupload/internal/core"
	"github.com/flemzord/tgupload/pkg/app"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tgupload",
		Short:         "A personal Telegram bot that uploads local files and folders to chats",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.PersistentFlags().String("env-file", "", "Path to a .env file (default ./.env when present)")
	root.AddCommand(versionCmd(), startCmd(), configCmd(), initCmd(), serviceCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and compiled modules",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "tgupload %s (commit: %s, built: %s)\n", version, commit, date)
			_, _ = fmt.Fprintln(out, "\nCompiled modules:")
			for _, mod := range core.GetModules() {
				_, _ = fmt.Fprintf(out, "  %s\n", mod.ID)
			}
		},
	}
}

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the bot with all configured modules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := runParams(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx, params)
		},
	}
	cmd.Flags().String("log-level", "info", "Minimum log level (debug, info, warn, error)")
	cmd.Flags().String("data-dir", "", "Persistent data directory (default $XDG_DATA_HOME/tgupload)")
	return cmd
}

// runParams collects the flags shared by start and the service runner.
func runParams(cmd *cobra.Command) (app.RunParams, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	rawLevel, _ := cmd.Flags().GetString("log-level")

	var level slog.Level
	if rawLevel != "" {
		if err := level.UnmarshalText([]byte(rawLevel)); err != nil {
			return app.RunParams{}, fmt.Errorf("invalid --log-level %q: %w", rawLevel, err)
		}
	}

	return app.RunParams{
		ConfigPath: cfgPath,
		EnvFile:    envFile,
		DataDir:    dataDir,
		LogLevel:   level,
		Version:    version,
	}, nil
}
