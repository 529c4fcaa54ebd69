package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/flemzord/tgupload/internal/config"
	"github.com/flemzord/tgupload/internal/core"
	"github.com/flemzord/tgupload/pkg/app"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			if err := app.LoadEnv(envFile); err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("config")
			if len(args) == 1 {
				path = args[0]
			}
			cfg, used, err := app.LoadConfig(path)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			// Provision and validate every module without starting it.
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			dataDir, err := os.MkdirTemp("", "tgupload-check-")
			if err != nil {
				return err
			}
			defer func() { _ = os.RemoveAll(dataDir) }()

			appCtx := core.NewAppContext(logger, dataDir)
			appCtx = appCtx.WithModuleConfigs(cfg.Modules)
			application := core.NewApp(appCtx)
			ids := config.Resolve(cfg)
			if err := application.LoadModules(ids); err != nil {
				return err
			}
			defer application.Discard()

			out := cmd.OutOrStdout()
			if used == "" {
				used = "built-in defaults"
			}
			_, _ = fmt.Fprintf(out, "Configuration OK: %s (%d modules)\n", used, len(ids))
			for _, id := range ids {
				_, _ = fmt.Fprintf(out, "  %s\n", id)
			}
			return nil
		},
	})
	return cmd
}
