// Package app provides the shared entry point of the tgupload binary: it
// loads configuration, wires the upload pipeline and runs the modules.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"github.com/flemzord/tgupload/internal/config"
	"github.com/flemzord/tgupload/internal/core"
	"github.com/flemzord/tgupload/internal/security"
	"github.com/flemzord/tgupload/internal/telemetry"
)

const (
	configDirName  = "tgupload"
	configFileName = "tgupload.yaml"

	telemetryFlushTimeout = 5 * time.Second
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called; when no file is found the
	// built-in environment-driven configuration is used.
	ConfigPath string

	// EnvFile is loaded before the configuration is expanded. If empty,
	// ".env" in the working directory is loaded when present.
	EnvFile string

	// Version is injected at build time via ldflags.
	Version string

	// DataDir overrides the default persistent data directory.
	DataDir string

	// LogLevel sets the minimum log level. Defaults to slog.LevelInfo.
	LogLevel slog.Level

	// LogOutput defaults to os.Stderr.
	LogOutput io.Writer
}

// Runtime is a fully wired application that has not been started yet.
type Runtime struct {
	App    *core.App
	Logger *slog.Logger

	lock          *flock.Flock
	stopTelemetry telemetry.ShutdownFunc
}

// Run builds the application, starts every module and blocks until ctx is
// canceled, then stops the modules in reverse order.
func Run(ctx context.Context, params RunParams) error {
	rt, err := Setup(ctx, params)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.App.Start(); err != nil {
		return err
	}
	rt.Logger.Info("tgupload started", "version", params.Version)

	<-ctx.Done()
	rt.Logger.Info("shutdown signal received")
	rt.App.Stop()
	rt.Logger.Info("shutdown complete")
	return nil
}

// Setup loads the environment and configuration, takes the data directory
// lock, loads the configured modules and wires the upload pipeline.
func Setup(ctx context.Context, params RunParams) (*Runtime, error) {
	if err := LoadEnv(params.EnvFile); err != nil {
		return nil, err
	}

	cfg, _, err := LoadConfig(params.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	output := params.LogOutput
	if output == nil {
		output = os.Stderr
	}
	redactor := security.NewRedactor()
	logger := NewLogger(output, params.LogLevel, redactor)

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	lock, err := acquireLock(dataDir)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Logger: logger, lock: lock}

	stopTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, params.Version, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.stopTelemetry = stopTelemetry

	appCtx := core.NewAppContext(logger, dataDir)
	appCtx = appCtx.WithModuleConfigs(cfg.Modules)
	appCtx.RegisterService(security.ServiceName, redactor)

	application := core.NewApp(appCtx)
	if err := application.LoadModules(config.Resolve(cfg)); err != nil {
		rt.Close()
		return nil, err
	}

	// Wire the pipeline between LoadModules and Start: the messenger and the
	// journal are provisioned services by now.
	if err := wireUpload(application, appCtx, cfg, logger); err != nil {
		application.Discard()
		rt.Close()
		return nil, err
	}

	rt.App = application
	return rt, nil
}

// Close flushes traces and releases the data directory lock. It does not
// stop modules.
func (rt *Runtime) Close() {
	if rt.stopTelemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		if err := rt.stopTelemetry(ctx); err != nil {
			rt.Logger.Warn("telemetry shutdown failed", "error", err)
		}
		cancel()
		rt.stopTelemetry = nil
	}
	if err := releaseLock(rt.lock); err != nil {
		rt.Logger.Warn("releasing data dir lock", "error", err)
	}
}

// LoadEnv loads variables from path, or from ".env" when path is empty.
// Variables already set in the environment are kept. A missing default
// file is not an error.
func LoadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading env file %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// LoadConfig loads path, or the first file found by ResolveConfigPath, or
// the built-in configuration. It returns the path used, empty for the
// built-in one.
func LoadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		path = ResolveConfigPath()
	}
	if path == "" {
		cfg, err := config.LoadDefault()
		return cfg, "", err
	}
	cfg, err := config.Load(path)
	return cfg, path, err
}

// ResolveConfigPath searches for a config file in standard locations and
// returns "" when none exists.
// Search order: $XDG_CONFIG_HOME/tgupload/tgupload.yaml, then
// ~/.config/tgupload/tgupload.yaml, then ./tgupload.yaml.
func ResolveConfigPath() string {
	for _, path := range configCandidates() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// DefaultConfigPath is where `tgupload init` writes a new configuration.
func DefaultConfigPath() string {
	return configCandidates()[0]
}

func configCandidates() []string {
	var candidates []string
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, configDirName, configFileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", configDirName, configFileName))
	}
	return append(candidates, configFileName)
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/tgupload if set, otherwise ~/.local/share/tgupload.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok && dir != "" {
		return filepath.Join(dir, configDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", configDirName)
}
