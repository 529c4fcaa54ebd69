package config

import (
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flemzord/tgupload/internal/core"
	"github.com/robfig/cron/v3"
)

// requiredModule is the only module every configuration must enable.
const requiredModule = "channel.telegram"

// Validate checks the structural validity of a Config: version, known
// module IDs, the mandatory Telegram channel, exclude globs and the
// journal prune schedule. All problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if _, ok := cfg.Modules[requiredModule]; !ok {
		errs = append(errs, fmt.Errorf("config: module %q must be configured", requiredModule))
	}

	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
	}

	for i, pattern := range cfg.Upload.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Errorf("config: upload.exclude[%d]: invalid pattern %q", i, pattern))
		}
	}

	if cfg.Upload.IndexPageSize > 4096 {
		errs = append(errs, fmt.Errorf("config: upload.index_page_size must be <= 4096, got %d", cfg.Upload.IndexPageSize))
	}

	if cfg.Journal.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Journal.PruneSchedule); err != nil {
			errs = append(errs, fmt.Errorf("config: journal.prune_schedule: %w", err))
		}
	}

	if err := cfg.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("config: telemetry: %w", err))
	}

	return errors.Join(errs...)
}
