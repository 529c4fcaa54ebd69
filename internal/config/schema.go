// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for tgupload.
package config

import (
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/tgupload/internal/telemetry"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "channel.telegram").
	Modules map[string]yaml.Node `yaml:"modules"`

	// Upload tunes the directory walker and the upload pipeline.
	Upload UploadConfig `yaml:"upload"`

	// Journal controls retention of recorded upload jobs.
	Journal JournalConfig `yaml:"journal"`

	// Telemetry enables OTLP trace export when an endpoint is set.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// UploadConfig holds pipeline settings. Zero values mean "use the default".
type UploadConfig struct {
	// MaxFileSize overrides the per-file limit derived from the API root.
	MaxFileSize uint64 `yaml:"max_file_size"`

	// PrivateDelay is the pause after each message sent to a private chat.
	PrivateDelay time.Duration `yaml:"private_delay"`

	// GroupDelay is the pause after each message sent to a group or channel.
	GroupDelay time.Duration `yaml:"group_delay"`

	// LinkHost is the host used in message deep links.
	LinkHost string `yaml:"link_host"`

	// Exclude lists doublestar globs, relative to the upload root, that the
	// walker skips in addition to ".git".
	Exclude []string `yaml:"exclude,omitempty"`

	// Workers is the number of concurrently running upload jobs.
	Workers int `yaml:"workers"`

	// QueueSize bounds the number of pending jobs.
	QueueSize int `yaml:"queue_size"`

	// IndexPageSize is the maximum length of one index message.
	IndexPageSize int `yaml:"index_page_size"`
}

// JournalConfig controls the journal retention job.
type JournalConfig struct {
	Retention     time.Duration `yaml:"retention"`
	PruneSchedule string        `yaml:"prune_schedule"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig = telemetry.Config

// ApplyDefaults fills zero values of the non-module sections.
func (c *Config) ApplyDefaults() {
	u := &c.Upload
	if u.PrivateDelay <= 0 {
		u.PrivateDelay = 25 * time.Millisecond
	}
	if u.GroupDelay <= 0 {
		u.GroupDelay = 3 * time.Second
	}
	if u.LinkHost == "" {
		u.LinkHost = "t.me"
	}
	if u.Workers <= 0 {
		u.Workers = 4
	}
	if u.QueueSize <= 0 {
		u.QueueSize = 64
	}
	if u.IndexPageSize <= 0 {
		u.IndexPageSize = 4096
	}
	if c.Journal.Retention <= 0 {
		c.Journal.Retention = 30 * 24 * time.Hour
	}
	if c.Journal.PruneSchedule == "" {
		c.Journal.PruneSchedule = "0 * * * *"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "tgupload"
	}
}
