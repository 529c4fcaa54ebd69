// Package sqlite implements a persistent job journal on SQLite. It uses
// modernc.org/sqlite (pure Go, no CGO) in WAL mode.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/flemzord/tgupload/internal/core"
	"github.com/flemzord/tgupload/internal/journal"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Module publishes a SQLite-backed journal.Store under journal.ServiceName.
type Module struct {
	config Config
	logger *slog.Logger
	store  *Store

	// now is replaced in tests.
	now func() time.Time
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "journal.sqlite",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("sqlite: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger
	if m.now == nil {
		m.now = time.Now
	}

	if m.config.Path == "" {
		m.config.Path = filepath.Join(ctx.DataDir, defaultDBFile)
	}

	store, err := Open(context.TODO(), m.config.Path, m.config)
	if err != nil {
		return err
	}
	m.store = store
	ctx.RegisterService(journal.ServiceName, store)

	m.logger.Info("sqlite journal provisioned",
		"path", m.config.Path,
		"wal", m.config.walEnabled(),
	)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if err := m.config.validate(); err != nil {
		return err
	}
	if err := m.store.Ping(context.TODO()); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return nil
}

// Start implements core.Starter. Jobs still marked running belong to a
// previous process; they are flagged interrupted and reported. Their
// progress messages stay pinned in the chat.
func (m *Module) Start() error {
	jobs, err := m.store.MarkInterrupted(context.TODO(), m.now())
	if err != nil {
		return fmt.Errorf("sqlite: recover interrupted jobs: %w", err)
	}
	for _, j := range jobs {
		m.logger.Warn("upload interrupted by previous shutdown",
			"job", j.ID,
			"chat_id", j.ChatID,
			"path", j.Path,
			"progress_message_id", j.ProgressMessageID,
			"uploaded", j.Uploaded,
			"discovered", j.Discovered,
		)
	}
	return nil
}

// Stop implements core.Stopper.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("sqlite journal stopping")
	if m.store != nil {
		return m.store.Close()
	}
	return nil
}

// Store returns the journal store.
func (m *Module) Store() *Store {
	return m.store
}
