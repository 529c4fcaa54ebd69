package sqlite

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/flemzord/tgupload/internal/core"
	"github.com/flemzord/tgupload/internal/journal"
	"gopkg.in/yaml.v3"
)

func newTestModule(t *testing.T, dir string, logs *bytes.Buffer) *Module {
	t.Helper()

	m := &Module{
		config: Config{Path: filepath.Join(dir, "journal.db")},
		now:    func() time.Time { return time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) },
	}
	m.config.defaults()

	logger := slog.New(slog.NewTextHandler(logs, nil))
	ctx := core.NewAppContext(logger, dir)

	if err := m.Provision(ctx); err != nil {
		t.Fatalf("provision: %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if svc, ok := ctx.Service(journal.ServiceName); !ok || svc != journal.Store(m.store) {
		t.Fatalf("service %s not registered", journal.ServiceName)
	}
	return m
}

func TestModuleMarksInterruptedJobsOnStart(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer

	first := newTestModule(t, dir, &logs)
	ctx := context.Background()
	if err := first.Store().CreateJob(ctx, journal.Job{
		ID: "left-behind", ChatID: -100555, Path: "/srv/media",
		Status: journal.StatusRunning, ProgressMessageID: 812,
		StartedAt: time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if err := first.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	second := newTestModule(t, dir, &logs)
	t.Cleanup(func() { _ = second.Stop(context.Background()) })
	if err := second.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	got, err := second.Store().Job(ctx, "left-behind")
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if got.Status != journal.StatusInterrupted {
		t.Errorf("Status = %s, want interrupted", got.Status)
	}
	if !got.FinishedAt.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("FinishedAt = %v", got.FinishedAt)
	}
	if !strings.Contains(logs.String(), "progress_message_id=812") {
		t.Errorf("interrupted job not logged:\n%s", logs.String())
	}
}

func TestModuleDefaultPath(t *testing.T) {
	dir := t.TempDir()
	m := &Module{}
	if err := m.Provision(core.NewAppContext(slog.New(slog.DiscardHandler), dir)); err != nil {
		t.Fatalf("provision: %v", err)
	}
	defer func() { _ = m.Stop(context.Background()) }()

	if want := filepath.Join(dir, defaultDBFile); m.config.Path != want {
		t.Errorf("Path = %q, want %q", m.config.Path, want)
	}
}

func TestConfigure(t *testing.T) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte("path: /var/lib/tgupload/j.db\nwal: false\nbusy_timeout: 250\n"), &node); err != nil {
		t.Fatal(err)
	}
	m := &Module{}
	if err := m.Configure(node.Content[0]); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if m.config.Path != "/var/lib/tgupload/j.db" || m.config.walEnabled() || m.config.BusyTimeout != 250 {
		t.Errorf("config = %+v", m.config)
	}
}

func TestConfigValidate(t *testing.T) {
	c := Config{BusyTimeout: -1}
	if err := c.validate(); err == nil {
		t.Fatal("expected error for negative busy_timeout")
	}
}

func TestRecordFileUnknownJob(t *testing.T) {
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"), Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = store.Close() }()

	err = store.RecordFile(context.Background(), journal.File{JobID: "ghost", Name: "a", Path: "/a", Outcome: journal.OutcomeUploaded})
	if !errors.Is(err, journal.ErrJobNotFound) {
		t.Errorf("error = %v, want ErrJobNotFound", err)
	}
}
