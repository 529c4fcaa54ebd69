package core

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"gopkg.in/yaml.v3"
)

type trackingModule struct {
	id           ModuleID
	configured   *string
	provisionErr error
	validateErr  error
	startErr     error
	onProvision  func()
	onValidate   func()
	onStart      func()
	onStop       func()
}

func (m *trackingModule) ModuleInfo() ModuleInfo {
	return ModuleInfo{ID: m.id, New: func() Module { return m }}
}

func (m *trackingModule) Configure(node *yaml.Node) error {
	if m.configured == nil {
		return nil
	}
	var cfg struct {
		Name string `yaml:"name"`
	}
	if err := node.Decode(&cfg); err != nil {
		return err
	}
	*m.configured = cfg.Name
	return nil
}

func (m *trackingModule) Provision(*AppContext) error {
	if m.onProvision != nil {
		m.onProvision()
	}
	return m.provisionErr
}

func (m *trackingModule) Validate() error {
	if m.onValidate != nil {
		m.onValidate()
	}
	return m.validateErr
}

func (m *trackingModule) Start() error {
	if m.onStart != nil {
		m.onStart()
	}
	return m.startErr
}

func (m *trackingModule) Stop(context.Context) error {
	if m.onStop != nil {
		m.onStop()
	}
	return nil
}

func TestAppContext_ForModule(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx := NewAppContext(logger, "/data")
	child := ctx.ForModule("channel.telegram")

	child.Logger.Info("hello")

	if !bytes.Contains(buf.Bytes(), []byte("channel.telegram")) {
		t.Errorf("expected child logger to contain module ID, got: %s", buf.String())
	}
}

func TestAppContext_ServicesSharedAcrossModules(t *testing.T) {
	ctx := NewAppContext(nil, "/data")
	child := ctx.ForModule("journal.sqlite")
	child.RegisterService("journal.store", 42)

	svc, ok := ctx.Service("journal.store")
	if !ok {
		t.Fatal("service registered on child context not visible on parent")
	}
	if svc.(int) != 42 {
		t.Errorf("service = %v, want 42", svc)
	}
	if _, ok := ctx.Service("missing"); ok {
		t.Error("expected missing service lookup to fail")
	}
}

func TestAppContext_LoadModule(t *testing.T) {
	t.Cleanup(resetRegistry)

	provisioned := false
	validated := false
	var name string

	RegisterModule(&trackingModule{
		id:          "test.loadmod",
		configured:  &name,
		onProvision: func() { provisioned = true },
		onValidate:  func() { validated = true },
	})

	var node yaml.Node
	if err := yaml.Unmarshal([]byte("name: uploader"), &node); err != nil {
		t.Fatal(err)
	}

	ctx := NewAppContext(nil, "/data").WithModuleConfigs(map[string]yaml.Node{
		"test.loadmod": *node.Content[0],
	})
	mod, err := ctx.LoadModule("test.loadmod")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mod == nil {
		t.Fatal("expected non-nil module")
	}
	if name != "uploader" {
		t.Errorf("configured name = %q, want %q", name, "uploader")
	}
	if !provisioned {
		t.Error("expected Provision to be called")
	}
	if !validated {
		t.Error("expected Validate to be called")
	}
}

func TestAppContext_LoadModule_Errors(t *testing.T) {
	t.Cleanup(resetRegistry)

	RegisterModule(&trackingModule{id: "test.provfail", provisionErr: errors.New("provision boom")})
	RegisterModule(&trackingModule{id: "test.valfail", validateErr: errors.New("validate boom")})

	ctx := NewAppContext(nil, "/data")
	for _, id := range []string{"does.not.exist", "test.provfail", "test.valfail"} {
		if _, err := ctx.LoadModule(id); err == nil {
			t.Errorf("LoadModule(%q) expected error", id)
		}
	}
}

func TestRegisterModule_DuplicatePanics(t *testing.T) {
	t.Cleanup(resetRegistry)

	RegisterModule(&trackingModule{id: "test.dup"})
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	RegisterModule(&trackingModule{id: "test.dup"})
}

func TestGetModulesByNamespace(t *testing.T) {
	t.Cleanup(resetRegistry)

	RegisterModule(&trackingModule{id: "channel.telegram"})
	RegisterModule(&trackingModule{id: "channel.matrix"})
	RegisterModule(&trackingModule{id: "journal.sqlite"})

	got := GetModulesByNamespace("channel")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "channel.matrix" || got[1].ID != "channel.telegram" {
		t.Errorf("unexpected order: %v, %v", got[0].ID, got[1].ID)
	}
}

func TestApp_StartFailureStopsStarted(t *testing.T) {
	t.Cleanup(resetRegistry)

	var stopped []string
	RegisterModule(&trackingModule{id: "test.a", onStop: func() { stopped = append(stopped, "a") }})
	RegisterModule(&trackingModule{id: "test.b", startErr: errors.New("boom")})

	app := NewApp(NewAppContext(nil, "/data"))
	if err := app.LoadModules([]string{"test.a", "test.b"}); err != nil {
		t.Fatalf("LoadModules: %v", err)
	}
	if err := app.Start(); err == nil {
		t.Fatal("expected start error")
	}
	if len(stopped) != 1 || stopped[0] != "a" {
		t.Errorf("stopped = %v, want [a]", stopped)
	}
}

func TestApp_StopReverseOrder(t *testing.T) {
	t.Cleanup(resetRegistry)

	var order []string
	RegisterModule(&trackingModule{id: "test.first", onStop: func() { order = append(order, "first") }})
	RegisterModule(&trackingModule{id: "test.second", onStop: func() { order = append(order, "second") }})

	app := NewApp(NewAppContext(nil, "/data"))
	if err := app.LoadModules([]string{"test.first", "test.second"}); err != nil {
		t.Fatalf("LoadModules: %v", err)
	}
	if err := app.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, ok := app.Module("test.second"); !ok {
		t.Error("Module(test.second) not found")
	}
	app.Stop()

	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("stop order = %v, want [second first]", order)
	}
}

func TestApp_DiscardStopsUnstartedModules(t *testing.T) {
	t.Cleanup(resetRegistry)

	var stopped []string
	RegisterModule(&trackingModule{id: "test.store", onStop: func() { stopped = append(stopped, "store") }})

	app := NewApp(NewAppContext(nil, "/data"))
	if err := app.LoadModules([]string{"test.store"}); err != nil {
		t.Fatalf("LoadModules: %v", err)
	}
	app.Discard()

	if len(stopped) != 1 {
		t.Errorf("stopped = %v, want [store]", stopped)
	}
	if len(app.Modules()) != 0 {
		t.Errorf("modules = %d after Discard, want 0", len(app.Modules()))
	}
}
