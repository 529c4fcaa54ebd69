// Package gateway implements the optional HTTP module: health, Prometheus
// metrics, and an authenticated view of recent upload jobs.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/flemzord/tgupload/internal/core"
	"github.com/flemzord/tgupload/internal/journal"
	"github.com/flemzord/tgupload/internal/router"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Gateway)(nil)
	_ core.Provisioner  = (*Gateway)(nil)
	_ core.Validator    = (*Gateway)(nil)
	_ core.Starter      = (*Gateway)(nil)
	_ core.Stopper      = (*Gateway)(nil)
)

// QueueStats reports the upload queue occupancy.
type QueueStats interface {
	Pending() int
	Busy() int
}

// Gateway is the HTTP gateway module. It is a leaf module: nothing imports it.
type Gateway struct {
	config    Config
	appCtx    *core.AppContext
	logger    *slog.Logger
	server    *http.Server
	addr      net.Addr
	startedAt time.Time

	// Resolved lazily at Start() via service registry.
	journal journal.Store
	queue   QueueStats
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.config.defaults()
	g.appCtx = ctx
	g.logger = ctx.Logger
	if !g.config.Auth.IsConfigured() {
		g.logger.Warn("gateway: no auth configured, /status is disabled")
	}
	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return errors.New("gateway: invalid bind address: " + g.config.Bind)
	}
	return nil
}

// Start implements core.Starter. It resolves dependencies from the service
// registry (lazy binding) and starts the HTTP server.
func (g *Gateway) Start() error {
	// Resolve optional services; endpoints degrade gracefully if missing.
	if svc, ok := g.appCtx.Service(journal.ServiceName); ok {
		if store, ok := svc.(journal.Store); ok {
			g.journal = store
		}
	}
	if svc, ok := g.appCtx.Service(router.ServiceName); ok {
		if q, ok := svc.(QueueStats); ok {
			g.queue = q
		}
	}

	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}
	g.addr = ln.Addr()

	go func() {
		g.logger.Info("gateway listening", "addr", g.addr.String())
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Addr returns the listening address, nil before Start.
func (g *Gateway) Addr() net.Addr {
	return g.addr
}

// Stop implements core.Stopper. Graceful shutdown with configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
