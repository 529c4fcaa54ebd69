package router

import (
	"context"
	"log/slog"
	"sync"

	"github.com/flemzord/tgupload/internal/metrics"
)

const defaultInboxSize = 64

// ServiceName is the service registry key of the running Router.
const ServiceName = "upload.router"

// Job is one queued upload invocation.
type Job struct {
	ID string

	// Lane is the destination chat. Jobs of the same lane never overlap
	// and run in submission order.
	Lane int64

	// Path is only used for logging.
	Path string

	Run func(ctx context.Context) error
}

// Config holds the configuration for a Router.
type Config struct {
	WorkerCount int

	// InboxSize bounds the number of jobs waiting for a worker, across
	// all lanes.
	InboxSize int

	Logger *slog.Logger
}

// withDefaults returns a copy of the config with zero values replaced by defaults.
func (c Config) withDefaults() Config {
	if c.WorkerCount <= 0 {
		c.WorkerCount = DefaultWorkerCount
	}
	if c.InboxSize <= 0 {
		c.InboxSize = defaultInboxSize
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Router dispatches jobs to a worker pool. Distinct lanes run in
// parallel; a lane's jobs run one after the other.
type Router struct {
	config Config
	logger *slog.Logger
	pool   *WorkerPool

	mu      sync.Mutex
	ready   chan Job
	lanes   *lanes
	pending int
	started bool
	stopped bool

	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewRouter creates a new Router with the given configuration.
func NewRouter(cfg Config) *Router {
	cfg = cfg.withDefaults()
	return &Router{
		config: cfg,
		logger: cfg.Logger,
		pool:   NewWorkerPool(cfg.WorkerCount),
		ready:  make(chan Job, cfg.InboxSize),
		lanes:  newLanes(),
	}
}

// Start launches the worker pool.
func (r *Router) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	if r.stopped || r.started {
		r.mu.Unlock()
		cancel()
		r.logger.Warn("router: start ignored", "stopped", r.stopped)
		return
	}
	r.started = true
	r.cancel = cancel
	r.mu.Unlock()

	r.pool.Start(ctx, r.ready, r.handle)
	r.logger.Info("router: started", "workers", r.pool.Size(), "inbox_size", r.config.InboxSize)
}

// Submit enqueues a job. It never blocks: when InboxSize jobs are already
// pending the job is dropped with ErrInboxFull.
func (r *Router) Submit(job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return ErrRouterStopped
	}
	if r.pending >= r.config.InboxSize {
		r.logger.Warn("router: inbox full, job dropped", "job", job.ID, "chat_id", job.Lane)
		return ErrInboxFull
	}

	r.pending++
	metrics.SetQueueDepth(r.pending)
	if r.lanes.admit(job) {
		// pending bounds the channel length, so this never blocks.
		r.ready <- job
	} else {
		r.logger.Info("router: job queued behind running upload", "job", job.ID, "chat_id", job.Lane)
	}
	return nil
}

// Pending returns the number of jobs not yet picked up by a worker.
func (r *Router) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// Busy returns the number of destinations with an upload in flight.
func (r *Router) Busy() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lanes.busy()
}

func (r *Router) handle(ctx context.Context, job Job) {
	r.mu.Lock()
	r.pending--
	metrics.SetQueueDepth(r.pending)
	r.mu.Unlock()

	defer r.release(job.Lane)

	logger := r.logger.With("job", job.ID, "chat_id", job.Lane, "path", job.Path)
	if ctx.Err() != nil {
		logger.Warn("router: job dropped at shutdown")
		return
	}
	if err := job.Run(ctx); err != nil {
		logger.Error("router: job failed", "error", err)
	}
}

// release hands the lane to its next queued job, if any.
func (r *Router) release(lane int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	if next, ok := r.lanes.next(lane); ok {
		r.ready <- next
	}
}

// Stop shuts down the router: queued jobs are dropped, in-flight jobs are
// canceled, and Stop returns once every worker has exited.
func (r *Router) Stop(_ context.Context) {
	r.stopOnce.Do(func() {
		r.logger.Info("router: stopping")

		r.mu.Lock()
		r.stopped = true
		dropped := r.lanes.drain()
		r.pending -= len(dropped)
		close(r.ready)
		cancel := r.cancel
		r.mu.Unlock()

		for _, job := range dropped {
			r.logger.Warn("router: queued job dropped", "job", job.ID, "chat_id", job.Lane, "path", job.Path)
		}

		// Cancel before waiting so in-flight jobs can terminate.
		if cancel != nil {
			cancel()
		}

		r.pool.Wait()
		r.logger.Info("router: stopped")
	})
}
