package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/flemzord/tgupload/internal/core"
)

// Scheduler manages periodic job execution using cron expressions.
// Each job is protected by a per-job mutex so a slow run makes the next
// tick skip instead of overlapping.
type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	jobs   []Job
	names  map[string]struct{}
	locks  map[string]*sync.Mutex
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

var (
	_ core.Module  = (*Scheduler)(nil)
	_ core.Starter = (*Scheduler)(nil)
	_ core.Stopper = (*Scheduler)(nil)
)

// NewScheduler creates a scheduler. Jobs must be registered before Start().
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		names:  make(map[string]struct{}),
		locks:  make(map[string]*sync.Mutex),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// ModuleInfo implements core.Module. The scheduler is wired in code, not
// loaded from configuration.
func (s *Scheduler) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "cron.scheduler",
		New: func() core.Module { return NewScheduler(nil) },
	}
}

// RegisterJob adds a job to the scheduler. Must be called before Start().
// Returns an error if a job with the same name is already registered.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.names[name]; exists {
		return fmt.Errorf("cron: duplicate job name %q", name)
	}

	s.names[name] = struct{}{}
	s.locks[name] = &sync.Mutex{}
	s.jobs = append(s.jobs, j)
	return nil
}

// Start validates every schedule and begins executing registered jobs.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s.cron = cron.New(cron.WithParser(parser))

	for _, job := range s.jobs {
		if _, err := s.cron.AddFunc(job.Schedule(), func() { s.runJob(job) }); err != nil {
			s.cron = nil
			return fmt.Errorf("cron: invalid schedule for job %q: %w", job.Name(), err)
		}
	}

	s.cron.Start()
	s.logger.Info("cron: scheduler started", "jobs", len(s.jobs))
	return nil
}

// RunNow executes a registered job immediately, honoring the per-job
// lock. It reports false when the job is unknown or already running.
func (s *Scheduler) RunNow(name string) bool {
	s.mu.Lock()
	var target Job
	for _, j := range s.jobs {
		if j.Name() == name {
			target = j
			break
		}
	}
	s.mu.Unlock()
	if target == nil {
		return false
	}
	return s.runJob(target)
}

func (s *Scheduler) runJob(job Job) bool {
	lock := s.locks[job.Name()]
	if !lock.TryLock() {
		s.logger.Warn("cron: job still running, skipping tick", "job", job.Name())
		return false
	}
	defer lock.Unlock()

	s.logger.Debug("cron: job started", "job", job.Name())
	if err := job.Run(s.ctx); err != nil {
		s.logger.Error("cron: job failed", "job", job.Name(), "error", err)
	} else {
		s.logger.Debug("cron: job completed", "job", job.Name())
	}
	return true
}

// Stop shuts down the scheduler, waiting for in-flight jobs.
func (s *Scheduler) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.logger.Info("cron: scheduler stopped")
	}
	return nil
}
