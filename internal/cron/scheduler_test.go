package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// simpleJob is a minimal Job for scheduler tests.
type simpleJob struct {
	name     string
	schedule string
	runFunc  func(ctx context.Context) error
	calls    atomic.Int32
}

func (j *simpleJob) Name() string     { return j.name }
func (j *simpleJob) Schedule() string { return j.schedule }
func (j *simpleJob) Run(ctx context.Context) error {
	j.calls.Add(1)
	if j.runFunc != nil {
		return j.runFunc(ctx)
	}
	return nil
}

func TestScheduler_RegisterJob_DuplicateName(t *testing.T) {
	t.Parallel()

	s := NewScheduler(discardLogger())
	if err := s.RegisterJob(&simpleJob{name: "test", schedule: "* * * * *"}); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}
	if err := s.RegisterJob(&simpleJob{name: "test", schedule: "* * * * *"}); err == nil {
		t.Fatal("duplicate registration should fail")
	}
}

func TestScheduler_Start_InvalidSchedule(t *testing.T) {
	t.Parallel()

	s := NewScheduler(discardLogger())
	_ = s.RegisterJob(&simpleJob{name: "bad", schedule: "invalid"})

	if err := s.Start(); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop after failed start: %v", err)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	s := NewScheduler(discardLogger())
	_ = s.RegisterJob(&simpleJob{name: "noop", schedule: "0 * * * *"})

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}

func TestScheduler_ModuleInfo(t *testing.T) {
	t.Parallel()
	if id := NewScheduler(nil).ModuleInfo().ID; id != "cron.scheduler" {
		t.Errorf("ID = %q", id)
	}
}

func TestScheduler_RunNow(t *testing.T) {
	t.Parallel()

	s := NewScheduler(discardLogger())
	job := &simpleJob{name: "once", schedule: "0 0 1 1 *"}
	_ = s.RegisterJob(job)

	if !s.RunNow("once") {
		t.Fatal("RunNow returned false for a registered job")
	}
	if s.RunNow("missing") {
		t.Fatal("RunNow returned true for an unknown job")
	}
	if got := job.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestScheduler_NoParallelExecution(t *testing.T) {
	t.Parallel()

	var concurrent, maxConcurrent atomic.Int32
	release := make(chan struct{})

	s := NewScheduler(discardLogger())
	_ = s.RegisterJob(&simpleJob{
		name:     "slow",
		schedule: "0 * * * *",
		runFunc: func(_ context.Context) error {
			c := concurrent.Add(1)
			for {
				old := maxConcurrent.Load()
				if c <= old || maxConcurrent.CompareAndSwap(old, c) {
					break
				}
			}
			<-release
			concurrent.Add(-1)
			return nil
		},
	})

	var ran atomic.Int32
	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.RunNow("slow") {
				ran.Add(1)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if maxConcurrent.Load() != 1 {
		t.Errorf("max concurrent = %d, want 1", maxConcurrent.Load())
	}
	if ran.Load() < 1 {
		t.Error("expected at least one run")
	}
}

func TestScheduler_JobErrorIsLogged(t *testing.T) {
	t.Parallel()

	s := NewScheduler(discardLogger())
	_ = s.RegisterJob(&simpleJob{
		name:     "failing",
		schedule: "0 * * * *",
		runFunc:  func(context.Context) error { return errors.New("job failed") },
	})
	if !s.RunNow("failing") {
		t.Fatal("RunNow returned false")
	}
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	t.Parallel()

	s := NewScheduler(discardLogger())
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}
