package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouter_SameLaneRunsInOrder(t *testing.T) {
	t.Parallel()

	r := NewRouter(Config{WorkerCount: 4, InboxSize: 16, Logger: discardLogger()})
	r.Start(context.Background())
	defer r.Stop(context.Background())

	var (
		mu      sync.Mutex
		order   []int
		running atomic.Int32
		peak    atomic.Int32
		wg      sync.WaitGroup
	)
	for i := range 6 {
		wg.Add(1)
		require.NoError(t, r.Submit(Job{
			ID:   "job",
			Lane: 42,
			Run: func(context.Context) error {
				defer wg.Done()
				cur := running.Add(1)
				for {
					old := peak.Load()
					if cur <= old || peak.CompareAndSwap(old, cur) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				running.Add(-1)
				return nil
			},
		}))
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak.Load(), "jobs of one lane overlapped")
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, order)
}

func TestRouter_DifferentLanesRunInParallel(t *testing.T) {
	t.Parallel()

	r := NewRouter(Config{WorkerCount: 2, Logger: discardLogger()})
	r.Start(context.Background())
	defer r.Stop(context.Background())

	entered := make(chan int64, 2)
	release := make(chan struct{})
	for _, lane := range []int64{1, 2} {
		require.NoError(t, r.Submit(Job{ID: "j", Lane: lane, Run: func(context.Context) error {
			entered <- lane
			<-release
			return nil
		}}))
	}

	for range 2 {
		select {
		case <-entered:
		case <-time.After(time.Second):
			t.Fatal("lanes did not run concurrently")
		}
	}
	assert.Equal(t, 2, r.Busy())
	close(release)
}

func TestRouter_InboxFull(t *testing.T) {
	t.Parallel()

	// Not started: nothing is picked up.
	r := NewRouter(Config{WorkerCount: 1, InboxSize: 2, Logger: discardLogger()})
	noop := func(context.Context) error { return nil }

	require.NoError(t, r.Submit(Job{ID: "a", Lane: 1, Run: noop}))
	require.NoError(t, r.Submit(Job{ID: "b", Lane: 1, Run: noop}))
	assert.ErrorIs(t, r.Submit(Job{ID: "c", Lane: 2, Run: noop}), ErrInboxFull)
	assert.Equal(t, 2, r.Pending())

	r.Stop(context.Background())
}

func TestRouter_SubmitAfterStop(t *testing.T) {
	t.Parallel()

	r := NewRouter(Config{Logger: discardLogger()})
	r.Start(context.Background())
	r.Stop(context.Background())
	r.Stop(context.Background())

	err := r.Submit(Job{ID: "late", Lane: 1, Run: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrRouterStopped)
}

func TestRouter_FailedJobDoesNotBlockLane(t *testing.T) {
	t.Parallel()

	r := NewRouter(Config{WorkerCount: 1, Logger: discardLogger()})
	r.Start(context.Background())
	defer r.Stop(context.Background())

	done := make(chan struct{})
	require.NoError(t, r.Submit(Job{ID: "bad", Lane: 7, Run: func(context.Context) error {
		return errors.New("probe failed")
	}}))
	require.NoError(t, r.Submit(Job{ID: "good", Lane: 7, Run: func(context.Context) error {
		close(done)
		return nil
	}}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second job never ran")
	}
}

func TestRouter_StopCancelsRunningJob(t *testing.T) {
	t.Parallel()

	r := NewRouter(Config{WorkerCount: 1, Logger: discardLogger()})
	r.Start(context.Background())

	started := make(chan struct{})
	var queuedRan atomic.Bool
	require.NoError(t, r.Submit(Job{ID: "long", Lane: 1, Run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}}))
	require.NoError(t, r.Submit(Job{ID: "queued", Lane: 1, Run: func(context.Context) error {
		queuedRan.Store(true)
		return nil
	}}))

	<-started
	r.Stop(context.Background())
	assert.False(t, queuedRan.Load())
	assert.Equal(t, 0, r.Pending())
}
