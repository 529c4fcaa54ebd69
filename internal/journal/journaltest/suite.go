// Package journaltest holds behaviour tests shared by journal.Store
// implementations.
package journaltest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flemzord/tgupload/internal/journal"
)

// RunStoreTests exercises a Store created fresh by newStore for each case.
func RunStoreTests(t *testing.T, newStore func(t *testing.T) journal.Store) {
	t.Helper()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("create and get", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		job := journal.Job{ID: "j1", ChatID: -1001234567890, Path: "/tmp/docs", Status: journal.StatusRunning, StartedAt: base}
		require.NoError(t, s.CreateJob(ctx, job))

		got, err := s.Job(ctx, "j1")
		require.NoError(t, err)
		assert.Equal(t, job.Path, got.Path)
		assert.Equal(t, job.ChatID, got.ChatID)
		assert.Equal(t, journal.StatusRunning, got.Status)
		assert.True(t, base.Equal(got.StartedAt))

		_, err = s.Job(ctx, "missing")
		assert.ErrorIs(t, err, journal.ErrJobNotFound)
	})

	t.Run("update and files", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		job := journal.Job{ID: "j2", ChatID: 42, Path: "/srv", Status: journal.StatusRunning, StartedAt: base}
		require.NoError(t, s.CreateJob(ctx, job))

		require.NoError(t, s.RecordFile(ctx, journal.File{JobID: "j2", Name: "a.txt", Path: "/srv/a.txt", Size: 3, Outcome: journal.OutcomeUploaded, MessageID: 10, Link: "https://t.me/c/42/10", At: base}))
		require.NoError(t, s.RecordFile(ctx, journal.File{JobID: "j2", Name: "b.txt", Path: "/srv/b.txt", Size: 4, Outcome: journal.OutcomeSkipped, At: base}))

		job.Status = journal.StatusDone
		job.FinishedAt = base.Add(time.Minute)
		job.Discovered, job.Uploaded, job.Skipped, job.Bytes = 2, 1, 1, 3
		require.NoError(t, s.UpdateJob(ctx, job))

		got, err := s.Job(ctx, "j2")
		require.NoError(t, err)
		assert.Equal(t, journal.StatusDone, got.Status)
		assert.Equal(t, 1, got.Uploaded)
		assert.Equal(t, uint64(3), got.Bytes)

		files, err := s.Files(ctx, "j2")
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, "a.txt", files[0].Name)
		assert.Equal(t, "https://t.me/c/42/10", files[0].Link)
		assert.Equal(t, journal.OutcomeSkipped, files[1].Outcome)

		assert.ErrorIs(t, s.UpdateJob(ctx, journal.Job{ID: "nope"}), journal.ErrJobNotFound)
	})

	t.Run("recent newest first", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		for i := range 5 {
			require.NoError(t, s.CreateJob(ctx, journal.Job{
				ID: fmt.Sprintf("r%d", i), Status: journal.StatusDone,
				StartedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}
		jobs, err := s.Recent(ctx, 3)
		require.NoError(t, err)
		require.Len(t, jobs, 3)
		assert.Equal(t, "r4", jobs[0].ID)
		assert.Equal(t, "r2", jobs[2].ID)
	})

	t.Run("mark interrupted", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateJob(ctx, journal.Job{ID: "run", Status: journal.StatusRunning, StartedAt: base}))
		require.NoError(t, s.CreateJob(ctx, journal.Job{ID: "fin", Status: journal.StatusDone, StartedAt: base, FinishedAt: base}))

		at := base.Add(time.Hour)
		jobs, err := s.MarkInterrupted(ctx, at)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "run", jobs[0].ID)

		got, err := s.Job(ctx, "run")
		require.NoError(t, err)
		assert.Equal(t, journal.StatusInterrupted, got.Status)
		assert.True(t, at.Equal(got.FinishedAt))

		again, err := s.MarkInterrupted(ctx, at)
		require.NoError(t, err)
		assert.Empty(t, again)
	})

	t.Run("prune", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.CreateJob(ctx, journal.Job{ID: "old", Status: journal.StatusDone, StartedAt: base, FinishedAt: base}))
		require.NoError(t, s.RecordFile(ctx, journal.File{JobID: "old", Name: "x", Path: "/x", Outcome: journal.OutcomeUploaded, At: base}))
		require.NoError(t, s.CreateJob(ctx, journal.Job{ID: "new", Status: journal.StatusDone, StartedAt: base, FinishedAt: base.Add(48 * time.Hour)}))
		require.NoError(t, s.CreateJob(ctx, journal.Job{ID: "busy", Status: journal.StatusRunning, StartedAt: base}))

		n, err := s.Prune(ctx, base.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = s.Job(ctx, "old")
		assert.ErrorIs(t, err, journal.ErrJobNotFound)
		files, err := s.Files(ctx, "old")
		require.NoError(t, err)
		assert.Empty(t, files)

		_, err = s.Job(ctx, "new")
		assert.NoError(t, err)
		_, err = s.Job(ctx, "busy")
		assert.NoError(t, err)
	})
}
