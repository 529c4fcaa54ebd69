package cron

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakePruner struct {
	cutoff time.Time
	n      int
	err    error
}

func (f *fakePruner) Prune(_ context.Context, cutoff time.Time) (int, error) {
	f.cutoff = cutoff
	return f.n, f.err
}

func TestJournalPruneJob_Run(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	store := &fakePruner{n: 3}
	j := &JournalPruneJob{
		Store:     store,
		Retention: 48 * time.Hour,
		Logger:    discardLogger(),
		Now:       func() time.Time { return now },
	}

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := now.Add(-48 * time.Hour); !store.cutoff.Equal(want) {
		t.Errorf("cutoff = %v, want %v", store.cutoff, want)
	}
}

func TestJournalPruneJob_Error(t *testing.T) {
	t.Parallel()

	j := &JournalPruneJob{Store: &fakePruner{err: errors.New("disk I/O error")}, Logger: discardLogger()}
	if err := j.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestJournalPruneJob_Schedule(t *testing.T) {
	t.Parallel()

	if got := (&JournalPruneJob{}).Schedule(); got != "0 * * * *" {
		t.Errorf("default schedule = %q", got)
	}
	if got := (&JournalPruneJob{ScheduleExpr: "*/5 * * * *"}).Schedule(); got != "*/5 * * * *" {
		t.Errorf("schedule = %q", got)
	}
	if got := (&JournalPruneJob{}).Name(); got != "journal_prune" {
		t.Errorf("name = %q", got)
	}
}
