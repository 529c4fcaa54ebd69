package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// JobPruner is the subset of journal.Store used by the retention job.
type JobPruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// JournalPruneJob deletes finished upload jobs older than Retention.
type JournalPruneJob struct {
	Store        JobPruner
	Retention    time.Duration
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "0 * * * *"

	// Now defaults to time.Now.
	Now func() time.Time
}

var _ Job = (*JournalPruneJob)(nil)

// Name implements Job.
func (j *JournalPruneJob) Name() string { return "journal_prune" }

// Schedule implements Job.
func (j *JournalPruneJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 * * * *"
}

// Run removes jobs that finished before now minus Retention.
func (j *JournalPruneJob) Run(ctx context.Context) error {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	cutoff := now().Add(-j.Retention)
	pruned, err := j.Store.Prune(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cron: pruning journal: %w", err)
	}
	if pruned > 0 {
		j.Logger.Info("cron: pruned journal", "count", pruned, "cutoff", cutoff)
	}
	return nil
}
