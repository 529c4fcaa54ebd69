package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flemzord/tgupload/internal/journal"
)

var _ journal.Store = (*Store)(nil)

// Store implements journal.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const jobColumns = `id, chat_id, path, status, progress_message_id, started_at, finished_at,
	discovered, uploaded, skipped, failed, bytes, error`

// CreateJob implements journal.Store.
func (s *Store) CreateJob(ctx context.Context, job journal.Job) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.ChatID, job.Path, string(job.Status), job.ProgressMessageID,
		toNanos(job.StartedAt), toNanos(job.FinishedAt),
		job.Discovered, job.Uploaded, job.Skipped, job.Failed, int64(job.Bytes), job.Error,
	)
	if err != nil {
		return fmt.Errorf("sqlite: create job %s: %w", job.ID, err)
	}
	return nil
}

// UpdateJob implements journal.Store.
func (s *Store) UpdateJob(ctx context.Context, job journal.Job) error {
	res, err := s.db.ExecContext(ctx, `UPDATE jobs SET
		chat_id = ?, path = ?, status = ?, progress_message_id = ?, started_at = ?, finished_at = ?,
		discovered = ?, uploaded = ?, skipped = ?, failed = ?, bytes = ?, error = ?
		WHERE id = ?`,
		job.ChatID, job.Path, string(job.Status), job.ProgressMessageID,
		toNanos(job.StartedAt), toNanos(job.FinishedAt),
		job.Discovered, job.Uploaded, job.Skipped, job.Failed, int64(job.Bytes), job.Error,
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update job %s: %w", job.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update job %s: %w", job.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", journal.ErrJobNotFound, job.ID)
	}
	return nil
}

// RecordFile implements journal.Store.
func (s *Store) RecordFile(ctx context.Context, file journal.File) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO files (job_id, name, path, size, outcome, message_id, link, at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM jobs WHERE id = ?)`,
		file.JobID, file.Name, file.Path, int64(file.Size), string(file.Outcome),
		file.MessageID, file.Link, toNanos(file.At), file.JobID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: record file %s: %w", file.Path, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", journal.ErrJobNotFound, file.JobID)
	}
	return nil
}

// Job implements journal.Store.
func (s *Store) Job(ctx context.Context, id string) (journal.Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return journal.Job{}, fmt.Errorf("%w: %s", journal.ErrJobNotFound, id)
	}
	if err != nil {
		return journal.Job{}, fmt.Errorf("sqlite: load job %s: %w", id, err)
	}
	return job, nil
}

// Files implements journal.Store.
func (s *Store) Files(ctx context.Context, jobID string) ([]journal.File, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT job_id, name, path, size, outcome, message_id, link, at
		FROM files WHERE job_id = ? ORDER BY seq`, jobID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list files of %s: %w", jobID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []journal.File
	for rows.Next() {
		var (
			f       journal.File
			size    int64
			outcome string
			at      int64
		)
		if err := rows.Scan(&f.JobID, &f.Name, &f.Path, &size, &outcome, &f.MessageID, &f.Link, &at); err != nil {
			return nil, fmt.Errorf("sqlite: scan file: %w", err)
		}
		f.Size = uint64(size)
		f.Outcome = journal.Outcome(outcome)
		f.At = fromNanos(at)
		out = append(out, f)
	}
	return out, rows.Err()
}

// Recent implements journal.Store.
func (s *Store) Recent(ctx context.Context, limit int) ([]journal.Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs
		ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list recent jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanJobs(rows)
}

// MarkInterrupted implements journal.Store.
func (s *Store) MarkInterrupted(ctx context.Context, at time.Time) ([]journal.Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY rowid`,
		string(journal.StatusRunning))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list running jobs: %w", err)
	}
	jobs, err := scanJobs(rows)
	_ = rows.Close()
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE jobs SET status = ?, finished_at = ? WHERE status = ?`,
		string(journal.StatusInterrupted), toNanos(at), string(journal.StatusRunning)); err != nil {
		return nil, fmt.Errorf("sqlite: mark interrupted: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: commit: %w", err)
	}

	for i := range jobs {
		jobs[i].Status = journal.StatusInterrupted
		jobs[i].FinishedAt = at.UTC()
	}
	return jobs, nil
}

// Prune implements journal.Store.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const expired = `status != ? AND finished_at > 0 AND finished_at < ?`
	args := []any{string(journal.StatusRunning), toNanos(cutoff)}

	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE job_id IN (SELECT id FROM jobs WHERE `+expired+`)`, args...); err != nil {
		return 0, fmt.Errorf("sqlite: prune files: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE `+expired, args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: prune jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: prune jobs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (journal.Job, error) {
	var (
		j                 journal.Job
		status            string
		started, finished int64
		bytes             int64
	)
	err := row.Scan(&j.ID, &j.ChatID, &j.Path, &status, &j.ProgressMessageID, &started, &finished,
		&j.Discovered, &j.Uploaded, &j.Skipped, &j.Failed, &bytes, &j.Error)
	if err != nil {
		return journal.Job{}, err
	}
	j.Status = journal.Status(status)
	j.StartedAt = fromNanos(started)
	j.FinishedAt = fromNanos(finished)
	j.Bytes = uint64(bytes)
	return j, nil
}

func scanJobs(rows *sql.Rows) ([]journal.Job, error) {
	var out []journal.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan job: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
