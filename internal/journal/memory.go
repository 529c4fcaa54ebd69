package journal

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Memory is an in-process Store. It is used when no persistent journal
// module is configured.
type Memory struct {
	mu    sync.RWMutex
	jobs  map[string]*Job
	order []string
	files map[string][]File
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		jobs:  make(map[string]*Job),
		files: make(map[string][]File),
	}
}

// CreateJob implements Store.
func (m *Memory) CreateJob(_ context.Context, job Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[job.ID]; exists {
		return fmt.Errorf("journal: job %s already exists", job.ID)
	}
	j := job
	m.jobs[job.ID] = &j
	m.order = append(m.order, job.ID)
	return nil
}

// UpdateJob implements Store.
func (m *Memory) UpdateJob(_ context.Context, job Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, job.ID)
	}
	j := job
	m.jobs[job.ID] = &j
	return nil
}

// RecordFile implements Store.
func (m *Memory) RecordFile(_ context.Context, file File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[file.JobID]; !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, file.JobID)
	}
	m.files[file.JobID] = append(m.files[file.JobID], file)
	return nil
}

// Job implements Store.
func (m *Memory) Job(_ context.Context, id string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return *j, nil
}

// Files implements Store.
func (m *Memory) Files(_ context.Context, jobID string) ([]File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.files[jobID]), nil
}

// Recent implements Store.
func (m *Memory) Recent(_ context.Context, limit int) ([]Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Job, 0, min(limit, len(m.order)))
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *m.jobs[m.order[i]])
	}
	return out, nil
}

// MarkInterrupted implements Store.
func (m *Memory) MarkInterrupted(_ context.Context, at time.Time) ([]Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Job
	for _, id := range m.order {
		j := m.jobs[id]
		if j.Status != StatusRunning {
			continue
		}
		j.Status = StatusInterrupted
		j.FinishedAt = at
		out = append(out, *j)
	}
	return out, nil
}

// Prune implements Store.
func (m *Memory) Prune(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.order[:0]
	removed := 0
	for _, id := range m.order {
		j := m.jobs[id]
		if j.Status != StatusRunning && !j.FinishedAt.IsZero() && j.FinishedAt.Before(cutoff) {
			delete(m.jobs, id)
			delete(m.files, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return removed, nil
}
