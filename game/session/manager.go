package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/sokoban-solver/game/engine"
	"github.com/wricardo/sokoban-solver/game/service"
	"github.com/wricardo/sokoban-solver/solver"
)

var (
	ErrJobNotFound      = errors.New("job not found")
	ErrJobAlreadyExists = errors.New("job already exists")
)

// Manager handles solve-job lifecycle
type Manager struct {
	jobs    map[string]*service.Job
	archive JobArchive
	mu      sync.RWMutex
}

// NewManager creates a new job manager
func NewManager() *Manager {
	return &Manager{
		jobs: make(map[string]*service.Job),
	}
}

// NewManagerWithArchive creates a new job manager that archives finished
// jobs through the given archive.
func NewManagerWithArchive(archive JobArchive) *Manager {
	return &Manager{
		jobs:    make(map[string]*service.Job),
		archive: archive,
	}
}

// Create registers a new pending job with a generated ID
func (m *Manager) Create(levelID, engineName string, board *engine.Board, start engine.State, cfg solver.Config) (*service.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	if _, exists := m.jobs[id]; exists {
		return nil, ErrJobAlreadyExists
	}

	job := &service.Job{
		ID:        id,
		LevelID:   levelID,
		Engine:    engineName,
		Board:     board,
		Start:     start,
		Config:    cfg,
		Status:    service.JobPending,
		CreatedAt: time.Now(),
	}
	m.jobs[id] = job
	return job, nil
}

// Get retrieves a job by ID
func (m *Manager) Get(id string) (*service.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[id]
	if !exists {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// snapshotLocked copies the mutable job fields into an immutable info.
// Callers must hold m.mu.
func snapshotLocked(job *service.Job) *service.JobInfo {
	return &service.JobInfo{
		ID:         job.ID,
		LevelID:    job.LevelID,
		Engine:     job.Engine,
		Status:     job.Status,
		Result:     job.Result,
		Error:      job.Error,
		CreatedAt:  job.CreatedAt,
		StartedAt:  job.StartedAt,
		FinishedAt: job.FinishedAt,
	}
}

// Snapshot returns an immutable copy of a job's current state. This is the
// only safe way to read a job that a solve goroutine may still be mutating.
func (m *Manager) Snapshot(id string) (*service.JobInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[id]
	if !exists {
		return nil, ErrJobNotFound
	}
	return snapshotLocked(job), nil
}

// Snapshots returns immutable copies of all jobs
func (m *Manager) Snapshots() []*service.JobInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.JobInfo, 0, len(m.jobs))
	for _, job := range m.jobs {
		result = append(result, snapshotLocked(job))
	}
	return result
}

// SetCancel attaches a cancel function to a job before its solve goroutine
// starts
func (m *Manager) SetCancel(id string, cancel context.CancelFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[id]
	if !exists {
		return ErrJobNotFound
	}
	job.Cancel = cancel
	return nil
}

// Cancel stops an unfinished job: it marks the job canceled and invokes
// the attached cancel function. Finished jobs are rejected.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	job, exists := m.jobs[id]
	if !exists {
		m.mu.Unlock()
		return ErrJobNotFound
	}
	if job.Status.Finished() {
		status := job.Status
		m.mu.Unlock()
		return fmt.Errorf("job %s already finished with status %s", id, status)
	}
	job.Status = service.JobCanceled
	job.FinishedAt = time.Now()
	cancel := job.Cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}

// List returns all jobs
func (m *Manager) List() []*service.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		result = append(result, job)
	}
	return result
}

// Delete removes a job
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[id]; !exists {
		return ErrJobNotFound
	}
	delete(m.jobs, id)
	return nil
}

// MarkRunning transitions a pending job to running
func (m *Manager) MarkRunning(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[id]
	if !exists {
		return ErrJobNotFound
	}
	if job.Status.Finished() {
		return nil
	}
	job.Status = service.JobRunning
	job.StartedAt = time.Now()
	return nil
}

// MarkFinished records a run's outcome. A canceled job keeps its status;
// otherwise the result decides between solved and failed.
func (m *Manager) MarkFinished(id string, result *solver.Result, runErr error) error {
	m.mu.Lock()
	job, exists := m.jobs[id]
	if !exists {
		m.mu.Unlock()
		return ErrJobNotFound
	}

	if !job.Status.Finished() {
		switch {
		case runErr != nil:
			job.Status = service.JobFailed
			job.Error = runErr.Error()
		case result != nil && result.Solved():
			job.Status = service.JobSolved
		default:
			job.Status = service.JobFailed
			if result != nil {
				job.Error = string(result.Status)
			}
		}
	}
	job.Result = result
	job.FinishedAt = time.Now()
	archive := m.archive
	// Copy the record while holding the lock; only the write goes outside
	var record *ArchivedJob
	if archive != nil {
		record = NewArchivedJob(job)
	}
	m.mu.Unlock()

	// Best-effort archive write
	if record != nil {
		if err := archive.Save(record); err != nil {
			fmt.Printf("Warning: Failed to archive job %s: %v\n", id, err)
		}
	}
	return nil
}

// MarkCanceled transitions an unfinished job to canceled
func (m *Manager) MarkCanceled(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[id]
	if !exists {
		return ErrJobNotFound
	}
	if job.Status.Finished() {
		return nil
	}
	job.Status = service.JobCanceled
	job.FinishedAt = time.Now()
	return nil
}

// CleanupFinished removes finished jobs older than maxAge and returns the
// number removed.
func (m *Manager) CleanupFinished(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, job := range m.jobs {
		if job.Status.Finished() && job.FinishedAt.Before(cutoff) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of tracked jobs
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.jobs)
}
