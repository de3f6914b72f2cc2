package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/sokoban-solver/game/engine"
	"github.com/wricardo/sokoban-solver/game/service"
	"github.com/wricardo/sokoban-solver/solver"
)

const testLevelText = `#######
#@$  .#
#######`

func createTestJob(t *testing.T, m *Manager) *service.Job {
	t.Helper()
	board, start, err := engine.ParseLevel(testLevelText)
	if err != nil {
		t.Fatalf("Failed to parse test level: %v", err)
	}
	cfg := solver.Config{}
	cfg.ApplyDefaults()

	job, err := m.Create("corridor", service.EngineFESS, board, start, cfg)
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	return job
}

func TestCreate(t *testing.T) {
	m := NewManager()
	job := createTestJob(t, m)

	if job.ID == "" {
		t.Errorf("Expected a generated job ID")
	}
	if job.Status != service.JobPending {
		t.Errorf("Expected status pending, got %s", job.Status)
	}
	if job.LevelID != "corridor" {
		t.Errorf("Expected level corridor, got %s", job.LevelID)
	}
	if job.CreatedAt.IsZero() {
		t.Errorf("Expected a creation timestamp")
	}
	if m.Count() != 1 {
		t.Errorf("Expected 1 tracked job, got %d", m.Count())
	}
}

func TestGet(t *testing.T) {
	m := NewManager()
	job := createTestJob(t, m)

	got, err := m.Get(job.ID)
	if err != nil {
		t.Fatalf("Failed to get job: %v", err)
	}
	if got.ID != job.ID {
		t.Errorf("Expected job %s, got %s", job.ID, got.ID)
	}

	if _, err := m.Get("missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	m := NewManager()
	createTestJob(t, m)
	createTestJob(t, m)

	if got := len(m.List()); got != 2 {
		t.Errorf("Expected 2 jobs, got %d", got)
	}
}

func TestDelete(t *testing.T) {
	m := NewManager()
	job := createTestJob(t, m)

	if err := m.Delete(job.ID); err != nil {
		t.Fatalf("Failed to delete job: %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("Expected 0 jobs after delete, got %d", m.Count())
	}
	if err := m.Delete(job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}
}

func TestMarkRunning(t *testing.T) {
	m := NewManager()
	job := createTestJob(t, m)

	if err := m.MarkRunning(job.ID); err != nil {
		t.Fatalf("Failed to mark running: %v", err)
	}
	got, _ := m.Get(job.ID)
	if got.Status != service.JobRunning {
		t.Errorf("Expected status running, got %s", got.Status)
	}
	if got.StartedAt.IsZero() {
		t.Errorf("Expected a start timestamp")
	}
}

func TestMarkFinished_Solved(t *testing.T) {
	m := NewManager()
	job := createTestJob(t, m)
	m.MarkRunning(job.ID)

	result := &solver.Result{Status: solver.StatusSolved, Tokens: []string{"RIGHT"}}
	if err := m.MarkFinished(job.ID, result, nil); err != nil {
		t.Fatalf("Failed to mark finished: %v", err)
	}

	got, _ := m.Get(job.ID)
	if got.Status != service.JobSolved {
		t.Errorf("Expected status solved, got %s", got.Status)
	}
	if got.Result == nil {
		t.Errorf("Expected a stored result")
	}
	if got.FinishedAt.IsZero() {
		t.Errorf("Expected a finish timestamp")
	}
}

func TestMarkFinished_Unsolved(t *testing.T) {
	m := NewManager()
	job := createTestJob(t, m)

	result := &solver.Result{Status: solver.StatusResourceExhausted}
	if err := m.MarkFinished(job.ID, result, nil); err != nil {
		t.Fatalf("Failed to mark finished: %v", err)
	}

	got, _ := m.Get(job.ID)
	if got.Status != service.JobFailed {
		t.Errorf("Expected status failed, got %s", got.Status)
	}
	if got.Error != string(solver.StatusResourceExhausted) {
		t.Errorf("Expected error %s, got %s", solver.StatusResourceExhausted, got.Error)
	}
}

func TestMarkFinished_RunError(t *testing.T) {
	m := NewManager()
	job := createTestJob(t, m)

	if err := m.MarkFinished(job.ID, nil, fmt.Errorf("engine blew up")); err != nil {
		t.Fatalf("Failed to mark finished: %v", err)
	}

	got, _ := m.Get(job.ID)
	if got.Status != service.JobFailed {
		t.Errorf("Expected status failed, got %s", got.Status)
	}
	if got.Error != "engine blew up" {
		t.Errorf("Expected the run error recorded, got %q", got.Error)
	}
}

func TestMarkCanceled(t *testing.T) {
	m := NewManager()
	job := createTestJob(t, m)
	m.MarkRunning(job.ID)

	if err := m.MarkCanceled(job.ID); err != nil {
		t.Fatalf("Failed to mark canceled: %v", err)
	}
	got, _ := m.Get(job.ID)
	if got.Status != service.JobCanceled {
		t.Errorf("Expected status canceled, got %s", got.Status)
	}

	// a later finish must not overwrite the cancellation
	result := &solver.Result{Status: solver.StatusSolved}
	if err := m.MarkFinished(job.ID, result, nil); err != nil {
		t.Fatalf("Failed to mark finished: %v", err)
	}
	got, _ = m.Get(job.ID)
	if got.Status != service.JobCanceled {
		t.Errorf("Expected status to stay canceled, got %s", got.Status)
	}
}

func TestSnapshot(t *testing.T) {
	m := NewManager()
	job := createTestJob(t, m)
	m.MarkRunning(job.ID)

	info, err := m.Snapshot(job.ID)
	if err != nil {
		t.Fatalf("Failed to snapshot job: %v", err)
	}
	if info.ID != job.ID {
		t.Errorf("Expected job %s, got %s", job.ID, info.ID)
	}
	if info.Status != service.JobRunning {
		t.Errorf("Expected status running, got %s", info.Status)
	}

	// the snapshot is a copy: later transitions must not show through
	m.MarkFinished(job.ID, &solver.Result{Status: solver.StatusSolved}, nil)
	if info.Status != service.JobRunning {
		t.Errorf("Expected snapshot to keep status running, got %s", info.Status)
	}

	if _, err := m.Snapshot("missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}
}

func TestSnapshots(t *testing.T) {
	m := NewManager()
	createTestJob(t, m)
	createTestJob(t, m)

	if got := len(m.Snapshots()); got != 2 {
		t.Errorf("Expected 2 snapshots, got %d", got)
	}
}

func TestCancel(t *testing.T) {
	m := NewManager()
	job := createTestJob(t, m)
	m.MarkRunning(job.ID)

	canceled := false
	if err := m.SetCancel(job.ID, func() { canceled = true }); err != nil {
		t.Fatalf("Failed to set cancel: %v", err)
	}

	if err := m.Cancel(job.ID); err != nil {
		t.Fatalf("Failed to cancel job: %v", err)
	}
	if !canceled {
		t.Errorf("Expected the cancel function invoked")
	}
	info, _ := m.Snapshot(job.ID)
	if info.Status != service.JobCanceled {
		t.Errorf("Expected status canceled, got %s", info.Status)
	}

	if err := m.Cancel(job.ID); err == nil {
		t.Errorf("Expected an error canceling a finished job")
	}
	if err := m.SetCancel("missing", func() {}); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}
	if err := m.Cancel("missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}
}

func TestSnapshot_ConcurrentWithLifecycle(t *testing.T) {
	m := NewManager()

	for round := 0; round < 20; round++ {
		job := createTestJob(t, m)

		done := make(chan struct{})
		go func() {
			m.MarkRunning(job.ID)
			result := &solver.Result{Status: solver.StatusSolved, Tokens: []string{"RIGHT"}}
			m.MarkFinished(job.ID, result, nil)
			close(done)
		}()

		for {
			info, err := m.Snapshot(job.ID)
			if err != nil {
				t.Fatalf("Failed to snapshot job: %v", err)
			}
			m.Snapshots()
			if info.Status.Finished() {
				if info.Status != service.JobSolved {
					t.Errorf("Expected status solved, got %s", info.Status)
				}
				break
			}
		}
		<-done
	}
}

func TestMarkFinished_ConcurrentCancelArchives(t *testing.T) {
	archive, err := NewFileArchive(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	m := NewManagerWithArchive(archive)

	for round := 0; round < 20; round++ {
		job := createTestJob(t, m)
		m.MarkRunning(job.ID)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			result := &solver.Result{Status: solver.StatusSolved, Tokens: []string{"RIGHT"}}
			m.MarkFinished(job.ID, result, nil)
		}()
		go func() {
			defer wg.Done()
			m.MarkCanceled(job.ID)
		}()
		wg.Wait()

		info, err := m.Snapshot(job.ID)
		if err != nil {
			t.Fatalf("Failed to snapshot job: %v", err)
		}
		if !info.Status.Finished() {
			t.Fatalf("Expected a finished status, got %s", info.Status)
		}
		// the archived record must match one coherent final state, never a
		// blend of the two transitions
		if archive.Exists(job.ID) {
			record, err := archive.Load(job.ID)
			if err != nil {
				t.Fatalf("Failed to load archived record: %v", err)
			}
			switch record.Status {
			case string(service.JobSolved):
				if len(record.Tokens) != 1 {
					t.Errorf("Expected 1 archived token for a solved record, got %d", len(record.Tokens))
				}
			case string(service.JobCanceled):
			default:
				t.Errorf("Expected archived status solved or canceled, got %s", record.Status)
			}
		}
	}
}

func TestCleanupFinished(t *testing.T) {
	m := NewManager()
	finished := createTestJob(t, m)
	pending := createTestJob(t, m)

	m.MarkFinished(finished.ID, &solver.Result{Status: solver.StatusSolved}, nil)
	time.Sleep(5 * time.Millisecond)

	removed := m.CleanupFinished(time.Millisecond)
	if removed != 1 {
		t.Errorf("Expected 1 job removed, got %d", removed)
	}
	if _, err := m.Get(finished.ID); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Expected finished job removed, got %v", err)
	}
	if _, err := m.Get(pending.ID); err != nil {
		t.Errorf("Expected pending job kept, got %v", err)
	}
}

func TestMarkFinished_WritesArchive(t *testing.T) {
	archive, err := NewFileArchive(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	m := NewManagerWithArchive(archive)
	job := createTestJob(t, m)

	result := &solver.Result{
		Status:   solver.StatusSolved,
		Tokens:   []string{"RIGHT", "RIGHT", "RIGHT"},
		Duration: 12 * time.Millisecond,
	}
	if err := m.MarkFinished(job.ID, result, nil); err != nil {
		t.Fatalf("Failed to mark finished: %v", err)
	}

	if !archive.Exists(job.ID) {
		t.Fatalf("Expected an archived record for the finished job")
	}
	record, err := archive.Load(job.ID)
	if err != nil {
		t.Fatalf("Failed to load archived record: %v", err)
	}
	if record.Status != string(service.JobSolved) {
		t.Errorf("Expected archived status solved, got %s", record.Status)
	}
	if len(record.Tokens) != 3 {
		t.Errorf("Expected 3 archived tokens, got %d", len(record.Tokens))
	}
}
