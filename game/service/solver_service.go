package service

import (
	"context"
	"time"

	"github.com/wricardo/sokoban-solver/game/engine"
	"github.com/wricardo/sokoban-solver/solver"
)

// SolverService defines all solver-related operations
type SolverService interface {
	// Job Management
	CreateJob(ctx context.Context, req SolveRequest) (*JobInfo, error)
	GetJob(ctx context.Context, jobID string) (*JobInfo, error)
	ListJobs(ctx context.Context) ([]*JobInfo, error)
	CancelJob(ctx context.Context, jobID string) error
	DeleteJob(ctx context.Context, jobID string) error

	// Synchronous Operations
	Solve(ctx context.Context, req SolveRequest) (*SolveResponse, error)
	AnalyzeLevel(ctx context.Context, levelID, levelText string) (*LevelAnalysis, error)

	// Levels
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	GetLevel(ctx context.Context, levelID string) (*LevelDetail, error)
	SaveLevel(ctx context.Context, levelID, text string) error
}

// JobManager defines solve-job storage operations. Live jobs are mutated by
// their solve goroutines, so all reads go through Snapshot/Snapshots, which
// copy under the manager's lock.
type JobManager interface {
	Create(levelID, engineName string, board *engine.Board, start engine.State, cfg solver.Config) (*Job, error)
	Snapshot(id string) (*JobInfo, error)
	Snapshots() []*JobInfo
	SetCancel(id string, cancel context.CancelFunc) error
	Cancel(id string) error
	Delete(id string) error
	MarkRunning(id string) error
	MarkFinished(id string, result *solver.Result, runErr error) error
	CleanupFinished(maxAge time.Duration) int
	Count() int
}

// LevelManager handles level catalog loading
type LevelManager interface {
	LoadLevel(name string) (*Level, error)
	ListLevels() ([]*LevelInfo, error)
	GetDefault() *Level
	SaveLevel(name, text string) error
}

// Notifier receives job lifecycle events for fan-out to observers. All
// notifications are observational; implementations must not block.
type Notifier interface {
	NotifyProgress(jobID string, p solver.Progress)
	NotifyFinished(jobID string, info *JobInfo)
}
