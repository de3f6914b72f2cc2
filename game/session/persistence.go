package session

import (
	"time"

	"github.com/wricardo/sokoban-solver/game/service"
	"github.com/wricardo/sokoban-solver/solver"
)

// JobArchive defines the interface for archiving finished jobs
type JobArchive interface {
	// Save persists a finished job record to storage
	Save(record *ArchivedJob) error

	// Load retrieves an archived job record by ID
	Load(id string) (*ArchivedJob, error)

	// Delete removes an archived job from storage
	Delete(id string) error

	// ListAll returns all archived job IDs
	ListAll() ([]string, error)

	// Exists checks if an archived job exists in storage
	Exists(id string) bool
}

// ArchivedJob is the JSON record written for a finished job. The board is
// stored as level text so archives are readable and replayable.
type ArchivedJob struct {
	ID         string          `json:"id"`
	LevelID    string          `json:"level_id,omitempty"`
	LevelText  string          `json:"level_text"`
	Engine     string          `json:"engine"`
	Status     string          `json:"status"`
	Tokens     []string        `json:"tokens,omitempty"`
	Counters   solver.Counters `json:"counters"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	FinishedAt time.Time       `json:"finished_at"`
	DurationMS int64           `json:"duration_ms"`
}

// NewArchivedJob copies a job into its archive record. Callers that share
// the job with other goroutines must hold the manager lock while copying.
func NewArchivedJob(job *service.Job) *ArchivedJob {
	if job == nil {
		return nil
	}

	record := &ArchivedJob{
		ID:         job.ID,
		LevelID:    job.LevelID,
		Engine:     job.Engine,
		Status:     string(job.Status),
		Error:      job.Error,
		CreatedAt:  job.CreatedAt,
		FinishedAt: job.FinishedAt,
	}
	if job.Board != nil {
		record.LevelText = job.Board.Render(job.Start)
	}
	if job.Result != nil {
		record.Tokens = job.Result.Tokens
		record.Counters = job.Result.Counters
		record.DurationMS = job.Result.Duration.Milliseconds()
	}
	return record
}
