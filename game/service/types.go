package service

import (
	"context"
	"time"

	"github.com/wricardo/sokoban-solver/game/engine"
	"github.com/wricardo/sokoban-solver/solver"
	"github.com/wricardo/sokoban-solver/solver/fess"
)

// Engine names accepted by solve requests.
const (
	EngineFESS  = "fess"
	EngineAStar = "astar"
)

// JobStatus is the lifecycle state of a solve job.
type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobSolved   JobStatus = "solved"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

// Finished reports whether the status is terminal.
func (s JobStatus) Finished() bool {
	return s == JobSolved || s == JobFailed || s == JobCanceled
}

// Level is a named, parsed level held by the catalog.
type Level struct {
	ID    string
	Name  string
	Text  string
	Board *engine.Board
	Start engine.State
}

// LevelInfo summarizes a catalog level for listings.
type LevelInfo struct {
	Filename string `json:"filename"`
	LevelID  string `json:"level_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Boxes    int    `json:"boxes"`
	Targets  int    `json:"targets"`
}

// LevelDetail is a catalog level with its text, for fetch responses.
type LevelDetail struct {
	LevelInfo
	Text string `json:"text"`
}

// SolveRequest configures one solver run. Exactly one of LevelID and
// LevelText must be set.
type SolveRequest struct {
	LevelID     string `json:"level_id,omitempty"`
	LevelText   string `json:"level_text,omitempty"`
	Engine      string `json:"engine,omitempty"`
	MaxStates   int    `json:"max_states,omitempty"`
	TimeLimitMS int    `json:"time_limit_ms,omitempty"`
	MacroRadius int    `json:"macro_radius,omitempty"`
}

// Config converts the request limits into a solver configuration.
func (r *SolveRequest) Config() solver.Config {
	cfg := solver.Config{
		MaxStates:   r.MaxStates,
		MacroRadius: r.MacroRadius,
	}
	if r.TimeLimitMS > 0 {
		cfg.TimeLimit = time.Duration(r.TimeLimitMS) * time.Millisecond
	}
	cfg.ApplyDefaults()
	return cfg
}

// Job is a live solve job owned by the job manager. Field access outside
// the manager goes through JobInfo snapshots.
type Job struct {
	ID         string
	LevelID    string
	Engine     string
	Board      *engine.Board
	Start      engine.State
	Config     solver.Config
	Status     JobStatus
	Result     *solver.Result
	Error      string
	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	Cancel     context.CancelFunc
}

// JobInfo is the immutable snapshot of a job returned by the service.
type JobInfo struct {
	ID         string         `json:"id"`
	LevelID    string         `json:"level_id"`
	Engine     string         `json:"engine"`
	Status     JobStatus      `json:"status"`
	Result     *solver.Result `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	StartedAt  time.Time      `json:"started_at,omitempty"`
	FinishedAt time.Time      `json:"finished_at,omitempty"`
}

// SolveResponse is the result of a synchronous solve.
type SolveResponse struct {
	LevelID  string         `json:"level_id,omitempty"`
	Engine   string         `json:"engine"`
	Result   *solver.Result `json:"result"`
	Verified bool           `json:"verified"`
}

// LevelAnalysis is the static analysis of a level: the solver's
// precomputed tables plus the initial-state features.
type LevelAnalysis struct {
	LevelID         string             `json:"level_id,omitempty"`
	Width           int                `json:"width"`
	Height          int                `json:"height"`
	Boxes           int                `json:"boxes"`
	CornerCells     []engine.Position  `json:"corner_cells"`
	PackingOrder    []engine.Position  `json:"packing_order"`
	Rooms           int                `json:"rooms"`
	Tunnels         int                `json:"tunnels"`
	TopHotspot      *engine.Position   `json:"top_hotspot,omitempty"`
	InitialVector   fess.FeatureVector `json:"initial_vector"`
	InitialDeadlock bool               `json:"initial_deadlock"`
	Rendered        string             `json:"rendered"`
}
