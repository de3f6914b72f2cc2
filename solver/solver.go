package solver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/sokoban-solver/game/engine"
)

// Default resource limits applied by Config.ApplyDefaults.
const (
	DefaultMaxStates   = 100000
	DefaultTimeLimit   = 30 * time.Second
	DefaultMacroRadius = 3

	// ProgressInterval is the number of outer loop iterations between
	// progress callbacks.
	ProgressInterval = 1000
)

// Status is the terminal outcome of a solver run.
type Status string

const (
	// StatusSolved means a complete solution was found.
	StatusSolved Status = "solved"
	// StatusResourceExhausted means the time or state limit was reached
	// first. Retryable with larger limits.
	StatusResourceExhausted Status = "resource_exhausted"
	// StatusSpaceExhausted means the reachable search space was consumed
	// without finding a solution.
	StatusSpaceExhausted Status = "space_exhausted"
)

// Counters aggregates the per-run search statistics.
type Counters struct {
	Explored   int `json:"explored"`
	Generated  int `json:"generated"`
	Deadlocks  int `json:"deadlocks"`
	Duplicates int `json:"duplicates"`
	Pruned     int `json:"pruned"`
}

// Progress is the observational snapshot passed to the progress callback.
// Callbacks must not mutate search state.
type Progress struct {
	Explored  int           `json:"explored"`
	Generated int           `json:"generated"`
	Deadlocks int           `json:"deadlocks"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Config is the explicit per-run configuration. The zero value is invalid;
// call ApplyDefaults or fill every field.
type Config struct {
	// MaxStates bounds the number of stored states. Memory grows with
	// explored states and nothing is ever evicted, so this is the only
	// memory bound a caller has.
	MaxStates int

	// TimeLimit bounds wall-clock time, checked once per outer loop
	// iteration. A single iteration is never preempted.
	TimeLimit time.Duration

	// MacroRadius bounds the straight-line macro push generator.
	MacroRadius int

	// OnProgress, when set, is invoked periodically with run statistics.
	OnProgress func(Progress)

	// Logger receives engine diagnostics. Nil means no logging.
	Logger *zap.Logger
}

// ApplyDefaults fills unset fields with the package defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxStates == 0 {
		c.MaxStates = DefaultMaxStates
	}
	if c.TimeLimit == 0 {
		c.TimeLimit = DefaultTimeLimit
	}
	if c.MacroRadius == 0 {
		c.MacroRadius = DefaultMacroRadius
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// Validate checks the configuration for misuse.
func (c *Config) Validate() error {
	if c.MaxStates < 1 {
		return fmt.Errorf("config validation: max_states must be at least 1, got %d", c.MaxStates)
	}
	if c.TimeLimit <= 0 {
		return fmt.Errorf("config validation: time_limit must be positive, got %s", c.TimeLimit)
	}
	if c.MacroRadius < 1 {
		return fmt.Errorf("config validation: macro_radius must be at least 1, got %d", c.MacroRadius)
	}
	return nil
}

// Result is the terminal report of a solver run. Moves holds the engine's
// internal move sequence; Tokens is the same sequence expanded to the
// UP/DOWN/LEFT/RIGHT vocabulary.
type Result struct {
	Status   Status        `json:"status"`
	Moves    []engine.Move `json:"-"`
	Tokens   []string      `json:"tokens,omitempty"`
	Counters Counters      `json:"counters"`
	Duration time.Duration `json:"duration"`
}

// Solved reports whether the run found a solution.
func (r *Result) Solved() bool {
	return r.Status == StatusSolved
}

// Solver is the contract implemented by both engines. The board is fixed at
// construction; a run is synchronous and single-threaded, and cancellation
// via the context is coarse-grained, observed once per outer loop iteration.
type Solver interface {
	Solve(ctx context.Context, start engine.State) (*Result, error)
}

// Verify replays a result's move sequence from the start state and reports
// whether every move is legal and the final state is solved.
func Verify(board *engine.Board, start engine.State, r *Result) bool {
	if r == nil || !r.Solved() {
		return false
	}
	final, ok := engine.Replay(board, start, r.Moves)
	if !ok {
		return false
	}
	return final.IsSolved(board)
}
