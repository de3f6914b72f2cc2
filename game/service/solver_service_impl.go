package service

import (
	"context"
	"fmt"

	"github.com/wricardo/sokoban-solver/game/engine"
	"github.com/wricardo/sokoban-solver/solver"
	"github.com/wricardo/sokoban-solver/solver/astar"
	"github.com/wricardo/sokoban-solver/solver/deadlock"
	"github.com/wricardo/sokoban-solver/solver/fess"
)

// solverServiceImpl implements the SolverService interface. It holds no
// state of its own: all job synchronization lives in the JobManager.
type solverServiceImpl struct {
	jobs     JobManager
	levels   LevelManager
	notifier Notifier
}

// NewSolverService creates a new solver service instance. The notifier may
// be nil when no observer fan-out is wanted.
func NewSolverService(jobs JobManager, levels LevelManager, notifier Notifier) SolverService {
	return &solverServiceImpl{
		jobs:     jobs,
		levels:   levels,
		notifier: notifier,
	}
}

// resolveLevel turns a request into a parsed board and start state.
func (s *solverServiceImpl) resolveLevel(req SolveRequest) (string, *engine.Board, engine.State, error) {
	if req.LevelText != "" {
		board, start, err := engine.ParseLevel(req.LevelText)
		if err != nil {
			return "", nil, engine.State{}, err
		}
		return "", board, start, nil
	}
	if req.LevelID != "" {
		level, err := s.levels.LoadLevel(req.LevelID)
		if err != nil {
			return "", nil, engine.State{}, fmt.Errorf("failed to load level %s: %w", req.LevelID, err)
		}
		return level.ID, level.Board, level.Start, nil
	}
	level := s.levels.GetDefault()
	if level == nil {
		return "", nil, engine.State{}, fmt.Errorf("no level specified and no default level available")
	}
	return level.ID, level.Board, level.Start, nil
}

// normalizeEngine validates an engine name, defaulting to FESS.
func normalizeEngine(name string) (string, error) {
	switch name {
	case "", EngineFESS:
		return EngineFESS, nil
	case EngineAStar:
		return EngineAStar, nil
	}
	return "", fmt.Errorf("unknown engine %q (use %q or %q)", name, EngineFESS, EngineAStar)
}

// newEngine builds the named engine for a board.
func newEngine(name string, board *engine.Board, cfg solver.Config) (solver.Solver, error) {
	if name == EngineAStar {
		return astar.New(board, cfg)
	}
	return fess.New(board, cfg)
}

// CreateJob starts an asynchronous solve: one goroutine per job around the
// synchronous engine.
func (s *solverServiceImpl) CreateJob(ctx context.Context, req SolveRequest) (*JobInfo, error) {
	levelID, board, start, err := s.resolveLevel(req)
	if err != nil {
		return nil, err
	}

	engineName, err := normalizeEngine(req.Engine)
	if err != nil {
		return nil, err
	}

	cfg := req.Config()
	job, err := s.jobs.Create(levelID, engineName, board, start, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	jobID := job.ID
	if err := s.jobs.SetCancel(jobID, cancel); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if s.notifier != nil {
		cfg.OnProgress = func(p solver.Progress) {
			s.notifier.NotifyProgress(jobID, p)
		}
	}

	// engine construction runs in the job goroutine too: precomputing the
	// deadlock and hotspot tables can take a while on larger boards
	go func() {
		defer cancel()
		s.jobs.MarkRunning(jobID)

		var result *solver.Result
		jobEngine, runErr := newEngine(engineName, board, cfg)
		if runErr == nil {
			result, runErr = jobEngine.Solve(runCtx, start)
		}
		s.jobs.MarkFinished(jobID, result, runErr)

		if s.notifier != nil {
			if info, err := s.GetJob(context.Background(), jobID); err == nil {
				s.notifier.NotifyFinished(jobID, info)
			}
		}
	}()

	return s.jobs.Snapshot(jobID)
}

// GetJob retrieves a job snapshot
func (s *solverServiceImpl) GetJob(ctx context.Context, jobID string) (*JobInfo, error) {
	info, err := s.jobs.Snapshot(jobID)
	if err != nil {
		return nil, fmt.Errorf("job not found: %w", err)
	}
	return info, nil
}

// ListJobs returns snapshots of all jobs
func (s *solverServiceImpl) ListJobs(ctx context.Context) ([]*JobInfo, error) {
	return s.jobs.Snapshots(), nil
}

// CancelJob cancels a running job
func (s *solverServiceImpl) CancelJob(ctx context.Context, jobID string) error {
	return s.jobs.Cancel(jobID)
}

// DeleteJob removes a job
func (s *solverServiceImpl) DeleteJob(ctx context.Context, jobID string) error {
	return s.jobs.Delete(jobID)
}

// Solve runs a solver synchronously and verifies any solution by replay.
func (s *solverServiceImpl) Solve(ctx context.Context, req SolveRequest) (*SolveResponse, error) {
	levelID, board, start, err := s.resolveLevel(req)
	if err != nil {
		return nil, err
	}

	engineName, err := normalizeEngine(req.Engine)
	if err != nil {
		return nil, err
	}
	eng, err := newEngine(engineName, board, req.Config())
	if err != nil {
		return nil, err
	}

	result, err := eng.Solve(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("solve failed: %w", err)
	}

	return &SolveResponse{
		LevelID:  levelID,
		Engine:   engineName,
		Result:   result,
		Verified: solver.Verify(board, start, result),
	}, nil
}

// AnalyzeLevel runs the static analyzers against a level without searching.
func (s *solverServiceImpl) AnalyzeLevel(ctx context.Context, levelID, levelText string) (*LevelAnalysis, error) {
	id, board, start, err := s.resolveLevel(SolveRequest{LevelID: levelID, LevelText: levelText})
	if err != nil {
		return nil, err
	}

	detector := deadlock.NewDetector(board)
	packing := fess.NewPackingAnalyzer(board)
	conn := fess.NewConnectivityAnalyzer(board)
	room := fess.NewRoomAnalyzer(board)
	hotspots := fess.NewHotspotsAnalyzer(board)
	oop := fess.NewOutOfPlanAnalyzer(board, packing, detector, start)

	analysis := &LevelAnalysis{
		LevelID:      id,
		Width:        board.Width,
		Height:       board.Height,
		Boxes:        len(start.Boxes),
		CornerCells:  detector.CornerCells(),
		PackingOrder: packing.Order(),
		Rooms:        room.Rooms(),
		Tunnels:      len(room.Tunnels()),
		InitialVector: fess.FeatureVector{
			Packing:      packing.Feature(start),
			Connectivity: conn.Feature(start),
			Room:         room.Feature(start),
			OutOfPlan:    oop.Feature(start),
		},
		InitialDeadlock: detector.IsDeadlock(start),
		Rendered:        board.Render(start),
	}
	if top, ok := hotspots.TopHotspot(); ok {
		analysis.TopHotspot = &top
	}
	return analysis, nil
}

// ListLevels returns the catalog listing
func (s *solverServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.ListLevels()
}

// GetLevel fetches one level with its text
func (s *solverServiceImpl) GetLevel(ctx context.Context, levelID string) (*LevelDetail, error) {
	level, err := s.levels.LoadLevel(levelID)
	if err != nil {
		return nil, err
	}
	return &LevelDetail{
		LevelInfo: LevelInfo{
			Filename: level.ID + ".txt",
			LevelID:  level.ID,
			Width:    level.Board.Width,
			Height:   level.Board.Height,
			Boxes:    len(level.Start.Boxes),
			Targets:  len(level.Board.Targets()),
		},
		Text: level.Text,
	}, nil
}

// SaveLevel validates and stores a level in the catalog
func (s *solverServiceImpl) SaveLevel(ctx context.Context, levelID, text string) error {
	if levelID == "" {
		return fmt.Errorf("level id is required")
	}
	return s.levels.SaveLevel(levelID, text)
}
