package fess

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/sokoban-solver/game/engine"
	"github.com/wricardo/sokoban-solver/solver"
	"github.com/wricardo/sokoban-solver/solver/deadlock"
)

// Engine is the feature-space search engine. An instance owns its tree,
// feature space and caches exclusively; nothing is shared across runs of
// different instances, and a single run is synchronous and
// single-threaded.
type Engine struct {
	board *engine.Board
	cfg   solver.Config
	log   *zap.Logger

	detector *deadlock.Detector
	packing  *PackingAnalyzer
	conn     *ConnectivityAnalyzer
	room     *RoomAnalyzer
	hotspots *HotspotsAnalyzer

	gen *Generator
}

// New builds a FESS engine for a level. The out-of-plan analyzer and the
// advisors depend on the start state, so they are created per run.
func New(b *engine.Board, cfg solver.Config) (*Engine, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("board must not be nil")
	}

	packing := NewPackingAnalyzer(b)
	return &Engine{
		board:    b,
		cfg:      cfg,
		log:      cfg.Logger,
		detector: deadlock.NewDetector(b),
		packing:  packing,
		conn:     NewConnectivityAnalyzer(b),
		room:     NewRoomAnalyzer(b),
		hotspots: NewHotspotsAnalyzer(b),
		gen:      NewGenerator(b, cfg.MacroRadius),
	}, nil
}

// vector projects a state onto the feature space.
func (e *Engine) vector(oop *OutOfPlanAnalyzer, s engine.State) FeatureVector {
	return FeatureVector{
		Packing:      e.packing.Feature(s),
		Connectivity: e.conn.Feature(s),
		Room:         e.room.Feature(s),
		OutOfPlan:    oop.Feature(s),
	}
}

// Solve runs the search loop until a solution is found or a limit is hit.
// Limits and the context are checked once per outer iteration; a single
// iteration is never preempted.
func (e *Engine) Solve(ctx context.Context, start engine.State) (*solver.Result, error) {
	if err := engine.ValidateLevel(e.board, start); err != nil {
		return nil, err
	}

	startTime := time.Now()
	oop := NewOutOfPlanAnalyzer(e.board, e.packing, e.detector, start)
	advisors := []Advisor{
		NewPackingAdvisor(e.board, e.packing),
		NewConnectivityAdvisor(e.board, e.conn),
		NewRoomAdvisor(e.board, e.room),
		NewHotspotsAdvisor(e.board, e.hotspots),
		NewExplorerAdvisor(e.board, e.conn),
		NewOpenerAdvisor(e.board, e.hotspots),
		NewOutOfPlanAdvisor(e.board, oop),
	}

	tree := NewSearchTree(e.board)
	space := NewFeatureSpace()
	result := &solver.Result{Status: solver.StatusSpaceExhausted}

	rootIdx, _ := tree.Add(start, noParent, engine.Move{}, 0)
	tree.Node(rootIdx).Candidates = e.candidates(advisors, start)
	space.Add(e.vector(oop, start), rootIdx)
	result.Counters.Explored = 1

	if start.IsSolved(e.board) {
		result.Status = solver.StatusSolved
		result.Duration = time.Since(startTime)
		return result, nil
	}

	e.log.Debug("fess solve started",
		zap.Int("boxes", len(start.Boxes)),
		zap.Int("targets", len(e.board.Targets())),
		zap.Int("max_states", e.cfg.MaxStates))

	emptyStreak := 0
	for iteration := 0; ; iteration++ {
		if ctx.Err() != nil || time.Since(startTime) >= e.cfg.TimeLimit || tree.Len() >= e.cfg.MaxStates {
			result.Status = solver.StatusResourceExhausted
			break
		}
		if e.cfg.OnProgress != nil && iteration%solver.ProgressInterval == 0 && iteration > 0 {
			e.cfg.OnProgress(solver.Progress{
				Explored:  result.Counters.Explored,
				Generated: result.Counters.Generated,
				Deadlocks: result.Counters.Deadlocks,
				Elapsed:   time.Since(startTime),
			})
		}

		_, nodes, ok := space.NextCell()
		if !ok {
			result.Status = solver.StatusSpaceExhausted
			break
		}

		nodeIdx, cand, found := pickCandidate(tree, nodes)
		if !found {
			emptyStreak++
			// a full cycle of cells without a single unexpanded candidate
			// means the reachable space is consumed
			if emptyStreak >= space.Cells() {
				result.Status = solver.StatusSpaceExhausted
				break
			}
			continue
		}
		emptyStreak = 0
		result.Counters.Generated++

		parent := tree.Node(nodeIdx)
		next, legal := engine.Apply(e.board, parent.State, cand.Move)
		if !legal {
			continue
		}
		if e.detector.IsDeadlock(next) {
			result.Counters.Deadlocks++
			continue
		}

		weight := parent.Weight + cand.Weight
		childIdx, inserted := tree.Add(next, nodeIdx, cand.Move, weight)
		if !inserted {
			result.Counters.Duplicates++
			continue
		}
		result.Counters.Explored++

		if next.IsSolved(e.board) {
			result.Status = solver.StatusSolved
			result.Moves = tree.Path(childIdx)
			result.Tokens = engine.ExpandMoves(result.Moves)
			break
		}

		tree.Node(childIdx).Candidates = e.candidates(advisors, next)
		space.Add(e.vector(oop, next), childIdx)
	}

	result.Duration = time.Since(startTime)
	e.log.Debug("fess solve finished",
		zap.String("status", string(result.Status)),
		zap.Int("explored", result.Counters.Explored),
		zap.Int("deadlocks", result.Counters.Deadlocks),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// pickCandidate scans a cell's nodes for the unexpanded candidate with the
// globally minimal accumulated weight and removes it from its node. Ties
// break by node registration order, then candidate order.
func pickCandidate(tree *SearchTree, nodes []int32) (int32, Candidate, bool) {
	bestNode := int32(-1)
	bestCand := -1
	bestWeight := 0
	for _, idx := range nodes {
		node := tree.Node(idx)
		if node.Expanded {
			continue
		}
		for ci, c := range node.Candidates {
			w := node.Weight + c.Weight
			if bestNode == -1 || w < bestWeight {
				bestNode = idx
				bestCand = ci
				bestWeight = w
			}
		}
	}
	if bestNode == -1 {
		return 0, Candidate{}, false
	}

	node := tree.Node(bestNode)
	cand := node.Candidates[bestCand]
	node.Candidates = append(node.Candidates[:bestCand], node.Candidates[bestCand+1:]...)
	if len(node.Candidates) == 0 {
		node.Expanded = true
	}
	return bestNode, cand, true
}

// candidates gathers every basic directional move plus the generated macro
// pushes, weighted against the advisors' proposals: a move an advisor
// sanctions costs 0, a basic move costs 1 otherwise, and a macro keeps its
// Manhattan weight. Nothing is ever removed, only re-weighted, so the
// advisors bias the search without giving up completeness.
func (e *Engine) candidates(advisors []Advisor, s engine.State) []Candidate {
	var advised []engine.Move
	for _, a := range advisors {
		if m, ok := a.Advise(s); ok {
			advised = append(advised, m)
		}
	}

	advisedDir := make(map[engine.Direction]bool)
	advisedPush := make(map[[2]engine.Position]bool)
	for _, m := range advised {
		advisedDir[m.Dir] = true
		advisedPush[[2]engine.Position{m.From, m.To}] = true
	}

	var out []Candidate
	for _, d := range engine.Directions {
		weight := 1
		if advisedDir[d] {
			weight = 0
		}
		out = append(out, Candidate{Move: engine.BasicMoveIn(d), Weight: weight})
	}
	for _, c := range e.gen.Generate(s) {
		if advisedPush[[2]engine.Position{c.Move.From, c.Move.To}] {
			c.Weight = 0
		}
		out = append(out, c)
	}
	return out
}
