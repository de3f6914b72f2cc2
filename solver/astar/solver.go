package astar

import (
	"container/heap"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/sokoban-solver/game/engine"
	"github.com/wricardo/sokoban-solver/solver"
)

// exactAssignmentLimit is the box count up to which the heuristic computes
// the exact minimum-cost box-to-target assignment by permutation. Beyond
// it the per-box nearest-target sum is used.
const exactAssignmentLimit = 6

// Solver is the A* engine. Each instance owns its open list and best-g map
// exclusively; a run is synchronous and single-threaded.
type Solver struct {
	board *engine.Board
	cfg   solver.Config
	log   *zap.Logger

	// corner holds the statically dead corner cells; dead marks floor
	// cells with no floor-connected target. Both are pruning tables, not
	// part of the full deadlock detector.
	corner map[engine.Position]bool
	dead   map[engine.Position]bool
}

// New builds an A* solver for a level, precomputing the pruning tables.
func New(b *engine.Board, cfg solver.Config) (*Solver, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("board must not be nil")
	}

	s := &Solver{
		board:  b,
		cfg:    cfg,
		log:    cfg.Logger,
		corner: make(map[engine.Position]bool),
		dead:   make(map[engine.Position]bool),
	}

	// multi-source flood from all targets over the empty floor; anything
	// unreached can never deliver a box to a target
	reached := make(map[engine.Position]bool)
	var queue []engine.Position
	for _, t := range b.Targets() {
		reached[t] = true
		queue = append(queue, t)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range engine.Directions {
			next := engine.Step(cur, d)
			if reached[next] || !b.IsFloor(next.X, next.Y) {
				continue
			}
			reached[next] = true
			queue = append(queue, next)
		}
	}

	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if !b.IsFloor(x, y) {
				continue
			}
			p := engine.Position{X: x, Y: y}
			if !reached[p] {
				s.dead[p] = true
			}
			if b.IsTarget(p) {
				continue
			}
			vert := b.IsWall(x, y-1) || b.IsWall(x, y+1)
			horiz := b.IsWall(x-1, y) || b.IsWall(x+1, y)
			if vert && horiz {
				s.corner[p] = true
			}
		}
	}
	return s, nil
}

// item is one open-list entry. Parent links index the arena of popped and
// pushed items, never pointers, so path reconstruction is a simple walk.
type item struct {
	state     engine.State
	key       string
	g         int
	f         int
	proximity int
	seq       int
	parent    int32
	byMove    engine.Move
	heapIdx   int
}

// openList orders items by f, then the player-proximity tie-break, then
// insertion sequence, which keeps runs fully deterministic.
type openList []*item

func (o openList) Len() int { return len(o) }
func (o openList) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	if o[i].proximity != o[j].proximity {
		return o[i].proximity < o[j].proximity
	}
	return o[i].seq < o[j].seq
}
func (o openList) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].heapIdx = i
	o[j].heapIdx = j
}
func (o *openList) Push(x any) {
	it := x.(*item)
	it.heapIdx = len(*o)
	*o = append(*o, it)
}
func (o *openList) Pop() any {
	old := *o
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return it
}

// Solve runs A* until a solution is found or a limit is hit. Limits and
// the context are checked once per pop.
func (s *Solver) Solve(ctx context.Context, start engine.State) (*solver.Result, error) {
	if err := engine.ValidateLevel(s.board, start); err != nil {
		return nil, err
	}

	startTime := time.Now()
	result := &solver.Result{Status: solver.StatusSpaceExhausted}

	arena := []*item{}
	open := &openList{}
	heap.Init(open)
	bestG := make(map[string]int)

	seq := 0
	push := func(st engine.State, g int, parent int32, byMove engine.Move) {
		key := st.Key()
		if known, ok := bestG[key]; ok && g >= known {
			result.Counters.Duplicates++
			return
		}
		bestG[key] = g
		it := &item{
			state:     st,
			key:       key,
			g:         g,
			f:         g + s.heuristic(st),
			proximity: s.proximity(st),
			seq:       seq,
			parent:    parent,
			byMove:    byMove,
		}
		seq++
		arena = append(arena, it)
		heap.Push(open, it)
		result.Counters.Generated++
	}

	push(start, 0, -1, engine.Move{})

	s.log.Debug("astar solve started",
		zap.Int("boxes", len(start.Boxes)),
		zap.Int("max_states", s.cfg.MaxStates))

	for open.Len() > 0 {
		if ctx.Err() != nil || time.Since(startTime) >= s.cfg.TimeLimit || len(bestG) >= s.cfg.MaxStates {
			result.Status = solver.StatusResourceExhausted
			break
		}
		if s.cfg.OnProgress != nil && result.Counters.Explored%solver.ProgressInterval == 0 && result.Counters.Explored > 0 {
			s.cfg.OnProgress(solver.Progress{
				Explored:  result.Counters.Explored,
				Generated: result.Counters.Generated,
				Elapsed:   time.Since(startTime),
			})
		}

		cur := heap.Pop(open).(*item)
		if bestG[cur.key] < cur.g {
			// a cheaper path to this state was found after this entry
			// was queued
			continue
		}
		result.Counters.Explored++

		if cur.state.IsSolved(s.board) {
			result.Status = solver.StatusSolved
			result.Moves = reconstruct(arena, cur)
			result.Tokens = engine.ExpandMoves(result.Moves)
			break
		}

		curIdx := int32(cur.seq)
		for _, d := range engine.Directions {
			move := engine.BasicMoveIn(d)
			next, ok := engine.Apply(s.board, cur.state, move)
			if !ok {
				continue
			}
			if s.prune(cur.state, next, d) {
				result.Counters.Pruned++
				continue
			}
			push(next, cur.g+1, curIdx, move)
		}
	}

	result.Duration = time.Since(startTime)
	s.log.Debug("astar solve finished",
		zap.String("status", string(result.Status)),
		zap.Int("explored", result.Counters.Explored),
		zap.Int("pruned", result.Counters.Pruned),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// reconstruct walks the parent links back to the root and reverses. The
// arena is indexed by insertion sequence.
func reconstruct(arena []*item, last *item) []engine.Move {
	var moves []engine.Move
	for cur := last; cur.parent != -1; cur = arena[cur.parent] {
		moves = append(moves, cur.byMove)
	}
	for i, j := 0, len(moves)-1; i < j; i, j = i+1, j-1 {
		moves[i], moves[j] = moves[j], moves[i]
	}
	return moves
}

// prune applies the simplified pre-insertion deadlock checks. They only
// fire on moves that pushed a box.
func (s *Solver) prune(prev, next engine.State, d engine.Direction) bool {
	playerDest := engine.Step(prev.Player, d)
	if !prev.HasBox(playerDest) {
		return false
	}
	boxDest := engine.Step(playerDest, d)

	if s.corner[boxDest] {
		return true
	}
	if s.dead[boxDest] {
		return true
	}
	return s.frozenPair(next, boxDest)
}

// frozenPair reports whether the pushed box and a neighbor are both flush
// against the same wall with neither on a target.
func (s *Solver) frozenPair(st engine.State, box engine.Position) bool {
	if s.board.IsTarget(box) {
		return false
	}
	for _, dy := range []int{-1, 1} {
		if !s.board.IsWall(box.X, box.Y+dy) {
			continue
		}
		for _, dx := range []int{-1, 1} {
			n := engine.Position{X: box.X + dx, Y: box.Y}
			if st.HasBox(n) && s.board.IsWall(n.X, n.Y+dy) && !s.board.IsTarget(n) {
				return true
			}
		}
	}
	for _, dx := range []int{-1, 1} {
		if !s.board.IsWall(box.X+dx, box.Y) {
			continue
		}
		for _, dy := range []int{-1, 1} {
			n := engine.Position{X: box.X, Y: box.Y + dy}
			if st.HasBox(n) && s.board.IsWall(n.X+dx, n.Y) && !s.board.IsTarget(n) {
				return true
			}
		}
	}
	return false
}

// heuristic estimates the remaining cost: the minimal box-to-target
// assignment (exact for small box counts) plus the unplaced-box count.
// It is not admissible in the strict shortest-path sense and trades
// optimality for search speed.
func (s *Solver) heuristic(st engine.State) int {
	targets := s.board.Targets()
	cost := 0
	if len(st.Boxes) <= exactAssignmentLimit {
		cost = minAssignment(st.Boxes, targets)
	} else {
		for _, box := range st.Boxes {
			if _, d, ok := engine.NearestTarget(s.board, box); ok {
				cost += d
			}
		}
	}

	unplaced := 0
	for _, box := range st.Boxes {
		if !s.board.IsTarget(box) {
			unplaced++
		}
	}
	return cost + unplaced
}

// proximity is the tie-break: the player's Manhattan distance to the
// nearest box.
func (s *Solver) proximity(st engine.State) int {
	best := -1
	for _, box := range st.Boxes {
		d := engine.ManhattanDistance(st.Player, box)
		if best == -1 || d < best {
			best = d
		}
	}
	if best == -1 {
		return 0
	}
	return best
}

// minAssignment computes the exact minimum-cost perfect matching between
// boxes and targets by permutation, with branch-and-bound on the running
// cost. Callers bound the box count.
func minAssignment(boxes, targets []engine.Position) int {
	used := make([]bool, len(targets))
	best := -1
	var walk func(i, acc int)
	walk = func(i, acc int) {
		if best != -1 && acc >= best {
			return
		}
		if i == len(boxes) {
			best = acc
			return
		}
		for j := range targets {
			if used[j] {
				continue
			}
			used[j] = true
			walk(i+1, acc+engine.ManhattanDistance(boxes[i], targets[j]))
			used[j] = false
		}
	}
	walk(0, 0)
	if best == -1 {
		return 0
	}
	return best
}
