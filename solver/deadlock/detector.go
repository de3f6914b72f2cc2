package deadlock

import (
	"github.com/wricardo/sokoban-solver/game/engine"
)

// Detector runs the per-state deadlock checks against precomputed level
// tables. Checks run in a fixed order and the first hit wins. All checks
// depend only on the box set, so results are memoized by box-set key.
type Detector struct {
	board *engine.Board

	// corner cells: non-target floor cells with two perpendicular
	// adjacent walls. A box there can never be pushed again.
	corners map[engine.Position]bool

	// wallFlush records, per floor cell, the axes along which the cell is
	// flush against a wall (a wall on the perpendicular side).
	wallFlushH map[engine.Position]bool // wall above or below
	wallFlushV map[engine.Position]bool // wall left or right

	memo map[string]bool
}

// NewDetector precomputes the static tables for a level.
func NewDetector(b *engine.Board) *Detector {
	d := &Detector{
		board:      b,
		corners:    make(map[engine.Position]bool),
		wallFlushH: make(map[engine.Position]bool),
		wallFlushV: make(map[engine.Position]bool),
		memo:       make(map[string]bool),
	}

	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if !b.IsFloor(x, y) {
				continue
			}
			p := engine.Position{X: x, Y: y}
			up := b.IsWall(x, y-1)
			down := b.IsWall(x, y+1)
			left := b.IsWall(x-1, y)
			right := b.IsWall(x+1, y)

			if up || down {
				d.wallFlushH[p] = true
			}
			if left || right {
				d.wallFlushV[p] = true
			}
			if !b.IsTarget(p) && (up || down) && (left || right) {
				d.corners[p] = true
			}
		}
	}
	return d
}

// CornerCells returns the precomputed corner-deadlock cells.
func (d *Detector) CornerCells() []engine.Position {
	cells := make([]engine.Position, 0, len(d.corners))
	for y := 0; y < d.board.Height; y++ {
		for x := 0; x < d.board.Width; x++ {
			p := engine.Position{X: x, Y: y}
			if d.corners[p] {
				cells = append(cells, p)
			}
		}
	}
	return cells
}

// IsCorner reports whether the cell is a static corner-deadlock cell.
func (d *Detector) IsCorner(p engine.Position) bool {
	return d.corners[p]
}

// IsDeadlock reports whether the state is a detected dead position. The
// result is memoized per unique box set.
func (d *Detector) IsDeadlock(s engine.State) bool {
	key := s.BoxKey()
	if v, ok := d.memo[key]; ok {
		return v
	}
	v := d.check(s)
	d.memo[key] = v
	return v
}

func (d *Detector) check(s engine.State) bool {
	for _, box := range s.Boxes {
		if d.corners[box] {
			return true
		}
	}
	for _, box := range s.Boxes {
		if d.wallLineDeadlock(s, box) {
			return true
		}
	}
	for _, box := range s.Boxes {
		if d.squareDeadlock(s, box) {
			return true
		}
	}
	for _, box := range s.Boxes {
		if d.frozenDeadlock(s, box) {
			return true
		}
	}
	if d.lineDeadlock(s) {
		return true
	}
	return d.unreachableTargetDeadlock(s)
}

// blocked reports whether the cell is a wall or holds a box.
func (d *Detector) blocked(s engine.State, p engine.Position) bool {
	return d.board.IsWall(p.X, p.Y) || s.HasBox(p)
}

// wallLineDeadlock: a non-target box flush against a wall whose two
// neighbors along the wall axis are both blocked cannot move again.
func (d *Detector) wallLineDeadlock(s engine.State, box engine.Position) bool {
	if d.board.IsTarget(box) {
		return false
	}
	if d.wallFlushH[box] {
		left := engine.Position{X: box.X - 1, Y: box.Y}
		right := engine.Position{X: box.X + 1, Y: box.Y}
		if d.blocked(s, left) && d.blocked(s, right) {
			return true
		}
	}
	if d.wallFlushV[box] {
		up := engine.Position{X: box.X, Y: box.Y - 1}
		down := engine.Position{X: box.X, Y: box.Y + 1}
		if d.blocked(s, up) && d.blocked(s, down) {
			return true
		}
	}
	return false
}

// squareDeadlock: four boxes filling a 2x2 block can never move; dead
// unless all four rest on targets.
func (d *Detector) squareDeadlock(s engine.State, box engine.Position) bool {
	right := engine.Position{X: box.X + 1, Y: box.Y}
	down := engine.Position{X: box.X, Y: box.Y + 1}
	diag := engine.Position{X: box.X + 1, Y: box.Y + 1}
	if !s.HasBox(right) || !s.HasBox(down) || !s.HasBox(diag) {
		return false
	}
	return !(d.board.IsTarget(box) && d.board.IsTarget(right) &&
		d.board.IsTarget(down) && d.board.IsTarget(diag))
}

// frozenDeadlock: a non-target box with at least three blocked neighbors.
func (d *Detector) frozenDeadlock(s engine.State, box engine.Position) bool {
	if d.board.IsTarget(box) {
		return false
	}
	blocked := 0
	for _, dir := range engine.Directions {
		if d.blocked(s, engine.Step(box, dir)) {
			blocked++
		}
	}
	return blocked >= 3
}

// lineDeadlock: two or more adjacent boxes flush against the same wall
// with no target under any of them.
func (d *Detector) lineDeadlock(s engine.State) bool {
	for _, box := range s.Boxes {
		// horizontal run, wall consistently above or below
		for _, dy := range []int{-1, 1} {
			if !d.board.IsWall(box.X, box.Y+dy) {
				continue
			}
			// only evaluate runs at their left end
			prev := engine.Position{X: box.X - 1, Y: box.Y}
			if s.HasBox(prev) && d.board.IsWall(prev.X, prev.Y+dy) {
				continue
			}
			run := 0
			anyTarget := false
			for x := box.X; ; x++ {
				p := engine.Position{X: x, Y: box.Y}
				if !s.HasBox(p) || !d.board.IsWall(x, box.Y+dy) {
					break
				}
				run++
				if d.board.IsTarget(p) {
					anyTarget = true
				}
			}
			if run >= 2 && !anyTarget {
				return true
			}
		}
		// vertical run, wall consistently left or right
		for _, dx := range []int{-1, 1} {
			if !d.board.IsWall(box.X+dx, box.Y) {
				continue
			}
			prev := engine.Position{X: box.X, Y: box.Y - 1}
			if s.HasBox(prev) && d.board.IsWall(prev.X+dx, prev.Y) {
				continue
			}
			run := 0
			anyTarget := false
			for y := box.Y; ; y++ {
				p := engine.Position{X: box.X, Y: y}
				if !s.HasBox(p) || !d.board.IsWall(box.X+dx, y) {
					break
				}
				run++
				if d.board.IsTarget(p) {
					anyTarget = true
				}
			}
			if run >= 2 && !anyTarget {
				return true
			}
		}
	}
	return false
}

// unreachableTargetDeadlock: a non-target box from which no target cell is
// reachable across the floor, treating the other boxes as obstacles. Boxes
// only block here; the check never pushes them.
func (d *Detector) unreachableTargetDeadlock(s engine.State) bool {
	for _, box := range s.Boxes {
		if d.board.IsTarget(box) {
			continue
		}
		others := make([]engine.Position, 0, len(s.Boxes)-1)
		for _, other := range s.Boxes {
			if other != box {
				others = append(others, other)
			}
		}
		reached := engine.Reachable(d.board, box, others)
		found := false
		for _, target := range d.board.Targets() {
			if reached[target] {
				found = true
				break
			}
		}
		if !found {
			return true
		}
	}
	return false
}
