package fess

import (
	"github.com/wricardo/sokoban-solver/game/engine"
)

// Candidate pairs a move with the weight the search pays to expand it.
type Candidate struct {
	Move   engine.Move
	Weight int
}

// Generator emits macro pushes for every box: straight-line destinations
// within a bounded radius whose path is clear, plus unit diagonals via a
// clear two-push L path. This is a bounded approximation of true push
// reachability, not a proof; the advisor weighting was tuned against this
// specific behavior, so the limitation is kept rather than generalized.
type Generator struct {
	board  *engine.Board
	radius int
}

// NewGenerator creates a macro generator with the given radius.
func NewGenerator(b *engine.Board, radius int) *Generator {
	return &Generator{board: b, radius: radius}
}

// Generate emits the macro push candidates for a state. Straight pushes
// weigh their Manhattan distance (minimum 1); diagonals weigh 2.
func (g *Generator) Generate(s engine.State) []Candidate {
	var out []Candidate
	for _, box := range s.Boxes {
		out = append(out, g.straight(s, box)...)
		out = append(out, g.diagonal(s, box)...)
	}
	return out
}

func (g *Generator) straight(s engine.State, box engine.Position) []Candidate {
	var out []Candidate
	for _, d := range engine.Directions {
		cur := box
		path := make([]engine.Direction, 0, g.radius)
		for step := 1; step <= g.radius; step++ {
			cur = engine.Step(cur, d)
			if !g.free(s, box, cur) {
				break
			}
			path = append(path, d)
			moved := make([]engine.Direction, step)
			copy(moved, path)
			weight := engine.ManhattanDistance(box, cur)
			if weight < 1 {
				weight = 1
			}
			out = append(out, Candidate{
				Move:   engine.MacroPushMove(box, cur, moved),
				Weight: weight,
			})
		}
	}
	return out
}

// diagonal emits unit-diagonal destinations via a two-push L path, trying
// the horizontal-first order and then the vertical-first order.
func (g *Generator) diagonal(s engine.State, box engine.Position) []Candidate {
	var out []Candidate
	for _, dx := range []engine.Direction{engine.Left, engine.Right} {
		for _, dy := range []engine.Direction{engine.Up, engine.Down} {
			dest := engine.Step(engine.Step(box, dx), dy)
			if !g.free(s, box, dest) {
				continue
			}
			var path []engine.Direction
			viaH := engine.Step(box, dx)
			viaV := engine.Step(box, dy)
			switch {
			case g.free(s, box, viaH):
				path = []engine.Direction{dx, dy}
			case g.free(s, box, viaV):
				path = []engine.Direction{dy, dx}
			default:
				continue
			}
			out = append(out, Candidate{
				Move:   engine.MacroPushMove(box, dest, path),
				Weight: 2,
			})
		}
	}
	return out
}

// free reports whether a cell can hold the moving box: floor, no other
// box, and not the player cell.
func (g *Generator) free(s engine.State, moving, cell engine.Position) bool {
	if !g.board.IsFloor(cell.X, cell.Y) {
		return false
	}
	if cell == s.Player {
		return false
	}
	if cell != moving && s.HasBox(cell) {
		return false
	}
	return true
}
