package fess

import (
	"github.com/wricardo/sokoban-solver/game/engine"
)

// HotspotsAnalyzer precomputes, for every ordered pair of floor cells
// (blocker, subject), whether occupying the blocker strictly reduces the
// targets floor-reachable from the subject, ignoring all other boxes. A
// box standing on a flagged cell is a blocker for the other box.
type HotspotsAnalyzer struct {
	board *engine.Board

	blocks    map[[2]engine.Position]bool
	outDegree map[engine.Position]int
	top       engine.Position
	hasTop    bool
}

// NewHotspotsAnalyzer builds the pairwise blocking table for a board.
func NewHotspotsAnalyzer(b *engine.Board) *HotspotsAnalyzer {
	a := &HotspotsAnalyzer{
		board:     b,
		blocks:    make(map[[2]engine.Position]bool),
		outDegree: make(map[engine.Position]int),
	}

	var floor []engine.Position
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.IsFloor(x, y) {
				floor = append(floor, engine.Position{X: x, Y: y})
			}
		}
	}

	base := make(map[engine.Position]int, len(floor))
	for _, cell := range floor {
		base[cell] = a.reachableTargets(cell, nil)
	}

	for _, blocker := range floor {
		for _, subject := range floor {
			if blocker == subject {
				continue
			}
			if a.reachableTargets(subject, &blocker) < base[subject] {
				a.blocks[[2]engine.Position{blocker, subject}] = true
				a.outDegree[blocker]++
			}
		}
	}

	for _, cell := range floor {
		deg := a.outDegree[cell]
		if deg > 0 && (!a.hasTop || deg > a.outDegree[a.top]) {
			a.top = cell
			a.hasTop = true
		}
	}
	return a
}

// reachableTargets counts the targets floor-reachable from a cell, with at
// most one cell treated as blocked.
func (a *HotspotsAnalyzer) reachableTargets(from engine.Position, blocked *engine.Position) int {
	var boxes []engine.Position
	if blocked != nil {
		boxes = []engine.Position{*blocked}
	}
	reached := engine.Reachable(a.board, from, boxes)
	count := 0
	for _, t := range a.board.Targets() {
		if reached[t] {
			count++
		}
	}
	return count
}

// Blocks reports whether a box on blocker cuts targets off from subject.
func (a *HotspotsAnalyzer) Blocks(blocker, subject engine.Position) bool {
	return a.blocks[[2]engine.Position{blocker, subject}]
}

// Count returns the number of blocking relationships among the state's
// ordered box pairs.
func (a *HotspotsAnalyzer) Count(s engine.State) int {
	count := 0
	for _, blocker := range s.Boxes {
		for _, subject := range s.Boxes {
			if blocker != subject && a.Blocks(blocker, subject) {
				count++
			}
		}
	}
	return count
}

// MostDisruptive returns the box blocking the most other boxes in the
// state, with its blocking count. found is false when no box blocks any.
func (a *HotspotsAnalyzer) MostDisruptive(s engine.State) (box engine.Position, degree int, found bool) {
	for _, blocker := range s.Boxes {
		deg := 0
		for _, subject := range s.Boxes {
			if blocker != subject && a.Blocks(blocker, subject) {
				deg++
			}
		}
		if deg > degree {
			box = blocker
			degree = deg
			found = true
		}
	}
	return box, degree, found
}

// TopHotspot returns the static cell with the most outgoing blocking
// relationships on the empty board.
func (a *HotspotsAnalyzer) TopHotspot() (engine.Position, bool) {
	return a.top, a.hasTop
}
