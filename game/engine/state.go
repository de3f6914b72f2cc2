package engine

import (
	"sort"
	"strconv"
	"strings"
)

// State is an immutable snapshot of the mutable part of a position: the
// player cell and the box set. Walls and targets are per-level constants
// held by Board. Boxes are kept sorted by (Y, X) so that equal box sets
// produce identical keys regardless of move order.
type State struct {
	Player Position
	Boxes  []Position
}

// NewState builds a state with a canonically sorted copy of boxes.
func NewState(player Position, boxes []Position) State {
	sorted := make([]Position, len(boxes))
	copy(sorted, boxes)
	sortPositions(sorted)
	return State{Player: player, Boxes: sorted}
}

func sortPositions(ps []Position) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Y != ps[j].Y {
			return ps[i].Y < ps[j].Y
		}
		return ps[i].X < ps[j].X
	})
}

// HasBox reports whether a box occupies the cell.
func (s State) HasBox(p Position) bool {
	for _, b := range s.Boxes {
		if b == p {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	boxes := make([]Position, len(s.Boxes))
	copy(boxes, s.Boxes)
	return State{Player: s.Player, Boxes: boxes}
}

// WithPlayer returns a copy of the state with the player moved.
func (s State) WithPlayer(p Position) State {
	next := s.Clone()
	next.Player = p
	return next
}

// WithBoxMoved returns a copy of the state with one box relocated. The box
// slice of the copy is re-sorted to keep the canonical order.
func (s State) WithBoxMoved(from, to Position) State {
	next := s.Clone()
	for i, b := range next.Boxes {
		if b == from {
			next.Boxes[i] = to
			break
		}
	}
	sortPositions(next.Boxes)
	return next
}

// Key returns the canonical identity of the state: player plus sorted boxes.
func (s State) Key() string {
	var sb strings.Builder
	sb.Grow(8 * (len(s.Boxes) + 1))
	sb.WriteString(strconv.Itoa(s.Player.X))
	sb.WriteByte(',')
	sb.WriteString(strconv.Itoa(s.Player.Y))
	for _, b := range s.Boxes {
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(b.X))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(b.Y))
	}
	return sb.String()
}

// BoxKey returns the canonical identity of the box set alone. Analyzer and
// deadlock caches key on this, since their results ignore the player.
func (s State) BoxKey() string {
	var sb strings.Builder
	sb.Grow(8 * len(s.Boxes))
	for i, b := range s.Boxes {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.Itoa(b.X))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(b.Y))
	}
	return sb.String()
}

// Equal reports whether two states have the same player and box set.
func (s State) Equal(other State) bool {
	if s.Player != other.Player || len(s.Boxes) != len(other.Boxes) {
		return false
	}
	for i := range s.Boxes {
		if s.Boxes[i] != other.Boxes[i] {
			return false
		}
	}
	return true
}

// IsSolved reports whether every box sits on a target.
func (s State) IsSolved(b *Board) bool {
	for _, box := range s.Boxes {
		if !b.IsTarget(box) {
			return false
		}
	}
	return true
}
