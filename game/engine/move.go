package engine

import "fmt"

// Direction is one of the four cardinal player/push directions.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists all four directions in their canonical iteration order.
var Directions = []Direction{Up, Down, Left, Right}

// Delta returns the coordinate offset of the direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 1, 0
	}
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// String returns the solution-token form of the direction.
func (d Direction) String() string {
	switch d {
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Left:
		return "LEFT"
	default:
		return "RIGHT"
	}
}

// ParseDirection parses a solution token (case-insensitive) into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "UP", "up", "u", "U":
		return Up, nil
	case "DOWN", "down", "d", "D":
		return Down, nil
	case "LEFT", "left", "l", "L":
		return Left, nil
	case "RIGHT", "right", "r", "R":
		return Right, nil
	}
	return Up, fmt.Errorf("invalid direction %q", s)
}

// Step returns the neighbor of p in direction d.
func Step(p Position, d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// MoveKind tags the two move variants.
type MoveKind int

const (
	// BasicMove is a single player step, pushing a box when one is in the way.
	BasicMove MoveKind = iota
	// MacroPush relocates one box along a push path. The player position is
	// left unchanged on application; the intermediate player walk is elided.
	MacroPush
)

// Move is the tagged variant over basic steps and macro pushes. A basic
// move uses only Dir; a macro push uses From, To and Path, with Dir set
// to the first push direction for cheap matching against advisor moves.
type Move struct {
	Kind MoveKind
	Dir  Direction
	From Position
	To   Position
	Path []Direction
}

// BasicMoveIn builds a single-step move.
func BasicMoveIn(d Direction) Move {
	return Move{Kind: BasicMove, Dir: d}
}

// MacroPushMove builds a macro push of one box along a path.
func MacroPushMove(from, to Position, path []Direction) Move {
	dir := Up
	if len(path) > 0 {
		dir = path[0]
	}
	return Move{Kind: MacroPush, Dir: dir, From: from, To: to, Path: path}
}

// Tokens expands the move into solution tokens. Macro pushes expand to
// their push-direction sequence.
func (m Move) Tokens() []string {
	if m.Kind == BasicMove {
		return []string{m.Dir.String()}
	}
	tokens := make([]string, len(m.Path))
	for i, d := range m.Path {
		tokens[i] = d.String()
	}
	return tokens
}

// String returns a compact human-readable form of the move.
func (m Move) String() string {
	if m.Kind == BasicMove {
		return m.Dir.String()
	}
	return fmt.Sprintf("PUSH(%d,%d)->(%d,%d)", m.From.X, m.From.Y, m.To.X, m.To.Y)
}

// Apply executes a move against a state and returns the successor. The
// second result is false when the move is illegal; the input state is
// never mutated.
func Apply(b *Board, s State, m Move) (State, bool) {
	if m.Kind == BasicMove {
		return applyBasic(b, s, m.Dir)
	}
	return applyMacro(b, s, m)
}

func applyBasic(b *Board, s State, d Direction) (State, bool) {
	dest := Step(s.Player, d)
	if b.IsWall(dest.X, dest.Y) {
		return State{}, false
	}
	if !s.HasBox(dest) {
		return s.WithPlayer(dest), true
	}
	beyond := Step(dest, d)
	if b.IsWall(beyond.X, beyond.Y) || s.HasBox(beyond) {
		return State{}, false
	}
	next := s.WithBoxMoved(dest, beyond)
	next.Player = dest
	return next, true
}

// applyMacro walks the box along the push path. The player position stays
// where it was; macro pushes elide the player's walk between pushes.
func applyMacro(b *Board, s State, m Move) (State, bool) {
	if !s.HasBox(m.From) {
		return State{}, false
	}
	cur := m.From
	for _, d := range m.Path {
		next := Step(cur, d)
		if b.IsWall(next.X, next.Y) {
			return State{}, false
		}
		if next != m.From && s.HasBox(next) {
			return State{}, false
		}
		if next == s.Player {
			return State{}, false
		}
		cur = next
	}
	if cur != m.To {
		return State{}, false
	}
	return s.WithBoxMoved(m.From, m.To), true
}

// ExpandMoves flattens a move sequence into solution tokens.
func ExpandMoves(moves []Move) []string {
	var tokens []string
	for _, m := range moves {
		tokens = append(tokens, m.Tokens()...)
	}
	return tokens
}

// Replay applies a move sequence from a start state, returning the final
// state and false as soon as any move is illegal.
func Replay(b *Board, start State, moves []Move) (State, bool) {
	s := start
	for _, m := range moves {
		next, ok := Apply(b, s, m)
		if !ok {
			return s, false
		}
		s = next
	}
	return s, true
}
