package engine

import (
	"fmt"
	"strings"
)

// Board size limits for level validation
const (
	MinBoardSize = 3
	MaxBoardSize = 64
)

// Position represents x,y coordinates on the board
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Board holds the static part of a level: dimensions, walls and targets.
// The mutable part (player and boxes) lives in State.
type Board struct {
	Width  int
	Height int

	walls   []bool
	targets []bool

	targetList []Position
}

// idx maps a coordinate to the flat cell index.
func (b *Board) idx(x, y int) int {
	return y*b.Width + x
}

// InBounds reports whether the coordinate lies on the board.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// IsWall reports whether the cell is a wall. Out-of-bounds cells count as walls.
func (b *Board) IsWall(x, y int) bool {
	if !b.InBounds(x, y) {
		return true
	}
	return b.walls[b.idx(x, y)]
}

// IsFloor reports whether the cell is inside the board and not a wall.
func (b *Board) IsFloor(x, y int) bool {
	return b.InBounds(x, y) && !b.walls[b.idx(x, y)]
}

// IsTarget reports whether the cell is a target.
func (b *Board) IsTarget(p Position) bool {
	if !b.InBounds(p.X, p.Y) {
		return false
	}
	return b.targets[b.idx(p.X, p.Y)]
}

// Targets returns the target cells in row-major order.
func (b *Board) Targets() []Position {
	return b.targetList
}

// ParseLevel parses a level in the standard text notation and returns the
// static board plus the initial state. The grid is padded to a rectangle;
// short rows are filled with walls.
func ParseLevel(text string) (*Board, State, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, State{}, fmt.Errorf("level validation: level text is empty")
	}

	height := len(lines)
	width := 0
	for _, line := range lines {
		if len(line) > width {
			width = len(line)
		}
	}

	b := &Board{
		Width:   width,
		Height:  height,
		walls:   make([]bool, width*height),
		targets: make([]bool, width*height),
	}

	var boxes []Position
	var player Position
	playerCount := 0

	for y, line := range lines {
		for x := 0; x < width; x++ {
			ch := byte('#')
			if x < len(line) {
				ch = line[x]
			}
			pos := Position{X: x, Y: y}
			switch ch {
			case '#':
				b.walls[b.idx(x, y)] = true
			case ' ', '-', '_':
				// floor
			case '@':
				player = pos
				playerCount++
			case '+':
				player = pos
				playerCount++
				b.targets[b.idx(x, y)] = true
			case '$':
				boxes = append(boxes, pos)
			case '*':
				boxes = append(boxes, pos)
				b.targets[b.idx(x, y)] = true
			case '.':
				b.targets[b.idx(x, y)] = true
			default:
				return nil, State{}, fmt.Errorf("level validation: invalid character '%c' at row %d, col %d", ch, y+1, x+1)
			}
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if b.targets[b.idx(x, y)] {
				b.targetList = append(b.targetList, Position{X: x, Y: y})
			}
		}
	}

	if playerCount != 1 {
		return nil, State{}, fmt.Errorf("level validation: expected exactly one player, got %d", playerCount)
	}

	state := NewState(player, boxes)
	if err := ValidateLevel(b, state); err != nil {
		return nil, State{}, err
	}

	return b, state, nil
}

// ValidateLevel checks the structural invariants of a parsed level.
func ValidateLevel(b *Board, s State) error {
	if b.Width < MinBoardSize || b.Height < MinBoardSize {
		return fmt.Errorf("level validation: board must be at least %dx%d, got %dx%d",
			MinBoardSize, MinBoardSize, b.Width, b.Height)
	}
	if b.Width > MaxBoardSize || b.Height > MaxBoardSize {
		return fmt.Errorf("level validation: board must be at most %dx%d, got %dx%d",
			MaxBoardSize, MaxBoardSize, b.Width, b.Height)
	}
	if len(s.Boxes) == 0 {
		return fmt.Errorf("level validation: level must contain at least one box")
	}
	if len(s.Boxes) != len(b.targetList) {
		return fmt.Errorf("level validation: box count (%d) must equal target count (%d)",
			len(s.Boxes), len(b.targetList))
	}
	if !b.IsFloor(s.Player.X, s.Player.Y) {
		return fmt.Errorf("level validation: player at (%d,%d) is on a wall", s.Player.X, s.Player.Y)
	}
	seen := make(map[Position]bool, len(s.Boxes))
	for _, box := range s.Boxes {
		if !b.IsFloor(box.X, box.Y) {
			return fmt.Errorf("level validation: box at (%d,%d) is on a wall", box.X, box.Y)
		}
		if seen[box] {
			return fmt.Errorf("level validation: two boxes share cell (%d,%d)", box.X, box.Y)
		}
		seen[box] = true
	}
	if seen[s.Player] {
		return fmt.Errorf("level validation: player and box share cell (%d,%d)", s.Player.X, s.Player.Y)
	}
	return nil
}

// Render returns the standard text notation for a state on this board.
func (b *Board) Render(s State) string {
	var sb strings.Builder
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			pos := Position{X: x, Y: y}
			switch {
			case b.walls[b.idx(x, y)]:
				sb.WriteByte('#')
			case s.Player == pos && b.IsTarget(pos):
				sb.WriteByte('+')
			case s.Player == pos:
				sb.WriteByte('@')
			case s.HasBox(pos) && b.IsTarget(pos):
				sb.WriteByte('*')
			case s.HasBox(pos):
				sb.WriteByte('$')
			case b.IsTarget(pos):
				sb.WriteByte('.')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
