package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Reachable flood-fills the floor from a start cell, treating the given box
// set as obstacles, and returns the reachable cell set.
func Reachable(b *Board, from Position, boxes []Position) map[Position]bool {
	blocked := make(map[Position]bool, len(boxes))
	for _, box := range boxes {
		blocked[box] = true
	}

	visited := make(map[Position]bool)
	if !b.IsFloor(from.X, from.Y) || blocked[from] {
		return visited
	}

	queue := []Position{from}
	visited[from] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range Directions {
			next := Step(cur, d)
			if visited[next] || !b.IsFloor(next.X, next.Y) || blocked[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return visited
}

// FloorComponents returns the 4-connected components of the floor minus the
// given box set, in row-major order of their first cell.
func FloorComponents(b *Board, boxes []Position) [][]Position {
	blocked := make(map[Position]bool, len(boxes))
	for _, box := range boxes {
		blocked[box] = true
	}

	visited := make(map[Position]bool)
	var components [][]Position

	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			start := Position{X: x, Y: y}
			if visited[start] || !b.IsFloor(x, y) || blocked[start] {
				continue
			}
			var comp []Position
			queue := []Position{start}
			visited[start] = true
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				comp = append(comp, cur)
				for _, d := range Directions {
					next := Step(cur, d)
					if visited[next] || !b.IsFloor(next.X, next.Y) || blocked[next] {
						continue
					}
					visited[next] = true
					queue = append(queue, next)
				}
			}
			components = append(components, comp)
		}
	}
	return components
}

// NearestTarget returns the target with the smallest Manhattan distance to
// the position, and false when the board has no targets.
func NearestTarget(b *Board, from Position) (Position, int, bool) {
	minDistance := -1
	var nearest Position
	found := false

	for _, target := range b.Targets() {
		distance := ManhattanDistance(from, target)
		if minDistance == -1 || distance < minDistance {
			minDistance = distance
			nearest = target
			found = true
		}
	}
	return nearest, minDistance, found
}

// CountAdjacentWalls counts the walls among the four neighbors of a cell.
func CountAdjacentWalls(b *Board, p Position) int {
	count := 0
	for _, d := range Directions {
		n := Step(p, d)
		if b.IsWall(n.X, n.Y) {
			count++
		}
	}
	return count
}
