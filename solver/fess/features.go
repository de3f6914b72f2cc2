package fess

import (
	"fmt"
	"sort"

	"github.com/wricardo/sokoban-solver/game/engine"
	"github.com/wricardo/sokoban-solver/solver/deadlock"
)

// FeatureVector is the 4-tuple a state projects onto. It is a pure,
// deterministic function of the state.
type FeatureVector struct {
	Packing      int `json:"packing"`
	Connectivity int `json:"connectivity"`
	Room         int `json:"room"`
	OutOfPlan    int `json:"out_of_plan"`
}

// PackingAnalyzer precomputes a target fill order by difficulty and
// measures, per state, the longest occupied prefix of that order. A box on
// a later-order target does not count until every earlier target is filled.
type PackingAnalyzer struct {
	board *engine.Board
	order []engine.Position
	cache map[string]int
}

// NewPackingAnalyzer scores every target and sorts them hardest first.
func NewPackingAnalyzer(b *engine.Board) *PackingAnalyzer {
	a := &PackingAnalyzer{
		board: b,
		cache: make(map[string]int),
	}

	targets := b.Targets()
	type scored struct {
		pos   engine.Position
		score float64
	}
	list := make([]scored, 0, len(targets))
	for _, t := range targets {
		list = append(list, scored{pos: t, score: a.difficulty(t, targets)})
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score > list[j].score
		}
		if list[i].pos.Y != list[j].pos.Y {
			return list[i].pos.Y < list[j].pos.Y
		}
		return list[i].pos.X < list[j].pos.X
	})

	a.order = make([]engine.Position, len(list))
	for i, s := range list {
		a.order[i] = s.pos
	}
	return a
}

// difficulty scores a target; higher means fill earlier. The score mixes
// approach accessibility, adjacent-wall constraint, isolation from other
// targets, and the potential to block nearby targets once filled.
func (a *PackingAnalyzer) difficulty(t engine.Position, targets []engine.Position) float64 {
	walls := engine.CountAdjacentWalls(a.board, t)

	// a push onto t along d needs the box cell and the player cell behind
	// it both free of walls
	openApproaches := 0
	for _, d := range engine.Directions {
		boxCell := engine.Step(t, d.Opposite())
		playerCell := engine.Step(boxCell, d.Opposite())
		if a.board.IsFloor(boxCell.X, boxCell.Y) && a.board.IsFloor(playerCell.X, playerCell.Y) {
			openApproaches++
		}
	}

	isolation := 0
	for _, other := range targets {
		if other == t {
			continue
		}
		d := engine.ManhattanDistance(t, other)
		if isolation == 0 || d < isolation {
			isolation = d
		}
	}

	blocking := 0
	for _, other := range targets {
		if other != t && engine.ManhattanDistance(t, other) <= 2 {
			blocking++
		}
	}

	return 2.0*float64(walls) + 1.5*float64(4-openApproaches) + 0.5*float64(isolation) + 1.0*float64(blocking)
}

// Order returns the precomputed target fill order.
func (a *PackingAnalyzer) Order() []engine.Position {
	return a.order
}

// NextTarget returns the first unfilled target of the order for a state.
func (a *PackingAnalyzer) NextTarget(s engine.State) (engine.Position, bool) {
	step := a.Feature(s)
	if step >= len(a.order) {
		return engine.Position{}, false
	}
	return a.order[step], true
}

// Feature returns the length of the longest occupied prefix of the order.
func (a *PackingAnalyzer) Feature(s engine.State) int {
	key := s.BoxKey()
	if v, ok := a.cache[key]; ok {
		return v
	}
	prefix := 0
	for _, t := range a.order {
		if !s.HasBox(t) {
			break
		}
		prefix++
	}
	a.cache[key] = prefix
	return prefix
}

// ConnectivityAnalyzer counts the 4-connected components of the floor
// minus the current boxes. 1 means the boxes do not partition the board.
type ConnectivityAnalyzer struct {
	board *engine.Board
	cache map[string]int
}

// NewConnectivityAnalyzer creates the analyzer for a board.
func NewConnectivityAnalyzer(b *engine.Board) *ConnectivityAnalyzer {
	return &ConnectivityAnalyzer{board: b, cache: make(map[string]int)}
}

// Feature returns the component count for the state.
func (a *ConnectivityAnalyzer) Feature(s engine.State) int {
	key := s.Key()
	if v, ok := a.cache[key]; ok {
		return v
	}
	v := len(engine.FloorComponents(a.board, s.Boxes))
	a.cache[key] = v
	return v
}

// InaccessibleRegions counts the floor components the player cannot reach.
func (a *ConnectivityAnalyzer) InaccessibleRegions(s engine.State) int {
	count := 0
	for _, comp := range engine.FloorComponents(a.board, s.Boxes) {
		containsPlayer := false
		for _, p := range comp {
			if p == s.Player {
				containsPlayer = true
				break
			}
		}
		if !containsPlayer {
			count++
		}
	}
	return count
}

// roomMinSize and related constants bound what counts as a room during
// precomputation.
const (
	roomMinSize     = 4
	roomMinDensity  = 0.3
	roomMinBBoxSide = 2
)

// RoomAnalyzer precomputes rooms and the 1-wide tunnels linking them, and
// measures per state how many tunnel segments hold a box.
type RoomAnalyzer struct {
	board    *engine.Board
	tunnels  [][]engine.Position // tunnel segments linking at least two rooms
	roomOf   map[engine.Position]int
	numRooms int
	cache    map[string]int
}

// NewRoomAnalyzer flood-fills rooms and tunnel segments for a board.
func NewRoomAnalyzer(b *engine.Board) *RoomAnalyzer {
	a := &RoomAnalyzer{
		board:  b,
		roomOf: make(map[engine.Position]int),
		cache:  make(map[string]int),
	}

	isTunnel := func(x, y int) bool {
		if !b.IsFloor(x, y) {
			return false
		}
		horiz := b.IsWall(x-1, y) && b.IsWall(x+1, y)
		vert := b.IsWall(x, y-1) && b.IsWall(x, y+1)
		return horiz || vert
	}

	// rooms: components of the non-tunnel floor passing the size, density
	// and bounding-box filters
	visited := make(map[engine.Position]bool)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			start := engine.Position{X: x, Y: y}
			if visited[start] || !b.IsFloor(x, y) || isTunnel(x, y) {
				continue
			}
			var comp []engine.Position
			queue := []engine.Position{start}
			visited[start] = true
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				comp = append(comp, cur)
				for _, d := range engine.Directions {
					next := engine.Step(cur, d)
					if visited[next] || !b.IsFloor(next.X, next.Y) || isTunnel(next.X, next.Y) {
						continue
					}
					visited[next] = true
					queue = append(queue, next)
				}
			}
			if a.keepRoom(comp) {
				for _, p := range comp {
					a.roomOf[p] = a.numRooms
				}
				a.numRooms++
			}
		}
	}

	// tunnel segments: components of the tunnel cells, kept when their
	// endpoints touch at least two distinct rooms
	visitedT := make(map[engine.Position]bool)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			start := engine.Position{X: x, Y: y}
			if visitedT[start] || !isTunnel(x, y) {
				continue
			}
			var seg []engine.Position
			queue := []engine.Position{start}
			visitedT[start] = true
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				seg = append(seg, cur)
				for _, d := range engine.Directions {
					next := engine.Step(cur, d)
					if visitedT[next] || !isTunnel(next.X, next.Y) {
						continue
					}
					visitedT[next] = true
					queue = append(queue, next)
				}
			}
			linked := make(map[int]bool)
			for _, p := range seg {
				for _, d := range engine.Directions {
					if room, ok := a.roomOf[engine.Step(p, d)]; ok {
						linked[room] = true
					}
				}
			}
			if len(linked) >= 2 {
				a.tunnels = append(a.tunnels, seg)
			}
		}
	}
	return a
}

func (a *RoomAnalyzer) keepRoom(comp []engine.Position) bool {
	if len(comp) < roomMinSize {
		return false
	}
	minX, minY := comp[0].X, comp[0].Y
	maxX, maxY := comp[0].X, comp[0].Y
	for _, p := range comp {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	w := maxX - minX + 1
	h := maxY - minY + 1
	if w < roomMinBBoxSide || h < roomMinBBoxSide {
		return false
	}
	return float64(len(comp))/float64(w*h) > roomMinDensity
}

// Rooms returns the number of precomputed rooms.
func (a *RoomAnalyzer) Rooms() int {
	return a.numRooms
}

// Tunnels returns the precomputed room-linking tunnel segments.
func (a *RoomAnalyzer) Tunnels() [][]engine.Position {
	return a.tunnels
}

// Feature returns the number of tunnel segments occupied by a box.
func (a *RoomAnalyzer) Feature(s engine.State) int {
	key := s.BoxKey()
	if v, ok := a.cache[key]; ok {
		return v
	}
	count := 0
	for _, seg := range a.tunnels {
		for _, p := range seg {
			if s.HasBox(p) {
				count++
				break
			}
		}
	}
	a.cache[key] = count
	return count
}

// Risk score weights for the out-of-plan analyzer. A box whose summed
// score exceeds riskThreshold counts as out of plan.
const (
	riskZoneWeight      = 0.4
	riskCornerWeight    = 0.3
	riskBlockNextWeight = 0.3
	riskLineAdjacency   = 0.2
	riskThreshold       = 0.5
)

// OutOfPlanAnalyzer counts boxes at risk of becoming unmanageable as the
// packing plan advances. Per packing step it precomputes the floor cells
// that become unreachable from the player start once every earlier-order
// target is filled.
type OutOfPlanAnalyzer struct {
	board    *engine.Board
	packing  *PackingAnalyzer
	detector *deadlock.Detector

	// riskZone[k] holds the floor cells unreachable from the start player
	// position when targets order[0..k-1] are filled.
	riskZone []map[engine.Position]bool

	cache map[string]int
}

// NewOutOfPlanAnalyzer simulates each packing step against the start state.
func NewOutOfPlanAnalyzer(b *engine.Board, packing *PackingAnalyzer, det *deadlock.Detector, start engine.State) *OutOfPlanAnalyzer {
	a := &OutOfPlanAnalyzer{
		board:    b,
		packing:  packing,
		detector: det,
		cache:    make(map[string]int),
	}

	order := packing.Order()
	a.riskZone = make([]map[engine.Position]bool, len(order)+1)
	for k := 0; k <= len(order); k++ {
		filled := order[:k]
		reached := engine.Reachable(b, start.Player, filled)
		zone := make(map[engine.Position]bool)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				p := engine.Position{X: x, Y: y}
				if b.IsFloor(x, y) && !reached[p] {
					zone[p] = true
				}
			}
		}
		a.riskZone[k] = zone
	}
	return a
}

// RiskScores returns the per-box risk score of every non-target box.
func (a *OutOfPlanAnalyzer) RiskScores(s engine.State) map[engine.Position]float64 {
	step := a.packing.Feature(s)
	next := step + 1
	if next > len(a.riskZone)-1 {
		next = len(a.riskZone) - 1
	}
	order := a.packing.Order()

	scores := make(map[engine.Position]float64)
	for _, box := range s.Boxes {
		if a.board.IsTarget(box) {
			continue
		}
		score := 0.0
		if a.riskZone[next][box] {
			score += riskZoneWeight
		}
		if a.detector.IsCorner(box) {
			score += riskCornerWeight
		}
		if step < len(order) && engine.ManhattanDistance(box, order[step]) == 1 {
			score += riskBlockNextWeight
		}
		if a.lineAdjacent(s, box) {
			score += riskLineAdjacency
		}
		scores[box] = score
	}
	return scores
}

// lineAdjacent reports whether the box and an adjacent box are flush
// against the same wall, the precursor of a line deadlock.
func (a *OutOfPlanAnalyzer) lineAdjacent(s engine.State, box engine.Position) bool {
	for _, dy := range []int{-1, 1} {
		if !a.board.IsWall(box.X, box.Y+dy) {
			continue
		}
		for _, dx := range []int{-1, 1} {
			n := engine.Position{X: box.X + dx, Y: box.Y}
			if s.HasBox(n) && a.board.IsWall(n.X, n.Y+dy) {
				return true
			}
		}
	}
	for _, dx := range []int{-1, 1} {
		if !a.board.IsWall(box.X+dx, box.Y) {
			continue
		}
		for _, dy := range []int{-1, 1} {
			n := engine.Position{X: box.X, Y: box.Y + dy}
			if s.HasBox(n) && a.board.IsWall(n.X+dx, n.Y) {
				return true
			}
		}
	}
	return false
}

// Feature returns the number of boxes whose risk score exceeds the
// threshold. Cached by (box set, packing step).
func (a *OutOfPlanAnalyzer) Feature(s engine.State) int {
	step := a.packing.Feature(s)
	key := fmt.Sprintf("%s|%d", s.BoxKey(), step)
	if v, ok := a.cache[key]; ok {
		return v
	}
	count := 0
	for _, score := range a.RiskScores(s) {
		if score > riskThreshold {
			count++
		}
	}
	a.cache[key] = count
	return count
}
