package fess

import (
	"github.com/wricardo/sokoban-solver/game/engine"
)

// Advisor is a domain heuristic proposing at most one preferred move for a
// state. Advisor moves bias candidate weights toward zero; they never
// restrict which moves the search may take. Absence of a proposal is the
// normal case, not an error.
type Advisor interface {
	Name() string
	Advise(s engine.State) (engine.Move, bool)
}

// pushesOf enumerates the legal single-step pushes of one box as macro
// moves, in canonical direction order. Advisors only reason about box
// relocation, so player reachability is not checked here.
func pushesOf(b *engine.Board, s engine.State, box engine.Position) []engine.Move {
	var out []engine.Move
	for _, d := range engine.Directions {
		dest := engine.Step(box, d)
		if !b.IsFloor(dest.X, dest.Y) || s.HasBox(dest) || dest == s.Player {
			continue
		}
		out = append(out, engine.MacroPushMove(box, dest, []engine.Direction{d}))
	}
	return out
}

// PackingAdvisor proposes pushing a box adjacent to the next ordered
// target onto it.
type PackingAdvisor struct {
	board   *engine.Board
	packing *PackingAnalyzer
}

func NewPackingAdvisor(b *engine.Board, packing *PackingAnalyzer) *PackingAdvisor {
	return &PackingAdvisor{board: b, packing: packing}
}

func (a *PackingAdvisor) Name() string { return "packing" }

func (a *PackingAdvisor) Advise(s engine.State) (engine.Move, bool) {
	target, ok := a.packing.NextTarget(s)
	if !ok || s.HasBox(target) {
		return engine.Move{}, false
	}
	for _, d := range engine.Directions {
		box := engine.Step(target, d.Opposite())
		if s.HasBox(box) && !a.board.IsTarget(box) {
			return engine.MacroPushMove(box, target, []engine.Direction{d}), true
		}
	}
	return engine.Move{}, false
}

// ConnectivityAdvisor proposes the first push strictly lowering the
// connectivity feature.
type ConnectivityAdvisor struct {
	board *engine.Board
	conn  *ConnectivityAnalyzer
}

func NewConnectivityAdvisor(b *engine.Board, conn *ConnectivityAnalyzer) *ConnectivityAdvisor {
	return &ConnectivityAdvisor{board: b, conn: conn}
}

func (a *ConnectivityAdvisor) Name() string { return "connectivity" }

func (a *ConnectivityAdvisor) Advise(s engine.State) (engine.Move, bool) {
	current := a.conn.Feature(s)
	if current <= 1 {
		return engine.Move{}, false
	}
	for _, box := range s.Boxes {
		for _, m := range pushesOf(a.board, s, box) {
			if a.conn.Feature(s.WithBoxMoved(m.From, m.To)) < current {
				return m, true
			}
		}
	}
	return engine.Move{}, false
}

// RoomAdvisor proposes the first push strictly lowering the obstructed
// tunnel count.
type RoomAdvisor struct {
	board *engine.Board
	room  *RoomAnalyzer
}

func NewRoomAdvisor(b *engine.Board, room *RoomAnalyzer) *RoomAdvisor {
	return &RoomAdvisor{board: b, room: room}
}

func (a *RoomAdvisor) Name() string { return "room" }

func (a *RoomAdvisor) Advise(s engine.State) (engine.Move, bool) {
	current := a.room.Feature(s)
	if current == 0 {
		return engine.Move{}, false
	}
	for _, box := range s.Boxes {
		for _, m := range pushesOf(a.board, s, box) {
			if a.room.Feature(s.WithBoxMoved(m.From, m.To)) < current {
				return m, true
			}
		}
	}
	return engine.Move{}, false
}

// HotspotsAdvisor proposes relocating the most disruptive blocking box.
type HotspotsAdvisor struct {
	board    *engine.Board
	hotspots *HotspotsAnalyzer
}

func NewHotspotsAdvisor(b *engine.Board, hotspots *HotspotsAnalyzer) *HotspotsAdvisor {
	return &HotspotsAdvisor{board: b, hotspots: hotspots}
}

func (a *HotspotsAdvisor) Name() string { return "hotspots" }

func (a *HotspotsAdvisor) Advise(s engine.State) (engine.Move, bool) {
	box, _, found := a.hotspots.MostDisruptive(s)
	if !found {
		return engine.Move{}, false
	}
	pushes := pushesOf(a.board, s, box)
	if len(pushes) == 0 {
		return engine.Move{}, false
	}
	return pushes[0], true
}

// ExplorerAdvisor proposes a push reducing the number of floor regions the
// player cannot reach.
type ExplorerAdvisor struct {
	board *engine.Board
	conn  *ConnectivityAnalyzer
}

func NewExplorerAdvisor(b *engine.Board, conn *ConnectivityAnalyzer) *ExplorerAdvisor {
	return &ExplorerAdvisor{board: b, conn: conn}
}

func (a *ExplorerAdvisor) Name() string { return "explorer" }

func (a *ExplorerAdvisor) Advise(s engine.State) (engine.Move, bool) {
	current := a.conn.InaccessibleRegions(s)
	if current == 0 {
		return engine.Move{}, false
	}
	for _, box := range s.Boxes {
		for _, m := range pushesOf(a.board, s, box) {
			if a.conn.InaccessibleRegions(s.WithBoxMoved(m.From, m.To)) < current {
				return m, true
			}
		}
	}
	return engine.Move{}, false
}

// openerRadius bounds how close to the top hotspot a box must stand for
// the opener to consider it.
const openerRadius = 2

// OpenerAdvisor proposes moving a box near the static top hotspot farther
// away from it.
type OpenerAdvisor struct {
	board    *engine.Board
	hotspots *HotspotsAnalyzer
}

func NewOpenerAdvisor(b *engine.Board, hotspots *HotspotsAnalyzer) *OpenerAdvisor {
	return &OpenerAdvisor{board: b, hotspots: hotspots}
}

func (a *OpenerAdvisor) Name() string { return "opener" }

func (a *OpenerAdvisor) Advise(s engine.State) (engine.Move, bool) {
	hotspot, ok := a.hotspots.TopHotspot()
	if !ok {
		return engine.Move{}, false
	}
	for _, box := range s.Boxes {
		dist := engine.ManhattanDistance(box, hotspot)
		if dist > openerRadius {
			continue
		}
		for _, m := range pushesOf(a.board, s, box) {
			if engine.ManhattanDistance(m.To, hotspot) > dist {
				return m, true
			}
		}
	}
	return engine.Move{}, false
}

// OutOfPlanAdvisor proposes relocating the single highest-risk box to any
// legal adjacent cell.
type OutOfPlanAdvisor struct {
	board *engine.Board
	oop   *OutOfPlanAnalyzer
}

func NewOutOfPlanAdvisor(b *engine.Board, oop *OutOfPlanAnalyzer) *OutOfPlanAdvisor {
	return &OutOfPlanAdvisor{board: b, oop: oop}
}

func (a *OutOfPlanAdvisor) Name() string { return "out_of_plan" }

func (a *OutOfPlanAdvisor) Advise(s engine.State) (engine.Move, bool) {
	scores := a.oop.RiskScores(s)
	var worst engine.Position
	best := riskThreshold
	found := false
	// boxes iterate in canonical order, so the first maximum wins ties
	for _, box := range s.Boxes {
		if score, ok := scores[box]; ok && score > best {
			worst = box
			best = score
			found = true
		}
	}
	if !found {
		return engine.Move{}, false
	}
	pushes := pushesOf(a.board, s, worst)
	if len(pushes) == 0 {
		return engine.Move{}, false
	}
	return pushes[0], true
}
