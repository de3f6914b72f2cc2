package fess

import (
	"testing"

	"github.com/wricardo/sokoban-solver/game/engine"
)

func TestPackingAnalyzer_Order(t *testing.T) {
	board, _ := createTestLevel(t, classicTestLevel)
	analyzer := NewPackingAnalyzer(board)

	order := analyzer.Order()
	if len(order) != 2 {
		t.Fatalf("Expected 2 targets in packing order, got %d", len(order))
	}
	seen := make(map[engine.Position]bool)
	for _, p := range order {
		if !board.IsTarget(p) {
			t.Errorf("Expected order entry %v to be a target", p)
		}
		if seen[p] {
			t.Errorf("Expected no duplicate order entries, got %v twice", p)
		}
		seen[p] = true
	}
}

func TestPackingAnalyzer_FeatureCountsPrefix(t *testing.T) {
	board, start := createTestLevel(t, classicTestLevel)
	analyzer := NewPackingAnalyzer(board)
	order := analyzer.Order()

	if got := analyzer.Feature(start); got != 0 {
		t.Errorf("Expected packing feature 0 at start, got %d", got)
	}

	// a box on the first ordered target counts
	first := engine.NewState(start.Player, []engine.Position{order[0], {X: 2, Y: 1}})
	if got := analyzer.Feature(first); got != 1 {
		t.Errorf("Expected packing feature 1 with first target filled, got %d", got)
	}

	// a box on only the second ordered target does not
	second := engine.NewState(start.Player, []engine.Position{order[1], {X: 2, Y: 1}})
	if got := analyzer.Feature(second); got != 0 {
		t.Errorf("Expected packing feature 0 with only second target filled, got %d", got)
	}

	both := engine.NewState(start.Player, []engine.Position{order[0], order[1]})
	if got := analyzer.Feature(both); got != 2 {
		t.Errorf("Expected packing feature 2 with all targets filled, got %d", got)
	}
}

func TestPackingAnalyzer_NextTarget(t *testing.T) {
	board, start := createTestLevel(t, classicTestLevel)
	analyzer := NewPackingAnalyzer(board)
	order := analyzer.Order()

	next, ok := analyzer.NextTarget(start)
	if !ok {
		t.Fatalf("Expected a next target at start")
	}
	if next != order[0] {
		t.Errorf("Expected next target %v, got %v", order[0], next)
	}

	solved := engine.NewState(start.Player, []engine.Position{order[0], order[1]})
	if _, ok := analyzer.NextTarget(solved); ok {
		t.Errorf("Expected no next target when every target is filled")
	}
}

func TestConnectivityAnalyzer_Feature(t *testing.T) {
	board, start := createTestLevel(t, corridorTestLevel)
	analyzer := NewConnectivityAnalyzer(board)

	// the box splits the corridor in two
	if got := analyzer.Feature(start); got != 2 {
		t.Errorf("Expected connectivity 2 with box mid-corridor, got %d", got)
	}

	// box on the far target leaves one component
	onTarget := engine.NewState(start.Player, []engine.Position{{X: 5, Y: 1}})
	if got := analyzer.Feature(onTarget); got != 1 {
		t.Errorf("Expected connectivity 1 with box on target, got %d", got)
	}
}

func TestConnectivityAnalyzer_InaccessibleRegions(t *testing.T) {
	board, start := createTestLevel(t, corridorTestLevel)
	analyzer := NewConnectivityAnalyzer(board)

	if got := analyzer.InaccessibleRegions(start); got != 1 {
		t.Errorf("Expected 1 inaccessible region at start, got %d", got)
	}

	onTarget := engine.NewState(start.Player, []engine.Position{{X: 5, Y: 1}})
	if got := analyzer.InaccessibleRegions(onTarget); got != 0 {
		t.Errorf("Expected 0 inaccessible regions with box on target, got %d", got)
	}
}

func TestRoomAnalyzer_RoomsAndTunnels(t *testing.T) {
	board, _ := createTestLevel(t, twoRoomTestLevel)
	analyzer := NewRoomAnalyzer(board)

	if got := analyzer.Rooms(); got != 2 {
		t.Fatalf("Expected 2 rooms, got %d", got)
	}
	tunnels := analyzer.Tunnels()
	if len(tunnels) != 1 {
		t.Fatalf("Expected 1 linking tunnel, got %d", len(tunnels))
	}
	if len(tunnels[0]) != 2 {
		t.Errorf("Expected a 2-cell tunnel segment, got %d cells", len(tunnels[0]))
	}
}

func TestRoomAnalyzer_Feature(t *testing.T) {
	board, start := createTestLevel(t, twoRoomTestLevel)
	analyzer := NewRoomAnalyzer(board)

	// box starts inside the left room
	if got := analyzer.Feature(start); got != 0 {
		t.Errorf("Expected room feature 0 with box in a room, got %d", got)
	}

	inTunnel := engine.NewState(start.Player, []engine.Position{{X: 3, Y: 2}})
	if got := analyzer.Feature(inTunnel); got != 1 {
		t.Errorf("Expected room feature 1 with box in the tunnel, got %d", got)
	}
}

func TestOutOfPlanAnalyzer_SkipsBoxesOnTargets(t *testing.T) {
	board, start := createTestLevel(t, "######\n#*@$.#\n######")
	packing := NewPackingAnalyzer(board)
	analyzer := newTestOutOfPlan(board, packing, start)

	scores := analyzer.RiskScores(start)
	if len(scores) != 1 {
		t.Fatalf("Expected 1 scored box, got %d", len(scores))
	}
	if _, ok := scores[engine.Position{X: 3, Y: 1}]; !ok {
		t.Errorf("Expected the off-target box to be scored")
	}
}

func TestOutOfPlanAnalyzer_CornerNextToTarget(t *testing.T) {
	// the box sits in a corner adjacent to the next target: corner risk
	// plus block-next risk put it over the threshold
	board, start := createTestLevel(t, "#####\n#$. #\n# @ #\n#####")
	packing := NewPackingAnalyzer(board)
	analyzer := newTestOutOfPlan(board, packing, start)

	scores := analyzer.RiskScores(start)
	box := engine.Position{X: 1, Y: 1}
	if scores[box] <= riskThreshold {
		t.Errorf("Expected cornered box score above %.1f, got %.2f", riskThreshold, scores[box])
	}
	if got := analyzer.Feature(start); got != 1 {
		t.Errorf("Expected out-of-plan feature 1, got %d", got)
	}
}

func TestOutOfPlanAnalyzer_CalmBox(t *testing.T) {
	board, start := createTestLevel(t, corridorTestLevel)
	packing := NewPackingAnalyzer(board)
	analyzer := newTestOutOfPlan(board, packing, start)

	if got := analyzer.Feature(start); got != 0 {
		t.Errorf("Expected out-of-plan feature 0 for mid-corridor box, got %d", got)
	}
}
