package fess

import (
	"testing"

	"github.com/wricardo/sokoban-solver/game/engine"
	"github.com/wricardo/sokoban-solver/solver/deadlock"
)

// classicTestLevel is the two-box starter level used across the package
// tests.
const classicTestLevel = `#######
#     #
# $.  #
#  .$ #
#  @  #
#######`

// corridorTestLevel is a single straight corridor: the box can only be
// pushed right, onto the target.
const corridorTestLevel = `#######
#@$  .#
#######`

// twoRoomTestLevel has two rooms linked by a two-cell horizontal tunnel.
const twoRoomTestLevel = `########
#  ##  #
#@$  . #
#  ##  #
########`

// doorwayTestLevel has a top room and a bottom room linked through a
// single tunnel cell. The box starts directly under the tunnel mouth,
// splitting the floor in two until it is pushed aside.
const doorwayTestLevel = `#######
#     #
#     #
###.###
#  $  #
#  @  #
#######`

func createTestLevel(t *testing.T, text string) (*engine.Board, engine.State) {
	t.Helper()
	board, start, err := engine.ParseLevel(text)
	if err != nil {
		t.Fatalf("Failed to parse test level: %v", err)
	}
	return board, start
}

func newTestOutOfPlan(b *engine.Board, packing *PackingAnalyzer, start engine.State) *OutOfPlanAnalyzer {
	return NewOutOfPlanAnalyzer(b, packing, deadlock.NewDetector(b), start)
}
