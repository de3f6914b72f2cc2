package fess

import (
	"testing"

	"github.com/wricardo/sokoban-solver/game/engine"
)

func TestGenerator_StraightPushes(t *testing.T) {
	board, start := createTestLevel(t, corridorTestLevel)
	gen := NewGenerator(board, 3)

	// left is the player, up and down are walls: only the three cells to
	// the right remain
	candidates := gen.Generate(start)
	if len(candidates) != 3 {
		t.Fatalf("Expected 3 candidates, got %d", len(candidates))
	}
	for i, c := range candidates {
		if c.Move.Kind != engine.MacroPush {
			t.Errorf("Expected macro push, got kind %v", c.Move.Kind)
		}
		want := engine.Position{X: 3 + i, Y: 1}
		if c.Move.To != want {
			t.Errorf("Expected candidate %d destination %v, got %v", i, want, c.Move.To)
		}
		if c.Weight != i+1 {
			t.Errorf("Expected candidate %d weight %d, got %d", i, i+1, c.Weight)
		}
		if len(c.Move.Path) != i+1 {
			t.Errorf("Expected candidate %d path length %d, got %d", i, i+1, len(c.Move.Path))
		}
	}
}

func TestGenerator_RadiusBound(t *testing.T) {
	board, start := createTestLevel(t, corridorTestLevel)
	gen := NewGenerator(board, 1)

	candidates := gen.Generate(start)
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate at radius 1, got %d", len(candidates))
	}
	if (candidates[0].Move.To != engine.Position{X: 3, Y: 1}) {
		t.Errorf("Expected destination (3,1), got %v", candidates[0].Move.To)
	}
}

func TestGenerator_DiagonalPushes(t *testing.T) {
	board, start := createTestLevel(t, "######\n#    #\n# $  #\n#@  .#\n######")
	gen := NewGenerator(board, 2)

	candidates := gen.Generate(start)
	var diag *Candidate
	for i := range candidates {
		c := &candidates[i]
		if (c.Move.To == engine.Position{X: 3, Y: 3}) {
			diag = c
			break
		}
	}
	if diag == nil {
		t.Fatalf("Expected a diagonal candidate to (3,3)")
	}
	if diag.Weight != 2 {
		t.Errorf("Expected diagonal weight 2, got %d", diag.Weight)
	}
	if len(diag.Move.Path) != 2 {
		t.Errorf("Expected 2-push diagonal path, got %d", len(diag.Move.Path))
	}
}

func TestGenerator_PlayerBlocksDestination(t *testing.T) {
	board, start := createTestLevel(t, corridorTestLevel)
	gen := NewGenerator(board, 3)

	for _, c := range gen.Generate(start) {
		if c.Move.To == start.Player {
			t.Errorf("Expected no candidate landing on the player")
		}
	}
}
