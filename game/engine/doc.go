// Package engine provides the core board mechanics for Sokoban puzzles.
//
// The engine package implements the grid model shared by every solver:
//   - Level parsing and validation from the standard text notation
//   - Immutable (player, boxes) state snapshots with canonical keys
//   - Basic directional moves and macro box pushes
//   - Zobrist hashing for fast state identity
//   - Grid utilities (Manhattan distance, flood fill, nearest target)
//
// Core Types:
//
// Board holds the per-level constants: dimensions, walls and targets.
// State holds the mutable part of a position, the player cell and the
// sorted box set. Move is a tagged variant covering both a single player
// step and a macro push of one box along a path.
//
// Usage:
//
//	board, start, err := engine.ParseLevel(text)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	next, ok := engine.Apply(board, start, engine.Move{Kind: engine.BasicMove, Dir: engine.Up})
//	if ok && next.IsSolved(board) {
//		fmt.Println("solved in one push")
//	}
//
// Board Notation:
//
// Levels use the common text format: '#' wall, ' ' floor, '@' player,
// '$' box, '.' target, '*' box on target, '+' player on target. A valid
// level has exactly one player and as many boxes as targets.
package engine
