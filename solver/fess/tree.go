package fess

import (
	"github.com/wricardo/sokoban-solver/game/engine"
)

// noParent marks the root node's parent index.
const noParent int32 = -1

// Node is one entry of the search tree arena. Nodes reference their parent
// by index, never by pointer, and are never evicted; memory grows with the
// number of explored states.
type Node struct {
	State      engine.State
	Parent     int32
	ByMove     engine.Move
	Weight     int
	Candidates []Candidate
	Expanded   bool
}

// SearchTree is the global registry of visited states, arena-backed.
// Insertion is keyed by the (player, box set) identity, so a state that
// was reached once is never stored again regardless of the path taken.
type SearchTree struct {
	board   *engine.Board
	zobrist *engine.Zobrist
	nodes   []Node
	index   map[uint64][]int32
}

// NewSearchTree creates an empty tree for a board.
func NewSearchTree(b *engine.Board) *SearchTree {
	return &SearchTree{
		board:   b,
		zobrist: engine.NewZobrist(b),
		index:   make(map[uint64][]int32),
	}
}

// Len returns the number of stored nodes.
func (t *SearchTree) Len() int {
	return len(t.nodes)
}

// Node returns a pointer into the arena. The pointer stays valid only
// until the next Add, so callers must not hold it across insertions.
func (t *SearchTree) Node(idx int32) *Node {
	return &t.nodes[idx]
}

// Contains reports whether an equal state exists anywhere in the tree.
func (t *SearchTree) Contains(s engine.State) bool {
	h := t.zobrist.Hash(t.board, s)
	for _, idx := range t.index[h] {
		if t.nodes[idx].State.Equal(s) {
			return true
		}
	}
	return false
}

// Add inserts a state with its bookkeeping. It returns (index, false)
// without inserting when an equal state already exists.
func (t *SearchTree) Add(s engine.State, parent int32, byMove engine.Move, weight int) (int32, bool) {
	h := t.zobrist.Hash(t.board, s)
	for _, idx := range t.index[h] {
		if t.nodes[idx].State.Equal(s) {
			return idx, false
		}
	}
	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		State:  s,
		Parent: parent,
		ByMove: byMove,
		Weight: weight,
	})
	t.index[h] = append(t.index[h], idx)
	return idx, true
}

// Path reconstructs the move sequence from the root to a node by walking
// the parent links and reversing.
func (t *SearchTree) Path(idx int32) []engine.Move {
	var moves []engine.Move
	for cur := idx; t.nodes[cur].Parent != noParent; cur = t.nodes[cur].Parent {
		moves = append(moves, t.nodes[cur].ByMove)
	}
	for i, j := 0, len(moves)-1; i < j; i, j = i+1, j-1 {
		moves[i], moves[j] = moves[j], moves[i]
	}
	return moves
}
