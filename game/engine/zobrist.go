package engine

import "math/rand"

// zobristSeed is fixed so that hashes are stable across runs. Determinism
// of both solvers depends on it.
const zobristSeed = 0x5065_6E64_6F6C_696E

// Zobrist provides incremental-friendly hashing of states over a fixed
// board. Two distinct states can collide, so users must confirm identity
// with State.Equal before treating hashes as equality.
type Zobrist struct {
	box    []uint64
	player []uint64
}

// NewZobrist builds the hash tables for a board.
func NewZobrist(b *Board) *Zobrist {
	rng := rand.New(rand.NewSource(zobristSeed))
	cells := b.Width * b.Height
	z := &Zobrist{
		box:    make([]uint64, cells),
		player: make([]uint64, cells),
	}
	for i := 0; i < cells; i++ {
		z.box[i] = rng.Uint64()
		z.player[i] = rng.Uint64()
	}
	return z
}

// Hash returns the Zobrist hash of a state.
func (z *Zobrist) Hash(b *Board, s State) uint64 {
	h := z.player[b.idx(s.Player.X, s.Player.Y)]
	for _, box := range s.Boxes {
		h ^= z.box[b.idx(box.X, box.Y)]
	}
	return h
}

// HashBoxes returns the hash of the box set alone, ignoring the player.
func (z *Zobrist) HashBoxes(b *Board, s State) uint64 {
	var h uint64
	for _, box := range s.Boxes {
		h ^= z.box[b.idx(box.X, box.Y)]
	}
	return h
}
