// Package deadlock provides static precomputation and per-state deadlock
// checks for Sokoban positions. A detector is constructed once per level
// and queried per state; results are memoized by the canonical box-set
// key. The checks are intended to be sound: a state they flag has no
// completing move sequence.
package deadlock
