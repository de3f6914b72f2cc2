// Package astar implements an independent A* solver over (player, boxes)
// states, as a peer of the FESS engine for comparison and for simpler
// levels. The heuristic combines an optimal box-to-target assignment cost
// with the unplaced-box count, and a light pruning pass discards pushes
// into statically dead cells before insertion.
package astar
