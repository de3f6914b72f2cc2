// Package fess implements the feature-space search engine (Shoham &
// Schaeffer, 2020). States project onto a 4-dimensional feature vector
// (packing, connectivity, room connectivity, out of plan); the engine
// cycles round-robin over the non-empty feature-space cells and, within
// each cell, expands the globally cheapest unexpanded candidate move.
// Seven advisors propose domain-informed moves that are re-weighted to
// zero, biasing the search without restricting completeness.
package fess
