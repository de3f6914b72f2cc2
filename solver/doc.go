// Package solver defines the contract shared by the search engines: the
// explicit run configuration, the result with its status and counters,
// and the Solver interface implemented by the FESS and A* engines.
//
// Configuration is always passed explicitly; there is no global default.
// Engines report only two terminal outcomes, a solution token list or an
// explicit failure reason, with deadlocks and illegal candidates counted
// rather than surfaced as errors.
package solver
