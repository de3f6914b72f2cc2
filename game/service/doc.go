// Package service defines the solver service layer: the SolverService
// interface consumed by the REST API, the MCP transport and the CLI, plus
// the job, level and analysis types they exchange.
//
// The service wraps the synchronous solver engines with an asynchronous
// job lifecycle (one goroutine per job) and exposes static level analysis
// built from the solver's precomputed tables.
package service
