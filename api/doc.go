// Package api provides the HTTP REST API for the Sokoban solver service.
//
// The api package implements:
//   - Asynchronous solve-job endpoints
//   - Synchronous solve and level analysis endpoints
//   - Level catalog listing and upload
//   - WebSocket upgrade handling for job progress streams
//
// Endpoints:
//
// Job Management:
//   - POST /api/jobs - Create an asynchronous solve job
//   - GET /api/jobs - List jobs (supports status, order, limit query params)
//   - GET /api/jobs/{id} - Get a specific job
//   - DELETE /api/jobs/{id} - Delete a job
//   - POST /api/jobs/{id}/cancel - Cancel a running job
//   - GET /api/jobs/{id}/solution - Get the solution of a finished job
//
// Solving and Analysis:
//   - POST /api/solve - Solve a level synchronously
//   - POST /api/analyze - Static analysis of a level (no search)
//
// Levels:
//   - GET /api/levels - List catalog levels
//   - POST /api/levels - Save a level to the catalog
//   - GET /api/levels/{name} - Get a level with its text
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Solve requests name a level either
// by catalog ID or inline text:
//
//	{
//	  "level_id": "classic",       // or "level_text": "#####\n..."
//	  "engine": "fess|astar",      // default: fess
//	  "max_states": 100000,        // optional resource limits
//	  "time_limit_ms": 30000,
//	  "macro_radius": 3
//	}
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
