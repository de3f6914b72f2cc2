// Package websocket provides WebSocket transport for solve-job progress.
//
// The websocket package implements:
//   - Real-time progress streaming for running solve jobs
//   - Job-aware WebSocket connections
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// goroutine that manages reading, writing, and cleanup. The hub implements
// service.Notifier so the solver service can fan out job events without
// knowing about connections.
//
// Message Protocol:
//
// Messages are JSON-encoded with the following structure:
//   - {job_id: "...", event: "progress", data: {explored, generated, ...}}
//   - {job_id: "...", event: "finished", data: {id, status, result, ...}}
//
// Clients do not send messages; the read side only keeps the connection
// alive and detects disconnects.
//
// Job Integration:
//
// Clients specify the job they want to watch via query parameter (?job=ID)
// when establishing the connection. Events are broadcast only to clients
// watching the same job.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	// hand the hub to the solver service as its Notifier, and to the
//	// API server for /ws upgrades
//
// Concurrency:
//
// The hub and client handlers are designed for concurrent operation.
// Multiple clients can connect, disconnect, and receive events
// simultaneously without blocking the solver goroutines.
package websocket
