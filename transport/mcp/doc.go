// Package mcp provides a Model Context Protocol interface to the Sokoban solver.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for solving, analysis, and job management
//   - Thin REST proxying: every tool call maps to an API endpoint
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - solve_level: Solve a level synchronously, returning push tokens
//   - analyze_level: Static level analysis without searching
//   - list_levels / get_level / save_level: Level catalog access
//   - create_job: Start an asynchronous solve job
//   - get_job / list_jobs / cancel_job: Job lifecycle management
//   - get_solution: Fetch the solution of a finished job
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: HTTP endpoint for remote MCP integration
//
// Architecture:
//
// The client holds no solver state. Each tool handler issues an HTTP
// request against the REST API and formats the JSON response as text, so
// the MCP surface and the REST surface cannot drift apart.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// Stdio mode
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode
//	httpServer := server.NewStreamableHTTPServer(client.GetMCPServer())
//	mux.Handle("/mcp", httpServer)
package mcp
