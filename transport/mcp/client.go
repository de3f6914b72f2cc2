package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/sokoban-solver/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Sokoban Solver",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Sokoban Solver - MCP Interface

This is a thin client that proxies all requests to the REST API server.

LEVEL FORMAT:
Levels are ASCII text, one row per line:
  #  wall        @  player          $  box
  .  target      *  box on target   +  player on target
  (space) floor

AVAILABLE TOOLS:
- solve_level: Solve a level synchronously and get the push sequence
- analyze_level: Static analysis (corners, packing order, rooms, hotspots)
- list_levels / get_level / save_level: Level catalog access
- create_job: Start an asynchronous solve job (for hard levels)
- get_job / list_jobs / cancel_job: Job management
- get_solution: Fetch the solution of a finished job

Solutions are returned as direction tokens (UP/DOWN/LEFT/RIGHT), one per
player push. Use analyze_level first on unfamiliar levels: an initial
deadlock means the level is unsolvable as given.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Solving
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_level",
		Description: "Solve a Sokoban level synchronously and return the push sequence",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Catalog level ID to solve (optional if level_text given)",
				},
				"level_text": map[string]interface{}{
					"type":        "string",
					"description": "Inline level text to solve (optional if level_id given)",
				},
				"engine": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"fess", "astar"},
					"description": "Search engine to use (default: fess)",
				},
				"max_states": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum stored states before giving up",
				},
				"time_limit_ms": map[string]interface{}{
					"type":        "integer",
					"description": "Wall-clock limit in milliseconds",
				},
			},
		},
	}, c.handleSolveLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "analyze_level",
		Description: "Static analysis of a level without searching: corner cells, packing order, room structure, hotspots, and whether the start position is already deadlocked",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Catalog level ID to analyze (optional if level_text given)",
				},
				"level_text": map[string]interface{}{
					"type":        "string",
					"description": "Inline level text to analyze (optional if level_id given)",
				},
			},
		},
	}, c.handleAnalyzeLevel)

	// Levels
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List all levels in the catalog",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_level",
		Description: "Get a catalog level including its text",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Level ID to retrieve",
				},
			},
			Required: []string{"level_id"},
		},
	}, c.handleGetLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "save_level",
		Description: "Save a level to the catalog",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Level ID to save under",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Level text",
				},
			},
			Required: []string{"level_id", "text"},
		},
	}, c.handleSaveLevel)

	// Job management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_job",
		Description: "Start an asynchronous solve job; use for levels that may take long",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Catalog level ID to solve (optional if level_text given)",
				},
				"level_text": map[string]interface{}{
					"type":        "string",
					"description": "Inline level text to solve (optional if level_id given)",
				},
				"engine": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"fess", "astar"},
					"description": "Search engine to use (default: fess)",
				},
				"max_states": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum stored states before giving up",
				},
				"time_limit_ms": map[string]interface{}{
					"type":        "integer",
					"description": "Wall-clock limit in milliseconds",
				},
			},
		},
	}, c.handleCreateJob)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_job",
		Description: "Get the status of a solve job",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"job_id": map[string]interface{}{
					"type":        "string",
					"description": "Job ID to retrieve",
				},
			},
			Required: []string{"job_id"},
		},
	}, c.handleGetJob)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_jobs",
		Description: "List all solve jobs",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListJobs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cancel_job",
		Description: "Cancel a running solve job",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"job_id": map[string]interface{}{
					"type":        "string",
					"description": "Job ID to cancel",
				},
			},
			Required: []string{"job_id"},
		},
	}, c.handleCancelJob)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_solution",
		Description: "Get the solution tokens of a finished solve job",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"job_id": map[string]interface{}{
					"type":        "string",
					"description": "Job ID whose solution to fetch",
				},
			},
			Required: []string{"job_id"},
		},
	}, c.handleGetSolution)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// solveBody extracts the common solve-request fields from tool arguments
func solveBody(args map[string]interface{}) map[string]interface{} {
	body := map[string]interface{}{}
	if levelID, _ := args["level_id"].(string); levelID != "" {
		body["level_id"] = levelID
	}
	if levelText, _ := args["level_text"].(string); levelText != "" {
		body["level_text"] = levelText
	}
	if engineName, _ := args["engine"].(string); engineName != "" {
		body["engine"] = engineName
	}
	if maxStates, ok := args["max_states"].(float64); ok {
		body["max_states"] = int(maxStates)
	}
	if timeLimit, ok := args["time_limit_ms"].(float64); ok {
		body["time_limit_ms"] = int(timeLimit)
	}
	return body
}

// Tool handlers

func (c *Client) handleSolveLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})

	var resp service.SolveResponse
	err := c.apiCall("POST", "/api/solve", solveBody(args), &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResponse(&resp)), nil
}

func (c *Client) handleAnalyzeLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	levelID, _ := args["level_id"].(string)
	levelText, _ := args["level_text"].(string)

	body := map[string]string{}
	if levelID != "" {
		body["level_id"] = levelID
	}
	if levelText != "" {
		body["level_text"] = levelText
	}

	var analysis service.LevelAnalysis
	err := c.apiCall("POST", "/api/analyze", body, &analysis)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatAnalysis(&analysis)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	err := c.apiCall("GET", "/api/levels", nil, &levels)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Catalog Levels (%d):\n\n", len(levels))
	for _, l := range levels {
		result += fmt.Sprintf("- %s (%dx%d, %d boxes)\n", l.LevelID, l.Width, l.Height, l.Boxes)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	levelID, _ := args["level_id"].(string)

	var level service.LevelDetail
	err := c.apiCall("GET", fmt.Sprintf("/api/levels/%s", levelID), nil, &level)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Level: %s (%dx%d, %d boxes, %d targets)\n\n%s",
		level.LevelID, level.Width, level.Height, level.Boxes, level.Targets, level.Text)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSaveLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	levelID, _ := args["level_id"].(string)
	text, _ := args["text"].(string)

	body := map[string]string{
		"level_id": levelID,
		"text":     text,
	}

	err := c.apiCall("POST", "/api/levels", body, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Saved level: %s", levelID)), nil
}

func (c *Client) handleCreateJob(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})

	var job service.JobInfo
	err := c.apiCall("POST", "/api/jobs", solveBody(args), &job)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created job: %s\nLevel: %s\nEngine: %s\nStatus: %s\n",
		job.ID, job.LevelID, job.Engine, job.Status)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetJob(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	jobID, _ := args["job_id"].(string)

	var job service.JobInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/jobs/%s", jobID), nil, &job)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatJobInfo(&job)), nil
}

func (c *Client) handleListJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int               `json:"count"`
		Jobs  []service.JobInfo `json:"jobs"`
	}

	err := c.apiCall("GET", "/api/jobs", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Solve Jobs (%d):\n\n", response.Count)
	for _, j := range response.Jobs {
		result += fmt.Sprintf("- %s [%s] level=%s engine=%s created=%s\n",
			j.ID, j.Status, j.LevelID, j.Engine, j.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleCancelJob(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	jobID, _ := args["job_id"].(string)

	err := c.apiCall("POST", fmt.Sprintf("/api/jobs/%s/cancel", jobID), nil, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Canceled job: %s", jobID)), nil
}

func (c *Client) handleGetSolution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	jobID, _ := args["job_id"].(string)

	var response struct {
		JobID  string   `json:"job_id"`
		Status string   `json:"status"`
		Tokens []string `json:"tokens"`
		Moves  int      `json:"moves"`
	}

	err := c.apiCall("GET", fmt.Sprintf("/api/jobs/%s/solution", jobID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Job: %s\nStatus: %s\nMoves: %d\n\nSolution:\n%s\n",
		response.JobID, response.Status, response.Moves, strings.Join(response.Tokens, " "))
	return mcp.NewToolResultText(result), nil
}

// Formatting helpers

func formatSolveResponse(resp *service.SolveResponse) string {
	var b strings.Builder

	res := resp.Result
	b.WriteString(fmt.Sprintf("Level: %s • Engine: %s • Status: %s\n", resp.LevelID, resp.Engine, res.Status))
	b.WriteString(fmt.Sprintf("Explored: %d • Generated: %d • Deadlocks: %d • Duplicates: %d\n",
		res.Counters.Explored, res.Counters.Generated, res.Counters.Deadlocks, res.Counters.Duplicates))
	b.WriteString(fmt.Sprintf("Duration: %s • Verified: %v\n", res.Duration, resp.Verified))

	if len(res.Tokens) > 0 {
		b.WriteString(fmt.Sprintf("\nSolution (%d moves):\n%s\n", len(res.Tokens), strings.Join(res.Tokens, " ")))
	} else {
		b.WriteString("\nNo solution found within the configured limits.\n")
	}

	return b.String()
}

func formatJobInfo(job *service.JobInfo) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Job: %s\nLevel: %s\nEngine: %s\nStatus: %s\nCreated: %s\n",
		job.ID, job.LevelID, job.Engine, job.Status,
		job.CreatedAt.Format("2006-01-02 15:04:05")))

	if job.Error != "" {
		b.WriteString(fmt.Sprintf("Error: %s\n", job.Error))
	}

	if job.Result != nil {
		res := job.Result
		b.WriteString(fmt.Sprintf("\nResult: %s in %s\nExplored: %d • Generated: %d • Deadlocks: %d\n",
			res.Status, res.Duration, res.Counters.Explored, res.Counters.Generated, res.Counters.Deadlocks))
		if len(res.Tokens) > 0 {
			b.WriteString(fmt.Sprintf("Solution (%d moves): %s\n", len(res.Tokens), strings.Join(res.Tokens, " ")))
		}
	}

	return b.String()
}

func formatAnalysis(a *service.LevelAnalysis) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Level: %s (%dx%d, %d boxes)\n\n", a.LevelID, a.Width, a.Height, a.Boxes))
	b.WriteString(a.Rendered)
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Corner cells: %d\n", len(a.CornerCells)))
	b.WriteString(fmt.Sprintf("Rooms: %d • Tunnels: %d\n", a.Rooms, a.Tunnels))
	if a.TopHotspot != nil {
		b.WriteString(fmt.Sprintf("Top hotspot: (%d,%d)\n", a.TopHotspot.X, a.TopHotspot.Y))
	}

	b.WriteString("Packing order:")
	for _, p := range a.PackingOrder {
		b.WriteString(fmt.Sprintf(" (%d,%d)", p.X, p.Y))
	}
	b.WriteString("\n")

	v := a.InitialVector
	b.WriteString(fmt.Sprintf("Initial features: packing=%d connectivity=%d room=%d out_of_plan=%d\n",
		v.Packing, v.Connectivity, v.Room, v.OutOfPlan))

	if a.InitialDeadlock {
		b.WriteString("\n⚠️ Initial position is deadlocked: the level is unsolvable as given.\n")
	}

	return b.String()
}
