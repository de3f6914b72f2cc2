package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wricardo/sokoban-solver/game/service"
	"github.com/wricardo/sokoban-solver/solver"
	"github.com/wricardo/sokoban-solver/transport/websocket"
)

// stubService is a scriptable SolverService for handler tests.
type stubService struct {
	jobs     map[string]*service.JobInfo
	levels   []*service.LevelInfo
	solveErr error
}

func newStubService() *stubService {
	return &stubService{jobs: make(map[string]*service.JobInfo)}
}

func (s *stubService) CreateJob(ctx context.Context, req service.SolveRequest) (*service.JobInfo, error) {
	info := &service.JobInfo{
		ID:        fmt.Sprintf("job-%d", len(s.jobs)+1),
		LevelID:   req.LevelID,
		Engine:    service.EngineFESS,
		Status:    service.JobPending,
		CreatedAt: time.Now(),
	}
	s.jobs[info.ID] = info
	return info, nil
}

func (s *stubService) GetJob(ctx context.Context, jobID string) (*service.JobInfo, error) {
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	return job, nil
}

func (s *stubService) ListJobs(ctx context.Context) ([]*service.JobInfo, error) {
	out := make([]*service.JobInfo, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	return out, nil
}

func (s *stubService) CancelJob(ctx context.Context, jobID string) error {
	job, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("job not found: %s", jobID)
	}
	job.Status = service.JobCanceled
	return nil
}

func (s *stubService) DeleteJob(ctx context.Context, jobID string) error {
	if _, ok := s.jobs[jobID]; !ok {
		return fmt.Errorf("job not found: %s", jobID)
	}
	delete(s.jobs, jobID)
	return nil
}

func (s *stubService) Solve(ctx context.Context, req service.SolveRequest) (*service.SolveResponse, error) {
	if s.solveErr != nil {
		return nil, s.solveErr
	}
	return &service.SolveResponse{
		LevelID: req.LevelID,
		Engine:  service.EngineFESS,
		Result: &solver.Result{
			Status: solver.StatusSolved,
			Tokens: []string{"RIGHT", "RIGHT", "RIGHT"},
		},
		Verified: true,
	}, nil
}

func (s *stubService) AnalyzeLevel(ctx context.Context, levelID, levelText string) (*service.LevelAnalysis, error) {
	if levelID == "" && levelText == "" {
		return nil, fmt.Errorf("no level specified")
	}
	return &service.LevelAnalysis{LevelID: levelID, Width: 7, Height: 3, Boxes: 1}, nil
}

func (s *stubService) ListLevels(ctx context.Context) ([]*service.LevelInfo, error) {
	return s.levels, nil
}

func (s *stubService) GetLevel(ctx context.Context, levelID string) (*service.LevelDetail, error) {
	for _, info := range s.levels {
		if info.LevelID == levelID {
			return &service.LevelDetail{LevelInfo: *info, Text: "#######\n#@$  .#\n#######"}, nil
		}
	}
	return nil, fmt.Errorf("level not found: %s", levelID)
}

func (s *stubService) SaveLevel(ctx context.Context, levelID, text string) error {
	if levelID == "" {
		return fmt.Errorf("level id is required")
	}
	s.levels = append(s.levels, &service.LevelInfo{LevelID: levelID, Filename: levelID + ".txt"})
	return nil
}

func createTestServer(t *testing.T) (*Server, *stubService) {
	t.Helper()
	stub := newStubService()
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(stub, hub), stub
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := createTestServer(t)

	rec := doRequest(t, s, "GET", "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("Expected status healthy, got %s", resp["status"])
	}
}

func TestCreateJobEndpoint(t *testing.T) {
	s, _ := createTestServer(t)

	rec := doRequest(t, s, "POST", "/api/jobs", service.SolveRequest{LevelID: "corridor"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var job service.JobInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if job.ID == "" {
		t.Errorf("Expected a job ID in the response")
	}
	if job.LevelID != "corridor" {
		t.Errorf("Expected level corridor, got %s", job.LevelID)
	}
}

func TestCreateJobEndpoint_BadBody(t *testing.T) {
	s, _ := createTestServer(t)

	req := httptest.NewRequest("POST", "/api/jobs", bytes.NewBufferString("{broken"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetJobEndpoint(t *testing.T) {
	s, stub := createTestServer(t)
	info, _ := stub.CreateJob(context.Background(), service.SolveRequest{LevelID: "corridor"})

	rec := doRequest(t, s, "GET", "/api/jobs/"+info.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	rec = doRequest(t, s, "GET", "/api/jobs/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestListJobsEndpoint(t *testing.T) {
	s, stub := createTestServer(t)
	stub.CreateJob(context.Background(), service.SolveRequest{LevelID: "a"})
	stub.CreateJob(context.Background(), service.SolveRequest{LevelID: "b"})

	rec := doRequest(t, s, "GET", "/api/jobs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Count int                `json:"count"`
		Jobs  []*service.JobInfo `json:"jobs"`
		Order string             `json:"order"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("Expected 2 jobs, got %d", resp.Count)
	}
	if resp.Order != "desc" {
		t.Errorf("Expected default order desc, got %s", resp.Order)
	}
}

func TestListJobsEndpoint_StatusFilterAndLimit(t *testing.T) {
	s, stub := createTestServer(t)
	first, _ := stub.CreateJob(context.Background(), service.SolveRequest{LevelID: "a"})
	stub.CreateJob(context.Background(), service.SolveRequest{LevelID: "b"})
	stub.CancelJob(context.Background(), first.ID)

	rec := doRequest(t, s, "GET", "/api/jobs?status=canceled", nil)
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("Expected 1 canceled job, got %d", resp.Count)
	}

	rec = doRequest(t, s, "GET", "/api/jobs?limit=1", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("Expected limit 1 applied, got %d", resp.Count)
	}
}

func TestCancelJobEndpoint(t *testing.T) {
	s, stub := createTestServer(t)
	info, _ := stub.CreateJob(context.Background(), service.SolveRequest{LevelID: "corridor"})

	rec := doRequest(t, s, "POST", "/api/jobs/"+info.ID+"/cancel", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if stub.jobs[info.ID].Status != service.JobCanceled {
		t.Errorf("Expected the job to be canceled")
	}
}

func TestDeleteJobEndpoint(t *testing.T) {
	s, stub := createTestServer(t)
	info, _ := stub.CreateJob(context.Background(), service.SolveRequest{LevelID: "corridor"})

	rec := doRequest(t, s, "DELETE", "/api/jobs/"+info.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if _, ok := stub.jobs[info.ID]; ok {
		t.Errorf("Expected the job to be deleted")
	}
}

func TestGetSolutionEndpoint(t *testing.T) {
	s, stub := createTestServer(t)
	info, _ := stub.CreateJob(context.Background(), service.SolveRequest{LevelID: "corridor"})

	// unfinished job: conflict
	rec := doRequest(t, s, "GET", "/api/jobs/"+info.ID+"/solution", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for an unfinished job, got %d", rec.Code)
	}

	// finished without result: not found
	info.Status = service.JobFailed
	rec = doRequest(t, s, "GET", "/api/jobs/"+info.ID+"/solution", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for a result-less job, got %d", rec.Code)
	}

	info.Status = service.JobSolved
	info.Result = &solver.Result{
		Status: solver.StatusSolved,
		Tokens: []string{"RIGHT", "RIGHT"},
	}
	rec = doRequest(t, s, "GET", "/api/jobs/"+info.ID+"/solution", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var resp struct {
		JobID  string   `json:"job_id"`
		Tokens []string `json:"tokens"`
		Moves  int      `json:"moves"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Moves != 2 || len(resp.Tokens) != 2 {
		t.Errorf("Expected 2 tokens, got moves=%d tokens=%d", resp.Moves, len(resp.Tokens))
	}
}

func TestSolveEndpoint(t *testing.T) {
	s, _ := createTestServer(t)

	rec := doRequest(t, s, "POST", "/api/solve", service.SolveRequest{LevelID: "corridor"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp service.SolveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Verified {
		t.Errorf("Expected a verified solution")
	}
	if len(resp.Result.Tokens) != 3 {
		t.Errorf("Expected 3 tokens, got %d", len(resp.Result.Tokens))
	}
}

func TestSolveEndpoint_ServiceError(t *testing.T) {
	s, stub := createTestServer(t)
	stub.solveErr = fmt.Errorf("unknown engine")

	rec := doRequest(t, s, "POST", "/api/solve", service.SolveRequest{Engine: "bfs"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	s, _ := createTestServer(t)

	rec := doRequest(t, s, "POST", "/api/analyze", map[string]string{"level_id": "corridor"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var analysis service.LevelAnalysis
	if err := json.Unmarshal(rec.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if analysis.Width != 7 {
		t.Errorf("Expected width 7, got %d", analysis.Width)
	}
}

func TestLevelEndpoints(t *testing.T) {
	s, _ := createTestServer(t)

	rec := doRequest(t, s, "POST", "/api/levels", map[string]string{
		"level_id": "corridor",
		"text":     "#######\n#@$  .#\n#######",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	rec = doRequest(t, s, "GET", "/api/levels", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	// the .txt suffix is stripped before lookup
	rec = doRequest(t, s, "GET", "/api/levels/corridor.txt", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var detail service.LevelDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if detail.LevelID != "corridor" {
		t.Errorf("Expected level corridor, got %s", detail.LevelID)
	}

	rec = doRequest(t, s, "GET", "/api/levels/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestCreateLevelEndpoint_MissingID(t *testing.T) {
	s, _ := createTestServer(t)

	rec := doRequest(t, s, "POST", "/api/levels", map[string]string{"text": "####"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestWebSocketEndpoint_MissingJob(t *testing.T) {
	s, _ := createTestServer(t)

	rec := doRequest(t, s, "GET", "/ws", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without a job parameter, got %d", rec.Code)
	}

	rec = doRequest(t, s, "GET", "/ws?job=missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for an unknown job, got %d", rec.Code)
	}
}
