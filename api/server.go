package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/wricardo/sokoban-solver/game/service"
	"github.com/wricardo/sokoban-solver/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.SolverService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(solverService service.SolverService, hub *websocket.Hub) *Server {
	s := &Server{
		service: solverService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// API routes with clean REST patterns
	api := s.router.PathPrefix("/api").Subrouter()

	// Job management
	api.HandleFunc("/jobs", s.handleCreateJob).Methods("POST")
	api.HandleFunc("/jobs", s.handleListJobs).Methods("GET")
	api.HandleFunc("/jobs/{id}", s.handleGetJob).Methods("GET")
	api.HandleFunc("/jobs/{id}", s.handleDeleteJob).Methods("DELETE")
	api.HandleFunc("/jobs/{id}/cancel", s.handleCancelJob).Methods("POST")
	api.HandleFunc("/jobs/{id}/solution", s.handleGetSolution).Methods("GET")

	// Synchronous solving and analysis
	api.HandleFunc("/solve", s.handleSolve).Methods("POST")
	api.HandleFunc("/analyze", s.handleAnalyze).Methods("POST")

	// Levels
	api.HandleFunc("/levels", s.handleListLevels).Methods("GET")
	api.HandleFunc("/levels", s.handleCreateLevel).Methods("POST")
	api.HandleFunc("/levels/{name}", s.handleGetLevel).Methods("GET")

	// Health
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Job Handlers

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req service.SolveRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := s.service.CreateJob(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	fmt.Printf("[JOB] created id=%s level=%s engine=%s\n", job.ID, job.LevelID, job.Engine)

	respondJSON(w, http.StatusCreated, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.service.ListJobs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	status := query.Get("status") // filter: "pending", "running", ...
	order := query.Get("order")   // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit")

	if order == "" {
		order = "desc"
	}

	if status != "" {
		filtered := make([]*service.JobInfo, 0, len(jobs))
		for _, job := range jobs {
			if string(job.Status) == status {
				filtered = append(filtered, job)
			}
		}
		jobs = filtered
	}

	// Sort by creation time
	sort.Slice(jobs, func(i, j int) bool {
		if order == "asc" {
			return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
		}
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt) // desc
	})

	// Apply limit if specified
	limit := len(jobs)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(jobs) {
			limit = l
		}
	}
	jobs = jobs[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(jobs),
		"jobs":  jobs,
		"order": order,
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID := vars["id"]

	job, err := s.service.GetJob(r.Context(), jobID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID := vars["id"]

	err := s.service.DeleteJob(r.Context(), jobID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Job %s deleted", jobID),
	})
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID := vars["id"]

	if err := s.service.CancelJob(r.Context(), jobID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	fmt.Printf("[JOB] canceled id=%s\n", jobID)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Job %s canceled", jobID),
	})
}

func (s *Server) handleGetSolution(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID := vars["id"]

	job, err := s.service.GetJob(r.Context(), jobID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	if !job.Status.Finished() {
		respondError(w, http.StatusConflict, fmt.Sprintf("Job %s is still %s", jobID, job.Status))
		return
	}

	if job.Result == nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("Job %s has no result", jobID))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":   jobID,
		"status":   job.Status,
		"tokens":   job.Result.Tokens,
		"moves":    len(job.Result.Tokens),
		"counters": job.Result.Counters,
	})
}

// Solve and Analysis Handlers

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req service.SolveRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := s.service.Solve(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Compact server log for observability
	res := resp.Result
	fmt.Printf("[SOLVE] level=%s engine=%s status=%s moves=%d explored=%d dur=%s\n",
		resp.LevelID, resp.Engine, res.Status, len(res.Tokens), res.Counters.Explored, res.Duration)

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LevelID   string `json:"level_id,omitempty"`
		LevelText string `json:"level_text,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	analysis, err := s.service.AnalyzeLevel(r.Context(), req.LevelID, req.LevelText)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}

// Level Handlers

func (s *Server) handleListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := s.service.ListLevels(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, levels)
}

func (s *Server) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	levelName := vars["name"]

	// Remove .txt extension if present
	levelName = strings.TrimSuffix(levelName, ".txt")

	level, err := s.service.GetLevel(r.Context(), levelName)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, level)
}

func (s *Server) handleCreateLevel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LevelID string `json:"level_id"`
		Text    string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.LevelID == "" {
		respondError(w, http.StatusBadRequest, "Level ID is required")
		return
	}

	if err := s.service.SaveLevel(r.Context(), req.LevelID, req.Text); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to save level: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Level saved successfully",
		"level_id": req.LevelID,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("job")
	if jobID == "" {
		http.Error(w, "job parameter required", http.StatusBadRequest)
		return
	}

	// Verify job exists
	_, err := s.service.GetJob(context.Background(), jobID)
	if err != nil {
		http.Error(w, "Invalid job", http.StatusNotFound)
		return
	}

	// Upgrade to WebSocket
	s.hub.ServeWS(w, r, jobID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
