// ABOUTME: HTTP handlers for the missions (tasks) routes
// ABOUTME: List with starter seeding, create, status update, and delete

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cosmohq/cosmo-server/internal/store"
)

// starterMissions seed an empty missions table on the first list call,
// so a fresh install greets the kid with something to do.
var starterMissions = []struct {
	title       string
	description string
}{
	{"Make your bed", "Smooth the blankets and fluff your pillow!"},
	{"Brush your teeth", "Two whole minutes, top and bottom!"},
	{"Read for 10 minutes", "Pick any book you like and blast off!"},
}

// missionResponse is the JSON shape for a Mission.
type missionResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
}

// createMissionRequest is the JSON request body for POST /api/tasks.
type createMissionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// updateMissionRequest is the JSON request body for PATCH /api/tasks/{id}.
type updateMissionRequest struct {
	Status string `json:"status"`
}

func missionToResponse(m *store.Mission) missionResponse {
	return missionResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
}

// handleTasks routes /api/tasks by HTTP method.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTasks(w, r)
	case http.MethodPost:
		s.handleCreateTask(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleListTasks handles GET /api/tasks. An empty table is seeded with
// the starter missions before listing.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := s.store.CountMissions(ctx)
	if err != nil {
		s.logger.Error("failed to count missions", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if count == 0 {
		s.logger.Info("seeding starter missions")
		for _, m := range starterMissions {
			if _, err := s.store.CreateMission(ctx, m.title, m.description); err != nil {
				s.logger.Error("failed to seed mission", "error", err, "title", m.title)
				s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}
		}
	}

	missions, err := s.store.ListMissions(ctx)
	if err != nil {
		s.logger.Error("failed to list missions", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]missionResponse, len(missions))
	for i, m := range missions {
		response[i] = missionToResponse(m)
	}

	s.sendJSON(w, response)
}

// handleCreateTask handles POST /api/tasks.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createMissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		s.sendJSONError(w, http.StatusBadRequest, "title is required")
		return
	}

	mission, err := s.store.CreateMission(r.Context(), req.Title, req.Description)
	if err != nil {
		s.logger.Error("failed to create mission", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, missionToResponse(mission))
}

// handleTaskByID routes /api/tasks/{id} by HTTP method.
func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseIDPath(w, r.URL.Path, "/api/tasks/")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPatch:
		s.handleUpdateTask(w, r, id)
	case http.MethodDelete:
		s.handleDeleteTask(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleUpdateTask handles PATCH /api/tasks/{id}.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request, id int64) {
	var req updateMissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Status != store.MissionStatusPending && req.Status != store.MissionStatusCompleted {
		s.sendJSONError(w, http.StatusBadRequest, "status must be pending or completed")
		return
	}

	err := s.store.UpdateMissionStatus(r.Context(), id, req.Status)
	if errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to update mission", "error", err, "id", id)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, map[string]bool{"success": true})
}

// handleDeleteTask handles DELETE /api/tasks/{id}.
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request, id int64) {
	err := s.store.DeleteMission(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to delete mission", "error", err, "id", id)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, map[string]bool{"success": true})
}

// parseIDPath extracts the numeric id from a path like {prefix}{id}.
// Writes a 400 response and returns ok=false when the id is malformed.
func (s *Server) parseIDPath(w http.ResponseWriter, path, prefix string) (int64, bool) {
	raw := strings.TrimPrefix(path, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		s.sendJSONError(w, http.StatusBadRequest, "invalid path")
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
