// ABOUTME: Tests for the mission board HTTP handlers
// ABOUTME: Covers starter seeding, create, status toggle, delete, and path parsing

package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleListTasks_SeedsStarterMissions(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/tasks", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	missions := decodeBody[[]missionResponse](t, rec)
	require.Len(t, missions, 3)
	assert.Equal(t, "Make your bed", missions[0].Title)
	assert.Equal(t, "Brush your teeth", missions[1].Title)
	assert.Equal(t, "Read for 10 minutes", missions[2].Title)
	for _, m := range missions {
		assert.Equal(t, "pending", m.Status)
		assert.NotEmpty(t, m.Description)
	}

	// Listing again must not seed a second batch
	rec = doJSON(t, srv, http.MethodGet, "/api/tasks", nil, nil)
	missions = decodeBody[[]missionResponse](t, rec)
	assert.Len(t, missions, 3)
}

func TestHandleListTasks_NoSeedingWhenNonEmpty(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", map[string]string{
		"title": "Water the plants",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/tasks", nil, nil)
	missions := decodeBody[[]missionResponse](t, rec)
	require.Len(t, missions, 1)
	assert.Equal(t, "Water the plants", missions[0].Title)
}

func TestHandleCreateTask(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", map[string]string{
		"title":       "Feed the cat",
		"description": "One scoop, not three!",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	created := decodeBody[missionResponse](t, rec)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Feed the cat", created.Title)
	assert.Equal(t, "One scoop, not three!", created.Description)
	assert.Equal(t, "pending", created.Status)
	assert.NotEmpty(t, created.CreatedAt)
}

func TestHandleCreateTask_EmptyTitle(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", map[string]string{
		"title": "   ",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "title is required", resp["error"])
}

func TestHandleCreateTask_InvalidJSON(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", "not an object", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpdateTask_StatusToggle(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", map[string]string{
		"title": "Tidy the desk",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	created := decodeBody[missionResponse](t, rec)

	path := fmt.Sprintf("/api/tasks/%d", created.ID)

	rec = doJSON(t, srv, http.MethodPatch, path, map[string]string{"status": "completed"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/tasks", nil, nil)
	missions := decodeBody[[]missionResponse](t, rec)
	require.Len(t, missions, 1)
	assert.Equal(t, "completed", missions[0].Status)

	// And back to pending
	rec = doJSON(t, srv, http.MethodPatch, path, map[string]string{"status": "pending"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/tasks", nil, nil)
	missions = decodeBody[[]missionResponse](t, rec)
	assert.Equal(t, "pending", missions[0].Status)
}

func TestHandleUpdateTask_InvalidStatus(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", map[string]string{
		"title": "Tidy the desk",
	}, nil)
	created := decodeBody[missionResponse](t, rec)

	rec = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", created.ID),
		map[string]string{"status": "done"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "status must be pending or completed", resp["error"])
}

func TestHandleUpdateTask_NotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPatch, "/api/tasks/9999",
		map[string]string{"status": "completed"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "task not found", resp["error"])
}

func TestHandleDeleteTask(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", map[string]string{
		"title": "Take out the trash",
	}, nil)
	created := decodeBody[missionResponse](t, rec)

	path := fmt.Sprintf("/api/tasks/%d", created.ID)
	rec = doJSON(t, srv, http.MethodDelete, path, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Deleting again reports not found
	rec = doJSON(t, srv, http.MethodDelete, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleTaskByID_InvalidID(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodDelete, "/api/tasks/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTaskByID_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks/1", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
