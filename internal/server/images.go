// ABOUTME: HTTP handlers for the standalone image routes
// ABOUTME: Pure provider proxies - generation and editing without persistence

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cosmohq/cosmo-server/internal/genai"
)

// aiClient is the slice of the AI adapter the HTTP layer calls directly.
// This allows injecting mock implementations for testing.
type aiClient interface {
	Configured() bool
	ChatComplete(ctx context.Context, history []genai.Turn, systemInstruction string, temperature, topP float64) (string, error)
	GenerateImage(ctx context.Context, prompt string) (*genai.Image, error)
	EditImage(ctx context.Context, prompt string, source *genai.Image) (*genai.Image, error)
}

// generateImageRequest is the JSON request body for POST /api/generate-image.
type generateImageRequest struct {
	Prompt string `json:"prompt"`
}

// editImageRequest is the JSON request body for POST /api/edit-image.
// Base64Image accepts a full data URI or raw base64 PNG bytes.
type editImageRequest struct {
	Prompt      string `json:"prompt"`
	Base64Image string `json:"base64Image"`
}

// imageResponse is the JSON response for both image routes.
type imageResponse struct {
	ImageURL string `json:"imageUrl"`
}

// handleGenerateImage handles POST /api/generate-image. The route is a
// pure proxy: nothing is persisted, the client decides what to keep.
func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req generateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Prompt) == "" {
		s.sendJSONError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	img, err := s.ai.GenerateImage(r.Context(), req.Prompt)
	if err != nil {
		s.sendImageError(w, err)
		return
	}

	s.sendJSON(w, imageResponse{ImageURL: img.DataURI()})
}

// handleEditImage handles POST /api/edit-image. Pure proxy like
// generate-image.
func (s *Server) handleEditImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req editImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Prompt) == "" {
		s.sendJSONError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if req.Base64Image == "" {
		s.sendJSONError(w, http.StatusBadRequest, "base64Image is required")
		return
	}

	source, err := genai.ParseDataURI(req.Base64Image)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid image data")
		return
	}

	img, err := s.ai.EditImage(r.Context(), req.Prompt, source)
	if err != nil {
		s.sendImageError(w, err)
		return
	}

	s.sendJSON(w, imageResponse{ImageURL: img.DataURI()})
}

// sendImageError maps AI adapter errors onto HTTP responses. Unlike chat
// dispatch there is no fallback reply here: provider failures are plain
// 500s for the client to handle.
func (s *Server) sendImageError(w http.ResponseWriter, err error) {
	if errors.Is(err, genai.ErrNotConfigured) {
		s.sendJSONError(w, http.StatusInternalServerError, "AI configuration error")
		return
	}

	s.logger.Error("image request failed", "error", err)
	s.sendJSONError(w, http.StatusInternalServerError, "image request failed")
}
