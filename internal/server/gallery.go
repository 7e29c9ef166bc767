// ABOUTME: HTTP handlers for the gallery routes
// ABOUTME: Upload, newest-first listing, and per-entry delete

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cosmohq/cosmo-server/internal/store"
)

// galleryEntryResponse is the JSON shape for a GalleryEntry. Type is the
// wire name for the entry kind, matching the upload request field.
type galleryEntryResponse struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	ImageURL  string `json:"imageUrl"`
	Prompt    string `json:"prompt,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// uploadGalleryRequest is the JSON request body for POST /api/gallery/upload.
type uploadGalleryRequest struct {
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt,omitempty"`
	Type     string `json:"type,omitempty"`
}

// handleGallery handles GET /api/gallery, newest first.
func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	entries, err := s.store.ListGallery(r.Context())
	if err != nil {
		s.logger.Error("failed to list gallery", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]galleryEntryResponse, len(entries))
	for i, e := range entries {
		response[i] = galleryEntryResponse{
			ID:        e.ID,
			Type:      e.Kind,
			ImageURL:  e.URL,
			Prompt:    e.Prompt,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		}
	}

	s.sendJSON(w, response)
}

// handleGalleryUpload handles POST /api/gallery/upload. Type defaults to
// "uploaded" when omitted.
func (s *Server) handleGalleryUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req uploadGalleryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.ImageURL == "" {
		s.sendJSONError(w, http.StatusBadRequest, "imageUrl is required")
		return
	}

	kind := req.Type
	if kind == "" {
		kind = store.GalleryKindUploaded
	}
	if kind != store.GalleryKindUploaded && kind != store.GalleryKindGenerated {
		s.sendJSONError(w, http.StatusBadRequest, "type must be uploaded or generated")
		return
	}

	if _, err := s.store.AddGalleryEntry(r.Context(), kind, req.ImageURL, req.Prompt); err != nil {
		s.logger.Error("failed to add gallery entry", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, map[string]bool{"success": true})
}

// handleGalleryByID handles DELETE /api/gallery/{id}.
func (s *Server) handleGalleryByID(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseIDPath(w, r.URL.Path, "/api/gallery/")
	if !ok {
		return
	}

	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	err := s.store.DeleteGalleryEntry(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "gallery entry not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to delete gallery entry", "error", err, "id", id)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, map[string]bool{"success": true})
}
