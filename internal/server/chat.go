// ABOUTME: HTTP handlers for the chat routes
// ABOUTME: History with welcome seeding and markdown rendering, dispatch, and clear

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/cosmohq/cosmo-server/internal/dispatch"
	"github.com/cosmohq/cosmo-server/internal/genai"
	"github.com/cosmohq/cosmo-server/internal/license"
	"github.com/cosmohq/cosmo-server/internal/store"
)

// chatTurnResponse is the JSON shape for one history turn. HTML is only
// set when ?format=html requests rendered markdown.
type chatTurnResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	HTML    string `json:"html,omitempty"`
}

// chatMessageRequest is the JSON request body for POST /api/chat.
// ImageUnderEdit carries the data URI of the picture the kid has
// selected for editing, if any.
type chatMessageRequest struct {
	Message        string `json:"message"`
	ImageUnderEdit string `json:"imageUnderEdit,omitempty"`
}

// chatMessageResponse is the JSON response for POST /api/chat.
type chatMessageResponse struct {
	Response    string `json:"response"`
	ImageURL    string `json:"imageUrl,omitempty"`
	ImagePrompt string `json:"imagePrompt,omitempty"`
}

// handleChat routes /api/chat by HTTP method. The license gate has
// already run in middleware.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleChatHistory(w, r)
	case http.MethodPost:
		s.handleChatMessage(w, r)
	case http.MethodDelete:
		s.handleChatClear(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleChatHistory handles GET /api/chat. Empty history is seeded with
// the Cosmo welcome turn so the buddy always speaks first.
func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	turns, err := s.store.RecentChatTurns(ctx, 0)
	if err != nil {
		s.logger.Error("failed to load chat history", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if len(turns) == 0 {
		s.logger.Info("seeding welcome turn")
		welcome, err := s.store.AppendChatTurn(ctx, store.RoleModel, dispatch.WelcomeMessage)
		if err != nil {
			s.logger.Error("failed to seed welcome turn", "error", err)
			s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		turns = []*store.ChatTurn{welcome}
	}

	renderHTML := r.URL.Query().Get("format") == "html"

	response := make([]chatTurnResponse, len(turns))
	for i, t := range turns {
		response[i] = chatTurnResponse{Role: t.Role, Content: t.Content}
		if renderHTML {
			response[i].HTML = s.renderMarkdown(t.Content)
		}
	}

	s.sendJSON(w, response)
}

// renderMarkdown converts a turn's markdown content to HTML, falling
// back to an empty string on conversion failure.
func (s *Server) renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(content), &buf); err != nil {
		s.logger.Error("failed to convert markdown", "error", err)
		return ""
	}
	return buf.String()
}

// handleChatMessage handles POST /api/chat: one full dispatch through
// gate, classifier, provider, and store.
func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var image *genai.Image
	if req.ImageUnderEdit != "" {
		var err error
		image, err = genai.ParseDataURI(req.ImageUnderEdit)
		if err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid image data")
			return
		}
	}

	result, err := s.dispatcher.Handle(r.Context(), dispatch.Request{
		Text:       req.Message,
		LicenseKey: r.Header.Get(license.HeaderName),
		Image:      image,
	})
	if err != nil {
		s.sendDispatchError(w, err)
		return
	}

	s.sendJSON(w, chatMessageResponse{
		Response:    result.Reply,
		ImageURL:    result.ImageURL,
		ImagePrompt: result.ImagePrompt,
	})
}

// sendDispatchError maps dispatcher errors onto HTTP responses. The 403
// body uses the "response" key so the UI can render it as a chat bubble.
func (s *Server) sendDispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dispatch.ErrEmptyMessage):
		s.sendJSONError(w, http.StatusBadRequest, "message is required")
	case errors.Is(err, license.ErrForbidden):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"response": license.ForbiddenMessage})
	case errors.Is(err, genai.ErrNotConfigured):
		s.sendJSONError(w, http.StatusInternalServerError, "AI configuration error")
	default:
		s.logger.Error("dispatch failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleChatClear handles DELETE /api/chat.
func (s *Server) handleChatClear(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearChatTurns(r.Context()); err != nil {
		s.logger.Error("failed to clear chat history", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, map[string]bool{"success": true})
}
