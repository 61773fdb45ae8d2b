package swipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/ideaswipe/kit"
	"github.com/hazyhaar/ideaswipe/shield"
)

// Routes mounts the JSON API on r. The caller places auth.Middleware and
// auth.RequireSession in front; handlers act as kit.GetUserEmail.
func (s *Service) Routes(r chi.Router) {
	r.Post("/api/ideas", s.handleCreateIdea)
	r.Get("/api/ideas/{id}", s.handleGetIdea)
	r.Put("/api/ideas/{id}", s.handleUpdateIdea)
	r.Delete("/api/ideas/{id}", s.handleDeleteIdea)
	r.Get("/api/feed", s.handleFeed)
	r.Post("/api/ideas/{id}/swipe", s.handleSwipe)
	r.Post("/api/ideas/{id}/share", s.handleShare)
	r.Get("/api/ideas/{id}/like", s.handleLikeStatus)
	r.Get("/api/ideas/{id}/comments", s.handleListComments)
	r.Post("/api/comments", s.handleCreateComment)
	r.Get("/api/me/ideas", s.handleMyIdeas)
	r.Get("/api/me/history", s.handleHistory)
}

func (s *Service) handleCreateIdea(w http.ResponseWriter, r *http.Request) {
	var in IdeaInput
	if !decodeJSON(w, r, &in) {
		return
	}
	idea, err := s.CreateIdea(r.Context(), in, kit.GetUserEmail(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

func (s *Service) handleGetIdea(w http.ResponseWriter, r *http.Request) {
	idea, err := s.GetIdea(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

func (s *Service) handleUpdateIdea(w http.ResponseWriter, r *http.Request) {
	var patch IdeaPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	idea, err := s.UpdateIdea(r.Context(), chi.URLParam(r, "id"), patch, kit.GetUserEmail(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

func (s *Service) handleDeleteIdea(w http.ResponseWriter, r *http.Request) {
	removed, err := s.DeleteIdea(r.Context(), chi.URLParam(r, "id"), kit.GetUserEmail(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "removed": removed})
}

func (s *Service) handleFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := s.ComputeFeed(r.Context(), kit.GetUserEmail(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

func (s *Service) handleSwipe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.RecordSwipe(r.Context(), chi.URLParam(r, "id"), kit.GetUserEmail(r.Context()), req.Action)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleShare(w http.ResponseWriter, r *http.Request) {
	res, err := s.RecordShare(r.Context(), chi.URLParam(r, "id"), kit.GetUserEmail(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleLikeStatus(w http.ResponseWriter, r *http.Request) {
	res, err := s.LikeStatus(r.Context(), chi.URLParam(r, "id"), kit.GetUserEmail(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.ListComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Service) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	// Body is {ideaId, content}; idea_id is accepted as an alias.
	var req struct {
		IdeaID      string `json:"ideaId"`
		IdeaIDSnake string `json:"idea_id"`
		Content     string `json:"content"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	ideaID := req.IdeaID
	if ideaID == "" {
		ideaID = req.IdeaIDSnake
	}
	if ideaID == "" {
		writeError(w, r, fmt.Errorf("%w: ideaId is required", ErrInvalidInput))
		return
	}
	c, err := s.CreateComment(r.Context(), ideaID, kit.GetUserEmail(r.Context()), req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Service) handleMyIdeas(w http.ResponseWriter, r *http.Request) {
	ideas, err := s.ListByAuthor(r.Context(), kit.GetUserEmail(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ideas)
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	views, err := s.History(r.Context(), kit.GetUserEmail(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// decodeJSON reads the request body into v, answering 400 or 413 itself on
// failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
		return false
	}
	writeError(w, r, fmt.Errorf("%w: invalid JSON body: %v", ErrInvalidInput, err))
	return false
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusCode(err)
	msg := err.Error()
	if code >= 500 {
		shield.GetLogger(r.Context()).Error("swipe: request failed", "error", err, "status", code)
		switch code {
		case http.StatusGatewayTimeout:
			msg = "datastore timeout"
		case http.StatusBadGateway:
			msg = "datastore unavailable"
		default:
			msg = "internal error"
		}
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
