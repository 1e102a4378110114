package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/validity/backend/internal/auth"
)

// ListPosts handles GET /posts: published posts, most recent first.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListPosts(w http.ResponseWriter, r *http.Request) {
	params, err := queryPagination(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	page, err := s.posts.ListPublished(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(page.Total, 10))
	writeJSON(w, http.StatusOK, pageResponse(page, postToResponse))
}

// GetPost handles GET /posts/{slug}. Drafts are reported as not found unless
// the caller is the author or an admin.
func (s *Server) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.posts.GetBySlug(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, postToResponse(post))
}

// CreatePost handles POST /posts.
func (s *Server) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	created, err := s.posts.Create(r.Context(), auth.SessionFromContext(r.Context()), req.toInput())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, postToResponse(created))
}

// UpdatePost handles PUT /posts/{id}.
func (s *Server) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	var req postRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	updated, err := s.posts.Update(r.Context(), auth.SessionFromContext(r.Context()), id, req.toInput())
	if err != nil {
		s.writeError(w, r, err, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, postToResponse(updated))
}

// DeletePost handles DELETE /posts/{id}.
func (s *Server) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	if err := s.posts.Delete(r.Context(), auth.SessionFromContext(r.Context()), id); err != nil {
		s.writeError(w, r, err, "post not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
