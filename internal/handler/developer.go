package handler

import (
	"net/http"
	"strconv"

	"github.com/pkordes/validity/backend/internal/auth"
)

// ListDevelopers handles GET /developers, ordered by username.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListDevelopers(w http.ResponseWriter, r *http.Request) {
	params, err := queryPagination(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	page, err := s.profiles.ListDevelopers(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(page.Total, 10))
	writeJSON(w, http.StatusOK, pageResponse(page, profileToResponse))
}

type developerResponse struct {
	Profile profileResponse `json:"profile"`
	Tools   []toolResponse  `json:"tools"`
	Posts   []postResponse  `json:"posts"`
}

// GetDeveloper handles GET /developers/{id}: the public profile with the
// developer's tools and the posts the caller may see.
func (s *Server) GetDeveloper(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	ctx := r.Context()

	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		s.writeError(w, r, err, "developer not found")
		return
	}
	tools, err := s.tools.ListByAuthor(ctx, id)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	posts, err := s.posts.ListByAuthor(ctx, auth.SessionFromContext(ctx), id)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	writeJSON(w, http.StatusOK, developerResponse{
		Profile: profileToResponse(profile),
		Tools:   mapSlice(tools, toolToResponse),
		Posts:   mapSlice(posts, postToResponse),
	})
}
