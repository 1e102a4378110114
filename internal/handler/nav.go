package handler

import (
	"net/http"

	"github.com/pkordes/validity/backend/internal/auth"
	"github.com/pkordes/validity/backend/internal/domain"
)

type navItemResponse struct {
	Route string `json:"route"`
	Label string `json:"label"`
}

type navResponse struct {
	Role            string            `json:"role"`
	IsAuthenticated bool              `json:"is_authenticated"`
	Items           []navItemResponse `json:"items"`
}

// GetNav handles GET /nav: the navigation entries visible to the caller.
func (s *Server) GetNav(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	items := mapSlice(domain.VisibleNav(sess.Role), func(n domain.NavItem) navItemResponse {
		return navItemResponse{Route: n.Route, Label: n.Label}
	})
	writeJSON(w, http.StatusOK, navResponse{
		Role:            string(sess.Role),
		IsAuthenticated: sess.IsAuthenticated,
		Items:           items,
	})
}

type meResponse struct {
	Email   string          `json:"email"`
	Profile profileResponse `json:"profile"`
}

// GetMe handles GET /me.
func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	p, err := s.profiles.Me(r.Context(), sess)
	if err != nil {
		s.writeError(w, r, err, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, meResponse{Email: sess.User.Email, Profile: profileToResponse(p)})
}

// UpdateMe handles PUT /me.
func (s *Server) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	sess := auth.SessionFromContext(r.Context())
	p, err := s.profiles.UpdateMe(r.Context(), sess, req.toInput())
	if err != nil {
		s.writeError(w, r, err, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, meResponse{Email: sess.User.Email, Profile: profileToResponse(p)})
}
