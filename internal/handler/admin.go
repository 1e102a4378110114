package handler

import (
	"net/http"

	"github.com/pkordes/validity/backend/internal/auth"
	"github.com/pkordes/validity/backend/internal/domain"
)

// SetUserRole handles PUT /admin/users/{id}/role.
func (s *Server) SetUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	var req roleRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	updated, err := s.profiles.SetRole(r.Context(), auth.SessionFromContext(r.Context()), id, domain.Role(req.Role))
	if err != nil {
		s.writeError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, profileToResponse(updated))
}
