package handler

import (
	"net/http"

	"github.com/pkordes/validity/backend/internal/auth"
	"github.com/pkordes/validity/backend/internal/filter"
)

// ListTools handles GET /tools.
// Supports ?q= (search), and repeatable ?tag= and ?category= ids.
// The whole filtered list is returned; there is no pagination.
func (s *Server) ListTools(w http.ResponseWriter, r *http.Request) {
	state, err := filterState(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	tools, err := s.tools.List(r.Context(), state)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, listResponse[toolResponse]{Data: mapSlice(tools, toolToResponse)})
}

// filterState builds the Collection Filter state from the query string.
func filterState(r *http.Request) (filter.State, error) {
	var state filter.State
	q, err := queryString(r, "q")
	if err != nil {
		return state, err
	}
	tags, err := queryUUIDs(r, "tag")
	if err != nil {
		return state, err
	}
	cats, err := queryUUIDs(r, "category")
	if err != nil {
		return state, err
	}

	state.Query = q
	for _, id := range tags {
		if _, ok := state.Tags[id]; !ok {
			state.ToggleTag(id)
		}
	}
	for _, id := range cats {
		if _, ok := state.Categories[id]; !ok {
			state.ToggleCategory(id)
		}
	}
	return state, nil
}

// GetTool handles GET /tools/{id}.
func (s *Server) GetTool(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	tool, err := s.tools.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusOK, toolToResponse(tool))
}

// CreateTool handles POST /tools.
func (s *Server) CreateTool(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	created, err := s.tools.Create(r.Context(), auth.SessionFromContext(r.Context()), req.toInput())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, toolToResponse(created))
}

// UpdateTool handles PUT /tools/{id}.
func (s *Server) UpdateTool(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	var req toolRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	updated, err := s.tools.Update(r.Context(), auth.SessionFromContext(r.Context()), id, req.toInput())
	if err != nil {
		s.writeError(w, r, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusOK, toolToResponse(updated))
}

// DeleteTool handles DELETE /tools/{id}.
func (s *Server) DeleteTool(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	if err := s.tools.Delete(r.Context(), auth.SessionFromContext(r.Context()), id); err != nil {
		s.writeError(w, r, err, "tool not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type viewResponse struct {
	ViewCount int64 `json:"view_count"`
}

// RecordToolView handles POST /tools/{id}/view.
func (s *Server) RecordToolView(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	views, err := s.tools.RecordView(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "tool not found")
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{ViewCount: views})
}
