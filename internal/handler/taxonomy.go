package handler

import (
	"fmt"
	"net/http"

	"github.com/pkordes/validity/backend/internal/domain"
)

// ListTags handles GET /tags?namespace=blog|tool&q=prefix.
// namespace defaults to tool.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	s.listTerms(w, r, domain.TagNamespace)
}

// ListCategories handles GET /categories?namespace=blog|tool&q=prefix.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	s.listTerms(w, r, domain.CategoryNamespace)
}

func (s *Server) listTerms(w http.ResponseWriter, r *http.Request, resolve func(string) (domain.Namespace, bool)) {
	entity, err := queryString(r, "namespace")
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	if entity == "" {
		entity = "tool"
	}
	ns, ok := resolve(entity)
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: namespace must be blog or tool", domain.ErrValidation), "")
		return
	}
	prefix, err := queryString(r, "q")
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	terms, err := s.taxonomy.List(r.Context(), ns, prefix)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Term]{Data: terms})
}
