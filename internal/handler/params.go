package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/validity/backend/internal/domain"
)

// pathUUID binds the named path parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid format for parameter %s: %v", errBadRequest, name, err)
	}
	return id, nil
}

// queryString binds an optional string query parameter; absent means "".
func queryString(r *http.Request, name string) (string, error) {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return "", fmt.Errorf("%w: invalid format for parameter %s: %v", errBadRequest, name, err)
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

// queryUUIDs binds a repeatable query parameter (?tag=a&tag=b) as UUIDs.
func queryUUIDs(r *http.Request, name string) ([]uuid.UUID, error) {
	var raw []string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid format for parameter %s: %v", errBadRequest, name, err)
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a UUID", errBadRequest, name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// queryPagination binds ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func queryPagination(r *http.Request) (domain.PaginationParams, error) {
	var page, limit *int
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &page); err != nil {
		return domain.PaginationParams{}, fmt.Errorf("%w: invalid format for parameter page: %v", errBadRequest, err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		return domain.PaginationParams{}, fmt.Errorf("%w: invalid format for parameter limit: %v", errBadRequest, err)
	}
	return domain.NewPaginationParams(page, limit), nil
}
