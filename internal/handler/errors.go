package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkordes/validity/backend/internal/domain"
)

// errorDetail is the body of every error response:
//
//	{"error":{"code":"not_found","message":"tool not found"}}
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorMapping ties a domain sentinel to its HTTP status and error code.
type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings is checked in order; the first sentinel matched by errors.Is wins.
var errorMappings = []errorMapping{
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
	{domain.ErrConflict, http.StatusConflict, "conflict"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
}

// errBadRequest marks malformed input rejected before it reaches a service,
// such as an unparsable path parameter or JSON body.
var errBadRequest = errors.New("bad request")

// writeError maps err to a status code and error body.
// notFound is the message used for domain.ErrNotFound, because the handler
// is the layer that knows what was being looked up.
// Unmapped errors are logged and reported as a bare 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	if errors.Is(err, errBadRequest) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorDetail{
			Code: "bad_request", Message: unwrapMessage(err, errBadRequest),
		}})
		return
	}
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := unwrapMessage(err, m.target)
		if m.target == domain.ErrNotFound && notFound != "" {
			msg = notFound
		}
		writeJSON(w, m.status, errorResponse{Error: errorDetail{Code: m.code, Message: msg}})
		return
	}

	s.logger.ErrorContext(r.Context(), "unhandled error",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errorDetail{
		Code: "internal", Message: "internal server error",
	}})
}

// deny is the auth.DenyFunc used by the route gates.
func (s *Server) deny(w http.ResponseWriter, r *http.Request, err error) {
	s.writeError(w, r, err, "")
}

// unwrapMessage extracts the human-readable part that follows the sentinel in
// a wrapped error chain.
// e.g. "service.ToolService.Create: validation error: name is required" → "name is required"
// When nothing follows the sentinel its own text is returned.
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}

// writeJSON writes v as the JSON body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // the client has gone away if this fails; nothing to report to
	json.NewEncoder(w).Encode(v)
}

// decodeBody decodes the JSON request body into dst and validates it.
// Unknown fields are rejected so typos surface instead of being ignored.
func (s *Server) decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: request body exceeds %d bytes", errBadRequest, maxErr.Limit)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: request body is required", errBadRequest)
		default:
			return fmt.Errorf("%w: malformed JSON: %v", errBadRequest, err)
		}
	}
	return s.validate.Validate(dst)
}
