package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/validity/backend/internal/auth"
	"github.com/pkordes/validity/backend/internal/domain"
	"github.com/pkordes/validity/backend/internal/filter"
	"github.com/pkordes/validity/backend/internal/handler"
)

// ---- mock servicers --------------------------------------------------------

// mockToolServicer is a hand-written test double for handler.ToolServicer.
// Each field is a function that the test sets to control behaviour.
type mockToolServicer struct {
	list         func(ctx context.Context, state filter.State) ([]domain.Tool, error)
	listByAuthor func(ctx context.Context, authorID uuid.UUID) ([]domain.Tool, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Tool, error)
	create       func(ctx context.Context, sess domain.Session, in domain.ToolInput) (domain.Tool, error)
	update       func(ctx context.Context, sess domain.Session, id uuid.UUID, in domain.ToolInput) (domain.Tool, error)
	delete       func(ctx context.Context, sess domain.Session, id uuid.UUID) error
	recordView   func(ctx context.Context, id uuid.UUID) (int64, error)
}

func (m *mockToolServicer) List(ctx context.Context, state filter.State) ([]domain.Tool, error) {
	return m.list(ctx, state)
}
func (m *mockToolServicer) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Tool, error) {
	return m.listByAuthor(ctx, authorID)
}
func (m *mockToolServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Tool, error) {
	return m.getByID(ctx, id)
}
func (m *mockToolServicer) Create(ctx context.Context, sess domain.Session, in domain.ToolInput) (domain.Tool, error) {
	return m.create(ctx, sess, in)
}
func (m *mockToolServicer) Update(ctx context.Context, sess domain.Session, id uuid.UUID, in domain.ToolInput) (domain.Tool, error) {
	return m.update(ctx, sess, id, in)
}
func (m *mockToolServicer) Delete(ctx context.Context, sess domain.Session, id uuid.UUID) error {
	return m.delete(ctx, sess, id)
}
func (m *mockToolServicer) RecordView(ctx context.Context, id uuid.UUID) (int64, error) {
	return m.recordView(ctx, id)
}

type mockPostServicer struct {
	listPublished func(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.BlogPost], error)
	listByAuthor  func(ctx context.Context, sess domain.Session, authorID uuid.UUID) ([]domain.BlogPost, error)
	getBySlug     func(ctx context.Context, sess domain.Session, slug string) (domain.BlogPost, error)
	create        func(ctx context.Context, sess domain.Session, in domain.PostInput) (domain.BlogPost, error)
	update        func(ctx context.Context, sess domain.Session, id uuid.UUID, in domain.PostInput) (domain.BlogPost, error)
	delete        func(ctx context.Context, sess domain.Session, id uuid.UUID) error
}

func (m *mockPostServicer) ListPublished(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.BlogPost], error) {
	return m.listPublished(ctx, p)
}
func (m *mockPostServicer) ListByAuthor(ctx context.Context, sess domain.Session, authorID uuid.UUID) ([]domain.BlogPost, error) {
	return m.listByAuthor(ctx, sess, authorID)
}
func (m *mockPostServicer) GetBySlug(ctx context.Context, sess domain.Session, slug string) (domain.BlogPost, error) {
	return m.getBySlug(ctx, sess, slug)
}
func (m *mockPostServicer) Create(ctx context.Context, sess domain.Session, in domain.PostInput) (domain.BlogPost, error) {
	return m.create(ctx, sess, in)
}
func (m *mockPostServicer) Update(ctx context.Context, sess domain.Session, id uuid.UUID, in domain.PostInput) (domain.BlogPost, error) {
	return m.update(ctx, sess, id, in)
}
func (m *mockPostServicer) Delete(ctx context.Context, sess domain.Session, id uuid.UUID) error {
	return m.delete(ctx, sess, id)
}

type mockTaxonomyServicer struct {
	list func(ctx context.Context, ns domain.Namespace, prefix string) ([]domain.Term, error)
}

func (m *mockTaxonomyServicer) List(ctx context.Context, ns domain.Namespace, prefix string) ([]domain.Term, error) {
	return m.list(ctx, ns, prefix)
}

type mockProfileServicer struct {
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Profile, error)
	listDevelopers func(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Profile], error)
	me             func(ctx context.Context, sess domain.Session) (domain.Profile, error)
	updateMe       func(ctx context.Context, sess domain.Session, in domain.ProfileInput) (domain.Profile, error)
	setRole        func(ctx context.Context, sess domain.Session, id uuid.UUID, role domain.Role) (domain.Profile, error)
}

func (m *mockProfileServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
	return m.getByID(ctx, id)
}
func (m *mockProfileServicer) ListDevelopers(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Profile], error) {
	return m.listDevelopers(ctx, p)
}
func (m *mockProfileServicer) Me(ctx context.Context, sess domain.Session) (domain.Profile, error) {
	return m.me(ctx, sess)
}
func (m *mockProfileServicer) UpdateMe(ctx context.Context, sess domain.Session, in domain.ProfileInput) (domain.Profile, error) {
	return m.updateMe(ctx, sess, in)
}
func (m *mockProfileServicer) SetRole(ctx context.Context, sess domain.Session, id uuid.UUID, role domain.Role) (domain.Profile, error) {
	return m.setRole(ctx, sess, id, role)
}

type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

// compile-time checks: every mock must satisfy its servicer interface.
var (
	_ handler.ToolServicer     = (*mockToolServicer)(nil)
	_ handler.PostServicer     = (*mockPostServicer)(nil)
	_ handler.TaxonomyServicer = (*mockTaxonomyServicer)(nil)
	_ handler.ProfileServicer  = (*mockProfileServicer)(nil)
	_ handler.ExportServicer   = (*mockExportServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestHandler wires the router with svc and injects sess into every request,
// standing in for auth.Middleware.
func newTestHandler(svc handler.Services, sess domain.Session) http.Handler {
	routes := handler.NewServer(svc, discardLogger()).Routes()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		routes.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
	})
}

// serve sends one request through h. A non-empty body is sent as JSON.
func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func anonymous() domain.Session {
	return domain.AnonymousSession()
}

func signedInAs(role domain.Role) domain.Session {
	return domain.Session{
		User:            domain.SessionUser{ID: uuid.New(), Email: "someone@example.com"},
		Role:            role,
		IsAuthenticated: true,
	}
}

// errorBody is the decoded shape of every error response.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
