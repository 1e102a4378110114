// Package handler implements the HTTP handlers for the Validity API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, tool.go, etc.) but share the same Server struct so they
// can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/validity/backend/internal/auth"
	"github.com/pkordes/validity/backend/internal/domain"
	"github.com/pkordes/validity/backend/internal/filter"
	"github.com/pkordes/validity/backend/internal/validation"
)

// ToolServicer defines the business operations the tool handlers depend on.
// Interfaces live here, in the consumer package, so handler tests can inject
// a mock without touching the database or service layer.
type ToolServicer interface {
	List(ctx context.Context, state filter.State) ([]domain.Tool, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Tool, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tool, error)
	Create(ctx context.Context, sess domain.Session, in domain.ToolInput) (domain.Tool, error)
	Update(ctx context.Context, sess domain.Session, id uuid.UUID, in domain.ToolInput) (domain.Tool, error)
	Delete(ctx context.Context, sess domain.Session, id uuid.UUID) error
	RecordView(ctx context.Context, id uuid.UUID) (int64, error)
}

// PostServicer defines the business operations the blog handlers depend on.
type PostServicer interface {
	ListPublished(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.BlogPost], error)
	ListByAuthor(ctx context.Context, sess domain.Session, authorID uuid.UUID) ([]domain.BlogPost, error)
	GetBySlug(ctx context.Context, sess domain.Session, slug string) (domain.BlogPost, error)
	Create(ctx context.Context, sess domain.Session, in domain.PostInput) (domain.BlogPost, error)
	Update(ctx context.Context, sess domain.Session, id uuid.UUID, in domain.PostInput) (domain.BlogPost, error)
	Delete(ctx context.Context, sess domain.Session, id uuid.UUID) error
}

// TaxonomyServicer defines the lookups behind the tag and category pickers.
type TaxonomyServicer interface {
	List(ctx context.Context, ns domain.Namespace, prefix string) ([]domain.Term, error)
}

// ProfileServicer defines the profile and role operations.
type ProfileServicer interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error)
	ListDevelopers(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Profile], error)
	Me(ctx context.Context, sess domain.Session) (domain.Profile, error)
	UpdateMe(ctx context.Context, sess domain.Session, in domain.ProfileInput) (domain.Profile, error)
	SetRole(ctx context.Context, sess domain.Session, id uuid.UUID, role domain.Role) (domain.Profile, error)
}

// ExportServicer defines the data export operation.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Services groups the servicers a Server needs. A nil servicer is allowed
// in tests that never reach its routes.
type Services struct {
	Tools    ToolServicer
	Posts    PostServicer
	Taxonomy TaxonomyServicer
	Profiles ProfileServicer
	Export   ExportServicer
}

// Server holds the dependencies shared by every handler.
type Server struct {
	tools    ToolServicer
	posts    PostServicer
	taxonomy TaxonomyServicer
	profiles ProfileServicer
	export   ExportServicer

	validate *validation.Validator
	logger   *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, logger *slog.Logger) *Server {
	return &Server{
		tools:    svc.Tools,
		posts:    svc.Posts,
		taxonomy: svc.Taxonomy,
		profiles: svc.Profiles,
		export:   svc.Export,
		validate: validation.New(),
		logger:   logger,
	}
}

// Routes returns the API router. It expects auth.Middleware to run before it
// so every request carries a session.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	publisher := auth.RequireRole(s.deny, domain.RoleDeveloper, domain.RoleAdmin)
	signedIn := auth.RequireAuth(s.deny)
	admin := auth.RequireRole(s.deny, domain.RoleAdmin)

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/nav", s.GetNav)

	r.With(signedIn).Get("/me", s.GetMe)
	r.With(signedIn).Put("/me", s.UpdateMe)

	r.Route("/tools", func(r chi.Router) {
		r.Get("/", s.ListTools)
		r.With(publisher).Post("/", s.CreateTool)
		r.Get("/{id}", s.GetTool)
		r.With(signedIn).Put("/{id}", s.UpdateTool)
		r.With(signedIn).Delete("/{id}", s.DeleteTool)
		r.Post("/{id}/view", s.RecordToolView)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", s.ListPosts)
		r.With(publisher).Post("/", s.CreatePost)
		r.Get("/{slug}", s.GetPost)
		r.With(signedIn).Put("/{id}", s.UpdatePost)
		r.With(signedIn).Delete("/{id}", s.DeletePost)
	})

	r.Get("/tags", s.ListTags)
	r.Get("/categories", s.ListCategories)

	r.Get("/developers", s.ListDevelopers)
	r.Get("/developers/{id}", s.GetDeveloper)

	r.Route("/admin", func(r chi.Router) {
		r.Use(admin)
		r.Put("/users/{id}/role", s.SetUserRole)
		r.Get("/export", s.GetExport)
	})

	return r
}
