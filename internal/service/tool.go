// Package service contains the business logic for the Validity API.
// Services validate inputs, enforce ownership and role rules, and orchestrate
// repo calls. No SQL lives here; services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/validity/backend/internal/domain"
	"github.com/pkordes/validity/backend/internal/filter"
	"github.com/pkordes/validity/backend/internal/repo"
)

// ToolService implements business logic for Tool operations.
// It holds the taxonomy repo because a tool's category and tags are resolved
// on every save and attached on every read.
type ToolService struct {
	tools      repo.ToolRepo
	terms      repo.TaxonomyRepo
	reconciler *Reconciler
	logger     *slog.Logger
}

// NewToolService constructs a ToolService backed by the provided repos.
func NewToolService(tools repo.ToolRepo, terms repo.TaxonomyRepo, logger *slog.Logger) *ToolService {
	return &ToolService{
		tools:      tools,
		terms:      terms,
		reconciler: NewReconciler(terms),
		logger:     logger,
	}
}

// List returns every tool matching state, newest first.
// The full catalogue is loaded and filtered in memory.
func (s *ToolService) List(ctx context.Context, state filter.State) ([]domain.Tool, error) {
	tools, err := s.tools.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ToolService.List: %w", err)
	}
	if err := s.attachTags(ctx, tools); err != nil {
		return nil, fmt.Errorf("service.ToolService.List: %w", err)
	}
	return filter.Apply(tools, state), nil
}

// ListByAuthor returns the tools owned by authorID with their tags.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ToolService) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Tool, error) {
	tools, err := s.tools.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("service.ToolService.ListByAuthor: %w", err)
	}
	if err := s.attachTags(ctx, tools); err != nil {
		return nil, fmt.Errorf("service.ToolService.ListByAuthor: %w", err)
	}
	if tools == nil {
		return []domain.Tool{}, nil
	}
	return tools, nil
}

// GetByID returns a single tool with its tags.
// Returns domain.ErrNotFound if the tool does not exist.
func (s *ToolService) GetByID(ctx context.Context, id uuid.UUID) (domain.Tool, error) {
	tool, err := s.tools.GetByID(ctx, id)
	if err != nil {
		return domain.Tool{}, fmt.Errorf("service.ToolService.GetByID: %w", err)
	}
	tags, err := s.terms.ListByParent(ctx, domain.NamespaceToolTags, id)
	if err != nil {
		return domain.Tool{}, fmt.Errorf("service.ToolService.GetByID: %w", err)
	}
	tool.Tags = tags
	return tool, nil
}

// Create validates and persists a new tool owned by the session's user,
// then reconciles its tags. Only developers and admins may publish tools.
//
// The tool row is written before its tags; if tag reconciliation fails the
// error is returned and the tool remains without tags.
func (s *ToolService) Create(ctx context.Context, sess domain.Session, in domain.ToolInput) (domain.Tool, error) {
	if err := requirePublisher(sess); err != nil {
		return domain.Tool{}, err
	}
	if err := validateTool(in); err != nil {
		return domain.Tool{}, err
	}

	tool := toolFromInput(in)
	tool.AuthorID = sess.User.ID
	if err := s.resolveCategory(ctx, &tool, in.Category); err != nil {
		return domain.Tool{}, fmt.Errorf("service.ToolService.Create: %w", err)
	}

	created, err := s.tools.Create(ctx, tool)
	if err != nil {
		return domain.Tool{}, fmt.Errorf("service.ToolService.Create: %w", err)
	}

	tags, err := s.reconciler.Reconcile(ctx, domain.NamespaceToolTags, created.ID, in.Tags)
	if err != nil {
		return domain.Tool{}, fmt.Errorf("service.ToolService.Create: tags: %w", err)
	}
	created.Tags = tags

	s.logger.InfoContext(ctx, "tool created",
		"tool_id", created.ID,
		"slug", created.Slug,
		"author_id", created.AuthorID,
		"tags", len(tags),
	)
	return created, nil
}

// Update validates and persists changes to an existing tool, then reconciles
// its tags. Only the author or an admin may update a tool.
// Returns domain.ErrNotFound if the tool does not exist.
func (s *ToolService) Update(ctx context.Context, sess domain.Session, id uuid.UUID, in domain.ToolInput) (domain.Tool, error) {
	existing, err := s.tools.GetByID(ctx, id)
	if err != nil {
		return domain.Tool{}, fmt.Errorf("service.ToolService.Update: %w", err)
	}
	if err := requireOwner(sess, existing.AuthorID); err != nil {
		return domain.Tool{}, err
	}
	if err := validateTool(in); err != nil {
		return domain.Tool{}, err
	}

	tool := toolFromInput(in)
	tool.ID = existing.ID
	tool.AuthorID = existing.AuthorID
	if err := s.resolveCategory(ctx, &tool, in.Category); err != nil {
		return domain.Tool{}, fmt.Errorf("service.ToolService.Update: %w", err)
	}

	updated, err := s.tools.Update(ctx, tool)
	if err != nil {
		return domain.Tool{}, fmt.Errorf("service.ToolService.Update: %w", err)
	}

	tags, err := s.reconciler.Reconcile(ctx, domain.NamespaceToolTags, updated.ID, in.Tags)
	if err != nil {
		return domain.Tool{}, fmt.Errorf("service.ToolService.Update: tags: %w", err)
	}
	updated.Tags = tags

	s.logger.InfoContext(ctx, "tool updated", "tool_id", updated.ID, "user_id", sess.User.ID)
	return updated, nil
}

// Delete removes a tool. Only the author or an admin may delete a tool.
// Returns domain.ErrNotFound if the tool does not exist.
func (s *ToolService) Delete(ctx context.Context, sess domain.Session, id uuid.UUID) error {
	existing, err := s.tools.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.ToolService.Delete: %w", err)
	}
	if err := requireOwner(sess, existing.AuthorID); err != nil {
		return err
	}
	if err := s.tools.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ToolService.Delete: %w", err)
	}

	s.logger.InfoContext(ctx, "tool deleted", "tool_id", id, "user_id", sess.User.ID)
	return nil
}

// RecordView increments the tool's view counter and returns the new count.
func (s *ToolService) RecordView(ctx context.Context, id uuid.UUID) (int64, error) {
	views, err := s.tools.IncrementViews(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("service.ToolService.RecordView: %w", err)
	}
	return views, nil
}

// attachTags loads the tags of all tools in one query and sets them in place.
func (s *ToolService) attachTags(ctx context.Context, tools []domain.Tool) error {
	if len(tools) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(tools))
	for i, t := range tools {
		ids[i] = t.ID
	}
	byTool, err := s.terms.ListByParents(ctx, domain.NamespaceToolTags, ids)
	if err != nil {
		return err
	}
	for i := range tools {
		if tags, ok := byTool[tools[i].ID]; ok {
			tools[i].Tags = tags
		} else {
			tools[i].Tags = []domain.Tag{}
		}
	}
	return nil
}

// resolveCategory finds or creates the named tool category and points tool
// at it. A blank name leaves the tool uncategorised.
func (s *ToolService) resolveCategory(ctx context.Context, tool *domain.Tool, name string) error {
	if strings.TrimSpace(name) == "" {
		tool.CategoryID = nil
		return nil
	}
	terms, err := s.reconciler.Resolve(ctx, domain.NamespaceToolCategories, []string{name})
	if err != nil {
		return fmt.Errorf("category: %w", err)
	}
	cat := terms[0]
	tool.CategoryID = &cat.ID
	tool.Category = &cat
	return nil
}

func toolFromInput(in domain.ToolInput) domain.Tool {
	name := strings.TrimSpace(in.Name)
	return domain.Tool{
		Name:        name,
		Slug:        Slugify(name),
		Description: strings.TrimSpace(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		WebsiteURL:  strings.TrimSpace(in.WebsiteURL),
		Pricing:     in.Pricing,
	}
}

// validateTool enforces business rules common to both Create and Update.
//   - Name must be non-empty and produce a non-empty slug.
//   - Pricing must be a known model.
//   - ImageURL and WebsiteURL, when set, must be absolute http(s) URLs.
func validateTool(in domain.ToolInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if Slugify(name) == "" {
		return fmt.Errorf("%w: name must contain at least one letter or digit", domain.ErrValidation)
	}
	if !in.Pricing.Valid() {
		return fmt.Errorf("%w: pricing must be one of free, freemium, paid, contact", domain.ErrValidation)
	}
	if err := validateOptionalURL("image_url", in.ImageURL); err != nil {
		return err
	}
	return validateOptionalURL("website_url", in.WebsiteURL)
}

func validateOptionalURL(field, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an http or https URL", domain.ErrValidation, field)
	}
	return nil
}

// requirePublisher rejects anonymous sessions and roles that cannot publish.
func requirePublisher(sess domain.Session) error {
	if !sess.IsAuthenticated {
		return domain.ErrUnauthorized
	}
	if !sess.Role.CanPublish() {
		return fmt.Errorf("%w: role %q cannot publish", domain.ErrForbidden, sess.Role)
	}
	return nil
}

// requireOwner rejects sessions that are neither the owner nor an admin.
func requireOwner(sess domain.Session, ownerID uuid.UUID) error {
	if !sess.IsAuthenticated {
		return domain.ErrUnauthorized
	}
	if !sess.CanModify(ownerID) {
		return fmt.Errorf("%w: not the author", domain.ErrForbidden)
	}
	return nil
}
