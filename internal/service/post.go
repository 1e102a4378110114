package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/validity/backend/internal/domain"
	"github.com/pkordes/validity/backend/internal/repo"
)

// PostService implements business logic for blog posts.
// Tags and categories are both many-to-many and reconciled after every save.
type PostService struct {
	posts      repo.PostRepo
	terms      repo.TaxonomyRepo
	reconciler *Reconciler
	logger     *slog.Logger
}

// NewPostService constructs a PostService backed by the provided repos.
func NewPostService(posts repo.PostRepo, terms repo.TaxonomyRepo, logger *slog.Logger) *PostService {
	return &PostService{
		posts:      posts,
		terms:      terms,
		reconciler: NewReconciler(terms),
		logger:     logger,
	}
}

// ListPublished returns one page of published posts with their terms.
func (s *PostService) ListPublished(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.BlogPost], error) {
	posts, total, err := s.posts.ListPublishedPaged(ctx, p)
	if err != nil {
		return domain.Page[domain.BlogPost]{}, fmt.Errorf("service.PostService.ListPublished: %w", err)
	}
	if err := s.attachTerms(ctx, posts); err != nil {
		return domain.Page[domain.BlogPost]{}, fmt.Errorf("service.PostService.ListPublished: %w", err)
	}
	if posts == nil {
		posts = []domain.BlogPost{}
	}
	return domain.Page[domain.BlogPost]{Items: posts, Total: total, PaginationParams: p}, nil
}

// ListByAuthor returns every post by authorID. Drafts are included only when
// the session is the author or an admin.
func (s *PostService) ListByAuthor(ctx context.Context, sess domain.Session, authorID uuid.UUID) ([]domain.BlogPost, error) {
	posts, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("service.PostService.ListByAuthor: %w", err)
	}
	visible := make([]domain.BlogPost, 0, len(posts))
	for _, p := range posts {
		if p.Published || sess.CanModify(p.AuthorID) {
			visible = append(visible, p)
		}
	}
	if err := s.attachTerms(ctx, visible); err != nil {
		return nil, fmt.Errorf("service.PostService.ListByAuthor: %w", err)
	}
	return visible, nil
}

// GetBySlug returns a post with its terms. A draft is reported as
// domain.ErrNotFound unless the session is its author or an admin.
func (s *PostService) GetBySlug(ctx context.Context, sess domain.Session, slug string) (domain.BlogPost, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("service.PostService.GetBySlug: %w", err)
	}
	if !post.Published && !sess.CanModify(post.AuthorID) {
		return domain.BlogPost{}, fmt.Errorf("service.PostService.GetBySlug: %w", domain.ErrNotFound)
	}
	posts := []domain.BlogPost{post}
	if err := s.attachTerms(ctx, posts); err != nil {
		return domain.BlogPost{}, fmt.Errorf("service.PostService.GetBySlug: %w", err)
	}
	return posts[0], nil
}

// Create validates and persists a new post owned by the session's user, then
// reconciles its tags and categories. Only developers and admins may post.
func (s *PostService) Create(ctx context.Context, sess domain.Session, in domain.PostInput) (domain.BlogPost, error) {
	if err := requirePublisher(sess); err != nil {
		return domain.BlogPost{}, err
	}
	if err := validatePost(in); err != nil {
		return domain.BlogPost{}, err
	}

	post := postFromInput(in)
	post.AuthorID = sess.User.ID

	created, err := s.posts.Create(ctx, post)
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("service.PostService.Create: %w", err)
	}
	if err := s.reconcileTerms(ctx, &created, in); err != nil {
		return domain.BlogPost{}, fmt.Errorf("service.PostService.Create: %w", err)
	}

	s.logger.InfoContext(ctx, "post created",
		"post_id", created.ID,
		"slug", created.Slug,
		"published", created.Published,
	)
	return created, nil
}

// Update validates and persists changes to an existing post, then reconciles
// its terms. Only the author or an admin may update a post.
// Returns domain.ErrNotFound if the post does not exist.
func (s *PostService) Update(ctx context.Context, sess domain.Session, id uuid.UUID, in domain.PostInput) (domain.BlogPost, error) {
	existing, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("service.PostService.Update: %w", err)
	}
	if err := requireOwner(sess, existing.AuthorID); err != nil {
		return domain.BlogPost{}, err
	}
	if err := validatePost(in); err != nil {
		return domain.BlogPost{}, err
	}

	post := postFromInput(in)
	post.ID = existing.ID
	post.AuthorID = existing.AuthorID

	updated, err := s.posts.Update(ctx, post)
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("service.PostService.Update: %w", err)
	}
	if err := s.reconcileTerms(ctx, &updated, in); err != nil {
		return domain.BlogPost{}, fmt.Errorf("service.PostService.Update: %w", err)
	}

	s.logger.InfoContext(ctx, "post updated", "post_id", updated.ID, "user_id", sess.User.ID)
	return updated, nil
}

// Delete removes a post. Only the author or an admin may delete a post.
func (s *PostService) Delete(ctx context.Context, sess domain.Session, id uuid.UUID) error {
	existing, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.PostService.Delete: %w", err)
	}
	if err := requireOwner(sess, existing.AuthorID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.PostService.Delete: %w", err)
	}

	s.logger.InfoContext(ctx, "post deleted", "post_id", id, "user_id", sess.User.ID)
	return nil
}

// reconcileTerms reconciles tags, then categories.
// A tag failure leaves the categories untouched.
func (s *PostService) reconcileTerms(ctx context.Context, post *domain.BlogPost, in domain.PostInput) error {
	tags, err := s.reconciler.Reconcile(ctx, domain.NamespaceBlogTags, post.ID, in.Tags)
	if err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	cats, err := s.reconciler.Reconcile(ctx, domain.NamespaceBlogCategories, post.ID, in.Categories)
	if err != nil {
		return fmt.Errorf("categories: %w", err)
	}
	post.Tags = tags
	post.Categories = cats
	return nil
}

// attachTerms loads tags and categories for all posts, one query per namespace.
func (s *PostService) attachTerms(ctx context.Context, posts []domain.BlogPost) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	tags, err := s.terms.ListByParents(ctx, domain.NamespaceBlogTags, ids)
	if err != nil {
		return err
	}
	cats, err := s.terms.ListByParents(ctx, domain.NamespaceBlogCategories, ids)
	if err != nil {
		return err
	}
	for i := range posts {
		posts[i].Tags = orEmpty(tags[posts[i].ID])
		posts[i].Categories = orEmpty(cats[posts[i].ID])
	}
	return nil
}

func orEmpty(terms []domain.Term) []domain.Term {
	if terms == nil {
		return []domain.Term{}
	}
	return terms
}

func postFromInput(in domain.PostInput) domain.BlogPost {
	title := strings.TrimSpace(in.Title)
	excerpt := strings.TrimSpace(in.Excerpt)
	if excerpt == "" {
		excerpt = deriveExcerpt(in.Content)
	}
	return domain.BlogPost{
		Title:         title,
		Slug:          Slugify(title),
		Content:       in.Content,
		Excerpt:       excerpt,
		FeaturedImage: strings.TrimSpace(in.FeaturedImage),
		Published:     in.Published,
	}
}

// validatePost enforces business rules common to both Create and Update.
//   - Title must be non-empty and produce a non-empty slug.
//   - A published post must have content.
//   - FeaturedImage, when set, must be an absolute http(s) URL.
func validatePost(in domain.PostInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if Slugify(title) == "" {
		return fmt.Errorf("%w: title must contain at least one letter or digit", domain.ErrValidation)
	}
	if in.Published && strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content is required to publish", domain.ErrValidation)
	}
	return validateOptionalURL("featured_image", in.FeaturedImage)
}
