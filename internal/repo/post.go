package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/validity/backend/internal/domain"
)

// PostRepo defines the persistence operations for blog posts.
// Tag and category links live in TaxonomyRepo.
type PostRepo interface {
	// Create inserts a new post and returns the persisted record.
	// Returns domain.ErrConflict if the slug is already taken.
	Create(ctx context.Context, post domain.BlogPost) (domain.BlogPost, error)

	// GetByID retrieves a post by primary key, published or not.
	// Returns domain.ErrNotFound if no post with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.BlogPost, error)

	// GetBySlug retrieves a post by slug, published or not.
	// Returns domain.ErrNotFound if no post with that slug exists.
	GetBySlug(ctx context.Context, slug string) (domain.BlogPost, error)

	// ListPublishedPaged returns one page of published posts, most recently
	// published first, and the total number of published posts.
	ListPublishedPaged(ctx context.Context, p domain.PaginationParams) ([]domain.BlogPost, int64, error)

	// ListByAuthor returns every post by authorID including drafts, newest first.
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.BlogPost, error)

	// Update overwrites the editable fields of a post. published_at is set the
	// first time published becomes true and never cleared.
	// Returns domain.ErrNotFound if no post with that ID exists.
	Update(ctx context.Context, post domain.BlogPost) (domain.BlogPost, error)

	// Delete removes a post by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgPostRepo is the Postgres implementation of PostRepo.
type pgPostRepo struct {
	db db
}

// NewPostRepo constructs a PostRepo backed by the provided db connection.
func NewPostRepo(db db) PostRepo {
	return &pgPostRepo{db: db}
}

const postColumns = `
	id, title, slug, content, excerpt, featured_image, author_id,
	published, published_at, created_at, updated_at`

func (r *pgPostRepo) Create(ctx context.Context, post domain.BlogPost) (domain.BlogPost, error) {
	q := `
		INSERT INTO blog_posts (title, slug, content, excerpt, featured_image, author_id, published, published_at)
		VALUES (@title, @slug, @content, @excerpt, @featured_image, @author_id, @published,
		        CASE WHEN @published THEN now() END)
		RETURNING ` + postColumns

	args := pgx.NamedArgs{
		"title":          post.Title,
		"slug":           post.Slug,
		"content":        post.Content,
		"excerpt":        post.Excerpt,
		"featured_image": post.FeaturedImage,
		"author_id":      post.AuthorID,
		"published":      post.Published,
	}

	result, err := scanPost(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("repo.PostRepo.Create: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgPostRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.BlogPost, error) {
	q := `SELECT ` + postColumns + ` FROM blog_posts WHERE id = @id`

	result, err := scanPost(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("repo.PostRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgPostRepo) GetBySlug(ctx context.Context, slug string) (domain.BlogPost, error) {
	q := `SELECT ` + postColumns + ` FROM blog_posts WHERE slug = @slug`

	result, err := scanPost(r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": slug}))
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("repo.PostRepo.GetBySlug: %w", err)
	}
	return result, nil
}

func (r *pgPostRepo) ListPublishedPaged(ctx context.Context, p domain.PaginationParams) ([]domain.BlogPost, int64, error) {
	const countQ = `SELECT count(*) FROM blog_posts WHERE published`

	var total int64
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.PostRepo.ListPublishedPaged: count: %w", err)
	}

	q := `
		SELECT ` + postColumns + `
		FROM blog_posts
		WHERE published
		ORDER BY published_at DESC, id
		LIMIT @limit OFFSET @offset`

	posts, err := r.query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.PostRepo.ListPublishedPaged: %w", err)
	}
	return posts, total, nil
}

func (r *pgPostRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.BlogPost, error) {
	q := `
		SELECT ` + postColumns + `
		FROM blog_posts
		WHERE author_id = @author_id
		ORDER BY created_at DESC, id`

	posts, err := r.query(ctx, q, pgx.NamedArgs{"author_id": authorID})
	if err != nil {
		return nil, fmt.Errorf("repo.PostRepo.ListByAuthor: %w", err)
	}
	return posts, nil
}

func (r *pgPostRepo) Update(ctx context.Context, post domain.BlogPost) (domain.BlogPost, error) {
	q := `
		UPDATE blog_posts
		SET title          = @title,
		    slug           = @slug,
		    content        = @content,
		    excerpt        = @excerpt,
		    featured_image = @featured_image,
		    published      = @published,
		    published_at   = CASE
		                         WHEN @published AND published_at IS NULL THEN now()
		                         ELSE published_at
		                     END,
		    updated_at     = now()
		WHERE id = @id
		RETURNING ` + postColumns

	args := pgx.NamedArgs{
		"id":             post.ID,
		"title":          post.Title,
		"slug":           post.Slug,
		"content":        post.Content,
		"excerpt":        post.Excerpt,
		"featured_image": post.FeaturedImage,
		"published":      post.Published,
	}

	result, err := scanPost(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("repo.PostRepo.Update: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM blog_posts WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.PostRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PostRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgPostRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.BlogPost, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []domain.BlogPost{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return posts, nil
}

// scanPost maps a row selected with postColumns into a domain.BlogPost.
func scanPost(s scanner) (domain.BlogPost, error) {
	var (
		p            domain.BlogPost
		id, authorID pgtype.UUID
		publishedAt  pgtype.Timestamptz
	)

	err := s.Scan(
		&id, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.FeaturedImage, &authorID,
		&p.Published, &publishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BlogPost{}, domain.ErrNotFound
		}
		return domain.BlogPost{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.AuthorID = uuid.UUID(authorID.Bytes)
	if publishedAt.Valid {
		at := publishedAt.Time
		p.PublishedAt = &at
	}
	p.Tags = []domain.Tag{}
	p.Categories = []domain.Category{}

	return p, nil
}
