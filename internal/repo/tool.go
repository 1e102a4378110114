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

// ToolRepo defines the persistence operations for Tools.
// Tag links live in TaxonomyRepo; reads here populate Category but not Tags.
type ToolRepo interface {
	// Create inserts a new tool and returns the persisted record (with
	// DB-generated id, counters and timestamps populated).
	// Returns domain.ErrConflict if the slug is already taken.
	Create(ctx context.Context, tool domain.Tool) (domain.Tool, error)

	// GetByID retrieves a single tool by its UUID primary key.
	// Returns domain.ErrNotFound if no tool with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tool, error)

	// List returns every tool, newest first.
	List(ctx context.Context) ([]domain.Tool, error)

	// ListByAuthor returns the tools owned by authorID, newest first.
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Tool, error)

	// Update overwrites the editable fields of a tool and returns the updated
	// record. Counters, author and created_at are never changed.
	// Returns domain.ErrNotFound if no tool with that ID exists.
	Update(ctx context.Context, tool domain.Tool) (domain.Tool, error)

	// Delete removes a tool by ID. Tag links go with it (ON DELETE CASCADE).
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementViews bumps view_count by one and returns the new value.
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)
}

// pgToolRepo is the Postgres implementation of ToolRepo.
type pgToolRepo struct {
	db db
}

// NewToolRepo constructs a ToolRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewToolRepo(db db) ToolRepo {
	return &pgToolRepo{db: db}
}

// toolColumns is the projection every tool read uses; it expects the tool
// row aliased as t and its category LEFT JOINed as c.
const toolColumns = `
	t.id, t.name, t.slug, t.description, t.image_url, t.website_url,
	t.author_id, t.category_id, c.name, c.slug, c.created_at,
	t.pricing, t.view_count, t.like_count, t.created_at, t.updated_at`

// Create inserts the tool row and re-selects it joined with its category,
// so the returned record has the same shape as GetByID.
func (r *pgToolRepo) Create(ctx context.Context, tool domain.Tool) (domain.Tool, error) {
	q := `
		WITH t AS (
			INSERT INTO tools (name, slug, description, image_url, website_url, author_id, category_id, pricing)
			VALUES (@name, @slug, @description, @image_url, @website_url, @author_id, @category_id, @pricing)
			RETURNING *
		)
		SELECT ` + toolColumns + `
		FROM t
		LEFT JOIN tool_categories c ON c.id = t.category_id`

	args := pgx.NamedArgs{
		"name":        tool.Name,
		"slug":        tool.Slug,
		"description": tool.Description,
		"image_url":   tool.ImageURL,
		"website_url": tool.WebsiteURL,
		"author_id":   tool.AuthorID,
		"category_id": tool.CategoryID, // nil becomes NULL
		"pricing":     string(tool.Pricing),
	}

	result, err := scanTool(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Tool{}, fmt.Errorf("repo.ToolRepo.Create: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgToolRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tool, error) {
	q := `
		SELECT ` + toolColumns + `
		FROM tools t
		LEFT JOIN tool_categories c ON c.id = t.category_id
		WHERE t.id = @id`

	result, err := scanTool(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Tool{}, fmt.Errorf("repo.ToolRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgToolRepo) List(ctx context.Context) ([]domain.Tool, error) {
	q := `
		SELECT ` + toolColumns + `
		FROM tools t
		LEFT JOIN tool_categories c ON c.id = t.category_id
		ORDER BY t.created_at DESC, t.id`

	tools, err := r.query(ctx, q, nil)
	if err != nil {
		return nil, fmt.Errorf("repo.ToolRepo.List: %w", err)
	}
	return tools, nil
}

func (r *pgToolRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Tool, error) {
	q := `
		SELECT ` + toolColumns + `
		FROM tools t
		LEFT JOIN tool_categories c ON c.id = t.category_id
		WHERE t.author_id = @author_id
		ORDER BY t.created_at DESC, t.id`

	tools, err := r.query(ctx, q, pgx.NamedArgs{"author_id": authorID})
	if err != nil {
		return nil, fmt.Errorf("repo.ToolRepo.ListByAuthor: %w", err)
	}
	return tools, nil
}

func (r *pgToolRepo) Update(ctx context.Context, tool domain.Tool) (domain.Tool, error) {
	q := `
		WITH t AS (
			UPDATE tools
			SET name        = @name,
			    slug        = @slug,
			    description = @description,
			    image_url   = @image_url,
			    website_url = @website_url,
			    category_id = @category_id,
			    pricing     = @pricing,
			    updated_at  = now()
			WHERE id = @id
			RETURNING *
		)
		SELECT ` + toolColumns + `
		FROM t
		LEFT JOIN tool_categories c ON c.id = t.category_id`

	args := pgx.NamedArgs{
		"id":          tool.ID,
		"name":        tool.Name,
		"slug":        tool.Slug,
		"description": tool.Description,
		"image_url":   tool.ImageURL,
		"website_url": tool.WebsiteURL,
		"category_id": tool.CategoryID,
		"pricing":     string(tool.Pricing),
	}

	result, err := scanTool(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Tool{}, fmt.Errorf("repo.ToolRepo.Update: %w", mapWriteError(err))
	}
	return result, nil
}

func (r *pgToolRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM tools WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ToolRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ToolRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgToolRepo) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	const q = `
		UPDATE tools
		SET view_count = view_count + 1
		WHERE id = @id
		RETURNING view_count`

	var views int64
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("repo.ToolRepo.IncrementViews: %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("repo.ToolRepo.IncrementViews: %w", err)
	}
	return views, nil
}

// query runs a multi-row tool select. Always returns a non-nil slice on success.
func (r *pgToolRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Tool, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if args == nil {
		rows, err = r.db.Query(ctx, q)
	} else {
		rows, err = r.db.Query(ctx, q, args)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tools := []domain.Tool{}
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tools = append(tools, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return tools, nil
}

// scanTool maps a row selected with toolColumns into a domain.Tool.
// This is the single wire-to-domain mapping for tools; every read path uses it.
func scanTool(s scanner) (domain.Tool, error) {
	var (
		t            domain.Tool
		id, authorID pgtype.UUID
		categoryID   pgtype.UUID
		catName      pgtype.Text
		catSlug      pgtype.Text
		catCreatedAt pgtype.Timestamptz
		pricing      string
	)

	err := s.Scan(
		&id, &t.Name, &t.Slug, &t.Description, &t.ImageURL, &t.WebsiteURL,
		&authorID, &categoryID, &catName, &catSlug, &catCreatedAt,
		&pricing, &t.ViewCount, &t.LikeCount, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tool{}, domain.ErrNotFound
		}
		return domain.Tool{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.AuthorID = uuid.UUID(authorID.Bytes)
	t.Pricing = domain.Pricing(pricing)
	t.CategoryID = fromPgUUID(categoryID)
	if t.CategoryID != nil && catName.Valid {
		t.Category = &domain.Category{
			ID:        *t.CategoryID,
			Name:      catName.String,
			Slug:      catSlug.String,
			CreatedAt: catCreatedAt.Time,
		}
	}
	t.Tags = []domain.Tag{}

	return t, nil
}
