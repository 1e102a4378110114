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

// TaxonomyRepo defines the persistence operations for tag and category terms
// and the join tables linking them to tools and blog posts.
// Every method is scoped to a domain.Namespace; namespaces never share rows.
type TaxonomyRepo interface {
	// FindByName returns the term with exactly this name.
	// Returns domain.ErrNotFound if no such term exists.
	FindByName(ctx context.Context, ns domain.Namespace, name string) (domain.Term, error)

	// Create inserts a term, or returns the existing row if the name is
	// already taken. A zero term.ID lets the database generate the id.
	Create(ctx context.Context, ns domain.Namespace, term domain.Term) (domain.Term, error)

	// List returns all terms whose slug starts with prefix, ordered by name.
	// If prefix is empty, all terms are returned.
	List(ctx context.Context, ns domain.Namespace, prefix string) ([]domain.Term, error)

	// DeleteLinks removes every link between parentID and terms of ns.
	DeleteLinks(ctx context.Context, ns domain.Namespace, parentID uuid.UUID) error

	// InsertLinks links each term id to parentID. Duplicate ids and links
	// that already exist are ignored.
	InsertLinks(ctx context.Context, ns domain.Namespace, parentID uuid.UUID, termIDs []uuid.UUID) error

	// ReplaceLinks runs DeleteLinks then InsertLinks in one transaction, so
	// readers never observe the parent without its links.
	ReplaceLinks(ctx context.Context, ns domain.Namespace, parentID uuid.UUID, termIDs []uuid.UUID) error

	// ListByParent returns all terms linked to parentID, ordered by name.
	ListByParent(ctx context.Context, ns domain.Namespace, parentID uuid.UUID) ([]domain.Term, error)

	// ListByParents returns the linked terms for each of parentIDs in one query.
	// Parents without links are absent from the map.
	ListByParents(ctx context.Context, ns domain.Namespace, parentIDs []uuid.UUID) (map[uuid.UUID][]domain.Term, error)
}

// taxonomyTables names the tables and columns behind one namespace.
// links is empty for namespaces without a join table.
type taxonomyTables struct {
	terms     string
	links     string
	parentCol string
	termCol   string
}

// namespaceTables is the only source of table names interpolated into SQL.
var namespaceTables = map[domain.Namespace]taxonomyTables{
	domain.NamespaceToolTags:       {terms: "tool_tags", links: "tool_tag_links", parentCol: "tool_id", termCol: "tag_id"},
	domain.NamespaceToolCategories: {terms: "tool_categories"},
	domain.NamespaceBlogTags:       {terms: "blog_tags", links: "blog_post_tags", parentCol: "post_id", termCol: "tag_id"},
	domain.NamespaceBlogCategories: {terms: "blog_categories", links: "blog_post_categories", parentCol: "post_id", termCol: "category_id"},
}

func tablesFor(ns domain.Namespace) (taxonomyTables, error) {
	t, ok := namespaceTables[ns]
	if !ok {
		return taxonomyTables{}, fmt.Errorf("%w: unknown namespace %q", domain.ErrValidation, ns)
	}
	return t, nil
}

func linkTablesFor(ns domain.Namespace) (taxonomyTables, error) {
	t, err := tablesFor(ns)
	if err != nil {
		return taxonomyTables{}, err
	}
	if t.links == "" {
		return taxonomyTables{}, fmt.Errorf("%w: namespace %q has no link table", domain.ErrValidation, ns)
	}
	return t, nil
}

// pgTaxonomyRepo is the Postgres implementation of TaxonomyRepo.
type pgTaxonomyRepo struct {
	db db
}

// NewTaxonomyRepo constructs a TaxonomyRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTaxonomyRepo(db db) TaxonomyRepo {
	return &pgTaxonomyRepo{db: db}
}

func (r *pgTaxonomyRepo) FindByName(ctx context.Context, ns domain.Namespace, name string) (domain.Term, error) {
	t, err := tablesFor(ns)
	if err != nil {
		return domain.Term{}, fmt.Errorf("repo.TaxonomyRepo.FindByName: %w", err)
	}
	q := fmt.Sprintf(`
		SELECT id, name, slug, created_at
		FROM %s
		WHERE name = @name`, t.terms)

	term, err := scanTerm(r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name}))
	if err != nil {
		return domain.Term{}, fmt.Errorf("repo.TaxonomyRepo.FindByName: %w", err)
	}
	return term, nil
}

// Create inserts a term or returns the existing row on name conflict.
// DO UPDATE SET makes RETURNING yield the existing row on conflict;
// DO NOTHING would return no row.
func (r *pgTaxonomyRepo) Create(ctx context.Context, ns domain.Namespace, term domain.Term) (domain.Term, error) {
	t, err := tablesFor(ns)
	if err != nil {
		return domain.Term{}, fmt.Errorf("repo.TaxonomyRepo.Create: %w", err)
	}
	q := fmt.Sprintf(`
		INSERT INTO %s (id, name, slug)
		VALUES (COALESCE(@id::uuid, gen_random_uuid()), @name, @slug)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, slug, created_at`, t.terms)

	var id *uuid.UUID
	if term.ID != uuid.Nil {
		id = &term.ID
	}
	args := pgx.NamedArgs{"id": id, "name": term.Name, "slug": term.Slug}

	created, err := scanTerm(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Term{}, fmt.Errorf("repo.TaxonomyRepo.Create: %w", mapWriteError(err))
	}
	return created, nil
}

func (r *pgTaxonomyRepo) List(ctx context.Context, ns domain.Namespace, prefix string) ([]domain.Term, error) {
	t, err := tablesFor(ns)
	if err != nil {
		return nil, fmt.Errorf("repo.TaxonomyRepo.List: %w", err)
	}
	q := fmt.Sprintf(`
		SELECT id, name, slug, created_at
		FROM %s
		WHERE slug LIKE @prefix || '%%'
		ORDER BY name`, t.terms)

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"prefix": prefix})
	if err != nil {
		return nil, fmt.Errorf("repo.TaxonomyRepo.List: %w", err)
	}
	defer rows.Close()

	terms := []domain.Term{}
	for rows.Next() {
		term, err := scanTerm(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TaxonomyRepo.List: scan: %w", err)
		}
		terms = append(terms, term)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TaxonomyRepo.List: rows: %w", err)
	}
	return terms, nil
}

func (r *pgTaxonomyRepo) DeleteLinks(ctx context.Context, ns domain.Namespace, parentID uuid.UUID) error {
	t, err := linkTablesFor(ns)
	if err != nil {
		return fmt.Errorf("repo.TaxonomyRepo.DeleteLinks: %w", err)
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE %s = @parent_id`, t.links, t.parentCol)

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"parent_id": parentID}); err != nil {
		return fmt.Errorf("repo.TaxonomyRepo.DeleteLinks: %w", err)
	}
	return nil
}

// InsertLinks writes all links in a single statement by unnesting the id array.
func (r *pgTaxonomyRepo) InsertLinks(ctx context.Context, ns domain.Namespace, parentID uuid.UUID, termIDs []uuid.UUID) error {
	t, err := linkTablesFor(ns)
	if err != nil {
		return fmt.Errorf("repo.TaxonomyRepo.InsertLinks: %w", err)
	}
	if len(termIDs) == 0 {
		return nil
	}
	q := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s)
		SELECT @parent_id, term_id
		FROM unnest(@term_ids::uuid[]) AS term_id
		ON CONFLICT (%[2]s, %[3]s) DO NOTHING`, t.links, t.parentCol, t.termCol)

	args := pgx.NamedArgs{"parent_id": parentID, "term_ids": termIDs}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.TaxonomyRepo.InsertLinks: %w", mapWriteError(err))
	}
	return nil
}

func (r *pgTaxonomyRepo) ReplaceLinks(ctx context.Context, ns domain.Namespace, parentID uuid.UUID, termIDs []uuid.UUID) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		inTx := &pgTaxonomyRepo{db: tx}
		if err := inTx.DeleteLinks(ctx, ns, parentID); err != nil {
			return err
		}
		return inTx.InsertLinks(ctx, ns, parentID, termIDs)
	})
	if err != nil {
		return fmt.Errorf("repo.TaxonomyRepo.ReplaceLinks: %w", err)
	}
	return nil
}

func (r *pgTaxonomyRepo) ListByParent(ctx context.Context, ns domain.Namespace, parentID uuid.UUID) ([]domain.Term, error) {
	byParent, err := r.ListByParents(ctx, ns, []uuid.UUID{parentID})
	if err != nil {
		return nil, fmt.Errorf("repo.TaxonomyRepo.ListByParent: %w", err)
	}
	if terms, ok := byParent[parentID]; ok {
		return terms, nil
	}
	return []domain.Term{}, nil
}

func (r *pgTaxonomyRepo) ListByParents(ctx context.Context, ns domain.Namespace, parentIDs []uuid.UUID) (map[uuid.UUID][]domain.Term, error) {
	t, err := linkTablesFor(ns)
	if err != nil {
		return nil, fmt.Errorf("repo.TaxonomyRepo.ListByParents: %w", err)
	}
	out := make(map[uuid.UUID][]domain.Term)
	if len(parentIDs) == 0 {
		return out, nil
	}
	q := fmt.Sprintf(`
		SELECT l.%[3]s, t.id, t.name, t.slug, t.created_at
		FROM %[1]s t
		JOIN %[2]s l ON l.%[4]s = t.id
		WHERE l.%[3]s = ANY(@parent_ids::uuid[])
		ORDER BY t.name`, t.terms, t.links, t.parentCol, t.termCol)

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"parent_ids": parentIDs})
	if err != nil {
		return nil, fmt.Errorf("repo.TaxonomyRepo.ListByParents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			parent pgtype.UUID
			id     pgtype.UUID
			term   domain.Term
		)
		if err := rows.Scan(&parent, &id, &term.Name, &term.Slug, &term.CreatedAt); err != nil {
			return nil, fmt.Errorf("repo.TaxonomyRepo.ListByParents: scan: %w", err)
		}
		term.ID = uuid.UUID(id.Bytes)
		pid := uuid.UUID(parent.Bytes)
		out[pid] = append(out[pid], term)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TaxonomyRepo.ListByParents: rows: %w", err)
	}
	return out, nil
}

// scanTerm maps a single database row into a domain.Term.
func scanTerm(s scanner) (domain.Term, error) {
	var (
		t  domain.Term
		id pgtype.UUID
	)
	err := s.Scan(&id, &t.Name, &t.Slug, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Term{}, domain.ErrNotFound
		}
		return domain.Term{}, err
	}
	t.ID = uuid.UUID(id.Bytes)
	return t, nil
}
