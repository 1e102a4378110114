package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/validity/backend/internal/domain"
	"github.com/pkordes/validity/backend/internal/repo"
)

// Reconciler keeps the terms linked to a tool or blog post in step with the
// names submitted on its form. It is shared by every namespace.
//
// Reconciliation runs in two phases:
//  1. Resolve: every distinct name is looked up, or created if missing,
//     concurrently. Any failure aborts before links are touched.
//  2. Link: the parent's links are replaced in one transaction.
//
// Terms created in phase 1 are kept when a later name fails; they are valid,
// unlinked rows and are reused by the next save.
type Reconciler struct {
	terms repo.TaxonomyRepo
	newID func() uuid.UUID
}

// NewReconciler constructs a Reconciler backed by the provided TaxonomyRepo.
func NewReconciler(terms repo.TaxonomyRepo) *Reconciler {
	return &Reconciler{terms: terms, newID: uuid.New}
}

// Reconcile makes the links of parentID in ns mirror names exactly and
// returns the linked terms in first-seen name order.
// Names are trimmed, blanks are dropped and exact duplicates collapse.
// An empty names list removes every link.
func (r *Reconciler) Reconcile(ctx context.Context, ns domain.Namespace, parentID uuid.UUID, names []string) ([]domain.Term, error) {
	if parentID == uuid.Nil {
		return nil, fmt.Errorf("%w: parent id is required", domain.ErrValidation)
	}

	terms, err := r.Resolve(ctx, ns, names)
	if err != nil {
		return nil, fmt.Errorf("service.Reconciler.Reconcile: %w", err)
	}

	ids := make([]uuid.UUID, len(terms))
	for i, t := range terms {
		ids[i] = t.ID
	}
	if err := r.terms.ReplaceLinks(ctx, ns, parentID, ids); err != nil {
		return nil, fmt.Errorf("service.Reconciler.Reconcile: %w", err)
	}
	return terms, nil
}

// Resolve returns one term per distinct name, creating the ones that do not
// exist yet. Lookups run concurrently; the first failure cancels the rest.
// Always returns a non-nil slice on success.
func (r *Reconciler) Resolve(ctx context.Context, ns domain.Namespace, names []string) ([]domain.Term, error) {
	distinct := distinctNames(names)
	terms := make([]domain.Term, len(distinct))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range distinct {
		g.Go(func() error {
			term, err := r.findOrCreate(gctx, ns, name)
			if err != nil {
				return fmt.Errorf("resolve %q: %w", name, err)
			}
			terms[i] = term
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return terms, nil
}

// findOrCreate reuses the term with exactly this name, or creates it.
// A name that slugifies to nothing gets its own pre-generated id as slug.
func (r *Reconciler) findOrCreate(ctx context.Context, ns domain.Namespace, name string) (domain.Term, error) {
	term, err := r.terms.FindByName(ctx, ns, name)
	if err == nil {
		return term, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Term{}, err
	}

	candidate := domain.Term{Name: name, Slug: Slugify(name)}
	if candidate.Slug == "" {
		candidate.ID = r.newID()
		candidate.Slug = candidate.ID.String()
	}
	return r.terms.Create(ctx, ns, candidate)
}

// distinctNames trims names, drops blanks and removes exact duplicates,
// keeping first-seen order.
func distinctNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// TaxonomyService serves the tag and category pickers.
type TaxonomyService struct {
	terms repo.TaxonomyRepo
}

// NewTaxonomyService constructs a TaxonomyService backed by the provided TaxonomyRepo.
func NewTaxonomyService(terms repo.TaxonomyRepo) *TaxonomyService {
	return &TaxonomyService{terms: terms}
}

// List returns the terms of ns whose slug starts with the slugified prefix.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TaxonomyService) List(ctx context.Context, ns domain.Namespace, prefix string) ([]domain.Term, error) {
	if !ns.Valid() {
		return nil, fmt.Errorf("%w: unknown namespace %q", domain.ErrValidation, ns)
	}
	terms, err := s.terms.List(ctx, ns, Slugify(prefix))
	if err != nil {
		return nil, fmt.Errorf("service.TaxonomyService.List: %w", err)
	}
	if terms == nil {
		return []domain.Term{}, nil
	}
	return terms, nil
}
