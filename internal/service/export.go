package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/pkordes/validity/backend/internal/domain"
	"github.com/pkordes/validity/backend/internal/repo"
)

// ExportService assembles a flat export of every tool with its author,
// category and tags.
type ExportService struct {
	tools    repo.ToolRepo
	terms    repo.TaxonomyRepo
	profiles repo.ProfileRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(tools repo.ToolRepo, terms repo.TaxonomyRepo, profiles repo.ProfileRepo) *ExportService {
	return &ExportService{tools: tools, terms: terms, profiles: profiles}
}

// Export returns one ExportRow per tool, newest first.
// Tags are slugs in alphabetical order. Always returns a non-nil slice.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	tools, err := s.tools.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	rows := make([]domain.ExportRow, 0, len(tools))
	if len(tools) == 0 {
		return rows, nil
	}

	toolIDs := make([]uuid.UUID, len(tools))
	authorIDs := make([]uuid.UUID, 0, len(tools))
	seenAuthor := make(map[uuid.UUID]struct{}, len(tools))
	for i, t := range tools {
		toolIDs[i] = t.ID
		if _, ok := seenAuthor[t.AuthorID]; !ok {
			seenAuthor[t.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, t.AuthorID)
		}
	}

	tagsByTool, err := s.terms.ListByParents(ctx, domain.NamespaceToolTags, toolIDs)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: tags: %w", err)
	}
	authors, err := s.profiles.ListByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: authors: %w", err)
	}

	for _, t := range tools {
		row := domain.ExportRow{
			ToolID:     t.ID.String(),
			ToolName:   t.Name,
			ToolSlug:   t.Slug,
			AuthorID:   t.AuthorID.String(),
			Pricing:    string(t.Pricing),
			WebsiteURL: t.WebsiteURL,
			ViewCount:  t.ViewCount,
			LikeCount:  t.LikeCount,
			CreatedAt:  t.CreatedAt,
			Tags:       tagSlugs(tagsByTool[t.ID]),
		}
		if author, ok := authors[t.AuthorID]; ok {
			row.AuthorName = author.Username
		}
		if t.Category != nil {
			row.CategorySlug = t.Category.Slug
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func tagSlugs(tags []domain.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Slug
	}
	sort.Strings(out)
	return out
}
