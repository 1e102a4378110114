package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/validity/backend/internal/domain"
	"github.com/pkordes/validity/backend/internal/service"
)

// ---- helpers ---------------------------------------------------------------

func toolFixtureExport(name string, author uuid.UUID) domain.Tool {
	return domain.Tool{
		ID:         uuid.New(),
		Name:       name,
		Slug:       service.Slugify(name),
		AuthorID:   author,
		Pricing:    domain.PricingFree,
		WebsiteURL: "https://example.com",
		ViewCount:  3,
		CreatedAt:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func listingToolRepo(tools ...domain.Tool) *mockToolRepo {
	return &mockToolRepo{
		list: func(_ context.Context) ([]domain.Tool, error) { return tools, nil },
	}
}

// ---- Export ----------------------------------------------------------------

func TestExportService_Export_OneTool(t *testing.T) {
	author := uuid.New()
	tool := toolFixtureExport("Prompt Studio", author)
	tool.Category = &domain.Category{ID: uuid.New(), Name: "Writing", Slug: "writing"}
	tool.CategoryID = &tool.Category.ID
	profiles := &mockProfileRepo{
		listByIDs: func(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Profile, error) {
			assert.Equal(t, []uuid.UUID{author}, ids)
			return map[uuid.UUID]domain.Profile{author: {ID: author, Username: "ada"}}, nil
		},
	}
	svc := service.NewExportService(listingToolRepo(tool), newFakeTaxonomyRepo(), profiles)

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, tool.ID.String(), rows[0].ToolID)
	assert.Equal(t, "Prompt Studio", rows[0].ToolName)
	assert.Equal(t, "prompt-studio", rows[0].ToolSlug)
	assert.Equal(t, "ada", rows[0].AuthorName)
	assert.Equal(t, "writing", rows[0].CategorySlug)
	assert.Equal(t, "free", rows[0].Pricing)
	assert.Equal(t, int64(3), rows[0].ViewCount)
	assert.Empty(t, rows[0].Tags)
}

func TestExportService_Export_TagsSortedBySlug(t *testing.T) {
	tool := toolFixtureExport("Tagged", uuid.New())
	terms := newFakeTaxonomyRepo()
	_, err := service.NewReconciler(terms).Reconcile(context.Background(), domain.NamespaceToolTags, tool.ID, []string{"Vision", "Agents", "NLP"})
	require.NoError(t, err)
	svc := service.NewExportService(listingToolRepo(tool), terms, &mockProfileRepo{})

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"agents", "nlp", "vision"}, rows[0].Tags)
}

func TestExportService_Export_AuthorWithoutProfile(t *testing.T) {
	tool := toolFixtureExport("Orphan", uuid.New())
	svc := service.NewExportService(listingToolRepo(tool), newFakeTaxonomyRepo(), &mockProfileRepo{})

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].AuthorName)
	assert.Empty(t, rows[0].CategorySlug)
}

func TestExportService_Export_AuthorsLoadedOnce(t *testing.T) {
	author := uuid.New()
	calls := 0
	profiles := &mockProfileRepo{
		listByIDs: func(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Profile, error) {
			calls++
			assert.Len(t, ids, 1, "author ids are deduplicated")
			return map[uuid.UUID]domain.Profile{}, nil
		},
	}
	svc := service.NewExportService(
		listingToolRepo(toolFixtureExport("A", author), toolFixtureExport("B", author)),
		newFakeTaxonomyRepo(), profiles,
	)

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 1, calls)
}

func TestExportService_Export_NoTools(t *testing.T) {
	svc := service.NewExportService(listingToolRepo(), newFakeTaxonomyRepo(), &mockProfileRepo{})

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestExportService_Export_ToolRepoError(t *testing.T) {
	boom := errors.New("db down")
	tools := &mockToolRepo{
		list: func(_ context.Context) ([]domain.Tool, error) { return nil, boom },
	}
	svc := service.NewExportService(tools, newFakeTaxonomyRepo(), &mockProfileRepo{})

	_, err := svc.Export(context.Background())

	assert.ErrorIs(t, err, boom)
}
