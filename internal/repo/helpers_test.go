package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/validity/backend/internal/domain"
	"github.com/pkordes/validity/backend/internal/repo"
	"github.com/pkordes/validity/backend/testutil"
)

// testRepos bundles every repo backed by the same transaction, so tests can
// build full hierarchies (tool → tags, post → categories) that are rolled
// back together.
type testRepos struct {
	tools      repo.ToolRepo
	posts      repo.PostRepo
	profiles   repo.ProfileRepo
	taxonomies repo.TaxonomyRepo
}

func newTestRepos(t *testing.T) testRepos {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return testRepos{
		tools:      repo.NewToolRepo(tx),
		posts:      repo.NewPostRepo(tx),
		profiles:   repo.NewProfileRepo(tx),
		taxonomies: repo.NewTaxonomyRepo(tx),
	}
}

// toolFixture returns a valid tool with a unique slug.
func toolFixture(authorID uuid.UUID) domain.Tool {
	suffix := uuid.NewString()[:8]
	return domain.Tool{
		Name:        "Prompt Lab " + suffix,
		Slug:        "prompt-lab-" + suffix,
		Description: "Iterate on prompts side by side",
		WebsiteURL:  "https://promptlab.example.com",
		AuthorID:    authorID,
		Pricing:     domain.PricingFreemium,
	}
}

func mustCreateTool(t *testing.T, tools repo.ToolRepo) domain.Tool {
	t.Helper()
	created, err := tools.Create(context.Background(), toolFixture(uuid.New()))
	require.NoError(t, err, "mustCreateTool")
	return created
}

// postFixture returns a valid draft post with a unique slug.
func postFixture(authorID uuid.UUID) domain.BlogPost {
	suffix := uuid.NewString()[:8]
	return domain.BlogPost{
		Title:    "Shipping an agent " + suffix,
		Slug:     "shipping-an-agent-" + suffix,
		Content:  "Lessons learned.",
		AuthorID: authorID,
	}
}

func mustCreatePost(t *testing.T, posts repo.PostRepo, published bool) domain.BlogPost {
	t.Helper()
	p := postFixture(uuid.New())
	p.Published = published
	created, err := posts.Create(context.Background(), p)
	require.NoError(t, err, "mustCreatePost")
	return created
}

func mustCreateTerm(t *testing.T, taxonomies repo.TaxonomyRepo, ns domain.Namespace, name, slug string) domain.Term {
	t.Helper()
	term, err := taxonomies.Create(context.Background(), ns, domain.Term{Name: name, Slug: slug})
	require.NoError(t, err, "mustCreateTerm")
	return term
}
