package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/validity/backend/internal/domain"
)

func TestNamespaceSelectors(t *testing.T) {
	ns, ok := domain.TagNamespace("blog")
	assert.True(t, ok)
	assert.Equal(t, domain.NamespaceBlogTags, ns)

	ns, ok = domain.CategoryNamespace("tool")
	assert.True(t, ok)
	assert.Equal(t, domain.NamespaceToolCategories, ns)

	_, ok = domain.TagNamespace("video")
	assert.False(t, ok)
}

func TestNamespace_Valid(t *testing.T) {
	for _, ns := range []domain.Namespace{
		domain.NamespaceBlogTags, domain.NamespaceBlogCategories,
		domain.NamespaceToolTags, domain.NamespaceToolCategories,
	} {
		assert.True(t, ns.Valid(), ns)
	}
	assert.False(t, domain.Namespace("tags").Valid())
}
