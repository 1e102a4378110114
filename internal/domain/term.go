package domain

import (
	"time"

	"github.com/google/uuid"
)

// Term is a named label in one taxonomy namespace. Tags and categories share
// this shape and differ only in which tables back them.
// Identity within a namespace is the exact, case-sensitive Name. Slug is
// derived from the name when the term is first created and never changes.
type Term struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Tag is a free-form label attached to tools or blog posts.
type Tag = Term

// Category is a coarse grouping for tools or blog posts.
type Category = Term

// Namespace selects the term table (and link table, where one exists)
// a taxonomy operation works against. Blog and tool taxonomies never share rows.
type Namespace string

const (
	NamespaceBlogTags       Namespace = "blog_tags"
	NamespaceBlogCategories Namespace = "blog_categories"
	NamespaceToolTags       Namespace = "tool_tags"

	// NamespaceToolCategories has no link table: a tool references at most
	// one category through its own category_id column.
	NamespaceToolCategories Namespace = "tool_categories"
)

// Valid reports whether n is one of the known namespaces.
func (n Namespace) Valid() bool {
	switch n {
	case NamespaceBlogTags, NamespaceBlogCategories, NamespaceToolTags, NamespaceToolCategories:
		return true
	}
	return false
}

// TagNamespace maps the public "blog"/"tool" selector used by the API to the
// tag namespace for that entity type.
func TagNamespace(entity string) (Namespace, bool) {
	switch entity {
	case "blog":
		return NamespaceBlogTags, true
	case "tool":
		return NamespaceToolTags, true
	}
	return "", false
}

// CategoryNamespace is the category counterpart of TagNamespace.
func CategoryNamespace(entity string) (Namespace, bool) {
	switch entity {
	case "blog":
		return NamespaceBlogCategories, true
	case "tool":
		return NamespaceToolCategories, true
	}
	return "", false
}
