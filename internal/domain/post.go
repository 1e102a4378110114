package domain

import (
	"time"

	"github.com/google/uuid"
)

// BlogPost is an article written by a developer or admin.
// Published gates visibility on the public blog listing; drafts are visible
// only to their author and to admins.
// PublishedAt is set the first time the post is published and kept afterwards.
type BlogPost struct {
	ID            uuid.UUID
	Title         string
	Slug          string
	Content       string
	Excerpt       string
	FeaturedImage string
	AuthorID      uuid.UUID
	Published     bool
	PublishedAt   *time.Time
	Tags          []Tag
	Categories    []Category
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PostInput carries the editable fields of a blog post from a create or edit form.
type PostInput struct {
	Title         string
	Content       string
	Excerpt       string
	FeaturedImage string
	Published     bool
	Tags          []string
	Categories    []string
}
