// Package domain contains the core data types for the Validity API.
// This package depends only on google/uuid and is imported by every other
// internal package (repo, service, filter, auth, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Pricing is the commercial model advertised for a tool.
type Pricing string

const (
	PricingFree     Pricing = "free"
	PricingFreemium Pricing = "freemium"
	PricingPaid     Pricing = "paid"
	PricingContact  Pricing = "contact"
)

// Valid reports whether p is one of the known pricing models.
func (p Pricing) Valid() bool {
	switch p {
	case PricingFree, PricingFreemium, PricingPaid, PricingContact:
		return true
	}
	return false
}

// Tool is an AI tool listed in the directory.
// A tool is owned by its author and may only be changed by that author or
// an admin. Every stored tool is publicly visible.
// ViewCount and LikeCount are counters maintained outside the save path.
type Tool struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string
	ImageURL    string
	WebsiteURL  string
	AuthorID    uuid.UUID
	CategoryID  *uuid.UUID // nil when the tool is uncategorised
	Category    *Category  // populated on reads when CategoryID is set
	Tags        []Tag
	Pricing     Pricing
	ViewCount   int64
	LikeCount   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasTag reports whether any of the tool's tags has the given id.
func (t Tool) HasTag(id uuid.UUID) bool {
	for _, tag := range t.Tags {
		if tag.ID == id {
			return true
		}
	}
	return false
}

// ToolInput carries the editable fields of a tool from a create or edit form.
// Category and Tags are free-text names; the service resolves them to terms,
// creating any that do not exist yet.
type ToolInput struct {
	Name        string
	Description string
	ImageURL    string
	WebsiteURL  string
	Pricing     Pricing
	Category    string
	Tags        []string
}
