package domain

import "time"

// ExportRow is a single row in the admin tool export.
// It is a flat, denormalized view: one row per tool, with the author and
// category resolved to readable values.
//
// Tags is a slice of slugs for the tool, ordered alphabetically.
// Callers that need a joined string (e.g. CSV) should join with "|".
type ExportRow struct {
	ToolID       string
	ToolName     string
	ToolSlug     string
	AuthorID     string
	AuthorName   string // empty when the author has no profile row
	CategorySlug string // empty when the tool is uncategorised
	Pricing      string
	WebsiteURL   string
	ViewCount    int64
	LikeCount    int64
	CreatedAt    time.Time

	Tags []string
}
