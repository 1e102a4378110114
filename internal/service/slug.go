package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// nonAlphanumericRe matches every run of characters that cannot appear in a slug.
var nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a display name to its URL slug.
//
//	"My Tag!"             → "my-tag"
//	"  multiple   spaces " → "multiple-spaces"
//	"already-slug"        → "already-slug"
//	"!!!"                 → ""
//
// Callers decide what to do with an empty result.
func Slugify(name string) string {
	s := nonAlphanumericRe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// excerptLength is the number of runes kept when an excerpt is derived from content.
const excerptLength = 160

// deriveExcerpt returns the first excerptLength runes of content with
// whitespace collapsed, adding an ellipsis when the content was cut.
func deriveExcerpt(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(s) <= excerptLength {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:excerptLength])) + "…"
}
