// Package filter derives the visible subset of an in-memory tool list from a
// free-text search and tag and category selections.
//
// Every view is a full rescan of the source list. Tool lists are small
// enough that no index or incremental update is kept.
package filter

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/pkordes/validity/backend/internal/domain"
)

// State is the set of active predicates. The zero value matches everything.
//
// Predicate groups combine with AND; ids within Tags combine with OR.
type State struct {
	Query      string
	Tags       map[uuid.UUID]struct{}
	Categories map[uuid.UUID]struct{}
}

// ToggleTag adds id to the tag selection, or removes it if already selected.
func (s *State) ToggleTag(id uuid.UUID) {
	s.Tags = toggle(s.Tags, id)
}

// ToggleCategory adds id to the category selection, or removes it if already selected.
func (s *State) ToggleCategory(id uuid.UUID) {
	s.Categories = toggle(s.Categories, id)
}

// Reset clears the query and both selections.
func (s *State) Reset() {
	*s = State{}
}

// IsEmpty reports whether no predicate is active.
func (s State) IsEmpty() bool {
	return s.Query == "" && len(s.Tags) == 0 && len(s.Categories) == 0
}

// Matches reports whether tool passes all three predicates.
func (s State) Matches(tool domain.Tool) bool {
	return newMatcher(s).matches(tool)
}

// Apply returns the tools matching s in source order.
// The result is always a fresh, non-nil slice.
func Apply(tools []domain.Tool, s State) []domain.Tool {
	m := newMatcher(s)
	out := make([]domain.Tool, 0, len(tools))
	for _, t := range tools {
		if m.matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func toggle(set map[uuid.UUID]struct{}, id uuid.UUID) map[uuid.UUID]struct{} {
	if _, ok := set[id]; ok {
		delete(set, id)
		return set
	}
	if set == nil {
		set = make(map[uuid.UUID]struct{})
	}
	set[id] = struct{}{}
	return set
}

// matcher evaluates one State. A cases.Caser keeps internal state, so each
// matcher owns its own and must not be shared between goroutines.
type matcher struct {
	state State
	fold  cases.Caser
	query string
}

func newMatcher(s State) *matcher {
	m := &matcher{state: s, fold: cases.Fold()}
	if s.Query != "" {
		m.query = m.fold.String(s.Query)
	}
	return m
}

func (m *matcher) matches(t domain.Tool) bool {
	return m.searchMatches(t) && m.tagMatches(t) && m.categoryMatches(t)
}

func (m *matcher) searchMatches(t domain.Tool) bool {
	if m.query == "" {
		return true
	}
	return strings.Contains(m.fold.String(t.Name), m.query) ||
		strings.Contains(m.fold.String(t.Description), m.query)
}

func (m *matcher) tagMatches(t domain.Tool) bool {
	if len(m.state.Tags) == 0 {
		return true
	}
	for _, tag := range t.Tags {
		if _, ok := m.state.Tags[tag.ID]; ok {
			return true
		}
	}
	return false
}

func (m *matcher) categoryMatches(t domain.Tool) bool {
	if len(m.state.Categories) == 0 {
		return true
	}
	if t.CategoryID == nil {
		return false
	}
	_, ok := m.state.Categories[*t.CategoryID]
	return ok
}

// Filter pairs a source list with a State and recomputes the view on demand.
// A Filter is not safe for concurrent use.
type Filter struct {
	source []domain.Tool
	state  State
}

// New returns a Filter over source with no active predicates.
func New(source []domain.Tool) *Filter {
	return &Filter{source: source}
}

// SetSource replaces the list being filtered.
func (f *Filter) SetSource(tools []domain.Tool) { f.source = tools }

// SetQuery replaces the search query.
func (f *Filter) SetQuery(q string) { f.state.Query = q }

// ToggleTag flips id in the tag selection.
func (f *Filter) ToggleTag(id uuid.UUID) { f.state.ToggleTag(id) }

// ToggleCategory flips id in the category selection.
func (f *Filter) ToggleCategory(id uuid.UUID) { f.state.ToggleCategory(id) }

// Reset clears every predicate, restoring the unfiltered view.
func (f *Filter) Reset() { f.state.Reset() }

// State returns the active predicates.
func (f *Filter) State() State { return f.state }

// View rescans the source and returns the matching tools in source order.
func (f *Filter) View() []domain.Tool {
	return Apply(f.source, f.state)
}
