// Package listview implements the search, filter and paging pipeline shared by
// every list screen of the console.
package listview

import (
	"sort"
	"strings"
)

// AllValue marks a facet select left on "Todos".
const AllValue = "todos"

// Predicate reports whether a record is visible.
type Predicate[T any] func(T) bool

// Schema describes how a record type is searched, filtered and ordered.
type Schema[T any] struct {
	// Searchable returns the display strings the search term is matched against.
	// Dates must be the formatted labels users see, not raw timestamps.
	Searchable func(T) []string
	// Facets maps a filter name to a matcher for the selected value.
	Facets map[string]func(rec T, value string) bool
	// Less orders the filtered list; nil keeps source order.
	Less func(a, b T) bool
}

// NormalizeTerm trims and lower-cases a search term.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// active drops empty, "todos" and unknown filters.
func (s Schema[T]) active(filters map[string]string) map[string]string {
	out := make(map[string]string, len(filters))
	for name, value := range filters {
		value = strings.TrimSpace(value)
		if value == "" || strings.EqualFold(value, AllValue) {
			continue
		}
		if _, ok := s.Facets[name]; !ok {
			continue
		}
		out[name] = value
	}
	return out
}

// BuildPredicate combines the search term and the categorical filters.
//
// A record passes when every active filter matches and, for a non-empty term,
// at least one searchable field contains the lower-cased term. Matching is
// plain lower-casing; accents are not folded.
func (s Schema[T]) BuildPredicate(term string, filters map[string]string) Predicate[T] {
	needle := NormalizeTerm(term)
	facets := s.active(filters)
	if needle == "" && len(facets) == 0 {
		return func(T) bool { return true }
	}
	return func(rec T) bool {
		for name, value := range facets {
			if !s.Facets[name](rec, value) {
				return false
			}
		}
		if needle == "" {
			return true
		}
		if s.Searchable == nil {
			return false
		}
		for _, field := range s.Searchable(rec) {
			if strings.Contains(strings.ToLower(field), needle) {
				return true
			}
		}
		return false
	}
}

// Filter returns the records accepted by pred, ordered by s.Less when set.
// The source slice is never modified.
func (s Schema[T]) Filter(items []T, pred Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	if s.Less != nil {
		sort.SliceStable(out, func(i, j int) bool { return s.Less(out[i], out[j]) })
	}
	return out
}

// EqualFold builds a facet matcher comparing one string field case-insensitively.
func EqualFold[T any](field func(T) string) func(T, string) bool {
	return func(rec T, value string) bool {
		return strings.EqualFold(strings.TrimSpace(field(rec)), value)
	}
}
