package listview

import (
	"net/url"
	"strconv"
	"strings"
)

// State is what a list screen remembers between renders.
type State struct {
	Search  string
	Filters map[string]string
	Page    int
}

// StateFromQuery reads q, page and the named facets from a query string.
func StateFromQuery(q url.Values, facets ...string) State {
	st := State{Search: q.Get("q"), Filters: map[string]string{}, Page: DefaultPage}
	for _, name := range facets {
		if v := strings.TrimSpace(q.Get(name)); v != "" {
			st.Filters[name] = v
		}
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil {
		st.Page = p
	}
	return st
}

// Query encodes the state for pager links.
func (s State) Query(page int) string {
	v := url.Values{}
	if s.Search != "" {
		v.Set("q", s.Search)
	}
	for name, value := range s.Filters {
		if value != "" {
			v.Set(name, value)
		}
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	return v.Encode()
}

// Filter returns the selected value of a facet, or AllValue.
func (s State) Filter(name string) string {
	if v, ok := s.Filters[name]; ok && v != "" {
		return v
	}
	return AllValue
}

// Engine composes predicate filtering and pagination over one source list.
// It lives for one request, so every View filters the source again.
type Engine[T any] struct {
	schema Schema[T]
	source []T
	size   int
	state  State
}

func NewEngine[T any](schema Schema[T], source []T, size int) *Engine[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Engine[T]{
		schema: schema,
		source: source,
		size:   size,
		state:  State{Filters: map[string]string{}, Page: DefaultPage},
	}
}

// SetSearch changes the term and goes back to the first page.
func (e *Engine[T]) SetSearch(term string) {
	e.state.Search = term
	e.state.Page = DefaultPage
}

// SetFilter changes one facet and goes back to the first page.
func (e *Engine[T]) SetFilter(name, value string) {
	if e.state.Filters == nil {
		e.state.Filters = map[string]string{}
	}
	e.state.Filters[name] = value
	e.state.Page = DefaultPage
}

// Restore adopts a state decoded from a request, page included.
func (e *Engine[T]) Restore(st State) {
	if st.Filters == nil {
		st.Filters = map[string]string{}
	}
	e.state = st
}

func (e *Engine[T]) State() State {
	return e.state
}

// Filtered returns every record that passes the current search and filters.
func (e *Engine[T]) Filtered() []T {
	return e.schema.Filter(e.source, e.schema.BuildPredicate(e.state.Search, e.state.Filters))
}

// View returns the visible page and stores the clamped page number back.
func (e *Engine[T]) View() Page[T] {
	p := Paginate(e.Filtered(), e.size, e.state.Page)
	e.state.Page = p.Page
	return p
}
