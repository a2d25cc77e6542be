package listview

import "fmt"

const (
	DefaultPageSize = 10
	DefaultPage     = 1
)

// Page is one window over a filtered list.
type Page[T any] struct {
	Items      []T
	Page       int
	TotalPages int
	StartIndex int
	Total      int
	Size       int
}

// Paginate slices items into the requested page.
//
// TotalPages is never below 1, the requested page clamps down to the last page
// and values below 1 are treated as page 1. A size below 1 means DefaultPageSize.
func Paginate[T any](items []T, size, requested int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	if requested < 1 {
		requested = DefaultPage
	}
	total := len(items)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	page := requested
	if page > totalPages {
		page = totalPages
	}
	start, end := sliceIndices(page, size, total)
	return Page[T]{
		Items:      items[start:end],
		Page:       page,
		TotalPages: totalPages,
		StartIndex: start,
		Total:      total,
		Size:       size,
	}
}

func sliceIndices(page, size, total int) (start, end int) {
	start = (page - 1) * size
	if start > total {
		start = total
	}
	end = start + size
	if end > total {
		end = total
	}
	return start, end
}

// First is the 1-based position of the first visible item, 0 when empty.
func (p Page[T]) First() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.StartIndex + 1
}

// Last is the 1-based position of the last visible item.
func (p Page[T]) Last() int {
	return p.StartIndex + len(p.Items)
}

// Summary renders the footer line, "Mostrando 1-10 de 23".
func (p Page[T]) Summary() string {
	return fmt.Sprintf("Mostrando %d-%d de %d", p.First(), p.Last(), p.Total)
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }
func (p Page[T]) Prev() int     { return p.Page - 1 }
func (p Page[T]) Next() int     { return p.Page + 1 }

// Numbers lists every page number for the pager.
func (p Page[T]) Numbers() []int {
	out := make([]int, p.TotalPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
