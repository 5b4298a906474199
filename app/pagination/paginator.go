// Package pagination splits an ordered listing into fixed-size pages.
//
// Page resolution is lenient: a missing or malformed page number yields the
// first page and an out-of-range number yields the last one, so every
// request renders something.
package pagination

import (
	"strconv"
	"strings"
)

// DefaultPerPage is the page size used when none is configured.
const DefaultPerPage = 10

// Paginator knows the size of a listing and how many items fit on a page.
type Paginator struct {
	Count   int
	PerPage int
}

// New returns a paginator over count items. A non-positive perPage falls
// back to DefaultPerPage.
func New(count, perPage int) *Paginator {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if count < 0 {
		count = 0
	}
	return &Paginator{Count: count, PerPage: perPage}
}

// NumPages is never below 1; an empty listing still has an empty first page.
func (p *Paginator) NumPages() int {
	if p.Count == 0 {
		return 1
	}
	return (p.Count + p.PerPage - 1) / p.PerPage
}

// Number resolves the raw ?page= value to a page number in [1, NumPages].
func (p *Paginator) Number(raw string) int {
	return p.resolve(raw)
}

func (p *Paginator) resolve(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	if n < 1 || n > p.NumPages() {
		return p.NumPages()
	}
	return n
}

// Page is one slice of a listing. Items holds the entries on this page.
type Page[T any] struct {
	Number   int
	NumPages int
	Count    int
	PerPage  int
	Items    []T
}

// Paginate resolves raw to a page number and calls fetch with that page's
// limit and offset to fill it.
func Paginate[T any](p *Paginator, raw string, fetch func(limit, offset int) ([]T, error)) (*Page[T], error) {
	page := &Page[T]{
		Number:   p.resolve(raw),
		NumPages: p.NumPages(),
		Count:    p.Count,
		PerPage:  p.PerPage,
	}
	items, err := fetch(page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	page.Items = items
	return page, nil
}

// Offset is the index of the first item on the page.
func (pg *Page[T]) Offset() int {
	return (pg.Number - 1) * pg.PerPage
}

// Limit is the number of items to fetch for this page.
func (pg *Page[T]) Limit() int {
	return pg.PerPage
}

func (pg *Page[T]) HasNext() bool {
	return pg.Number < pg.NumPages
}

func (pg *Page[T]) HasPrevious() bool {
	return pg.Number > 1
}

func (pg *Page[T]) HasOtherPages() bool {
	return pg.HasNext() || pg.HasPrevious()
}

// NextPageNumber returns 0 on the last page.
func (pg *Page[T]) NextPageNumber() int {
	if !pg.HasNext() {
		return 0
	}
	return pg.Number + 1
}

// PreviousPageNumber returns 0 on the first page.
func (pg *Page[T]) PreviousPageNumber() int {
	if !pg.HasPrevious() {
		return 0
	}
	return pg.Number - 1
}

// StartIndex is the 1-based position of the first item, 0 for an empty listing.
func (pg *Page[T]) StartIndex() int {
	if pg.Count == 0 {
		return 0
	}
	return pg.Offset() + 1
}

// EndIndex is the 1-based position of the last item, 0 for an empty listing.
func (pg *Page[T]) EndIndex() int {
	if pg.Count == 0 {
		return 0
	}
	if pg.Number == pg.NumPages {
		return pg.Count
	}
	return pg.Number * pg.PerPage
}

// PageRange lists every page number, for rendering page links.
func (pg *Page[T]) PageRange() []int {
	pages := make([]int, pg.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
