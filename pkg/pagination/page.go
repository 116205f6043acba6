package pagination

import (
	"strconv"
	"strings"

	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
)

// LastPage is accepted in place of a page number.
const LastPage = "last"

// Paginator splits a result set of known size into numbered pages.
type Paginator struct {
	PageSize int
	Count    int64
}

// New returns a Paginator. A non-positive size falls back to 1.
func New(count int64, pageSize int) Paginator {
	if pageSize < 1 {
		pageSize = 1
	}
	return Paginator{PageSize: pageSize, Count: count}
}

// TotalPages is never below 1 so that an empty catalog still has a first page.
func (p Paginator) TotalPages() int {
	if p.Count <= 0 {
		return 1
	}
	return int((p.Count + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// Page resolves a raw page parameter. An empty value means the first page.
// A page past the end is valid and empty; it links back to the last page.
func (p Paginator) Page(raw string) (Page, error) {
	raw = strings.TrimSpace(raw)
	total := p.TotalPages()

	number := 1
	switch {
	case raw == "":
	case raw == LastPage:
		number = total
	default:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, pkgerrors.NotFound("page is not a number")
		}
		number = n
	}

	if number < 1 {
		return Page{}, pkgerrors.NotFound("invalid page " + raw)
	}

	page := Page{
		Number:     number,
		Size:       p.PageSize,
		Count:      p.Count,
		TotalPages: total,
	}
	if number > 1 {
		prev := min(number-1, total)
		page.Prev = &prev
	}
	if number < total {
		next := number + 1
		page.Next = &next
	}
	return page, nil
}

// Page is one resolved page of a result set.
type Page struct {
	Number     int
	Size       int
	Count      int64
	TotalPages int
	Prev       *int
	Next       *int
}

// Beyond reports whether the page lies past the last page and holds no rows.
func (p Page) Beyond() bool {
	return p.Number > p.TotalPages
}

// Offset is the number of rows before this page. Past the last page it is
// the row count, so the query returns nothing whatever the page number.
func (p Page) Offset() int {
	if p.Beyond() {
		return int(p.Count)
	}
	return (p.Number - 1) * p.Size
}

// Limit is the maximum number of rows on this page.
func (p Page) Limit() int {
	return p.Size
}

// Envelope is the JSON shape of a paginated list.
type Envelope[T any] struct {
	Count      int64 `json:"count"`
	TotalPages int   `json:"total_pages"`
	Prev       *int  `json:"prev"`
	Next       *int  `json:"next"`
	Results    []T   `json:"results"`
}

// Wrap builds the response envelope for items on page.
func Wrap[T any](page Page, items []T) Envelope[T] {
	if items == nil {
		items = []T{}
	}
	return Envelope[T]{
		Count:      page.Count,
		TotalPages: page.TotalPages,
		Prev:       page.Prev,
		Next:       page.Next,
		Results:    items,
	}
}
