package contentapi

import (
	"fmt"
	"strconv"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 50

// ResultPage is a bounded, ordered slice of a result set plus its paging
// metadata.
type ResultPage[T any] struct {
	Items      []T
	PageNumber int
	PageSize   int
	TotalCount int
	// Paginated is false when pagination is disabled and every item sits on
	// a single implicit page.
	Paginated bool
}

// TotalPages is ceil(TotalCount / PageSize), and 1 for an empty set.
func (p ResultPage[T]) TotalPages() int {
	return totalPages(p.TotalCount, p.PageSize)
}

// StartIndex is the 1-based position of the first item on the page.
func (p ResultPage[T]) StartIndex() int {
	if !p.Paginated {
		return 1
	}
	return (p.PageNumber-1)*p.PageSize + 1
}

// Info strips the items, leaving the metadata links are built from.
func (p ResultPage[T]) Info() PageInfo {
	return PageInfo{
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
		TotalCount: p.TotalCount,
		TotalPages: p.TotalPages(),
		Paginated:  p.Paginated,
	}
}

// PageInfo is the item-free description of a ResultPage.
type PageInfo struct {
	PageNumber int
	PageSize   int
	TotalCount int
	TotalPages int
	Paginated  bool
}

func totalPages(total, size int) int {
	if total == 0 || size <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Paginate slices items into page pageNumber of pageSize items. Pages are
// 1-based; anything outside 1..TotalPages is ErrInvalidPage.
func Paginate[T any](items []T, pageNumber, pageSize int) (ResultPage[T], error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	pages := totalPages(total, pageSize)
	if pageNumber < 1 || pageNumber > pages {
		return ResultPage[T]{}, fmt.Errorf("page %d of %d: %w", pageNumber, pages, ErrInvalidPage)
	}

	start := (pageNumber - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	return ResultPage[T]{
		Items:      items[start:end],
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalCount: total,
		Paginated:  true,
	}, nil
}

// SinglePage wraps items as one unpaginated page.
func SinglePage[T any](items []T) ResultPage[T] {
	return ResultPage[T]{
		Items:      items,
		PageNumber: 1,
		PageSize:   len(items),
		TotalCount: len(items),
	}
}

// ParsePage parses a page query value. An empty value is page 1; anything
// that is not an integer is ErrInvalidPage.
func ParsePage(value string) (int, error) {
	if value == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("page %q: %w", value, ErrInvalidPage)
	}
	return n, nil
}
