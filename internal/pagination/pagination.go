// Package pagination holds the page arithmetic shared by the search path
// and the collection list endpoint.
package pagination

import "math"

// maxPage is the largest page whose offset fits in an int.
func maxPage(pageSize int) int {
	return math.MaxInt/pageSize + 1
}

// TotalPages is max(1, ceil(totalItems/pageSize)). A non-positive pageSize
// is treated as 1 and a negative total as 0.
func TotalPages(totalItems, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalItems <= 0 {
		return 1
	}
	return (totalItems + pageSize - 1) / pageSize
}

// Offset is the zero-based index of the first item on page.
func Offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	page = min(page, maxPage(pageSize))
	return (page - 1) * pageSize
}

// Normalize clamps raw request values: page to at least 1 and small enough
// that its offset cannot overflow, pageSize to def when unset and to max
// when too large.
func Normalize(page, pageSize, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = def
	}
	if max > 0 && pageSize > max {
		pageSize = max
	}
	if pageSize > 0 {
		page = min(page, maxPage(pageSize))
	}
	return page, pageSize
}
