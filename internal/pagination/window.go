package pagination

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

const DefaultMaxVisible = 5

// PageItem is one slot in a page selector: a page number or an ellipsis.
// It marshals to a JSON number or the string "ellipsis".
type PageItem struct {
	Page     int
	Ellipsis bool
}

func Page(n int) PageItem { return PageItem{Page: n} }

var Ellipsis = PageItem{Ellipsis: true}

const ellipsisJSON = `"ellipsis"`

func (p PageItem) String() string {
	if p.Ellipsis {
		return "…"
	}
	return strconv.Itoa(p.Page)
}

func (p PageItem) MarshalJSON() ([]byte, error) {
	if p.Ellipsis {
		return []byte(ellipsisJSON), nil
	}
	return []byte(strconv.Itoa(p.Page)), nil
}

func (p *PageItem) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == ellipsisJSON {
		*p = Ellipsis
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("page item: %w", err)
	}
	*p = Page(n)
	return nil
}

// VisiblePageWindow lists the page selector entries for current out of
// total. At most maxVisible numbered pages sit around current; the first
// and last pages are always present, with ellipses over gaps. The result
// never exceeds maxVisible+2 entries.
//
// maxVisible <= 0 means DefaultMaxVisible; values below 3 are raised to 3.
func VisiblePageWindow(current, total, maxVisible int) []PageItem {
	if maxVisible <= 0 {
		maxVisible = DefaultMaxVisible
	}
	if maxVisible < 3 {
		maxVisible = 3
	}
	if total < 1 {
		total = 1
	}
	current = min(max(current, 1), total)

	if total <= maxVisible {
		items := make([]PageItem, 0, total)
		for i := 1; i <= total; i++ {
			items = append(items, Page(i))
		}
		return items
	}

	start := current - maxVisible/2
	end := start + maxVisible - 1
	if start < 1 {
		start, end = 1, maxVisible
	}
	if end > total {
		start, end = total-maxVisible+1, total
	}

	head, tail := start > 1, end < total
	if head && tail {
		start++
		end--
	}

	items := make([]PageItem, 0, maxVisible+2)
	if head {
		items = append(items, Page(1))
		if start > 2 {
			items = append(items, Ellipsis)
		}
	}
	for i := start; i <= end; i++ {
		items = append(items, Page(i))
	}
	if tail {
		if end < total-1 {
			items = append(items, Ellipsis)
		}
		items = append(items, Page(total))
	}
	return items
}
