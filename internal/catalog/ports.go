package catalog

import "context"

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=catalog

// Adapter queries one upstream catalog and normalizes the page it returns.
type Adapter interface {
	Search(ctx context.Context, query string, page, pageSize int) (SearchResult, error)
}
