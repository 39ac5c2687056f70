package catalog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"booknook/internal/pagination"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 40
)

// Service dispatches a search to the adapter registered for its source.
// It never retries and never falls back to another source.
type Service struct {
	adapters map[Source]Adapter
	logger   *slog.Logger
}

func NewService(adapters map[Source]Adapter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{adapters: adapters, logger: logger}
}

func (s *Service) Search(ctx context.Context, query string, source Source, page, pageSize int) (SearchResult, error) {
	adapter, ok := s.adapters[source]
	if !ok {
		return SearchResult{}, ErrInvalidSource
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, ErrEmptyQuery
	}
	page, pageSize = pagination.Normalize(page, pageSize, DefaultPageSize, MaxPageSize)

	start := time.Now()
	res, err := adapter.Search(ctx, query, page, pageSize)
	if err != nil {
		return SearchResult{}, err
	}
	if res.Books == nil {
		res.Books = []NormalizedBook{}
	}

	s.logger.DebugContext(ctx, "catalog search",
		"source", source,
		"page", page,
		"page_size", pageSize,
		"returned", len(res.Books),
		"total_items", res.TotalItems,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
