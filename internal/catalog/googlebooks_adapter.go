package catalog

import (
	"context"

	"booknook/internal/pagination"
	"booknook/internal/platform/googlebooks"
)

type VolumeSearcher interface {
	SearchVolumes(ctx context.Context, p googlebooks.SearchParams) (*googlebooks.VolumesResponse, error)
}

type GoogleBooksAdapter struct {
	client VolumeSearcher
}

func NewGoogleBooksAdapter(client VolumeSearcher) *GoogleBooksAdapter {
	return &GoogleBooksAdapter{client: client}
}

func (a *GoogleBooksAdapter) Search(ctx context.Context, query string, page, pageSize int) (SearchResult, error) {
	res, err := a.client.SearchVolumes(ctx, googlebooks.SearchParams{
		Query:      query,
		StartIndex: pagination.Offset(page, pageSize),
		MaxResults: pageSize,
	})
	if err != nil {
		return SearchResult{}, classify(SourceGoogleBooks, err)
	}
	if res.TotalItems == nil {
		return SearchResult{}, &MalformedResponseError{Source: SourceGoogleBooks, Reason: "missing totalItems"}
	}

	books := make([]NormalizedBook, 0, len(res.Items))
	for _, item := range res.Items {
		books = append(books, normalizeVolume(item.VolumeInfo))
	}

	total := *res.TotalItems
	if total < 0 {
		total = 0
	}
	return SearchResult{Books: books, TotalItems: total}, nil
}

func normalizeVolume(v googlebooks.VolumeInfo) NormalizedBook {
	lang := orNA(v.Language)
	return NormalizedBook{
		Title:         v.Title,
		Authors:       authorsOrEmpty(v.Authors),
		Description:   v.Description,
		Rating:        clampRating(v.AverageRating),
		PublishedDate: orNA(v.PublishedDate),
		PageCount:     nonNegative(v.PageCount),
		Language:      lang,
		LanguageName:  LanguageName(lang),
	}
}
