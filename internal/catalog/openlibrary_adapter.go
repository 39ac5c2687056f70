package catalog

import (
	"context"
	"strconv"

	"booknook/internal/platform/openlibrary"
)

type DocSearcher interface {
	Search(ctx context.Context, p openlibrary.SearchParams) (*openlibrary.SearchResponse, error)
}

type OpenLibraryAdapter struct {
	client DocSearcher
}

func NewOpenLibraryAdapter(client DocSearcher) *OpenLibraryAdapter {
	return &OpenLibraryAdapter{client: client}
}

func (a *OpenLibraryAdapter) Search(ctx context.Context, query string, page, pageSize int) (SearchResult, error) {
	res, err := a.client.Search(ctx, openlibrary.SearchParams{
		Query: query,
		Page:  page,
		Limit: pageSize,
	})
	if err != nil {
		return SearchResult{}, classify(SourceOpenLibrary, err)
	}
	total, ok := res.Total()
	if !ok {
		return SearchResult{}, &MalformedResponseError{Source: SourceOpenLibrary, Reason: "missing numFound"}
	}
	if total < 0 {
		total = 0
	}

	books := make([]NormalizedBook, 0, len(res.Docs))
	for _, doc := range res.Docs {
		books = append(books, normalizeDoc(doc))
	}
	return SearchResult{Books: books, TotalItems: total}, nil
}

func normalizeDoc(d openlibrary.Doc) NormalizedBook {
	published := NotAvailable
	if d.FirstPublishYear != nil {
		published = strconv.Itoa(*d.FirstPublishYear)
	}
	lang := NotAvailable
	if len(d.Language) > 0 {
		lang = orNA(d.Language[0])
	}
	return NormalizedBook{
		Title:         d.Title,
		Authors:       authorsOrEmpty(d.AuthorNames),
		Description:   string(d.FirstSentence),
		Rating:        clampRating(d.RatingsAverage),
		PublishedDate: published,
		PageCount:     nonNegative(d.NumberOfPagesMedian),
		Language:      lang,
		LanguageName:  LanguageName(lang),
	}
}
