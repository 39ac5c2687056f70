package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booknook/internal/platform/googlebooks"
	"booknook/internal/platform/httpjson"
	"booknook/internal/platform/openlibrary"
)

func newGoogleAdapter(t *testing.T, handler http.HandlerFunc) *GoogleBooksAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGoogleBooksAdapter(googlebooks.NewClient(httpjson.NewClient(httpjson.Options{}), server.URL, ""))
}

func newOpenLibraryAdapter(t *testing.T, handler http.HandlerFunc) *OpenLibraryAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOpenLibraryAdapter(openlibrary.NewClient(httpjson.NewClient(httpjson.Options{}), server.URL))
}

func TestGoogleBooksAdapter_DunePageTwo(t *testing.T) {
	adapter := newGoogleAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dune", r.URL.Query().Get("q"))
		assert.Equal(t, "9", r.URL.Query().Get("startIndex"))
		assert.Equal(t, "9", r.URL.Query().Get("maxResults"))
		_, _ = w.Write([]byte(`{"totalItems":57,"items":[
			{"volumeInfo":{"title":"Dune Messiah","authors":["Frank Herbert"],"description":"Sequel.","averageRating":4.1,"publishedDate":"1969","pageCount":256,"language":"en"}}
		]}`))
	})

	res, err := adapter.Search(context.Background(), "dune", 2, 9)
	require.NoError(t, err)

	assert.Equal(t, 57, res.TotalItems)
	require.Len(t, res.Books, 1)
	assert.Equal(t, NormalizedBook{
		Title:         "Dune Messiah",
		Authors:       []string{"Frank Herbert"},
		Description:   "Sequel.",
		Rating:        4.1,
		PublishedDate: "1969",
		PageCount:     256,
		Language:      "en",
		LanguageName:  "English",
	}, res.Books[0])
}

func TestGoogleBooksAdapter_Defaults(t *testing.T) {
	adapter := newGoogleAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems":1,"items":[{"volumeInfo":{"title":"Untitled Draft"}}]}`))
	})

	res, err := adapter.Search(context.Background(), "draft", 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Books, 1)

	b := res.Books[0]
	assert.Equal(t, "Untitled Draft", b.Title)
	assert.NotNil(t, b.Authors)
	assert.Empty(t, b.Authors)
	assert.Equal(t, "", b.Description)
	assert.Equal(t, 0.0, b.Rating)
	assert.Equal(t, NotAvailable, b.PublishedDate)
	assert.Equal(t, 0, b.PageCount)
	assert.Equal(t, NotAvailable, b.Language)
	assert.Equal(t, NotAvailable, b.LanguageName)
}

func TestGoogleBooksAdapter_MissingItemsIsEmptyPage(t *testing.T) {
	adapter := newGoogleAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems":57}`))
	})

	res, err := adapter.Search(context.Background(), "dune", 7, 9)
	require.NoError(t, err)
	assert.NotNil(t, res.Books)
	assert.Empty(t, res.Books)
	assert.Equal(t, 57, res.TotalItems)
}

func TestGoogleBooksAdapter_Errors(t *testing.T) {
	t.Run("missing total", func(t *testing.T) {
		adapter := newGoogleAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"items":[]}`))
		})
		_, err := adapter.Search(context.Background(), "x", 1, 10)

		var malformed *MalformedResponseError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, SourceGoogleBooks, malformed.Source)
	})

	t.Run("non-2xx", func(t *testing.T) {
		adapter := newGoogleAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		_, err := adapter.Search(context.Background(), "x", 1, 10)

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	})

	t.Run("undecodable", func(t *testing.T) {
		adapter := newGoogleAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"totalItems":`))
		})
		_, err := adapter.Search(context.Background(), "x", 1, 10)

		var malformed *MalformedResponseError
		require.ErrorAs(t, err, &malformed)
	})
}

func TestGoogleBooksAdapter_RatingClamped(t *testing.T) {
	adapter := newGoogleAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems":2,"items":[{"volumeInfo":{"averageRating":7.5}},{"volumeInfo":{"averageRating":-1}}]}`))
	})

	res, err := adapter.Search(context.Background(), "x", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.Books[0].Rating)
	assert.Equal(t, 0.0, res.Books[1].Rating)
}

func TestOpenLibraryAdapter_Normalizes(t *testing.T) {
	adapter := newOpenLibraryAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "9", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"numFound":120,"docs":[
			{"title":"Dune","author_name":["Frank Herbert"],"first_sentence":["A beginning is the time.","Take care."],"ratings_average":4.27,"first_publish_year":1965,"number_of_pages_median":604,"language":["eng","fre"]},
			{"title":"Bare"}
		]}`))
	})

	res, err := adapter.Search(context.Background(), "dune", 2, 9)
	require.NoError(t, err)
	assert.Equal(t, 120, res.TotalItems)
	require.Len(t, res.Books, 2)

	assert.Equal(t, NormalizedBook{
		Title:         "Dune",
		Authors:       []string{"Frank Herbert"},
		Description:   "A beginning is the time., Take care.",
		Rating:        4.27,
		PublishedDate: "1965",
		PageCount:     604,
		Language:      "eng",
		LanguageName:  "English",
	}, res.Books[0])

	bare := res.Books[1]
	assert.Empty(t, bare.Authors)
	assert.NotNil(t, bare.Authors)
	assert.Equal(t, NotAvailable, bare.PublishedDate)
	assert.Equal(t, NotAvailable, bare.Language)
	assert.Equal(t, 0, bare.PageCount)
}

func TestOpenLibraryAdapter_MissingTotal(t *testing.T) {
	adapter := newOpenLibraryAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"docs":[]}`))
	})

	_, err := adapter.Search(context.Background(), "dune", 1, 9)
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, SourceOpenLibrary, malformed.Source)
}

func TestOpenLibraryAdapter_LegacyTotal(t *testing.T) {
	adapter := newOpenLibraryAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"num_found":3,"docs":[]}`))
	})

	res, err := adapter.Search(context.Background(), "dune", 1, 9)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalItems)
}

func TestAdapters_Idempotent(t *testing.T) {
	body := `{"totalItems":2,"items":[{"volumeInfo":{"title":"A","authors":["X"]}},{"volumeInfo":{"title":"B"}}]}`
	adapter := newGoogleAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	first, err := adapter.Search(context.Background(), "q", 1, 10)
	require.NoError(t, err)
	second, err := adapter.Search(context.Background(), "q", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "English", LanguageName("en"))
	assert.Equal(t, "Deutsch", LanguageName("de"))
	assert.Equal(t, NotAvailable, LanguageName(""))
	assert.Equal(t, NotAvailable, LanguageName(NotAvailable))
	assert.Equal(t, NotAvailable, LanguageName("not a language!"))
}
