package pager

import (
	"context"
	"errors"
	"sync"

	"booknook/internal/catalog"
	"booknook/internal/pagination"
)

var ErrStaleResponse = errors.New("search response superseded by a newer search")

type Searcher interface {
	Search(ctx context.Context, query string, source catalog.Source, page, pageSize int) (catalog.SearchResult, error)
}

type Adder interface {
	AddBook(ctx context.Context, b NewBook) error
}

// View is what a front end renders after a search.
type View struct {
	State      PageState
	Books      []catalog.NormalizedBook
	TotalItems int
	Window     []pagination.PageItem
}

// Browser drives searches and adds against one PageState. It is safe for
// concurrent use.
type Browser struct {
	searcher Searcher
	adder    Adder

	mu      sync.Mutex
	state   PageState
	seq     uint64
	results catalog.SearchResult
}

func NewBrowser(searcher Searcher, adder Adder, source catalog.Source, pageSize int) *Browser {
	return &Browser{
		searcher: searcher,
		adder:    adder,
		state:    NewPageState(source, pageSize),
		results:  catalog.SearchResult{Books: []catalog.NormalizedBook{}},
	}
}

func (b *Browser) State() PageState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.snapshot()
}

func (b *Browser) SetQuery(q string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.SetQuery(q)
}

func (b *Browser) SetSource(src catalog.Source) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.SetSource(src)
}

func (b *Browser) SetPage(p int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.SetPage(p)
}

// Search runs the current state. An empty query fails with
// catalog.ErrEmptyQuery without calling the searcher. A response that
// arrives after a newer search was issued is dropped with
// ErrStaleResponse. An empty page past page 1 resets to page 1 once and
// searches again.
func (b *Browser) Search(ctx context.Context) (View, error) {
	b.mu.Lock()
	empty := b.state.query == ""
	b.mu.Unlock()
	if empty {
		return View{}, catalog.ErrEmptyQuery
	}

	v, retry, err := b.searchOnce(ctx)
	if err != nil || !retry {
		return v, err
	}
	v, _, err = b.searchOnce(ctx)
	return v, err
}

func (b *Browser) searchOnce(ctx context.Context) (View, bool, error) {
	b.mu.Lock()
	b.seq++
	seq := b.seq
	req := b.state.snapshot()
	b.mu.Unlock()

	res, err := b.searcher.Search(ctx, req.query, req.source, req.page, req.pageSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	if seq != b.seq {
		return View{}, false, ErrStaleResponse
	}
	if err != nil {
		return View{}, false, err
	}
	if len(res.Books) == 0 && req.page > 1 {
		b.state.resetPage()
		return View{}, true, nil
	}

	if res.Books == nil {
		res.Books = []catalog.NormalizedBook{}
	}
	b.results = res
	b.state.setTotalPages(pagination.TotalPages(res.TotalItems, req.pageSize))
	return b.viewLocked(), false, nil
}

func (b *Browser) viewLocked() View {
	return View{
		State:      b.state.snapshot(),
		Books:      b.results.Books,
		TotalItems: b.results.TotalItems,
		Window:     pagination.VisiblePageWindow(b.state.Page(), b.state.TotalPages(), pagination.DefaultMaxVisible),
	}
}

// Current returns the last applied view without searching.
func (b *Browser) Current() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewLocked()
}

// Add sends book to the collection. A second Add for the same title while
// the first is still running returns ErrAddInFlight without a request.
func (b *Browser) Add(ctx context.Context, book catalog.NormalizedBook) error {
	key := book.Title

	b.mu.Lock()
	err := b.state.BeginAdd(key)
	b.mu.Unlock()
	if err != nil {
		return err
	}

	defer func() {
		b.mu.Lock()
		b.state.EndAdd(key)
		b.mu.Unlock()
	}()

	return b.adder.AddBook(ctx, NewBookFrom(book))
}

// Adding reports whether an add for title is in flight.
func (b *Browser) Adding(title string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Adding(title)
}
