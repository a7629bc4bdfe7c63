package listview

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Query is the full parameter tuple sent to the gateway for one list fetch.
// Page is zero-based.
type Query struct {
	Search        string
	SortBy        string
	SortDirection string
	Page          int
	PageSize      int
}

// Pagination mirrors the gateway's pagination block. The gateway is
// authoritative; the orchestrator never recomputes these fields.
type Pagination struct {
	CurrentPage   int  `json:"current_page"`
	PageSize      int  `json:"page_size"`
	TotalElements int  `json:"total_elements"`
	TotalPages    int  `json:"total_pages"`
	HasNext       bool `json:"has_next"`
	HasPrevious   bool `json:"has_previous"`
	FirstPage     bool `json:"first_page"`
	LastPage      bool `json:"last_page"`
}

// Snapshot is one completed fetch result.
type Snapshot[T any] struct {
	Items      []T
	Pagination Pagination
}

// Fetcher performs one gateway query.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, q Query) (*Snapshot[T], error)
}

// Options tunes orchestrator behaviour.
type Options struct {
	Debounce     time.Duration
	PageSize     int
	FetchTimeout time.Duration
	Logger       *zap.Logger
}

// Orchestrator keeps one list view consistent with its query tuple. Any
// change to page, size or sort triggers exactly one fetch; search-term
// changes are debounced and reset the page to zero first. Responses are
// applied last-request-wins: a completion whose request has been superseded
// is discarded, leaving the last-known-good snapshot in place.
type Orchestrator[T any] struct {
	fetcher      Fetcher[T]
	debounce     time.Duration
	fetchTimeout time.Duration
	logger       *zap.Logger
	onUpdate     func(Snapshot[T])
	onError      func(error)

	mu       sync.Mutex
	query    Query
	seq      uint64
	timer    *time.Timer
	snapshot *Snapshot[T]
	loading  bool
	lastErr  error
}

// New constructs an orchestrator around the provided fetcher.
func New[T any](fetcher Fetcher[T], opts Options) *Orchestrator[T] {
	if opts.Debounce < 0 {
		opts.Debounce = 0
	} else if opts.Debounce == 0 {
		opts.Debounce = 250 * time.Millisecond
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator[T]{
		fetcher:      fetcher,
		debounce:     opts.Debounce,
		fetchTimeout: opts.FetchTimeout,
		logger:       logger,
		query:        Query{PageSize: opts.PageSize},
	}
}

// OnUpdate registers the callback invoked with every applied snapshot.
func (o *Orchestrator[T]) OnUpdate(fn func(Snapshot[T])) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onUpdate = fn
}

// OnError registers the callback invoked when an applied fetch fails.
func (o *Orchestrator[T]) OnError(fn func(error)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onError = fn
}

// SetSearch updates the search term. The page resets to zero so a stale page
// index is never combined with the new term, and the fetch is issued after
// the debounce window.
func (o *Orchestrator[T]) SetSearch(term string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if term == o.query.Search {
		return
	}
	o.query.Search = term
	o.query.Page = 0
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	if o.debounce == 0 {
		o.dispatchLocked()
		return
	}
	o.timer = time.AfterFunc(o.debounce, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.timer = nil
		o.dispatchLocked()
	})
}

// SetSort updates the sort column and direction and re-fetches.
func (o *Orchestrator[T]) SetSort(by, direction string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.query.SortBy == by && o.query.SortDirection == direction {
		return
	}
	o.query.SortBy = by
	o.query.SortDirection = direction
	o.dispatchLocked()
}

// SetPage moves to the given zero-based page and re-fetches.
func (o *Orchestrator[T]) SetPage(page int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if page < 0 {
		page = 0
	}
	if o.query.Page == page {
		return
	}
	o.query.Page = page
	o.dispatchLocked()
}

// SetPageSize changes the page size and re-fetches from the first page.
func (o *Orchestrator[T]) SetPageSize(size int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if size <= 0 || o.query.PageSize == size {
		return
	}
	o.query.PageSize = size
	o.query.Page = 0
	o.dispatchLocked()
}

// Refresh issues a fetch with the current query tuple, typically after a
// mutation invalidated the cached dataset.
func (o *Orchestrator[T]) Refresh() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dispatchLocked()
}

// Snapshot returns the last applied snapshot, if any.
func (o *Orchestrator[T]) Snapshot() (Snapshot[T], bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.snapshot == nil {
		return Snapshot[T]{}, false
	}
	return *o.snapshot, true
}

// Query returns the current query tuple.
func (o *Orchestrator[T]) Query() Query {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.query
}

// Loading reports whether a fetch is in flight.
func (o *Orchestrator[T]) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// Err returns the error of the last applied fetch, nil after a success.
func (o *Orchestrator[T]) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Close stops any pending debounce timer. In-flight fetches complete and are
// discarded through the usual sequencing.
func (o *Orchestrator[T]) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.seq++
}

func (o *Orchestrator[T]) dispatchLocked() {
	o.seq++
	o.loading = true
	go o.run(o.seq, o.query)
}

func (o *Orchestrator[T]) run(seq uint64, q Query) {
	ctx, cancel := context.WithTimeout(context.Background(), o.fetchTimeout)
	defer cancel()

	snap, err := o.fetcher.Fetch(ctx, q)

	o.mu.Lock()
	if seq != o.seq {
		o.mu.Unlock()
		o.logger.Debug("discarding superseded list response",
			zap.Uint64("seq", seq),
			zap.String("search", q.Search))
		return
	}
	o.loading = false
	if err != nil {
		o.lastErr = err
		onError := o.onError
		o.mu.Unlock()
		if onError != nil {
			onError(err)
		}
		return
	}
	o.lastErr = nil
	o.snapshot = snap
	onUpdate := o.onUpdate
	applied := *snap
	o.mu.Unlock()
	if onUpdate != nil {
		onUpdate(applied)
	}
}
