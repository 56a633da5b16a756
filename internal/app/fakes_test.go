package app_test

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"funmarket/internal/domain"
)

// ---- fakes ----

type miss struct {
	Kind   domain.Kind
	ID     string
	Status int
	Reason string
}

type fakeRepo struct {
	mu       sync.Mutex
	listings []domain.Listing
	stored   map[string]domain.StoredListing
	misses   []miss
	fetchErr error
	fetches  int
	hints    domain.FilterHints
}

func (f *fakeRepo) UpsertListing(ctx context.Context, l domain.StoredListing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stored == nil {
		f.stored = map[string]domain.StoredListing{}
	}
	f.stored[l.Listing.ID] = l
	return nil
}

func (f *fakeRepo) LogMiss(ctx context.Context, kind domain.Kind, id string, status int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.misses = append(f.misses, miss{kind, id, status, reason})
	return nil
}

func (f *fakeRepo) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	for _, l := range f.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.Listing{}, domain.ErrNotFound
}

func (f *fakeRepo) FetchListings(ctx context.Context, h domain.FilterHints) ([]domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	f.hints = h
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.listings, nil
}

// fakeCache stores JSON like the redis adapter does, so cached values go
// through the same encode/decode path.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func (c *fakeCache) Incr(ctx context.Context, key string) (int64, error) {
	var n int64
	if _, err := c.Get(ctx, key, &n); err != nil {
		return 0, err
	}
	n++
	return n, c.Set(ctx, key, n, 0)
}

type fakeFeed struct {
	pages map[domain.Kind][][]map[string]any
	err   map[domain.Kind]error
	calls int
}

func (f *fakeFeed) ListRecords(ctx context.Context, kind domain.Kind, page, limit int) ([]map[string]any, error) {
	f.calls++
	if err := f.err[kind]; err != nil {
		return nil, err
	}
	ps := f.pages[kind]
	if page > len(ps) {
		return nil, domain.ErrNotFound
	}
	return ps[page-1], nil
}

var now = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func pint(v int) *int           { return &v }
func pfloat(f float64) *float64 { return &f }
