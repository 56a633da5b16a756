package domain

import (
	"context"
	"time"
)

type ListingRepository interface {
	// Write paths
	UpsertListing(ctx context.Context, l StoredListing) error
	LogMiss(ctx context.Context, kind Kind, id string, status int, reason string) error

	// Read paths
	GetListing(ctx context.Context, id string) (Listing, error)
	// FetchListings returns a snapshot that is a superset of every listing
	// matching hints; callers still run the full filter over it.
	FetchListings(ctx context.Context, hints FilterHints) ([]Listing, error)
}

// FeedClient pulls raw listing records from the upstream listings feed.
type FeedClient interface {
	ListRecords(ctx context.Context, kind Kind, page, limit int) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant; handy in tests and replays.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }
