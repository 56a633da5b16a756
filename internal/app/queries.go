package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"funmarket/internal/adapters/observability"
	"funmarket/internal/domain"
	"funmarket/internal/search"
)

// GenerationKey is bumped after every ingest run; it is part of every cache
// key so results cached before the run are never served again.
const GenerationKey = "listings:gen"

// AllKinds is the route segment that searches every listing family.
const AllKinds = "listings"

type view string

const (
	viewSearch   view = "search"
	viewTrending view = "trending"
	viewNew      view = "new"
)

type SearchService struct {
	repo     domain.ListingRepository
	cache    domain.Cache
	cacheTTL time.Duration
	engine   *search.Engine
	// page size for the trending/new views when the caller gives none
	viewLimit int
}

func NewSearchService(r domain.ListingRepository, c domain.Cache, ttl time.Duration, e *search.Engine, viewLimit int) *SearchService {
	if viewLimit <= 0 {
		viewLimit = 4
	}
	return &SearchService{repo: r, cache: c, cacheTTL: ttl, engine: e, viewLimit: viewLimit}
}

// Search runs a full faceted search. kind is a route segment ("venues",
// "events", "performers" or "listings").
func (s *SearchService) Search(ctx context.Context, kind string, values url.Values) domain.Result {
	return s.run(ctx, viewSearch, kind, values)
}

func (s *SearchService) Trending(ctx context.Context, kind string, values url.Values) domain.Result {
	return s.run(ctx, viewTrending, kind, withDefaultLimit(values, s.viewLimit))
}

func (s *SearchService) Newest(ctx context.Context, kind string, values url.Values) domain.Result {
	return s.run(ctx, viewNew, kind, withDefaultLimit(values, s.viewLimit))
}

func (s *SearchService) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	key := fmt.Sprintf("listing:g%d:%s", s.generation(ctx), id)
	var l domain.Listing
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &l); ok {
			return l, nil
		}
	}
	l, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, l, int(s.cacheTTL.Seconds()))
	}
	return l, nil
}

func (s *SearchService) run(ctx context.Context, v view, kind string, values url.Values) domain.Result {
	q := s.engine.ParseQuery(values)
	if k, ok := domain.ParseKind(kind); ok {
		q = q.WithKinds(k)
	}

	key := s.cacheKey(ctx, v, q)
	if s.cache != nil && key != "" {
		var cached domain.Result
		ok, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("search cache read failed")
		}
		if ok && err == nil {
			return cached
		}
	}

	snapshot, err := s.repo.FetchListings(ctx, search.Hints(q))
	if err != nil {
		log.Error().Err(err).Str("view", string(v)).Str("kind", kind).Msg("listing fetch failed; returning empty result")
		observability.ObserveUpstreamFailure(kind)
		return search.FailOpen(q, fmt.Errorf("failed to load listings: %w", err))
	}

	var res domain.Result
	switch v {
	case viewTrending:
		res = s.engine.Trending(snapshot, q)
	case viewNew:
		res = s.engine.Newest(snapshot, q)
	default:
		res = s.engine.Search(snapshot, q)
	}
	observability.ObserveSearch(kind, string(q.Sort), res.Pagination.Total)

	if s.cache != nil && key != "" {
		if err := s.cache.Set(ctx, key, res, int(s.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("search cache write failed")
		}
	}
	return res
}

// cacheKey fingerprints the normalized query, so equivalent raw requests
// ("?q=jazz" and "?search=JAZZ ") share an entry.
func (s *SearchService) cacheKey(ctx context.Context, v view, q domain.Query) string {
	if s.cache == nil {
		return ""
	}
	b, err := json.Marshal(q)
	if err != nil {
		return ""
	}
	sum := sha1.Sum(b)
	return fmt.Sprintf("search:%s:g%d:%s", v, s.generation(ctx), hex.EncodeToString(sum[:]))
}

func (s *SearchService) generation(ctx context.Context) int64 {
	if s.cache == nil {
		return 0
	}
	var gen int64
	if ok, err := s.cache.Get(ctx, GenerationKey, &gen); !ok || err != nil {
		return 0
	}
	return gen
}

func withDefaultLimit(values url.Values, limit int) url.Values {
	if values.Get("limit") != "" || values.Get("pageSize") != "" {
		return values
	}
	out := make(url.Values, len(values)+1)
	for k, vs := range values {
		out[k] = append([]string(nil), vs...)
	}
	out.Set("limit", fmt.Sprint(limit))
	return out
}
