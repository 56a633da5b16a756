package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"funmarket/internal/adapters/observability"
	"funmarket/internal/domain"
	"funmarket/internal/search"
)

// IngestStats summarises one kind's ingest pass.
type IngestStats struct {
	Kind      domain.Kind
	Pages     int
	Upserted  int
	Malformed int
}

type IngestionService struct {
	feed     domain.FeedClient
	repo     domain.ListingRepository
	cache    domain.Cache
	norm     search.Normalizer
	pageSize int
	maxPages int
}

func NewIngestionService(f domain.FeedClient, r domain.ListingRepository, cache domain.Cache, norm search.Normalizer, pageSize, maxPages int) *IngestionService {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &IngestionService{feed: f, repo: r, cache: cache, norm: norm, pageSize: pageSize, maxPages: maxPages}
}

// IngestKind pages through the feed for kind until a short or empty page,
// a 404, or maxPages (0 = unlimited).
func (s *IngestionService) IngestKind(ctx context.Context, kind domain.Kind) (IngestStats, error) {
	st := IngestStats{Kind: kind}
	for page := 1; s.maxPages <= 0 || page <= s.maxPages; page++ {
		n, err := s.IngestPage(ctx, kind, page, &st)
		if err != nil {
			return st, err
		}
		if n < s.pageSize {
			break
		}
	}
	return st, nil
}

// IngestPage pulls and stores one feed page and returns how many records
// the page held.
func (s *IngestionService) IngestPage(ctx context.Context, kind domain.Kind, page int, st *IngestStats) (int, error) {
	raws, err := s.feed.ListRecords(ctx, kind, page, s.pageSize)
	if err != nil {
		switch {
		// past the last page
		case errors.Is(err, domain.ErrNotFound):
			return 0, nil
		// the feed refused us; record the miss and stop this kind gracefully
		case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrForbidden):
			_ = s.repo.LogMiss(ctx, kind, "", http.StatusForbidden, fmt.Sprintf("page %d: %v", page, err))
			return 0, nil
		default:
			return 0, fmt.Errorf("fetch %s page %d: %w", kind, page, err)
		}
	}
	st.Pages++

	for _, raw := range raws {
		l, err := s.norm.Normalize(kind, raw)
		if err != nil {
			st.Malformed++
			observability.ObserveDropped(string(kind))
			var mr *domain.MalformedRecordError
			id := ""
			if errors.As(err, &mr) {
				id = mr.ID
			}
			log.Warn().Err(err).Str("kind", string(kind)).Int("page", page).Msg("dropping malformed record")
			_ = s.repo.LogMiss(ctx, kind, id, http.StatusUnprocessableEntity, err.Error())
			continue
		}
		b, err := json.Marshal(raw)
		if err != nil {
			return len(raws), fmt.Errorf("encode raw %s %s: %w", kind, l.ID, err)
		}
		if err := s.repo.UpsertListing(ctx, domain.StoredListing{Listing: l, RawJSON: b}); err != nil {
			// do not swallow; a failed write means the store is out of date
			return len(raws), fmt.Errorf("upsert %s %s: %w", kind, l.ID, err)
		}
		st.Upserted++
	}
	return len(raws), nil
}

// Invalidate bumps the cache generation so searches cached before this run
// are no longer served.
func (s *IngestionService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	gen, err := s.cache.Incr(ctx, GenerationKey)
	if err != nil {
		return fmt.Errorf("bump cache generation: %w", err)
	}
	log.Info().Int64("generation", gen).Msg("search cache invalidated")
	return nil
}
