package app_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"funmarket/internal/app"
	"funmarket/internal/domain"
	"funmarket/internal/search"
)

func listing(id string, kind domain.Kind, city string, reviews, lastBooked int) domain.Listing {
	return domain.Listing{
		ID:                id,
		Kind:              kind,
		Name:              "Listing " + id,
		Location:          domain.Location{City: city},
		Rating:            domain.Rating{Average: pfloat(4.5), ReviewCount: reviews},
		LastBookedDaysAgo: pint(lastBooked),
		CreatedAt:         now.Add(-24 * time.Hour),
	}
}

func newService(repo *fakeRepo, cache domain.Cache) *app.SearchService {
	eng := search.NewEngine(time.UTC, domain.FixedClock(now))
	return app.NewSearchService(repo, cache, 10*time.Minute, eng, 4)
}

func TestSearch_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{listings: []domain.Listing{
		listing("v1", domain.KindVenue, "Austin", 3, 2),
		listing("v2", domain.KindVenue, "Boston", 5, 1),
	}}
	svc := newService(repo, &fakeCache{})
	ctx := context.Background()

	res := svc.Search(ctx, "venues", url.Values{"city": {"austin"}})
	require.Empty(t, res.Error)
	require.Len(t, res.Items, 1)
	require.Equal(t, "v1", res.Items[0].ID)

	// a second read must come from the cache
	repo.listings = nil
	again := svc.Search(ctx, "venues", url.Values{"city": {"austin"}})
	require.Equal(t, res.Items[0].ID, again.Items[0].ID)
	require.Equal(t, 1, repo.fetches)
}

func TestSearch_EquivalentQueriesShareCacheEntry(t *testing.T) {
	repo := &fakeRepo{listings: []domain.Listing{listing("v1", domain.KindVenue, "Austin", 1, 1)}}
	svc := newService(repo, &fakeCache{})
	ctx := context.Background()

	svc.Search(ctx, "venues", url.Values{"q": {"listing"}})
	svc.Search(ctx, "venues", url.Values{"search": {"  LISTING "}})
	require.Equal(t, 1, repo.fetches)
}

func TestSearch_GenerationBumpInvalidates(t *testing.T) {
	repo := &fakeRepo{listings: []domain.Listing{listing("v1", domain.KindVenue, "Austin", 1, 1)}}
	cache := &fakeCache{}
	svc := newService(repo, cache)
	ctx := context.Background()

	svc.Search(ctx, "venues", nil)
	_, err := cache.Incr(ctx, app.GenerationKey)
	require.NoError(t, err)
	svc.Search(ctx, "venues", nil)
	require.Equal(t, 2, repo.fetches)
}

func TestSearch_FailOpenIsNotCached(t *testing.T) {
	repo := &fakeRepo{fetchErr: errors.New("connection refused")}
	svc := newService(repo, &fakeCache{})
	ctx := context.Background()

	res := svc.Search(ctx, "listings", url.Values{"limit": {"7"}, "city": {"Austin"}})
	require.Empty(t, res.Items)
	require.NotNil(t, res.Items)
	require.Contains(t, res.Error, "failed to load listings")
	require.Equal(t, domain.Pagination{Page: 1, PageSize: 7}, res.Pagination)
	require.Equal(t, "austin", res.Filters.City)

	svc.Search(ctx, "listings", url.Values{"limit": {"7"}, "city": {"Austin"}})
	require.Equal(t, 2, repo.fetches)
}

func TestSearch_RouteKindRestricts(t *testing.T) {
	repo := &fakeRepo{listings: []domain.Listing{
		listing("v1", domain.KindVenue, "Austin", 1, 1),
		listing("e1", domain.KindEvent, "Austin", 1, 1),
	}}
	svc := newService(repo, nil)

	res := svc.Search(context.Background(), "events", url.Values{"kind": {"venue"}})
	require.Len(t, res.Items, 1)
	require.Equal(t, "e1", res.Items[0].ID)
	require.Equal(t, []domain.Kind{domain.KindEvent}, repo.hints.Kinds)

	res = svc.Search(context.Background(), app.AllKinds, nil)
	require.Len(t, res.Items, 2)
	require.NotNil(t, res.Metrics)
	require.Equal(t, 2, res.Metrics.TotalCount)
}

func TestTrending_DefaultLimit(t *testing.T) {
	repo := &fakeRepo{}
	for i := 1; i <= 6; i++ {
		repo.listings = append(repo.listings, listing(fmt.Sprintf("v%d", i), domain.KindVenue, "Austin", i*10, 1))
	}
	svc := newService(repo, nil)
	ctx := context.Background()

	res := svc.Trending(ctx, "venues", nil)
	require.Len(t, res.Items, 4)
	require.Equal(t, 4, res.Pagination.PageSize)
	require.Equal(t, "v6", res.Items[0].ID)
	require.Nil(t, res.Metrics)

	res = svc.Trending(ctx, "venues", url.Values{"limit": {"2"}})
	require.Len(t, res.Items, 2)
	require.True(t, res.Pagination.HasMore)
}

func TestNewest_WindowAndOrder(t *testing.T) {
	old := listing("old", domain.KindEvent, "Austin", 1, 1)
	old.CreatedAt = now.AddDate(-1, 0, 0)
	fresh := listing("fresh", domain.KindEvent, "Austin", 1, 1)
	fresh.CreatedAt = now.Add(-time.Hour)
	mid := listing("mid", domain.KindEvent, "Austin", 1, 1)
	mid.CreatedAt = now.AddDate(0, 0, -20)

	svc := newService(&fakeRepo{listings: []domain.Listing{old, mid, fresh}}, nil)
	res := svc.Newest(context.Background(), "events", nil)
	require.Len(t, res.Items, 2)
	require.Equal(t, "fresh", res.Items[0].ID)
	require.Equal(t, "mid", res.Items[1].ID)
}

func TestGetListing(t *testing.T) {
	repo := &fakeRepo{listings: []domain.Listing{listing("v1", domain.KindVenue, "Austin", 1, 1)}}
	svc := newService(repo, &fakeCache{})
	ctx := context.Background()

	l, err := svc.GetListing(ctx, "v1")
	require.NoError(t, err)
	require.Equal(t, "Listing v1", l.Name)

	_, err = svc.GetListing(ctx, "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
