package httpserver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	httpserver "funmarket/internal/adapters/http_server"
	"funmarket/internal/app"
	"funmarket/internal/domain"
	"funmarket/internal/search"
)

type stubRepo struct {
	domain.ListingRepository
	listings []domain.Listing
	err      error
}

func (s *stubRepo) FetchListings(ctx context.Context, h domain.FilterHints) ([]domain.Listing, error) {
	return s.listings, s.err
}

func (s *stubRepo) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	for _, l := range s.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.Listing{}, domain.ErrNotFound
}

var now = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func price(v float64) domain.Price { return domain.Price{Min: &v, Max: &v, PerUnit: domain.PerHour} }

func newHandler(repo domain.ListingRepository, opts httpserver.Options) http.Handler {
	eng := search.NewEngine(time.UTC, domain.FixedClock(now))
	svc := app.NewSearchService(repo, nil, time.Minute, eng, 4)
	srv := httpserver.New(opts)
	srv.MountHandlers(&httpserver.Handlers{S: svc})
	return srv.Mux()
}

func fixtures() []domain.Listing {
	return []domain.Listing{
		{ID: "v1", Kind: domain.KindVenue, Name: "Loft", Price: price(120), CreatedAt: now.AddDate(0, 0, -3)},
		{ID: "v2", Kind: domain.KindVenue, Name: "Barn", Price: price(50), CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "e1", Kind: domain.KindEvent, Name: "Gig", Price: price(80), CreatedAt: now.AddDate(-1, 0, 0)},
	}
}

func get(t *testing.T, h http.Handler, path string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSearchRoute_SortsAndETags(t *testing.T) {
	h := newHandler(&stubRepo{listings: fixtures()}, httpserver.Options{})

	rr := get(t, h, "/v1/venues?sort=price_low", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var res domain.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Len(t, res.Items, 2)
	require.Equal(t, "v2", res.Items[0].ID)
	require.Equal(t, "v1", res.Items[1].ID)
	require.Equal(t, 2, res.Pagination.Total)

	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)
	rr = get(t, h, "/v1/venues?sort=price_low", map[string]string{"If-None-Match": etag})
	require.Equal(t, http.StatusNotModified, rr.Code)
}

func TestSearchRoute_SubViewsBeatIDRoute(t *testing.T) {
	h := newHandler(&stubRepo{listings: fixtures()}, httpserver.Options{})

	rr := get(t, h, "/v1/listings/trending", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var res domain.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, 4, res.Pagination.PageSize)
	require.Len(t, res.Items, 3)

	rr = get(t, h, "/v1/listings/new", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Len(t, res.Items, 2)
	require.Equal(t, "v2", res.Items[0].ID)
}

func TestGetListingRoute(t *testing.T) {
	h := newHandler(&stubRepo{listings: fixtures()}, httpserver.Options{})

	rr := get(t, h, "/v1/listings/e1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var l domain.Listing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &l))
	require.Equal(t, "Gig", l.Name)

	rr = get(t, h, "/v1/listings/missing", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

func TestSearchRoute_FailOpen(t *testing.T) {
	h := newHandler(&stubRepo{err: errors.New("db down")}, httpserver.Options{})

	rr := get(t, h, "/v1/events?limit=5", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var res domain.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Empty(t, res.Items)
	require.NotEmpty(t, res.Error)
	require.Equal(t, domain.Pagination{Page: 1, PageSize: 5}, res.Pagination)
}

func TestSearchRoute_RateLimited(t *testing.T) {
	h := newHandler(&stubRepo{listings: fixtures()}, httpserver.Options{RateRequests: 1, RateWindow: time.Minute})

	require.Equal(t, http.StatusOK, get(t, h, "/v1/venues", nil).Code)
	require.Equal(t, http.StatusTooManyRequests, get(t, h, "/v1/venues", nil).Code)
	// health checks are not rate limited
	require.Equal(t, http.StatusOK, get(t, h, "/healthz", nil).Code)
}

func TestUnknownKindIs404(t *testing.T) {
	h := newHandler(&stubRepo{}, httpserver.Options{})
	require.Equal(t, http.StatusNotFound, get(t, h, "/v1/hotels", nil).Code)
}
