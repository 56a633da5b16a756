package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"

	"funmarket/internal/adapters/resilience"
	"funmarket/internal/domain"
)

type flakyRepo struct {
	domain.ListingRepository
	err   error
	calls int
}

func (f *flakyRepo) FetchListings(ctx context.Context, h domain.FilterHints) ([]domain.Listing, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Listing{{ID: "v1"}}, nil
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyRepo{err: errors.New("db down")}
	r := resilience.NewRepository(inner, resilience.BreakerConfig{Name: "t-open", MaxFailures: 2, OpenTimeout: time.Hour})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := r.FetchListings(ctx, domain.FilterHints{})
		require.ErrorContains(t, err, "db down")
	}
	require.Equal(t, gobreaker.StateOpen, r.State())

	_, err := r.FetchListings(ctx, domain.FilterHints{})
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.Equal(t, 2, inner.calls, "open breaker must not reach the store")
}

func TestBreaker_PassesThroughOnSuccess(t *testing.T) {
	inner := &flakyRepo{}
	r := resilience.NewRepository(inner, resilience.BreakerConfig{Name: "t-ok"})

	got, err := r.FetchListings(context.Background(), domain.FilterHints{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, gobreaker.StateClosed, r.State())
}

func TestBreaker_CancelledContextDoesNotTrip(t *testing.T) {
	inner := &flakyRepo{err: context.Canceled}
	r := resilience.NewRepository(inner, resilience.BreakerConfig{Name: "t-cancel", MaxFailures: 1})

	for i := 0; i < 3; i++ {
		_, err := r.FetchListings(context.Background(), domain.FilterHints{})
		require.ErrorIs(t, err, context.Canceled)
	}
	require.Equal(t, gobreaker.StateClosed, r.State())
}
