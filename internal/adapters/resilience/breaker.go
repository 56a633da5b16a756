package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"funmarket/internal/adapters/observability"
	"funmarket/internal/domain"
)

type BreakerConfig struct {
	Name        string
	MaxFailures uint32
	OpenTimeout time.Duration
}

// Repository guards the read paths of a ListingRepository with a circuit
// breaker. Writes pass straight through; ingest has its own retry policy.
type Repository struct {
	domain.ListingRepository
	cb *gobreaker.CircuitBreaker[[]domain.Listing]
}

func NewRepository(inner domain.ListingRepository, cfg BreakerConfig) *Repository {
	if cfg.Name == "" {
		cfg.Name = "listings-store"
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	observability.SetBreakerState(cfg.Name, stateValue(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[[]domain.Listing](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= cfg.MaxFailures
		},
		// a cancelled request says nothing about the store's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
			observability.SetBreakerState(name, stateValue(to))
		},
	})
	return &Repository{ListingRepository: inner, cb: cb}
}

func (r *Repository) FetchListings(ctx context.Context, hints domain.FilterHints) ([]domain.Listing, error) {
	return r.cb.Execute(func() ([]domain.Listing, error) {
		return r.ListingRepository.FetchListings(ctx, hints)
	})
}

func (r *Repository) State() gobreaker.State { return r.cb.State() }

func stateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}
