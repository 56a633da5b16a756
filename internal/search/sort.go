package search

import (
	"cmp"
	"slices"

	"funmarket/internal/domain"
)

const (
	recommendedRatingWeight = 0.7
	recommendedReviewWeight = 0.3
)

// Sort orders items in place by key, breaking ties by id ascending.
func Sort(items []domain.Listing, key domain.SortKey) {
	primary := comparator(key)
	slices.SortStableFunc(items, func(a, b domain.Listing) int {
		if c := primary(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func comparator(key domain.SortKey) func(a, b domain.Listing) int {
	switch key {
	case domain.SortPriceLow:
		return func(a, b domain.Listing) int { return nullsLast(priceKey(a), priceKey(b), false) }
	case domain.SortPriceHigh:
		return func(a, b domain.Listing) int { return nullsLast(priceKey(a), priceKey(b), true) }
	case domain.SortDistance:
		return func(a, b domain.Listing) int {
			return nullsLast(a.DistanceFromOrigin, b.DistanceFromOrigin, false)
		}
	case domain.SortRating:
		return func(a, b domain.Listing) int {
			return nullsLast(a.Rating.Average, b.Rating.Average, true)
		}
	case domain.SortCapacity:
		return func(a, b domain.Listing) int {
			return nullsLast(intKey(a.Capacity), intKey(b.Capacity), false)
		}
	case domain.SortNewest:
		return func(a, b domain.Listing) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case domain.SortPopular:
		return func(a, b domain.Listing) int { return cmp.Compare(b.Rating.ReviewCount, a.Rating.ReviewCount) }
	default:
		return func(a, b domain.Listing) int { return cmp.Compare(RecommendedScore(b), RecommendedScore(a)) }
	}
}

// RecommendedScore weighs rating against review volume. A listing without a
// rating counts as 0 here, unlike the rating sort which puts it last.
func RecommendedScore(l domain.Listing) float64 {
	avg := 0.0
	if l.Rating.Average != nil {
		avg = *l.Rating.Average
	}
	return avg*recommendedRatingWeight + float64(l.Rating.ReviewCount)*recommendedReviewWeight
}

// priceKey is the lower price bound, falling back to the upper one.
func priceKey(l domain.Listing) *float64 {
	if lo, _, ok := l.Price.Bounds(); ok {
		return &lo
	}
	return nil
}

func intKey(p *int) *float64 {
	if p == nil {
		return nil
	}
	f := float64(*p)
	return &f
}

// nullsLast compares two optional values; nil sorts after any value in both
// directions.
func nullsLast(a, b *float64, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case desc:
		return cmp.Compare(*b, *a)
	default:
		return cmp.Compare(*a, *b)
	}
}
