package search

import (
	"cmp"
	"slices"

	"funmarket/internal/domain"
)

// defaultLastBookedDays stands in for listings with no booking history.
const defaultLastBookedDays = 30

// TrendingScore is reviewCount / max(lastBookedDaysAgo, 1).
func TrendingScore(l domain.Listing) float64 {
	days := defaultLastBookedDays
	if l.LastBookedDaysAgo != nil {
		days = *l.LastBookedDaysAgo
	}
	return float64(l.Rating.ReviewCount) / float64(max(days, 1))
}

// SortTrending orders items in place by trending score, then id.
func SortTrending(items []domain.Listing) {
	slices.SortStableFunc(items, func(a, b domain.Listing) int {
		if c := cmp.Compare(TrendingScore(b), TrendingScore(a)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
