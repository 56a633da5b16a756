package search

import (
	"strings"

	"funmarket/internal/domain"
)

// Predicate is one facet of the filter. Facets are independent, so the order
// they run in never changes the outcome.
type Predicate func(l domain.Listing, q domain.Query) bool

// Facets lists the predicates cheapest first.
var Facets = []Predicate{
	MatchKind,
	MatchType,
	MatchCapacity,
	MatchPrice,
	MatchAvailability,
	MatchAmenities,
	MatchCity,
	MatchFreeText,
}

// Matches is the AND of every facet.
func Matches(l domain.Listing, q domain.Query) bool {
	return matchAll(Facets, l, q)
}

func matchAll(preds []Predicate, l domain.Listing, q domain.Query) bool {
	for _, p := range preds {
		if !p(l, q) {
			return false
		}
	}
	return true
}

func MatchFreeText(l domain.Listing, q domain.Query) bool {
	if q.FreeText == "" {
		return true
	}
	for _, field := range []string{
		l.Name, l.Description, l.Type,
		l.Location.Address, l.Location.City, l.Location.Neighborhood,
	} {
		if strings.Contains(strings.ToLower(field), q.FreeText) {
			return true
		}
	}
	return false
}

func MatchCity(l domain.Listing, q domain.Query) bool {
	return q.City == "" || strings.Contains(strings.ToLower(l.Location.City), q.City)
}

func MatchKind(l domain.Listing, q domain.Query) bool {
	return q.Kinds.Len() == 0 || q.Kinds.Has(string(l.Kind))
}

func MatchType(l domain.Listing, q domain.Query) bool {
	return q.TypeFilter.Len() == 0 || q.TypeFilter.Has(l.Type)
}

// MatchCapacity never excludes a listing whose capacity is unknown.
func MatchCapacity(l domain.Listing, q domain.Query) bool {
	if l.Capacity == nil {
		return true
	}
	return q.Capacity.Contains(float64(*l.Capacity))
}

// MatchPrice never excludes a listing without a price.
func MatchPrice(l domain.Listing, q domain.Query) bool {
	lo, hi, ok := l.Price.Bounds()
	if !ok {
		return true
	}
	return q.Price.Overlaps(lo, hi)
}

func MatchAmenities(l domain.Listing, q domain.Query) bool {
	return l.Amenities.ContainsAll(q.Amenities)
}

func MatchAvailability(l domain.Listing, q domain.Query) bool {
	return IsAvailable(l, q.AvailabilityDate)
}

// Filter returns the matching listings in snapshot order. The snapshot is not
// modified; duplicate ids after the first are skipped.
func Filter(snapshot []domain.Listing, q domain.Query) []domain.Listing {
	return filterWith(Facets, snapshot, q)
}

func filterWith(preds []Predicate, snapshot []domain.Listing, q domain.Query) []domain.Listing {
	out := make([]domain.Listing, 0, len(snapshot))
	seen := make(map[string]struct{}, len(snapshot))
	for _, l := range snapshot {
		if _, dup := seen[l.ID]; dup {
			continue
		}
		seen[l.ID] = struct{}{}
		if matchAll(preds, l, q) {
			out = append(out, l)
		}
	}
	return out
}
