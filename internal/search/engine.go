package search

import (
	"cmp"
	"net/url"
	"slices"
	"strings"
	"time"

	"funmarket/internal/domain"
)

const (
	DefaultNewWithin     = 90 * 24 * time.Hour
	DefaultPopularCities = 5
)

// Engine runs searches over caller-supplied snapshots. Its fields are
// configuration only; a single Engine is safe for concurrent use.
type Engine struct {
	Loc           *time.Location
	Clock         domain.Clock
	NewWithin     time.Duration
	PopularCities int
}

func NewEngine(loc *time.Location, clock domain.Clock) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Engine{Loc: loc, Clock: clock, NewWithin: DefaultNewWithin, PopularCities: DefaultPopularCities}
}

func (e *Engine) ParseQuery(values url.Values) domain.Query {
	return ParseQuery(values, e.Loc)
}

func (e *Engine) Normalizer() Normalizer {
	return NewNormalizer(e.Loc, e.Clock)
}

// Search filters, orders and pages the snapshot.
func (e *Engine) Search(snapshot []domain.Listing, q domain.Query) domain.Result {
	filtered := Filter(snapshot, q)
	summary := e.Summarize(snapshot, filtered, q)
	Sort(filtered, q.Sort)
	return e.page(filtered, q, &summary)
}

// Trending ranks the filtered set by recency-weighted review volume.
func (e *Engine) Trending(snapshot []domain.Listing, q domain.Query) domain.Result {
	filtered := Filter(snapshot, q)
	SortTrending(filtered)
	return e.page(filtered, q, nil)
}

// Newest keeps listings created within NewWithin of the clock, newest first.
func (e *Engine) Newest(snapshot []domain.Listing, q domain.Query) domain.Result {
	cutoff := e.Clock.Now().Add(-e.NewWithin)
	filtered := Filter(snapshot, q)
	recent := filtered[:0]
	for _, l := range filtered {
		if l.CreatedAt.After(cutoff) {
			recent = append(recent, l)
		}
	}
	Sort(recent, domain.SortNewest)
	return e.page(recent, q, nil)
}

func (e *Engine) page(ordered []domain.Listing, q domain.Query, summary *domain.Summary) domain.Result {
	items, p := Paginate(ordered, q.Page, q.PageSize)
	return domain.Result{Items: items, Pagination: p, Filters: q, Metrics: summary}
}

// Hints extracts the facets a store may evaluate itself.
func Hints(q domain.Query) domain.FilterHints {
	h := domain.FilterHints{Capacity: q.Capacity, Price: q.Price}
	for _, k := range q.Kinds.Sorted() {
		h.Kinds = append(h.Kinds, domain.Kind(k))
	}
	h.Types = q.TypeFilter.Sorted()
	return h
}

// FailOpen is the well-formed empty result returned when no snapshot could be
// fetched.
func FailOpen(q domain.Query, err error) domain.Result {
	msg := "failed to load listings"
	if err != nil {
		msg = err.Error()
	}
	return domain.Result{
		Items:      []domain.Listing{},
		Pagination: domain.Pagination{Page: 1, PageSize: q.PageSize},
		Filters:    q,
		Error:      msg,
	}
}

var facetsExceptType = []Predicate{
	MatchKind, MatchCapacity, MatchPrice, MatchAvailability,
	MatchAmenities, MatchCity, MatchFreeText,
}

// Summarize computes listing metrics over the filtered set. TypeCounts ignores
// the type facet so every category shows what selecting it would yield.
func (e *Engine) Summarize(snapshot, filtered []domain.Listing, q domain.Query) domain.Summary {
	s := domain.Summary{TotalCount: len(filtered), PopularCities: []domain.CityCount{}}

	var sum float64
	var priced int
	// keyed by folded name; the first spelling seen is reported
	cities := map[string]*domain.CityCount{}
	for _, l := range filtered {
		if lo, _, ok := l.Price.Bounds(); ok {
			sum += lo
			priced++
		}
		c := strings.TrimSpace(l.Location.City)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if cc, ok := cities[key]; ok {
			cc.Count++
		} else {
			cities[key] = &domain.CityCount{City: c, Count: 1}
		}
	}
	if priced > 0 {
		avg := sum / float64(priced)
		s.AveragePrice = &avg
	}

	for _, cc := range cities {
		s.PopularCities = append(s.PopularCities, *cc)
	}
	slices.SortFunc(s.PopularCities, func(a, b domain.CityCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.City, b.City)
	})
	if limit := e.PopularCities; limit > 0 && len(s.PopularCities) > limit {
		s.PopularCities = s.PopularCities[:limit]
	}

	for _, l := range filterWith(facetsExceptType, snapshot, q) {
		if l.Type == "" {
			continue
		}
		if s.TypeCounts == nil {
			s.TypeCounts = map[string]int{}
		}
		s.TypeCounts[l.Type]++
	}
	return s
}
