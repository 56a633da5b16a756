package domain

type SortKey string

const (
	SortRecommended SortKey = "recommended"
	SortPopular     SortKey = "popular"
	SortNewest      SortKey = "newest"
	SortPriceLow    SortKey = "price_low"
	SortPriceHigh   SortKey = "price_high"
	SortDistance    SortKey = "distance"
	SortRating      SortKey = "rating"
	SortCapacity    SortKey = "capacity"
)

var SortKeys = []SortKey{
	SortRecommended, SortPopular, SortNewest, SortPriceLow,
	SortPriceHigh, SortDistance, SortRating, SortCapacity,
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Range is an inclusive numeric range; a nil bound is unbounded.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r Range) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Overlaps reports whether [lo,hi] intersects r.
func (r Range) Overlaps(lo, hi float64) bool {
	if r.Max != nil && lo > *r.Max {
		return false
	}
	if r.Min != nil && hi < *r.Min {
		return false
	}
	return true
}

func (r Range) Unbounded() bool { return r.Min == nil && r.Max == nil }

// Query is the canonical, already-normalized form of a search request. It is
// built once per request and never mutated afterwards.
type Query struct {
	FreeText         string    `json:"search"`
	City             string    `json:"city"`
	Kinds            StringSet `json:"kinds"`
	TypeFilter       StringSet `json:"type"`
	Capacity         Range     `json:"capacity"`
	Price            Range     `json:"price"`
	Amenities        StringSet `json:"amenities"`
	AvailabilityDate string    `json:"availability,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Sort             SortKey   `json:"sort" validate:"oneof=recommended popular newest price_low price_high distance rating capacity"`
	Page             int       `json:"page" validate:"gte=1"`
	PageSize         int       `json:"limit" validate:"gte=1,lte=100"`
}

// WithKinds returns a copy of q restricted to the given kinds.
func (q Query) WithKinds(kinds ...Kind) Query {
	set := make(StringSet, len(kinds))
	for _, k := range kinds {
		set[string(k)] = struct{}{}
	}
	q.Kinds = set
	return q
}

// FilterHints carries the subset of a Query a store can evaluate with indexes.
type FilterHints struct {
	Kinds    []Kind
	Types    []string
	Capacity Range
	Price    Range
}

type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

type Summary struct {
	TotalCount    int            `json:"totalCount"`
	AveragePrice  *float64       `json:"averagePrice,omitempty"`
	PopularCities []CityCount    `json:"popularCities"`
	TypeCounts    map[string]int `json:"typeCounts,omitempty"`
}

type Result struct {
	Items      []Listing  `json:"items"`
	Pagination Pagination `json:"pagination"`
	Filters    Query      `json:"filters"`
	Metrics    *Summary   `json:"metrics,omitempty"`
	Error      string     `json:"error,omitempty"`
}
