package search

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"funmarket/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func queryValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ParseQuery turns raw request parameters into a Query. It never fails:
// anything unusable falls back to its default.
func ParseQuery(values url.Values, loc *time.Location) domain.Query {
	q := domain.Query{
		FreeText:   fold(first(values, "search", "q")),
		City:       fold(values.Get("city")),
		Kinds:      domain.StringSet{},
		TypeFilter: tokenSet(values["type"]),
		Amenities:  tokenSet(values["amenities"]),
		Sort:       parseSort(values.Get("sort")),
		Page:       clampInt(first(values, "page"), 1, 1, math.MaxInt32),
		PageSize:   clampInt(first(values, "limit", "pageSize"), domain.DefaultPageSize, 1, domain.MaxPageSize),
	}
	q.Capacity = parseRange(first(values, "capacity", "minCapacity"), values.Get("maxCapacity"))
	q.Price = parseRange(values.Get("minPrice"), values.Get("maxPrice"))
	if d, ok := CalendarDate(first(values, "availability", "date"), loc); ok {
		q.AvailabilityDate = d
	}
	for _, k := range tokenSet(values["kind"]).Sorted() {
		if kind, ok := domain.ParseKind(k); ok {
			q.Kinds[string(kind)] = struct{}{}
		}
	}
	mustValid(q)
	return q
}

// mustValid panics on a Query the parser should never have produced.
func mustValid(q domain.Query) {
	if err := queryValidator().Struct(q); err != nil {
		panic("search: normalized query violates invariants: " + err.Error())
	}
}

func first(values url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(values.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

func fold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func parseSort(s string) domain.SortKey {
	key := domain.SortKey(fold(s))
	for _, k := range domain.SortKeys {
		if k == key {
			return k
		}
	}
	return domain.SortRecommended
}

func clampInt(s string, def, lo, hi int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// tokenSet splits comma-separated (and repeated) values into a folded set.
func tokenSet(raw []string) domain.StringSet {
	out := domain.StringSet{}
	for _, v := range raw {
		for _, tok := range strings.Split(v, ",") {
			if tok = fold(tok); tok != "" {
				out[tok] = struct{}{}
			}
		}
	}
	return out
}

func parseBound(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseRange swaps an inverted pair instead of rejecting it.
func parseRange(minRaw, maxRaw string) domain.Range {
	r := domain.Range{Min: parseBound(minRaw), Max: parseBound(maxRaw)}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}
