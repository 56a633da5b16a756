package search

import (
	"fmt"
	"time"

	"funmarket/internal/domain"
)

func pint(i int) *int           { return &i }
func pfloat(f float64) *float64 { return &f }

type opt func(*domain.Listing)

func venue(id string, opts ...opt) domain.Listing {
	l := domain.Listing{
		ID:               id,
		Kind:             domain.KindVenue,
		Name:             "Venue " + id,
		Amenities:        domain.StringSet{},
		Images:           []string{},
		UnavailableDates: domain.StringSet{},
		CreatedAt:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Price:            domain.Price{PerUnit: domain.PerHour},
	}
	for _, o := range opts {
		o(&l)
	}
	return l
}

func capacity(n int) opt      { return func(l *domain.Listing) { l.Capacity = pint(n) } }
func price(p float64) opt     { return func(l *domain.Listing) { l.Price.Min = pfloat(p) } }
func rating(r float64) opt    { return func(l *domain.Listing) { l.Rating.Average = pfloat(r) } }
func reviews(n int) opt       { return func(l *domain.Listing) { l.Rating.ReviewCount = n } }
func city(c string) opt       { return func(l *domain.Listing) { l.Location.City = c } }
func typ(t string) opt        { return func(l *domain.Listing) { l.Type = t } }
func lastBooked(d int) opt    { return func(l *domain.Listing) { l.LastBookedDaysAgo = pint(d) } }
func created(t time.Time) opt { return func(l *domain.Listing) { l.CreatedAt = t } }
func kind(k domain.Kind) opt  { return func(l *domain.Listing) { l.Kind = k } }
func distance(d float64) opt  { return func(l *domain.Listing) { l.DistanceFromOrigin = pfloat(d) } }
func amenities(a ...string) opt {
	return func(l *domain.Listing) { l.Amenities = domain.NewStringSet(a...) }
}
func blackout(d ...string) opt {
	return func(l *domain.Listing) { l.UnavailableDates = domain.NewStringSet(d...) }
}

// tenVenues: exactly v01..v04 have a capacity inside [100,300].
func tenVenues() []domain.Listing {
	caps := []int{50, 100, 150, 250, 300, 350, 400, 450, 500, 80}
	out := make([]domain.Listing, 0, len(caps))
	for i, c := range caps {
		out = append(out, venue(fmt.Sprintf("v%02d", i), capacity(c)))
	}
	return out
}

func ids(ls []domain.Listing) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.ID
	}
	return out
}

func baseQuery() domain.Query {
	return ParseQuery(nil, time.UTC)
}
