package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"funmarket/internal/domain"
)

func TestFilter_CapacityRange(t *testing.T) {
	q := parse("capacity=100&maxCapacity=300")

	got := Filter(tenVenues(), q)

	require.ElementsMatch(t, []string{"v01", "v02", "v03", "v04"}, ids(got))
}

func TestFilter_UnknownCapacityAndPriceAlwaysPass(t *testing.T) {
	snap := []domain.Listing{
		venue("known", capacity(10), price(5)),
		venue("unknown"),
	}
	q := parse("capacity=100&maxCapacity=300&minPrice=50&maxPrice=60")

	require.Equal(t, []string{"unknown"}, ids(Filter(snap, q)))
}

func TestFilter_PriceOverlap(t *testing.T) {
	ranged := venue("ranged", func(l *domain.Listing) {
		l.Price.Min, l.Price.Max = pfloat(40), pfloat(90)
	})
	onlyMax := venue("onlymax", func(l *domain.Listing) { l.Price.Max = pfloat(70) })
	snap := []domain.Listing{ranged, onlyMax, venue("cheap", price(10))}

	require.ElementsMatch(t, []string{"ranged", "onlymax"}, ids(Filter(snap, parse("minPrice=60&maxPrice=80"))))
	require.ElementsMatch(t, []string{"ranged"}, ids(Filter(snap, parse("minPrice=85"))))
}

func TestFilter_AmenitiesAllRequired(t *testing.T) {
	snap := []domain.Listing{
		venue("wifi-only", amenities("wifi")),
		venue("full", amenities("wifi", "parking", "bar")),
		venue("none"),
	}

	require.Equal(t, []string{"full"}, ids(Filter(snap, parse("amenities=wifi,parking"))))
	require.Equal(t, []string{"wifi-only", "full", "none"}, ids(Filter(snap, parse(""))))
}

func TestFilter_TextCityTypeKind(t *testing.T) {
	snap := []domain.Listing{
		venue("a", city("Austin"), typ("music"), func(l *domain.Listing) { l.Description = "Live JAZZ every night" }),
		venue("b", city("Boston"), typ("theater")),
		venue("c", city("South Austin"), typ("music"), kind(domain.KindEvent)),
	}

	require.Equal(t, []string{"a"}, ids(Filter(snap, parse("search=jazz"))))
	require.Equal(t, []string{"a", "c"}, ids(Filter(snap, parse("city=austin"))))
	require.Equal(t, []string{"b"}, ids(Filter(snap, parse("type=theater,opera"))))
	require.Equal(t, []string{"c"}, ids(Filter(snap, parse("kind=events"))))
}

func TestFilter_DuplicateIDsKeepFirst(t *testing.T) {
	snap := []domain.Listing{venue("a", capacity(1)), venue("a", capacity(2))}

	got := Filter(snap, parse(""))

	require.Len(t, got, 1)
	require.Equal(t, 1, *got[0].Capacity)
}

func TestFilter_FacetOrderDoesNotMatter(t *testing.T) {
	snap := append(tenVenues(),
		venue("x", capacity(200), amenities("wifi"), blackout("2024-07-04"), city("Austin")),
		venue("y", capacity(200), amenities("wifi", "parking"), city("Austin"), price(70)),
	)
	for i := range snap {
		if i%2 == 0 {
			snap[i].Amenities = domain.NewStringSet("wifi")
			snap[i].Location.City = "Austin"
		}
	}
	q := parse("capacity=100&maxCapacity=300&amenities=wifi&availability=2024-07-04&city=aus&minPrice=0&maxPrice=100")

	want := ids(filterWith(Facets, snap, q))
	reversed := make([]Predicate, len(Facets))
	for i, p := range Facets {
		reversed[len(Facets)-1-i] = p
	}
	rotated := append(append([]Predicate{}, Facets[3:]...), Facets[:3]...)

	require.Equal(t, want, ids(filterWith(reversed, snap, q)))
	require.Equal(t, want, ids(filterWith(rotated, snap, q)))
	require.NotEmpty(t, want)
}

func TestAvailability_BlackoutDate(t *testing.T) {
	l := venue("a", blackout("2024-07-04"))

	require.False(t, IsAvailable(l, "2024-07-04"))
	require.True(t, IsAvailable(l, "2024-07-05"))
	require.True(t, IsAvailable(l, ""))
	require.True(t, IsAvailable(venue("b"), "2024-07-04"))
}
