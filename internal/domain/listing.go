package domain

import "time"

// Kind tags which listing family a record belongs to.
type Kind string

const (
	KindVenue     Kind = "venue"
	KindEvent     Kind = "event"
	KindPerformer Kind = "performer"
)

var Kinds = []Kind{KindVenue, KindEvent, KindPerformer}

// ParseKind accepts singular or plural forms ("venues" -> venue).
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "venue", "venues":
		return KindVenue, true
	case "event", "events":
		return KindEvent, true
	case "performer", "performers":
		return KindPerformer, true
	}
	return "", false
}

type PriceUnit string

const (
	PerHour  PriceUnit = "hour"
	PerEvent PriceUnit = "event"
	PerDay   PriceUnit = "day"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Location struct {
	Address      string       `json:"address"`
	City         string       `json:"city"`
	Neighborhood string       `json:"neighborhood,omitempty"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
}

type Price struct {
	Min     *float64  `json:"min"`
	Max     *float64  `json:"max"`
	PerUnit PriceUnit `json:"perUnit"`
}

// Bounds returns the price interval with a missing end filled from the other.
// ok is false when neither end is known.
func (p Price) Bounds() (lo, hi float64, ok bool) {
	switch {
	case p.Min != nil && p.Max != nil:
		return *p.Min, *p.Max, true
	case p.Min != nil:
		return *p.Min, *p.Min, true
	case p.Max != nil:
		return *p.Max, *p.Max, true
	}
	return 0, 0, false
}

// Rating.Average is nil for listings nobody has rated yet; that is shown as
// "New", never as 0.
type Rating struct {
	Average     *float64 `json:"average"`
	ReviewCount int      `json:"reviewCount"`
}

type Listing struct {
	ID                 string    `json:"id"`
	Kind               Kind      `json:"kind"`
	Type               string    `json:"type,omitempty"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Location           Location  `json:"location"`
	Capacity           *int      `json:"capacity"`
	Price              Price     `json:"price"`
	Amenities          StringSet `json:"amenities"`
	Images             []string  `json:"images"`
	Rating             Rating    `json:"rating"`
	CreatedAt          time.Time `json:"createdAt"`
	UnavailableDates   StringSet `json:"unavailableDates"`
	LastBookedDaysAgo  *int      `json:"lastBookedDaysAgo"`
	DistanceFromOrigin *float64  `json:"distanceFromOrigin"`
	Verified           bool      `json:"verified"`
	Featured           bool      `json:"featured"`
}

// StoredListing is what the ingestor persists: indexed columns plus the
// canonical listing and the untouched source payload.
type StoredListing struct {
	Listing Listing
	RawJSON []byte
}
