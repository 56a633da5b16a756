package search

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"funmarket/internal/adapters/observability"
	"funmarket/internal/domain"
)

// Normalizer maps raw source records onto domain.Listing. It has no mutable
// state; Loc and Clock only decide how dates are read and defaulted.
type Normalizer struct {
	Loc   *time.Location
	Clock domain.Clock
}

func NewNormalizer(loc *time.Location, clock domain.Clock) Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return Normalizer{Loc: loc, Clock: clock}
}

var createdLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Normalize fails only when the record has no id or no name; every other
// field degrades to its documented default.
func (n Normalizer) Normalize(kind domain.Kind, raw map[string]any) (domain.Listing, error) {
	id := stringAlias(raw, "id")
	if id == "" {
		return domain.Listing{}, &domain.MalformedRecordError{Kind: kind, Field: "id"}
	}
	name := stringAlias(raw, "name")
	if name == "" {
		return domain.Listing{}, &domain.MalformedRecordError{Kind: kind, Field: "name", ID: id}
	}

	l := domain.Listing{
		ID:                 id,
		Kind:               kind,
		Type:               strings.ToLower(stringAlias(raw, "type")),
		Name:               name,
		Description:        stringAlias(raw, "description"),
		Location:           n.location(raw),
		Capacity:           intAlias(raw, "capacity"),
		Price:              priceOf(kind, raw),
		Amenities:          amenitiesOf(lookupAny(raw, "amenities")),
		Images:             imagesOf(raw),
		Rating:             domain.Rating{Average: floatAlias(raw, "rating"), ReviewCount: reviewCount(raw)},
		CreatedAt:          n.createdAt(raw),
		UnavailableDates:   n.blackoutDates(raw),
		LastBookedDaysAgo:  intAlias(raw, "lastBooked"),
		DistanceFromOrigin: floatAlias(raw, "distance"),
		Verified:           boolAlias(raw, "verified"),
		Featured:           boolAlias(raw, "featured"),
	}
	return l, nil
}

// NormalizeAll drops malformed records and keeps the rest in input order.
func (n Normalizer) NormalizeAll(kind domain.Kind, raws []map[string]any) ([]domain.Listing, []error) {
	out := make([]domain.Listing, 0, len(raws))
	var errs []error
	for _, r := range raws {
		l, err := n.Normalize(kind, r)
		if err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Msg("dropping malformed record")
			observability.ObserveDropped(string(kind))
			errs = append(errs, err)
			continue
		}
		out = append(out, l)
	}
	return out, errs
}

func (n Normalizer) location(raw map[string]any) domain.Location {
	loc := domain.Location{
		Address:      stringAlias(raw, "address"),
		City:         stringAlias(raw, "city"),
		Neighborhood: stringAlias(raw, "hood"),
	}
	// performers store "City, State" in a free-form location string
	if s, ok := raw["location"].(string); ok {
		parts := strings.Split(s, ",")
		if loc.City == "" && len(parts) > 0 {
			loc.City = strings.TrimSpace(parts[0])
		}
		if loc.Address == "" {
			loc.Address = strings.TrimSpace(s)
		}
	}
	lat, lng := floatAlias(raw, "lat"), floatAlias(raw, "lng")
	if lat != nil && lng != nil {
		loc.Coordinates = &domain.Coordinates{Lat: *lat, Lng: *lng}
	}
	return loc
}

func priceOf(kind domain.Kind, raw map[string]any) domain.Price {
	p := domain.Price{PerUnit: domain.PerHour}
	switch kind {
	case domain.KindEvent:
		p.PerUnit = domain.PerEvent
		p.Min = floatFlexible(raw, "ticket_price", "price_min", "price.min", "price")
	case domain.KindPerformer:
		p.Min = floatFlexible(raw, "base_price", "hourly_rate", "hourlyRate", "price.min", "price")
	default:
		p.Min = floatFlexible(raw, "price_per_hour", "pricePerHour", "price_min", "price.min", "price")
	}
	p.Max = floatFlexible(raw, "price_max", "price.max")
	if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
		p.Min, p.Max = p.Max, p.Min
	}
	switch u := domain.PriceUnit(strings.ToLower(stringAlias(raw, "unit"))); u {
	case domain.PerHour, domain.PerEvent, domain.PerDay:
		p.PerUnit = u
	}
	return p
}

// amenitiesOf accepts a string array or an object of flags; anything else is
// the empty set.
func amenitiesOf(v any) domain.StringSet {
	out := domain.StringSet{}
	switch t := v.(type) {
	case []any, []string:
		for _, s := range stringsOf(t) {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out[s] = struct{}{}
			}
		}
	case map[string]any:
		for k, flag := range t {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" && truthy(flag) {
				out[k] = struct{}{}
			}
		}
	}
	return out
}

func imagesOf(raw map[string]any) []string {
	images := stringsOf(firstAlias(raw, "gallery"))
	if images == nil {
		images = []string{}
	}
	if len(images) == 0 {
		if u := stringAlias(raw, "image"); u != "" {
			images = []string{u}
		}
	}
	return images
}

func reviewCount(raw map[string]any) int {
	if n := intAlias(raw, "reviews"); n != nil && *n > 0 {
		return *n
	}
	return 0
}

func (n Normalizer) createdAt(raw map[string]any) time.Time {
	for _, p := range listingAliases["created"] {
		s, ok := lookupAny(raw, p).(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		for _, layout := range createdLayouts {
			if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), n.Loc); err == nil {
				return t.UTC()
			}
		}
	}
	return n.Clock.Now().UTC()
}

func (n Normalizer) blackoutDates(raw map[string]any) domain.StringSet {
	out := domain.StringSet{}
	items, ok := firstAlias(raw, "blackout").([]any)
	if !ok {
		return out
	}
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			continue
		}
		if d, ok := CalendarDate(s, n.Loc); ok {
			out[d] = struct{}{}
		}
	}
	return out
}
