package search

import (
	"math"
	"strconv"
	"strings"
)

// Alias registries: the first path that yields a usable value wins.
var listingAliases = map[string][]string{
	"id":          {"id", "listing_id", "uuid"},
	"name":        {"name", "title", "stage_name", "stageName"},
	"description": {"description", "bio", "summary"},
	"type":        {"venue_type", "venueType", "category", "genre", "genres", "type"},
	"address":     {"address", "location.address", "address_raw", "full_address"},
	"city":        {"city", "location.city", "home_city", "venues.city"},
	"hood":        {"neighborhood", "location.neighborhood", "district"},
	"lat":         {"latitude", "lat", "coordinates.lat", "location.coordinates.lat"},
	"lng":         {"longitude", "lng", "lon", "coordinates.lng", "location.coordinates.lng"},
	"capacity":    {"max_capacity", "capacity", "venues.max_capacity"},
	"rating":      {"average_rating", "rating.average", "rating"},
	"reviews":     {"total_reviews", "review_count", "reviewCount", "rating.reviewCount"},
	"created":     {"created_at", "listed_date", "createdAt", "start_datetime"},
	"lastBooked":  {"last_booked_days_ago", "lastBookedDaysAgo"},
	"distance":    {"distance", "distance_from_origin", "distanceFromOrigin"},
	"gallery":     {"images", "gallery_images", "gallery"},
	"image":       {"image_url", "imageUrl", "image"},
	"blackout":    {"unavailable_dates", "blackout_dates", "unavailableDates"},
	"verified":    {"verified", "is_verified"},
	"featured":    {"featured", "is_featured"},
	"unit":        {"price_unit", "priceUnit", "price.perUnit"},
}

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstAlias returns the first non-nil value found under an alias set.
func firstAlias(m map[string]any, key string) any {
	for _, p := range listingAliases[key] {
		if v := lookupAny(m, p); v != nil {
			return v
		}
	}
	return nil
}

// stringAlias returns the first non-empty string for an alias set. Numbers are
// accepted too since some sources send numeric ids.
func stringAlias(m map[string]any, key string) string {
	for _, p := range listingAliases[key] {
		switch v := lookupAny(m, p).(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		case []any:
			// genres arrive as a list; the first string is the category
			for _, it := range v {
				if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s)
				}
			}
		}
	}
	return ""
}

// toFloat converts float64/int/string like "8,5" to a float. NaN and
// infinities are not numbers here.
func toFloat(v any) (float64, bool) {
	f, ok := rawFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func rawFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// floatFlexible: number from several paths; nil when none parse.
func floatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		if f, ok := toFloat(lookupAny(m, k)); ok {
			return &f
		}
	}
	return nil
}

func floatAlias(m map[string]any, key string) *float64 {
	return floatFlexible(m, listingAliases[key]...)
}

func intAlias(m map[string]any, key string) *int {
	if f := floatAlias(m, key); f != nil && *f >= math.MinInt32 && *f <= math.MaxInt32 {
		n := int(*f)
		return &n
	}
	return nil
}

func boolAlias(m map[string]any, key string) bool {
	for _, p := range listingAliases[key] {
		if b, ok := lookupAny(m, p).(bool); ok {
			return b
		}
	}
	return false
}

// stringsOf keeps the string entries of a JSON array (or {url/src} objects);
// anything else yields nil.
func stringsOf(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		if ss, ok := v.([]string); ok {
			return append([]string(nil), ss...)
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, it := range raw {
		switch t := it.(type) {
		case string:
			if t != "" {
				out = append(out, t)
			}
		case map[string]any:
			if u, ok := t["url"].(string); ok && u != "" {
				out = append(out, u)
				continue
			}
			if u, ok := t["src"].(string); ok && u != "" {
				out = append(out, u)
			}
		}
	}
	return out
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		return strings.TrimSpace(t) != ""
	}
	return false
}
