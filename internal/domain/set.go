package domain

import (
	"sort"

	"github.com/goccy/go-json"
)

// StringSet is an unordered set of strings. It encodes as a sorted JSON array
// so identical sets always serialize identically.
type StringSet map[string]struct{}

func NewStringSet(items ...string) StringSet {
	s := make(StringSet, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s StringSet) Len() int { return len(s) }

// ContainsAll reports whether every member of sub is in s. An empty sub is
// contained in anything.
func (s StringSet) ContainsAll(sub StringSet) bool {
	for k := range sub {
		if _, ok := s[k]; !ok {
			return false
		}
	}
	return true
}

func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *StringSet) UnmarshalJSON(b []byte) error {
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*s = NewStringSet(items...)
	return nil
}
