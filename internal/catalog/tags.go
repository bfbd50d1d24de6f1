package catalog

import (
	"encoding/json"
	"sort"
)

// TagSet is an immutable set of tag labels. The zero value is the empty set.
type TagSet struct {
	m map[string]struct{}
}

// NewTagSet builds a set from tags. Duplicates collapse and empty labels are dropped.
func NewTagSet(tags ...string) TagSet {
	m := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		m[t] = struct{}{}
	}
	return TagSet{m: m}
}

// Has reports whether tag is a member of the set.
func (s TagSet) Has(tag string) bool {
	_, ok := s.m[tag]
	return ok
}

// Len returns the number of tags in the set.
func (s TagSet) Len() int {
	return len(s.m)
}

// Sorted returns the members in lexical order.
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s.m))
	for t := range s.m {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Ordered returns the members following the order of vocab; members missing
// from vocab are appended in lexical order.
func (s TagSet) Ordered(vocab []string) []string {
	out := make([]string, 0, len(s.m))
	seen := make(map[string]struct{}, len(s.m))
	for _, t := range vocab {
		if _, dup := seen[t]; dup || !s.Has(t) {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range s.Sorted() {
		if _, ok := seen[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// SubsetOf reports whether every member of s is also in o.
func (s TagSet) SubsetOf(o TagSet) bool {
	for t := range s.m {
		if !o.Has(t) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold exactly the same members.
func (s TagSet) Equal(o TagSet) bool {
	return s.Len() == o.Len() && s.SubsetOf(o)
}

// Union returns a new set holding the members of both sets.
func (s TagSet) Union(o TagSet) TagSet {
	m := make(map[string]struct{}, len(s.m)+len(o.m))
	for t := range s.m {
		m[t] = struct{}{}
	}
	for t := range o.m {
		m[t] = struct{}{}
	}
	return TagSet{m: m}
}

// Toggle returns a new set with tag removed if present and added if absent.
// The input set is left untouched.
func Toggle(selected TagSet, tag string) TagSet {
	m := make(map[string]struct{}, len(selected.m)+1)
	for t := range selected.m {
		m[t] = struct{}{}
	}
	if _, ok := m[tag]; ok {
		delete(m, tag)
	} else {
		m[tag] = struct{}{}
	}
	return TagSet{m: m}
}

// MarshalJSON encodes the set as a sorted array.
func (s TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of tags; null yields the empty set.
func (s *TagSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*s = NewTagSet(tags...)
	return nil
}
