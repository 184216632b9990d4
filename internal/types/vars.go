package types

import (
	"sort"
	"strings"
)

// Vars maps variable names to values. Lookups are case-insensitive.
// The request pipeline only ever reads from a Vars value.
type Vars map[string]string

// Lookup returns the value stored under name. An exact key match wins over
// a case-insensitive one; among keys differing only in case the one sorting
// first wins.
func (v Vars) Lookup(name string) (string, bool) {
	if value, ok := v[name]; ok {
		return value, true
	}
	found := ""
	for key := range v {
		if strings.EqualFold(key, name) && (found == "" || key < found) {
			found = key
		}
	}
	if found == "" {
		return "", false
	}
	return v[found], true
}

// Set stores value under name, replacing any key that differs only in case
func (v Vars) Set(name, value string) {
	for key := range v {
		if key != name && strings.EqualFold(key, name) {
			delete(v, key)
		}
	}
	v[name] = value
}

// Normalize returns a copy of v holding one key per case-insensitive name.
// Of keys differing only in case the one sorting first is kept; dropped
// lists the others.
func (v Vars) Normalize() (normalized Vars, dropped []string) {
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	normalized = make(Vars, len(v))
	seen := make(map[string]bool, len(v))
	for _, key := range keys {
		lower := strings.ToLower(key)
		if seen[lower] {
			dropped = append(dropped, key)
			continue
		}
		seen[lower] = true
		normalized[key] = v[key]
	}
	return normalized, dropped
}

// Has reports whether name is present, ignoring case
func (v Vars) Has(name string) bool {
	_, ok := v.Lookup(name)
	return ok
}

// HasValue reports whether name is present with a non-blank value
func (v Vars) HasValue(name string) bool {
	value, ok := v.Lookup(name)
	return ok && strings.TrimSpace(value) != ""
}

// Merge returns a new Vars holding v overlaid with each of others in turn.
// Later maps win; a key differing only in case replaces the earlier entry.
func (v Vars) Merge(others ...Vars) Vars {
	merged := make(Vars, len(v))
	for key, value := range v {
		merged[key] = value
	}
	for _, other := range others {
		other, _ = other.Normalize()
		for key, value := range other {
			merged.Set(key, value)
		}
	}
	return merged
}
