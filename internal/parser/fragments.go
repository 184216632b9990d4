package parser

import (
	"log/slog"
	"strings"

	"github.com/studiowebux/restsynth/internal/types"
)

// ParseQuery turns raw key=value fragments into resolved query parameters.
//
// Malformed fragments are dropped, not reported: a fragment with no '=', an
// empty key, or a value that resolves to an empty string produces no entry.
// Order and duplicate keys are preserved.
func ParseQuery(fragments []string, vars types.Vars) []types.KeyValue {
	return parseFragments(fragments, "=", "query", vars)
}

// ParseHeaders turns raw "Name: Value" fragments into resolved headers.
// Skipping rules are the same as ParseQuery, with ':' as separator.
func ParseHeaders(fragments []string, vars types.Vars) []types.KeyValue {
	return parseFragments(fragments, ":", "header", vars)
}

// SplitFragment splits a fragment on the first separator. ok is false when
// the separator is missing or starts the fragment.
func SplitFragment(fragment, sep string) (key, value string, ok bool) {
	idx := strings.Index(fragment, sep)
	if idx <= 0 {
		return "", "", false
	}
	return fragment[:idx], fragment[idx+len(sep):], true
}

func parseFragments(fragments []string, sep, kind string, vars types.Vars) []types.KeyValue {
	result := make([]types.KeyValue, 0, len(fragments))
	for _, fragment := range fragments {
		rawKey, rawValue, ok := SplitFragment(fragment, sep)
		if !ok {
			slog.Debug("skipping malformed fragment", "kind", kind, "fragment", fragment)
			continue
		}

		key := strings.TrimSpace(rawKey)
		value := strings.TrimSpace(Substitute(rawValue, vars))
		if key == "" || value == "" {
			slog.Debug("skipping empty fragment", "kind", kind, "fragment", fragment)
			continue
		}

		result = append(result, types.KeyValue{Key: key, Value: value})
	}
	return result
}
