package builder

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/studiowebux/restsynth/internal/parser"
	"github.com/studiowebux/restsynth/internal/types"
)

// BuildURI substitutes vars into urlTemplate, checks that the result is an
// absolute URI and merges extra into its query string. A key from extra
// replaces every value the URL already carries for that key. Keys keep the
// order of their first appearance.
func BuildURI(urlTemplate string, vars types.Vars, extra []types.KeyValue) (string, error) {
	raw := strings.TrimSpace(parser.Substitute(urlTemplate, vars))

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", types.ErrInvalidURI, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute URI", types.ErrInvalidURI, raw)
	}

	query, err := parseOrderedQuery(u.RawQuery)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", types.ErrInvalidURI, raw, err)
	}
	for _, kv := range extra {
		query.set(kv.Key, kv.Value)
	}
	u.RawQuery = query.encode()
	u.ForceQuery = false

	return u.String(), nil
}

// orderedQuery is a query string keyed by name that remembers key order
type orderedQuery struct {
	keys   []string
	values map[string][]string
}

func parseOrderedQuery(rawQuery string) (*orderedQuery, error) {
	q := &orderedQuery{values: make(map[string][]string)}
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, err
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, err
		}
		q.add(key, value)
	}
	return q, nil
}

func (q *orderedQuery) add(key, value string) {
	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.values[key] = append(q.values[key], value)
}

func (q *orderedQuery) set(key, value string) {
	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.values[key] = []string{value}
}

func (q *orderedQuery) encode() string {
	var sb strings.Builder
	for _, key := range q.keys {
		for _, value := range q.values[key] {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(key))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(value))
		}
	}
	return sb.String()
}
