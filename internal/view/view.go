// Package view derives the rows a page renders from a loaded list: free-text
// search, discrete filters and a column sort. Everything here is pure and is
// recomputed on every request.
package view

import (
	"sort"
	"strings"
)

// Compare orders two rows; negative when a sorts before b.
type Compare[T any] func(a, b T) int

// Query is what the operator typed and clicked.
type Query struct {
	Search  string            `json:"search,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
	SortKey string            `json:"sortKey,omitempty"`
	Desc    bool              `json:"desc,omitempty"`
}

// Spec describes how one resource is searched, filtered and sorted.
type Spec[T any] struct {
	// Search returns the fields matched by the free-text query.
	Search      func(T) []string
	Filters     map[string]func(T) string
	Sorts       map[string]Compare[T]
	DefaultSort string
	// DefaultDesc applies to DefaultSort when the query names no sort key.
	DefaultDesc bool
}

// Active reports whether a filter value selects anything.
func Active(v string) bool {
	return v != "" && !strings.EqualFold(v, "all")
}

// Apply returns the filtered, sorted projection of items. The input slice is
// never modified.
func Apply[T any](items []T, spec Spec[T], q Query) []T {
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]T, 0, len(items))
	for _, item := range items {
		if needle != "" && !matches(spec.Search, item, needle) {
			continue
		}
		if !passesFilters(spec.Filters, item, q.Filters) {
			continue
		}
		out = append(out, item)
	}

	key, desc := q.SortKey, q.Desc
	if key == "" {
		key, desc = spec.DefaultSort, spec.DefaultDesc
	}
	if cmp, ok := spec.Sorts[key]; ok {
		sort.SliceStable(out, func(i, j int) bool { return cmp(out[i], out[j]) < 0 })
		if desc {
			reverse(out)
		}
	}
	return out
}

// Toggle flips direction when key is already the sort key, otherwise sorts
// ascending by key.
func Toggle(q Query, key string) Query {
	if q.SortKey == key {
		q.Desc = !q.Desc
		return q
	}
	q.SortKey = key
	q.Desc = false
	return q
}

func matches[T any](fields func(T) []string, item T, needle string) bool {
	if fields == nil {
		return true
	}
	for _, f := range fields(item) {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func passesFilters[T any](preds map[string]func(T) string, item T, selected map[string]string) bool {
	for name, want := range selected {
		if !Active(want) {
			continue
		}
		get, ok := preds[name]
		if !ok {
			continue
		}
		if !strings.EqualFold(get(item), want) {
			return false
		}
	}
	return true
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Strings compares case-insensitively.
func Strings(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// Ordered compares numbers.
func Ordered[N ~int | ~int64 | ~float64](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// By builds a Compare from a key extractor and a key comparison.
func By[T, K any](key func(T) K, cmp func(a, b K) int) Compare[T] {
	return func(a, b T) int { return cmp(key(a), key(b)) }
}
