package view

import (
	"net/url"
	"strings"
)

// ParseQuery reads q, sort, order and the named filter keys from a query string.
func ParseQuery(values url.Values, filterKeys ...string) Query {
	q := Query{
		Search:  strings.TrimSpace(values.Get("q")),
		SortKey: values.Get("sort"),
		Desc:    strings.EqualFold(values.Get("order"), "desc"),
	}
	for _, k := range filterKeys {
		if v := values.Get(k); Active(v) {
			if q.Filters == nil {
				q.Filters = make(map[string]string, len(filterKeys))
			}
			q.Filters[k] = v
		}
	}
	return q
}
