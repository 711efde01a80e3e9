package view

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	ID       string
	Name     string
	SKU      string
	Category string
	Status   string
	Price    float64
}

var rowSpec = Spec[row]{
	Search: func(r row) []string { return []string{r.Name, r.SKU} },
	Filters: map[string]func(row) string{
		"category": func(r row) string { return r.Category },
		"status":   func(r row) string { return r.Status },
	},
	Sorts: map[string]Compare[row]{
		"name":  By(func(r row) string { return r.Name }, Strings),
		"price": By(func(r row) float64 { return r.Price }, Ordered[float64]),
	},
	DefaultSort: "name",
}

var rows = []row{
	{"1", "Fresh Apples", "FRU-001", "fruits", "active", 4.99},
	{"2", "Organic Bananas", "FRU-002", "fruits", "inactive", 2.49},
	{"3", "Whole Milk", "DAI-001", "dairy", "active", 3.49},
	{"4", "Cheddar", "DAI-002", "dairy", "active", 3.49},
	{"5", "apple juice", "BEV-001", "beverages", "active", 5.25},
}

func ids(rs []row) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	got := Apply(rows, rowSpec, Query{Search: "APPLE"})
	assert.ElementsMatch(t, []string{"1", "5"}, ids(got))

	got = Apply(rows, rowSpec, Query{Search: "dai-"})
	assert.ElementsMatch(t, []string{"3", "4"}, ids(got))
}

func TestFiltersCombineConjunctively(t *testing.T) {
	q := Query{Search: "a", Filters: map[string]string{"category": "fruits", "status": "active"}}
	got := Apply(rows, rowSpec, q)

	want := 0
	for _, r := range rows {
		if matches(rowSpec.Search, r, "a") && r.Category == "fruits" && r.Status == "active" {
			want++
		}
	}
	assert.Len(t, got, want)
	assert.Equal(t, []string{"1"}, ids(got))
}

func TestAllAndEmptyFiltersAreInactive(t *testing.T) {
	got := Apply(rows, rowSpec, Query{Filters: map[string]string{"category": "all", "status": ""}})
	assert.Len(t, got, len(rows))
}

func TestUnknownFilterIgnored(t *testing.T) {
	got := Apply(rows, rowSpec, Query{Filters: map[string]string{"colour": "red"}})
	assert.Len(t, got, len(rows))
}

func TestSortIsStableAndReversible(t *testing.T) {
	asc := Apply(rows, rowSpec, Query{SortKey: "price"})
	assert.Equal(t, []string{"2", "3", "4", "1", "5"}, ids(asc))

	desc := Apply(rows, rowSpec, Query{SortKey: "price", Desc: true})
	assert.Equal(t, []string{"5", "1", "4", "3", "2"}, ids(desc))
	assert.ElementsMatch(t, ids(asc), ids(desc))
}

func TestDefaultSort(t *testing.T) {
	got := Apply(rows, rowSpec, Query{})
	assert.Equal(t, []string{"5", "4", "1", "2", "3"}, ids(got))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	before := ids(rows)
	_ = Apply(rows, rowSpec, Query{SortKey: "price", Desc: true})
	assert.Equal(t, before, ids(rows))
}

func TestToggle(t *testing.T) {
	q := Toggle(Query{}, "name")
	assert.Equal(t, Query{SortKey: "name"}, q)

	q = Toggle(q, "name")
	assert.True(t, q.Desc)

	q = Toggle(q, "price")
	assert.Equal(t, "price", q.SortKey)
	assert.False(t, q.Desc)
}

func TestParseQuery(t *testing.T) {
	v := url.Values{}
	v.Set("q", "  milk ")
	v.Set("sort", "price")
	v.Set("order", "DESC")
	v.Set("category", "dairy")
	v.Set("status", "all")

	q := ParseQuery(v, "category", "status")
	assert.Equal(t, "milk", q.Search)
	assert.Equal(t, "price", q.SortKey)
	assert.True(t, q.Desc)
	assert.Equal(t, map[string]string{"category": "dairy"}, q.Filters)
}
