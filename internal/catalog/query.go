package catalog

import (
	"net/url"
	"strconv"
)

// DefaultLimit is the page size used when a query names none.
const DefaultLimit = 20

// Sort orders.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNameAsc   = "name_asc"
	SortNameDesc  = "name_desc"
)

// Query selects a page of products.
type Query struct {
	Page      int
	Limit     int
	Search    string
	Category1 string
	Category2 string
	Sort      string
}

// QueryFromMap builds a Query from router query values. "current" is
// accepted as an alias of "page" and takes precedence.
func QueryFromMap(m map[string]string) Query {
	q := Query{
		Search:    m["search"],
		Category1: m["category1"],
		Category2: m["category2"],
		Sort:      m["sort"],
	}
	if v, ok := m["current"]; ok && v != "" {
		q.Page, _ = strconv.Atoi(v)
	} else {
		q.Page, _ = strconv.Atoi(m["page"])
	}
	q.Limit, _ = strconv.Atoi(m["limit"])
	return q.normalize()
}

// QueryFromValues builds a Query from URL query values.
func QueryFromValues(v url.Values) Query {
	m := make(map[string]string, len(v))
	for key := range v {
		m[key] = v.Get(key)
	}
	return QueryFromMap(m)
}

// Values encodes q as URL query values. Empty filters are omitted.
func (q Query) Values() url.Values {
	q = q.normalize()
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category1 != "" {
		v.Set("category1", q.Category1)
	}
	if q.Category2 != "" {
		v.Set("category2", q.Category2)
	}
	v.Set("sort", q.Sort)
	return v
}

func (q Query) normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	switch q.Sort {
	case SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
	default:
		q.Sort = SortPriceAsc
	}
	return q
}
