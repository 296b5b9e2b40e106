package catalog

import (
	"context"
	"errors"
	"sort"
	"strconv"
)

// ErrNotFound is returned when a product does not exist.
var ErrNotFound = errors.New("catalog: product not found")

// Product is a catalog entry. Prices are decimal strings, as the upstream
// shopping API reports them.
type Product struct {
	Title       string `json:"title" yaml:"title"`
	Link        string `json:"link" yaml:"link"`
	Image       string `json:"image" yaml:"image"`
	LPrice      string `json:"lprice" yaml:"lprice"`
	HPrice      string `json:"hprice" yaml:"hprice"`
	MallName    string `json:"mallName" yaml:"mallName"`
	ProductID   string `json:"productId" yaml:"productId"`
	ProductType string `json:"productType" yaml:"productType"`
	Brand       string `json:"brand" yaml:"brand"`
	Maker       string `json:"maker" yaml:"maker"`
	Category1   string `json:"category1" yaml:"category1"`
	Category2   string `json:"category2" yaml:"category2"`
	Category3   string `json:"category3,omitempty" yaml:"category3,omitempty"`
	Category4   string `json:"category4,omitempty" yaml:"category4,omitempty"`

	// Description and Rating are only filled in on detail lookups.
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Rating      float64 `json:"rating,omitempty" yaml:"rating,omitempty"`
	Stock       int     `json:"stock,omitempty" yaml:"stock,omitempty"`
}

// Price returns LPrice as an integer, or 0 when it is not a number.
func (p Product) Price() int {
	n, err := strconv.Atoi(p.LPrice)
	if err != nil {
		return 0
	}
	return n
}

// Categories maps each first-level category to its second-level ones.
type Categories map[string]map[string]struct{}

// Add records a category pair. An empty category2 only adds category1.
func (c Categories) Add(category1, category2 string) {
	if category1 == "" {
		return
	}
	sub, ok := c[category1]
	if !ok {
		sub = make(map[string]struct{})
		c[category1] = sub
	}
	if category2 != "" {
		sub[category2] = struct{}{}
	}
}

// Names returns the first-level categories, sorted.
func (c Categories) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Children returns the second-level categories of category1, sorted.
func (c Categories) Children(category1 string) []string {
	sub := c[category1]
	names := make([]string, 0, len(sub))
	for name := range sub {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pagination describes one page of a product listing.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// ProductList is a page of products.
type ProductList struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Client reads products from a catalog.
type Client interface {
	Products(ctx context.Context, q Query) (*ProductList, error)
	Product(ctx context.Context, id string) (*Product, error)
	Categories(ctx context.Context) (Categories, error)
}
