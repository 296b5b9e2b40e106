package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/storefront/internal/errors"
)

//go:embed fixtures/products.json
var defaultFixture []byte

// Memory is a Client over an in-memory product list. It is safe for
// concurrent use; Replace swaps the whole list atomically.
type Memory struct {
	mu         sync.RWMutex
	products   []Product
	index      map[string]int
	categories Categories
}

// NewMemory creates a catalog holding products.
func NewMemory(products []Product) *Memory {
	m := &Memory{}
	m.Replace(products)
	return m
}

// Default returns a catalog over the built-in fixture.
func Default() *Memory {
	products, err := ParseProducts(defaultFixture, ".json")
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in fixture: %v", err))
	}
	return NewMemory(products)
}

// LoadMemory reads a fixture file into a new catalog.
func LoadMemory(path string) (*Memory, error) {
	products, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemory(products), nil
}

// ReadFile reads a JSON or YAML fixture. The format follows the file
// extension; both hold a list of products.
func ReadFile(path string) ([]Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("SF022").WithDetailf("reading %s", path).Wrap(err)
	}
	products, err := ParseProducts(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.New("SF022").WithDetailf("parsing %s", path).Wrap(err)
	}
	return products, nil
}

// ParseProducts decodes a product list. ext selects the format: ".yaml"
// and ".yml" are YAML, anything else JSON.
func ParseProducts(data []byte, ext string) ([]Product, error) {
	var products []Product

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&products); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &products); err != nil {
			return nil, err
		}
	}

	for i, p := range products {
		if p.ProductID == "" {
			return nil, fmt.Errorf("product %d (%q) has no productId", i, p.Title)
		}
	}
	return products, nil
}

// Replace swaps the catalog contents.
func (m *Memory) Replace(products []Product) {
	list := make([]Product, len(products))
	copy(list, products)

	index := make(map[string]int, len(list))
	categories := Categories{}
	for i, p := range list {
		index[p.ProductID] = i
		categories.Add(p.Category1, p.Category2)
	}

	m.mu.Lock()
	m.products = list
	m.index = index
	m.categories = categories
	m.mu.Unlock()
}

// Len returns the number of products.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.products)
}

// Products returns the page of products matching q.
func (m *Memory) Products(ctx context.Context, q Query) (*ProductList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q = q.normalize()

	m.mu.RLock()
	matched := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		if q.matches(p) {
			matched = append(matched, p)
		}
	}
	m.mu.RUnlock()

	sortProducts(matched, q.Sort)

	total := len(matched)
	start := (q.Page - 1) * q.Limit
	end := start + q.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	totalPages := (total + q.Limit - 1) / q.Limit
	return &ProductList{
		Products: matched[start:end],
		Pagination: Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    q.Page < totalPages,
			HasPrev:    q.Page > 1,
		},
	}, nil
}

// Product returns the product with id.
func (m *Memory) Product(ctx context.Context, id string) (*Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := m.products[i]
	return &p, nil
}

// Categories returns the category tree of all products.
func (m *Memory) Categories(ctx context.Context) (Categories, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(Categories, len(m.categories))
	for c1, sub := range m.categories {
		out[c1] = make(map[string]struct{}, len(sub))
		for c2 := range sub {
			out[c1][c2] = struct{}{}
		}
	}
	return out, nil
}

func (q Query) matches(p Product) bool {
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Brand), needle) {
			return false
		}
	}
	if q.Category1 != "" && p.Category1 != q.Category1 {
		return false
	}
	if q.Category2 != "" && p.Category2 != q.Category2 {
		return false
	}
	return true
}

func sortProducts(products []Product, order string) {
	var less func(a, b Product) bool
	switch order {
	case SortPriceDesc:
		less = func(a, b Product) bool { return a.Price() > b.Price() }
	case SortNameAsc:
		less = func(a, b Product) bool { return a.Title < b.Title }
	case SortNameDesc:
		less = func(a, b Product) bool { return a.Title > b.Title }
	default:
		less = func(a, b Product) bool { return a.Price() < b.Price() }
	}
	sort.SliceStable(products, func(i, j int) bool {
		return less(products[i], products[j])
	})
}
