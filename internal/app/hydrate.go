package app

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/internal/errors"
	"github.com/vango-dev/storefront/internal/stores"
)

// InitialData is the product data a server render hands to the live
// session, embedded in the page as window.__INITIAL_DATA__.
type InitialData struct {
	// List page.
	Products   []catalog.Product  `json:"products,omitempty"`
	TotalCount int                `json:"totalCount,omitempty"`
	Categories catalog.Categories `json:"categories,omitempty"`

	// Detail page.
	Product         *catalog.Product  `json:"product,omitempty"`
	RelatedProducts []catalog.Product `json:"relatedProducts,omitempty"`
}

// Hydrate decodes raw initial data and applies it with HydrateData. Empty
// or null data only marks the context hydrated.
func (c *Context) Hydrate(raw []byte, pathname string) error {
	if c.Hydrated() {
		return nil
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		c.markHydrated()
		return nil
	}

	var data InitialData
	if err := json.Unmarshal(raw, &data); err != nil {
		return errors.New("SF040").WithDetailf("path %s", pathname).Wrap(err)
	}
	c.HydrateData(data, pathname)
	return nil
}

// HydrateData dispatches a product Setup chosen by the first segment of
// pathname: the root gets list data, /product/... gets detail data. It
// runs at most once per Context.
func (c *Context) HydrateData(data InitialData, pathname string) {
	if !c.markHydrated() {
		return
	}

	empty := []catalog.Product{}
	switch firstSegment(pathname, c.Router.Base()) {
	case "":
		if data.Products == nil {
			return
		}
		categories := data.Categories
		if categories == nil {
			categories = catalog.Categories{}
		}
		c.Products.Dispatch(stores.SetupAll(stores.ProductState{
			Products:        data.Products,
			TotalCount:      data.TotalCount,
			Categories:      categories,
			RelatedProducts: empty,
			Status:          stores.StatusDone,
		}))

	case "product":
		if data.Product == nil {
			return
		}
		related := data.RelatedProducts
		if related == nil {
			related = empty
		}
		c.Products.Dispatch(stores.SetupAll(stores.ProductState{
			Products:        empty,
			Categories:      catalog.Categories{},
			CurrentProduct:  data.Product,
			RelatedProducts: related,
			Status:          stores.StatusDone,
		}))
	}
}

// Hydrated reports whether initial data was applied.
func (c *Context) Hydrated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hydrated
}

// markHydrated sets the flag and reports whether it was unset.
func (c *Context) markHydrated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hydrated {
		return false
	}
	c.hydrated = true
	return true
}

// firstSegment returns the first path segment after base, "" for the root.
func firstSegment(pathname, base string) string {
	if i := strings.IndexAny(pathname, "?#"); i >= 0 {
		pathname = pathname[:i]
	}
	base = strings.TrimSuffix(base, "/")
	if base != "" && strings.HasPrefix(pathname, base) {
		pathname = pathname[len(base):]
	}
	pathname = strings.TrimPrefix(pathname, "/")
	if i := strings.IndexByte(pathname, '/'); i >= 0 {
		pathname = pathname[:i]
	}
	return pathname
}
