package app

import (
	"context"
	"strconv"

	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/internal/stores"
)

// RelatedLimit is the number of products fetched for the related list.
const RelatedLimit = 20

func ptr[T any](v T) *T { return &v }

// LoadProductsAndCategories resets paging and loads the first page of
// products together with the category tree.
func (c *Context) LoadProductsAndCategories(ctx context.Context) error {
	c.Router.SetQuery(map[string]string{"current": ""})

	reset := stores.InitialProductState()
	reset.Status = stores.StatusPending
	c.Products.Dispatch(stores.SetupAll(reset))

	list, err := c.Catalog.Products(ctx, catalog.QueryFromMap(c.Router.Query()))
	if err != nil {
		return c.loadFailed(err)
	}
	categories, err := c.Catalog.Categories(ctx)
	if err != nil {
		return c.loadFailed(err)
	}

	c.Products.Dispatch(stores.Setup{
		Products:   &list.Products,
		Categories: &categories,
		TotalCount: ptr(list.Pagination.Total),
		Loading:    ptr(false),
		Status:     ptr(stores.StatusDone),
	})
	return nil
}

// LoadProducts loads the page named by the router query. With reset the
// list is replaced, otherwise the page is appended.
func (c *Context) LoadProducts(ctx context.Context, reset bool) error {
	c.Products.Dispatch(stores.Setup{
		Loading: ptr(true),
		Status:  ptr(stores.StatusPending),
		Error:   ptr(""),
	})

	list, err := c.Catalog.Products(ctx, catalog.QueryFromMap(c.Router.Query()))
	if err != nil {
		return c.loadFailed(err)
	}

	if reset {
		c.Products.Dispatch(stores.SetProducts{Products: list.Products, TotalCount: list.Pagination.Total})
	} else {
		c.Products.Dispatch(stores.AddProducts{Products: list.Products, TotalCount: list.Pagination.Total})
	}
	return nil
}

// LoadMoreProducts appends the next page, unless everything is loaded or
// a load is in progress.
func (c *Context) LoadMoreProducts(ctx context.Context) error {
	state := c.Products.State()
	if !state.HasMore() || state.Loading {
		return nil
	}

	current, err := strconv.Atoi(c.Router.Query()["current"])
	if err != nil || current < 1 {
		current = 1
	}
	c.Router.SetQuery(map[string]string{"current": strconv.Itoa(current + 1)})
	return c.LoadProducts(ctx, false)
}

// SearchProducts filters by search text, back on the first page.
func (c *Context) SearchProducts(search string) {
	c.Router.SetQuery(map[string]string{"search": search, "current": "1"})
}

// SetCategory filters by category. An empty category2 clears it.
func (c *Context) SetCategory(category1, category2 string) {
	c.Router.SetQuery(map[string]string{
		"category1": category1,
		"category2": category2,
		"current":   "1",
	})
}

// SetSort changes the sort order.
func (c *Context) SetSort(sort string) {
	c.Router.SetQuery(map[string]string{"sort": sort, "current": "1"})
}

// SetLimit changes the page size.
func (c *Context) SetLimit(limit int) {
	c.Router.SetQuery(map[string]string{"limit": strconv.Itoa(limit), "current": "1"})
}

// LoadProductDetail loads the product shown on the detail page and its
// related products. A product already current only reloads the related
// list.
func (c *Context) LoadProductDetail(ctx context.Context, id string) error {
	if current := c.Products.State().CurrentProduct; current != nil && current.ProductID == id {
		if current.Category2 != "" {
			c.loadRelatedProducts(ctx, current.Category2, id)
		}
		return nil
	}

	reset := stores.InitialProductState()
	reset.Status = stores.StatusPending
	c.Products.Dispatch(stores.SetupAll(reset))

	product, err := c.Catalog.Product(ctx, id)
	if err != nil {
		return c.loadFailed(err)
	}
	c.Products.Dispatch(stores.SetCurrentProduct{Product: product})

	if product.Category2 != "" {
		c.loadRelatedProducts(ctx, product.Category2, id)
	}
	return nil
}

// loadRelatedProducts sets the products sharing category2, without the
// current one. Failures leave an empty list; they never fail the page.
func (c *Context) loadRelatedProducts(ctx context.Context, category2, exclude string) {
	list, err := c.Catalog.Products(ctx, catalog.Query{Category2: category2, Limit: RelatedLimit, Page: 1})
	if err != nil {
		c.Logger.Warn("app: related products failed", "category2", category2, "error", err)
		c.Products.Dispatch(stores.SetRelatedProducts{Products: []catalog.Product{}})
		return
	}

	related := make([]catalog.Product, 0, len(list.Products))
	for _, p := range list.Products {
		if p.ProductID != exclude {
			related = append(related, p)
		}
	}
	c.Products.Dispatch(stores.SetRelatedProducts{Products: related})
}

// FindProduct looks a product up in the loaded state first, then in the
// catalog.
func (c *Context) FindProduct(ctx context.Context, id string) (*catalog.Product, error) {
	state := c.Products.State()
	if state.CurrentProduct != nil && state.CurrentProduct.ProductID == id {
		p := *state.CurrentProduct
		return &p, nil
	}
	for _, list := range [][]catalog.Product{state.Products, state.RelatedProducts} {
		for _, p := range list {
			if p.ProductID == id {
				return &p, nil
			}
		}
	}
	return c.Catalog.Product(ctx, id)
}

func (c *Context) loadFailed(err error) error {
	c.Logger.Error("app: product load failed", "error", err)
	c.Products.Dispatch(stores.SetError{Message: err.Error()})
	return err
}
