package pages

import (
	"github.com/vango-dev/storefront/internal/app"
	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/internal/stores"
	"github.com/vango-dev/storefront/pkg/lifecycle"
)

type detailView struct {
	Layout  Layout
	Product *catalog.Product
	Related []catalog.Product
	Loading bool
	Error   string
}

func (v *views) detailHooks() lifecycle.Hooks {
	c := v.c
	load := func() {
		id := c.Router.Params()["id"]
		v.deferLoad("product "+id, func() error {
			return c.LoadProductDetail(c.BaseContext(), id)
		})
	}

	return lifecycle.Hooks{
		OnMount: func() {
			if c.Mode() == app.ModeServer {
				return
			}
			state := c.Products.State()
			current := state.CurrentProduct
			if c.Hydrated() && current != nil && current.ProductID == c.Router.Params()["id"] && state.Status == stores.StatusDone {
				return
			}
			load()
		},
		Watches: []lifecycle.Watch{{
			Deps: func() []any { return []any{c.Router.Params()["id"]} },
			Callback: func() {
				if c.Mode() != app.ModeServer {
					load()
				}
			},
		}},
	}
}

func (v *views) detail() string {
	state := v.c.View.Products.Get()
	return v.execute("detail", detailView{
		Layout:  v.layout(true, "상품 상세"),
		Product: state.CurrentProduct,
		Related: state.RelatedProducts,
		Loading: state.Loading && state.CurrentProduct == nil,
		Error:   state.Error,
	})
}

func (v *views) notFound() string {
	return v.execute("notfound", struct{ Layout Layout }{v.layout(false, Title)})
}
