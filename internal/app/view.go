package app

import (
	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/internal/stores"
	"github.com/vango-dev/storefront/pkg/hooks"
	"github.com/vango-dev/storefront/pkg/observer"
)

// ProductView is the part of the product state pages show. The load status
// is left out; it only steers lifecycle hooks.
type ProductView struct {
	Products        []catalog.Product
	TotalCount      int
	Categories      catalog.Categories
	CurrentProduct  *catalog.Product
	RelatedProducts []catalog.Product
	Loading         bool
	Error           string
}

// HasMore reports whether more products can be loaded.
func (p ProductView) HasMore() bool {
	return len(p.Products) < p.TotalCount
}

// UIView is the part of the UI state pages show.
type UIView struct {
	CartOpen bool
	Toast    stores.Toast
}

// View holds the selections pages render from. Each one notifies only when
// its slice changes shallowly, so a change to state no page shows, or a
// navigation to the current URL, renders nothing.
type View struct {
	Products *hooks.Selection[ProductView]
	Cart     *hooks.Selection[stores.CartState]
	UI       *hooks.Selection[UIView]

	Location *hooks.Selection[string]
	Query    *hooks.Selection[map[string]string]
	Params   *hooks.Selection[map[string]string]
	Page     *hooks.Selection[Page]
}

type navSource struct {
	nav Navigator
}

func (s navSource) Subscribe(l observer.Listener) func() {
	return s.nav.Subscribe(l)
}

func (s navSource) Snapshot() Navigator {
	return s.nav
}

func newView(c *Context) *View {
	return &View{
		Products: hooks.UseStore(c.Products, func(s stores.ProductState) ProductView {
			return ProductView{
				Products:        s.Products,
				TotalCount:      s.TotalCount,
				Categories:      s.Categories,
				CurrentProduct:  s.CurrentProduct,
				RelatedProducts: s.RelatedProducts,
				Loading:         s.Loading,
				Error:           s.Error,
			}
		}),
		Cart: hooks.UseStore(c.Cart, hooks.Identity[stores.CartState]),
		UI: hooks.UseStore(c.UI, func(s stores.UIState) UIView {
			return UIView{CartOpen: s.CartModalOpen, Toast: s.Toast}
		}),
		Location: hooks.Select[Navigator, string](navSource{c.Router}, func(n Navigator) string {
			return n.Location()
		}),
		Query:  hooks.RouterQuery[Page](c.Router),
		Params: hooks.RouterParams[Page](c.Router),
		Page:   hooks.CurrentPage[Page](c.Router),
	}
}

func (v *View) subscribe(l observer.Listener) func() {
	cancels := []func(){
		v.Products.Subscribe(l),
		v.Cart.Subscribe(l),
		v.UI.Subscribe(l),
		v.Location.Subscribe(l),
		v.Query.Subscribe(l),
		v.Params.Subscribe(l),
		v.Page.Subscribe(l),
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

func (v *View) close() {
	v.Products.Close()
	v.Cart.Close()
	v.UI.Close()
	v.Location.Close()
	v.Query.Close()
	v.Params.Close()
	v.Page.Close()
}
