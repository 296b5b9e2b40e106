package pages

import (
	"github.com/vango-dev/storefront/internal/app"
	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/internal/stores"
	"github.com/vango-dev/storefront/pkg/lifecycle"
)

type homeView struct {
	Layout Layout

	Search    string
	Limit     int
	Sort      string
	Category1 string
	Category2 string

	Categories    []string
	Subcategories []string
	Limits        []int
	Sorts         []SortOption

	Products   []catalog.Product
	TotalCount int
	ShowCount  bool
	Loading    bool
	Error      string
	HasMore    bool
	Skeletons  []int
}

func (v *views) homeHooks() lifecycle.Hooks {
	c := v.c
	return lifecycle.Hooks{
		OnMount: func() {
			if c.Mode() == app.ModeServer {
				return
			}
			state := c.Products.State()
			if c.Hydrated() && len(state.Products) > 0 && len(state.Categories) > 0 && state.Status == stores.StatusDone {
				return
			}
			v.deferLoad("products", func() error {
				return c.LoadProductsAndCategories(c.BaseContext())
			})
		},
		Watches: []lifecycle.Watch{{
			Deps: func() []any {
				q := c.Router.Query()
				return []any{q["search"], q["limit"], q["sort"], q["category1"], q["category2"]}
			},
			Callback: func() {
				if c.Mode() == app.ModeServer {
					return
				}
				v.deferLoad("products", func() error {
					return c.LoadProducts(c.BaseContext(), true)
				})
			},
		}},
	}
}

func (v *views) home() string {
	state := v.c.View.Products.Get()
	q := catalog.QueryFromMap(v.c.View.Query.Get())
	menu := v.menu.Get([]any{state.Categories, q.Category1}, func() categoryMenu {
		m := categoryMenu{Names: state.Categories.Names()}
		if q.Category1 != "" {
			m.Children = state.Categories.Children(q.Category1)
		}
		return m
	})
	view := homeView{
		Layout:        v.layout(false, Title),
		Search:        q.Search,
		Limit:         q.Limit,
		Sort:          q.Sort,
		Category1:     q.Category1,
		Category2:     q.Category2,
		Categories:    menu.Names,
		Subcategories: menu.Children,
		Limits:        Limits,
		Sorts:         Sorts,
		Products:      state.Products,
		TotalCount:    state.TotalCount,
		ShowCount:     !state.Loading || len(state.Products) > 0,
		Loading:       state.Loading,
		Error:         state.Error,
		HasMore:       state.HasMore(),
		Skeletons:     make([]int, 4),
	}
	return v.execute("home", view)
}
