package pages

import (
	"embed"
	"html/template"
	"strings"

	"github.com/vango-dev/storefront/internal/app"
	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/internal/stores"
	"github.com/vango-dev/storefront/pkg/hooks"
	"github.com/vango-dev/storefront/pkg/lifecycle"
)

//go:embed templates/*.html
var templateFS embed.FS

// Route templates.
const (
	HomePath     = "/"
	DetailPath   = "/product/:id/"
	NotFoundPath = ".*"
)

// Title is the document title of every page.
const Title = "쇼핑몰"

// Limits and Sorts are the choices offered on the product list.
var (
	Limits = []int{10, 20, 50, 100}
	Sorts  = []SortOption{
		{catalog.SortPriceAsc, "가격 낮은순"},
		{catalog.SortPriceDesc, "가격 높은순"},
		{catalog.SortNameAsc, "이름순"},
		{catalog.SortNameDesc, "이름 역순"},
	}
)

// SortOption is a sort choice.
type SortOption struct {
	Value string
	Label string
}

// Layout is the frame shared by every page.
type Layout struct {
	Title     string
	Back      bool
	Base      string
	CartCount int
	CartOpen  bool
	Cart      stores.CartState
	Toast     stores.Toast
}

type views struct {
	c    *app.Context
	tmpl *template.Template

	// Category names sorted for the menu, kept until the tree or the
	// selected first-level category changes.
	menu *hooks.Memo[categoryMenu]
}

type categoryMenu struct {
	Names    []string
	Children []string
}

func newViews(c *app.Context) *views {
	base := strings.TrimSuffix(c.Router.Base(), "/")
	funcs := template.FuncMap{
		"won":        Won,
		"count":      Count,
		"inc":        func(n int) int { return n + 1 },
		"dec":        func(n int) int { return n - 1 },
		"mul":        func(a, b int) int { return a * b },
		"toastColor": toastColor,
		"productURL": func(id string) string { return base + "/product/" + id + "/" },
	}
	return &views{
		c:    c,
		tmpl: template.Must(template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")),
		menu: hooks.NewMemo[categoryMenu](),
	}
}

// RouteInfo names a page route.
type RouteInfo struct {
	Path string
	Name string
}

// Routes lists the page routes in match order.
func Routes() []RouteInfo {
	return []RouteInfo{
		{HomePath, "home"},
		{DetailPath, "detail"},
		{NotFoundPath, "not-found"},
	}
}

// Register adds the storefront pages to the router of c, wrapped with the
// lifecycle registry of c.
func Register(c *app.Context) {
	v := newViews(c)
	pages := map[string]app.Page{
		"home":      app.Page(lifecycle.Wrap(c.Lifecycle, v.homeHooks(), v.home)),
		"detail":    app.Page(lifecycle.Wrap(c.Lifecycle, v.detailHooks(), v.detail)),
		"not-found": app.Page(lifecycle.Wrap(c.Lifecycle, lifecycle.Hooks{}, v.notFound)),
	}
	for _, r := range Routes() {
		c.Router.AddRoute(r.Path, pages[r.Name])
	}
}

// Head returns the document head of the current page.
func Head() string {
	return "<title>" + template.HTMLEscapeString(Title) + "</title>"
}

func (v *views) layout(back bool, title string) Layout {
	cart := v.c.View.Cart.Get()
	ui := v.c.View.UI.Get()
	return Layout{
		Title:     title,
		Back:      back,
		Base:      strings.TrimSuffix(v.c.Router.Base(), "/"),
		CartCount: len(cart.Items),
		CartOpen:  ui.CartOpen,
		Cart:      cart,
		Toast:     ui.Toast,
	}
}

func (v *views) execute(name string, data any) string {
	var b strings.Builder
	if err := v.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		v.c.Logger.Error("pages: render failed", "page", name, "error", err)
		return `<div class="p-4 text-red-600">` + template.HTMLEscapeString(err.Error()) + `</div>`
	}
	return b.String()
}

// deferLoad runs load after the current render, logging a failure. The
// failure itself is already recorded in the product store.
func (v *views) deferLoad(what string, load func() error) {
	v.c.Loop.Defer(func() {
		if err := load(); err != nil {
			v.c.Logger.Warn("pages: load failed", "what", what, "error", err)
		}
	})
}
