package app

import (
	"testing"

	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/internal/errors"
	"github.com/vango-dev/storefront/internal/stores"
	"github.com/vango-dev/storefront/pkg/observer"
	"github.com/vango-dev/storefront/pkg/router"
)

func TestHydrateListData(t *testing.T) {
	c, _ := newClientContext(t, "/", testCatalog())

	raw := []byte(`{"products":[{"productId":"1","title":"사과 젤리"}],"totalCount":12,"categories":{"식품":{"젤리":{}}}}`)
	if err := c.Hydrate(raw, "/?search=x"); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}

	state := c.Products.State()
	if len(state.Products) != 1 || state.TotalCount != 12 || state.Loading || state.Status != stores.StatusDone {
		t.Errorf("state = %+v", state)
	}
	if got := state.Categories.Children("식품"); len(got) != 1 {
		t.Errorf("categories = %+v", state.Categories)
	}
	if !c.Hydrated() {
		t.Error("expected Hydrated()")
	}
}

func TestHydrateRunsOnce(t *testing.T) {
	c, _ := newClientContext(t, "/", testCatalog())

	c.HydrateData(InitialData{Products: []catalog.Product{{ProductID: "1"}}}, "/")

	calls := 0
	c.Products.Subscribe(observer.Func(func() { calls++ }))
	c.HydrateData(InitialData{Products: []catalog.Product{{ProductID: "2"}}}, "/")
	if err := c.Hydrate([]byte(`{"products":[]}`), "/"); err != nil {
		t.Fatal(err)
	}
	if calls != 0 || c.Products.State().Products[0].ProductID != "1" {
		t.Errorf("second hydration applied: calls = %d", calls)
	}
}

func TestHydrateDetailDataUnderBase(t *testing.T) {
	history := router.NewMemoryHistory("/shop/product/7/")
	rt := router.New[Page](history, router.WithBase("/shop/"))
	defer rt.Close()
	c := New(rt, testCatalog())

	c.HydrateData(InitialData{
		Product: &catalog.Product{ProductID: "7"},
	}, "/shop/product/7/")

	state := c.Products.State()
	if state.CurrentProduct == nil || state.CurrentProduct.ProductID != "7" {
		t.Fatalf("current = %+v", state.CurrentProduct)
	}
	if state.RelatedProducts == nil || state.Loading {
		t.Errorf("state = %+v", state)
	}
}

func TestHydrateMismatchedData(t *testing.T) {
	c, _ := newClientContext(t, "/", testCatalog())

	// Detail data on the list page is ignored, but counts as hydration.
	c.HydrateData(InitialData{Product: &catalog.Product{ProductID: "1"}}, "/")
	if c.Products.State().CurrentProduct != nil {
		t.Error("expected detail data ignored on the list page")
	}
	if !c.Hydrated() {
		t.Error("expected Hydrated()")
	}
}

func TestHydrateEmptyAndMalformed(t *testing.T) {
	c, _ := newClientContext(t, "/", testCatalog())
	if err := c.Hydrate([]byte("{nope"), "/"); !errors.HasCode(err, "SF040") {
		t.Errorf("Hydrate(malformed) = %v, want SF040", err)
	}
	if c.Hydrated() {
		t.Error("malformed data must not mark hydration")
	}

	if err := c.Hydrate([]byte(" null "), "/"); err != nil {
		t.Fatal(err)
	}
	if !c.Hydrated() || c.Products.State().Status != stores.StatusIdle {
		t.Errorf("null data: hydrated %v, state %+v", c.Hydrated(), c.Products.State())
	}
}

func TestFirstSegment(t *testing.T) {
	tests := []struct {
		path, base, want string
	}{
		{"/", "", ""},
		{"", "", ""},
		{"/?search=a", "", ""},
		{"/product/1/", "", "product"},
		{"/product", "", "product"},
		{"/shop/product/1/", "/shop", "product"},
		{"/shop/", "/shop/", ""},
		{"/cart#top", "", "cart"},
	}
	for _, tt := range tests {
		if got := firstSegment(tt.path, tt.base); got != tt.want {
			t.Errorf("firstSegment(%q, %q) = %q, want %q", tt.path, tt.base, got, tt.want)
		}
	}
}
