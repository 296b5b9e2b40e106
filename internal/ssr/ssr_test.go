package ssr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/storefront/internal/app"
	"github.com/vango-dev/storefront/internal/catalog"
)

func testCatalog() *catalog.Memory {
	return catalog.NewMemory([]catalog.Product{
		{ProductID: "1", Title: "사과 젤리", Brand: "과일농장", LPrice: "3000", Category1: "식품", Category2: "젤리"},
		{ProductID: "2", Title: "포도 젤리", Brand: "과일농장", LPrice: "1000", Category1: "식품", Category2: "젤리"},
		{ProductID: "3", Title: "Keyboard", LPrice: "1290000", Category1: "디지털", Category2: "입력장치"},
	})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

type failingCatalog struct{}

var errUnavailable = errors.New("catalog unavailable")

func (failingCatalog) Products(context.Context, catalog.Query) (*catalog.ProductList, error) {
	return nil, errUnavailable
}

func (failingCatalog) Product(context.Context, string) (*catalog.Product, error) {
	return nil, errUnavailable
}

func (failingCatalog) Categories(context.Context) (catalog.Categories, error) {
	return nil, errUnavailable
}

func newRenderer(client catalog.Client, opts ...Option) *Renderer {
	opts = append([]Option{WithLogger(quietLogger()), WithTracerProvider(noop.NewTracerProvider())}, opts...)
	return New(client, opts...)
}

func TestRenderHome(t *testing.T) {
	r := newRenderer(testCatalog())

	res, err := r.Render(context.Background(), "/?search=젤리", map[string]string{"search": "젤리"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.Route != "/" {
		t.Errorf("Route = %q, want /", res.Route)
	}
	if !strings.Contains(res.HTML, "사과 젤리") || !strings.Contains(res.HTML, "포도 젤리") {
		t.Error("expected jelly products in HTML")
	}
	if strings.Contains(res.HTML, "Keyboard") {
		t.Error("expected search to filter out Keyboard")
	}
	if res.Head != "<title>쇼핑몰</title>" {
		t.Errorf("Head = %q", res.Head)
	}

	var data app.InitialData
	if err := json.Unmarshal([]byte(res.Data), &data); err != nil {
		t.Fatalf("Data is not JSON: %v", err)
	}
	if len(data.Products) != 2 || data.TotalCount != 2 {
		t.Errorf("Data products = %d total = %d, want 2 2", len(data.Products), data.TotalCount)
	}
	if _, ok := data.Categories["디지털"]; !ok {
		t.Errorf("expected all categories in Data, got %v", data.Categories)
	}
}

func TestRenderDetail(t *testing.T) {
	r := newRenderer(testCatalog())

	res, err := r.Render(context.Background(), "/product/1/", nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.Route != "/product/:id/" {
		t.Errorf("Route = %q", res.Route)
	}

	var data app.InitialData
	if err := json.Unmarshal([]byte(res.Data), &data); err != nil {
		t.Fatalf("Data is not JSON: %v", err)
	}
	if data.Product == nil || data.Product.ProductID != "1" {
		t.Fatalf("Data.Product = %+v", data.Product)
	}
	if len(data.RelatedProducts) != 1 || data.RelatedProducts[0].ProductID != "2" {
		t.Errorf("RelatedProducts = %+v, want only product 2", data.RelatedProducts)
	}
	for _, want := range []string{"사과 젤리", "3,000원", "관련 상품", "포도 젤리"} {
		if !strings.Contains(res.HTML, want) {
			t.Errorf("expected %q in HTML", want)
		}
	}
}

func TestRenderNotFound(t *testing.T) {
	r := newRenderer(testCatalog())

	res, err := r.Render(context.Background(), "/no/such/page", nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.Data != "null" {
		t.Errorf("Data = %q, want null", res.Data)
	}
	if !strings.Contains(res.HTML, "페이지를 찾을 수 없습니다") {
		t.Error("expected not-found page")
	}
}

func TestRenderPrefetchFailure(t *testing.T) {
	r := newRenderer(failingCatalog{})

	res, err := r.Render(context.Background(), "/", nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.Data != "null" {
		t.Errorf("Data = %q, want null", res.Data)
	}
	if !strings.Contains(res.HTML, "catalog unavailable") {
		t.Error("expected load error shown on page")
	}

	res, err = r.Render(context.Background(), "/product/1/", nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(res.HTML, "상품을 찾을 수 없습니다") {
		t.Error("expected detail error page")
	}
}

func TestRenderHooks(t *testing.T) {
	var resolved []string
	var observed []string
	r := newRenderer(testCatalog(),
		WithResolveHook(func(path string, matched bool) {
			resolved = append(resolved, path)
		}),
		WithRenderObserver(func(route string, d time.Duration) {
			observed = append(observed, route)
		}),
	)

	if _, err := r.Render(context.Background(), "/product/2/", nil); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(resolved) == 0 || resolved[0] != "/product/:id/" {
		t.Errorf("resolved = %v", resolved)
	}
	if len(observed) != 1 || observed[0] != "/product/:id/" {
		t.Errorf("observed = %v", observed)
	}
}

func TestRenderBase(t *testing.T) {
	r := newRenderer(testCatalog(), WithBase("/shop"))

	res, err := r.Render(context.Background(), "/shop/", nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.Route != "/" {
		t.Errorf("Route = %q, want /", res.Route)
	}
	if !strings.Contains(res.HTML, `href="/shop/product/1/"`) {
		t.Error("expected links under the base path")
	}
}

func TestHandler(t *testing.T) {
	h := Handler(newRenderer(testCatalog()), HandlerConfig{Script: "/_storefront/live.js", Live: "/live"})

	tests := []struct {
		name   string
		method string
		target string
		status int
		wants  []string
	}{
		{
			name:   "home",
			method: http.MethodGet,
			target: "/",
			status: http.StatusOK,
			wants: []string{
				"<title>쇼핑몰</title>",
				`<div id="root">`,
				"window.__INITIAL_DATA__ = {",
				`"productId":"3"`,
				`src="/_storefront/live.js"`,
				`data-live="/live"`,
			},
		},
		{
			name:   "detail",
			method: http.MethodGet,
			target: "/product/2/",
			status: http.StatusOK,
			wants:  []string{`"product":{`, "포도 젤리"},
		},
		{
			name:   "not found",
			method: http.MethodGet,
			target: "/missing",
			status: http.StatusNotFound,
			wants:  []string{"window.__INITIAL_DATA__ = null;"},
		},
		{
			name:   "post",
			method: http.MethodPost,
			target: "/",
			status: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			body := rec.Body.String()
			for _, want := range tt.wants {
				if !strings.Contains(body, want) {
					t.Errorf("expected %q in body", want)
				}
			}
		})
	}
}

func TestHandlerEscapesData(t *testing.T) {
	m := catalog.NewMemory([]catalog.Product{
		{ProductID: "1", Title: "</script><script>alert(1)</script>", LPrice: "1"},
	})
	h := Handler(newRenderer(m), HandlerConfig{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Contains(rec.Body.String(), "<script>alert(1)") {
		t.Error("expected product data escaped")
	}
	if strings.Contains(rec.Body.String(), "live.js") {
		t.Error("expected no client script without Script")
	}
}
