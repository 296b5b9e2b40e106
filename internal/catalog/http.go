package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vango-dev/storefront/internal/errors"
)

// HTTPClient reads products from a remote product API serving the same
// routes as Handler.
type HTTPClient struct {
	base   string
	client *http.Client
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient sets the underlying http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) {
		h.client = c
	}
}

// WithTimeout sets the request timeout of the default http.Client.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTPClient) {
		h.client = &http.Client{Timeout: d}
	}
}

// NewHTTPClient creates a client for the API rooted at base
// (e.g. "http://localhost:5174"). The /api prefix is added by the client.
func NewHTTPClient(base string, opts ...HTTPOption) *HTTPClient {
	h := &HTTPClient{
		base:   strings.TrimSuffix(base, "/"),
		client: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Products fetches a page of products.
func (h *HTTPClient) Products(ctx context.Context, q Query) (*ProductList, error) {
	var out ProductList
	if err := h.get(ctx, "/api/products?"+q.Values().Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Product fetches a single product.
func (h *HTTPClient) Product(ctx context.Context, id string) (*Product, error) {
	var out Product
	if err := h.get(ctx, "/api/products/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories fetches the category tree.
func (h *HTTPClient) Categories(ctx context.Context) (Categories, error) {
	out := Categories{}
	if err := h.get(ctx, "/api/categories", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.base+path, nil)
	if err != nil {
		return errors.New("SF021").Wrap(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return errors.New("SF021").WithDetailf("GET %s", path).Wrap(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.New("SF020").WithDetailf("GET %s", path).Wrap(ErrNotFound)
	case resp.StatusCode >= 400:
		return errors.New("SF021").
			WithDetailf("GET %s", path).
			Wrap(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.New("SF021").WithDetailf("decoding %s", path).Wrap(err)
	}
	return nil
}
