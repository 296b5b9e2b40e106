package ssr

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/storefront/internal/app"
	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/internal/errors"
	"github.com/vango-dev/storefront/internal/pages"
	"github.com/vango-dev/storefront/internal/stores"
	"github.com/vango-dev/storefront/pkg/router"
	"github.com/vango-dev/storefront/pkg/store"
)

const tracerName = "github.com/vango-dev/storefront/internal/ssr"

// Result is a rendered page.
type Result struct {
	HTML string
	Head string

	// Data is the JSON of the initial data, "null" when there is none.
	Data string

	// Route is the matched route template, "" when nothing matched.
	Route string
}

// Renderer renders pages against a catalog.
type Renderer struct {
	catalog catalog.Client
	base    string
	logger  *slog.Logger
	tracer  trace.Tracer

	storeOpts []store.Option
	resolve   router.ResolveHook
	observe   func(route string, d time.Duration)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithBase sets the base path pages are served under.
func WithBase(base string) Option {
	return func(r *Renderer) {
		r.base = base
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithTracerProvider sets the tracer provider. The default is the global
// one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Renderer) {
		r.tracer = tp.Tracer(tracerName)
	}
}

// WithStoreOptions passes options to the stores of every request.
func WithStoreOptions(opts ...store.Option) Option {
	return func(r *Renderer) {
		r.storeOpts = append(r.storeOpts, opts...)
	}
}

// WithResolveHook observes route resolution of every request.
func WithResolveHook(h router.ResolveHook) Option {
	return func(r *Renderer) {
		r.resolve = h
	}
}

// WithRenderObserver is called with the route and duration of every render.
func WithRenderObserver(fn func(route string, d time.Duration)) Option {
	return func(r *Renderer) {
		r.observe = fn
	}
}

// New creates a Renderer reading products from client.
func New(client catalog.Client, opts ...Option) *Renderer {
	r := &Renderer{catalog: client}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}
	return r
}

// Render renders rawURL. query holds the parsed query of the request.
// Prefetch failures do not fail the render; they are logged and shown by
// the page.
func (r *Renderer) Render(ctx context.Context, rawURL string, query map[string]string) (*Result, error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "ssr.render",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("storefront.url", rawURL)),
	)
	defer span.End()

	routerOpts := []router.Option{router.WithBase(r.base), router.WithLogger(r.logger)}
	if r.resolve != nil {
		routerOpts = append(routerOpts, router.WithResolveHook(r.resolve))
	}
	srv := router.NewServer[app.Page](routerOpts...)

	c := app.New(srv, r.catalog,
		app.WithMode(app.ModeServer),
		app.WithLogger(r.logger),
		app.WithBaseContext(ctx),
		app.WithStoreOptions(r.storeOpts...),
	)
	defer c.Close()
	pages.Register(c)

	srv.Start(rawURL, query)

	route := ""
	if rt := srv.Route(); rt != nil {
		route = rt.Path
	}
	span.SetAttributes(attribute.String("storefront.route", route))

	data := r.prefetch(ctx, c, route)
	if data != nil {
		c.HydrateData(*data, rawURL)
	}

	html, err := r.renderPage(c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	c.Loop.Flush()

	encoded := []byte("null")
	if data != nil {
		if encoded, err = json.Marshal(data); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, errors.New("SF100").WithDetail("encoding initial data").Wrap(err)
		}
	}

	span.SetStatus(codes.Ok, "")
	if r.observe != nil {
		r.observe(route, time.Since(start))
	}
	return &Result{
		HTML:  html,
		Head:  pages.Head(),
		Data:  string(encoded),
		Route: route,
	}, nil
}

// renderPage runs the page, turning a panic into an error.
func (r *Renderer) renderPage(c *app.Context) (html string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New("SF100").WithDetailf("page panicked: %v", p)
		}
	}()
	return c.Render(), nil
}

// prefetch loads the data of the matched page. It returns nil when the
// page needs none or loading failed.
func (r *Renderer) prefetch(ctx context.Context, c *app.Context, route string) *app.InitialData {
	ctx, span := r.tracer.Start(ctx, "ssr.prefetch", trace.WithAttributes(attribute.String("storefront.route", route)))
	defer span.End()

	switch route {
	case pages.HomePath:
		list, err := r.catalog.Products(ctx, catalog.QueryFromMap(c.Router.Query()))
		if err != nil {
			return r.prefetchFailed(c, span, route, err)
		}
		categories, err := r.catalog.Categories(ctx)
		if err != nil {
			return r.prefetchFailed(c, span, route, err)
		}
		return &app.InitialData{
			Products:   list.Products,
			TotalCount: list.Pagination.Total,
			Categories: categories,
		}

	case pages.DetailPath:
		id := c.Router.Params()["id"]
		product, err := r.catalog.Product(ctx, id)
		if err != nil {
			return r.prefetchFailed(c, span, route, err)
		}
		data := &app.InitialData{Product: product, RelatedProducts: []catalog.Product{}}
		if product.Category2 != "" {
			related, err := r.catalog.Products(ctx, catalog.Query{Category2: product.Category2, Limit: app.RelatedLimit, Page: 1})
			if err != nil {
				r.logger.Warn("ssr: related products failed", "id", id, "error", err)
			} else {
				for _, p := range related.Products {
					if p.ProductID != id {
						data.RelatedProducts = append(data.RelatedProducts, p)
					}
				}
			}
		}
		return data
	}
	return nil
}

func (r *Renderer) prefetchFailed(c *app.Context, span trace.Span, route string, err error) *app.InitialData {
	r.logger.Error("ssr: prefetch failed", "route", route, "error", err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.Products.Dispatch(stores.SetError{Message: err.Error()})
	return nil
}
