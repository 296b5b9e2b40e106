package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/internal/stores"
	"github.com/vango-dev/storefront/pkg/lifecycle"
	"github.com/vango-dev/storefront/pkg/observer"
	"github.com/vango-dev/storefront/pkg/router"
	"github.com/vango-dev/storefront/pkg/scheduler"
	"github.com/vango-dev/storefront/pkg/storage"
	"github.com/vango-dev/storefront/pkg/store"
)

// DefaultToastDuration is how long a toast stays visible.
const DefaultToastDuration = 3 * time.Second

// Page renders the current page to HTML.
type Page func() string

// Navigator is the router surface the application needs. Both
// *router.Router[Page] and *router.ServerRouter[Page] implement it.
type Navigator interface {
	Base() string
	AddRoute(path string, handler Page)
	Push(rawURL string)
	Route() *router.Route[Page]
	Target() Page
	Params() map[string]string
	Query() map[string]string
	Location() string
	SetQuery(patch map[string]string)
	Subscribe(l observer.Listener) func()
}

// Mode tells pages whether they run in a live session or a server render.
type Mode int

const (
	ModeLive Mode = iota
	ModeServer
)

func (m Mode) String() string {
	if m == ModeServer {
		return "server"
	}
	return "live"
}

// Context is the application state of one environment.
type Context struct {
	Products *stores.ProductStore
	Cart     *stores.CartStore
	UI       *stores.UIStore

	Router    Navigator
	Lifecycle *lifecycle.Registry

	// View is what pages read while rendering.
	View *View

	Loop      *scheduler.Loop

	// CartStorage persists the cart; every cart use case writes through it.
	CartStorage *storage.Storage[stores.CartState]

	Catalog catalog.Client
	Logger  *slog.Logger

	mode          Mode
	base          context.Context
	toastDuration time.Duration

	mu          sync.Mutex
	hydrated    bool
	cancelToast func()
}

// Option configures a Context.
type Option func(*options)

type options struct {
	mode          Mode
	loop          *scheduler.Loop
	cartStorage   *storage.Storage[stores.CartState]
	logger        *slog.Logger
	ctx           context.Context
	toastDuration time.Duration
	storeOpts     []store.Option
}

// WithMode sets the environment mode. The default is ModeLive.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithLoop sets the scheduler loop. Without one, a private loop is created.
func WithLoop(l *scheduler.Loop) Option {
	return func(o *options) {
		o.loop = l
	}
}

// WithCartStorage sets the cart storage. Without one, the cart is kept in
// a private memory backend.
func WithCartStorage(s *storage.Storage[stores.CartState]) Option {
	return func(o *options) {
		o.cartStorage = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithBaseContext sets the context used by page lifecycle hooks for
// catalog requests.
func WithBaseContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// WithToastDuration sets how long toasts stay visible.
func WithToastDuration(d time.Duration) Option {
	return func(o *options) {
		o.toastDuration = d
	}
}

// WithStoreOptions passes options to all three stores.
func WithStoreOptions(opts ...store.Option) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, opts...)
	}
}

// New creates a Context around nav and the catalog client.
func New(nav Navigator, client catalog.Client, opts ...Option) *Context {
	o := options{
		toastDuration: DefaultToastDuration,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}
	if o.loop == nil {
		o.loop = scheduler.NewLoop(scheduler.WithLogger(o.logger))
	}
	if o.cartStorage == nil {
		o.cartStorage = storage.New[stores.CartState](DefaultCartKey,
			storage.WithBackend(storage.NewMemoryBackend()),
			storage.WithLogger(o.logger),
		)
	}
	if o.toastDuration <= 0 {
		o.toastDuration = DefaultToastDuration
	}

	c := &Context{
		Products:      stores.NewProductStore(o.storeOpts...),
		Cart:          stores.NewCartStore(o.storeOpts...),
		UI:            stores.NewUIStore(o.storeOpts...),
		Router:        nav,
		Lifecycle:     lifecycle.NewRegistry(),
		Loop:          o.loop,
		CartStorage:   o.cartStorage,
		Catalog:       client,
		Logger:        o.logger,
		mode:          o.mode,
		base:          o.ctx,
		toastDuration: o.toastDuration,
	}
	c.View = newView(c)
	return c
}

// DefaultCartKey is the storage key of the cart.
const DefaultCartKey = "shopping_cart"

// Mode returns the environment mode.
func (c *Context) Mode() Mode {
	return c.mode
}

// BaseContext returns the context for requests made outside a caller's
// own context, such as from lifecycle hooks.
func (c *Context) BaseContext() context.Context {
	return c.base
}

// Subscribe registers l with every selection of the view. l runs once per
// changed selection, so a single navigation may call it more than once.
func (c *Context) Subscribe(l observer.Listener) func() {
	return c.View.subscribe(l)
}

// Render runs the current page. It returns "" when no route matched.
func (c *Context) Render() string {
	page := c.View.Page.Get()
	if page == nil {
		return ""
	}
	return page()
}

// Close cancels a pending toast timer and detaches the view.
func (c *Context) Close() {
	c.View.close()

	c.mu.Lock()
	cancel := c.cancelToast
	c.cancelToast = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
