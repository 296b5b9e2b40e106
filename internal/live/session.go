package live

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/vango-dev/storefront/internal/app"
	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/internal/errors"
	"github.com/vango-dev/storefront/internal/pages"
	"github.com/vango-dev/storefront/internal/stores"
	"github.com/vango-dev/storefront/pkg/router"
	"github.com/vango-dev/storefront/pkg/scheduler"
	"github.com/vango-dev/storefront/pkg/storage"
	"github.com/vango-dev/storefront/pkg/store"
)

// sender writes one message to the browser.
type sender func(v any) error

// sessionConfig is what a session needs from its handler.
type sessionConfig struct {
	catalog   catalog.Client
	cart      *storage.Storage[stores.CartState]
	base      string
	toast     time.Duration
	storeOpts []store.Option
	resolve   router.ResolveHook
	logger    *slog.Logger
}

// Session is one browser connection.
type Session struct {
	ID string

	cfg    sessionConfig
	ctx    context.Context
	send   sender
	loop   *scheduler.Loop
	render *scheduler.Batched
	logger *slog.Logger

	history *router.MemoryHistory
	router  *router.Router[app.Page]
	app     *app.Context

	mu       sync.Mutex
	lastURL  string
	lastHTML string
	renders  int
}

func newSession(ctx context.Context, id string, cfg sessionConfig, send sender) *Session {
	logger := cfg.logger.With("session", id)
	s := &Session{
		ID:     id,
		cfg:    cfg,
		ctx:    ctx,
		send:   send,
		logger: logger,
		loop:   scheduler.NewLoop(scheduler.WithLogger(logger)),
	}
	s.render = scheduler.Batch(s.loop, s.flushRender)
	return s
}

// Loop returns the session's scheduler loop. Messages must be handled on
// it.
func (s *Session) Loop() *scheduler.Loop {
	return s.loop
}

// Started reports whether the hello message was handled.
func (s *Session) Started() bool {
	return s.app != nil
}

// Renders returns how many render messages were sent.
func (s *Session) Renders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders
}

// Close releases the router and pending timers.
func (s *Session) Close() {
	if s.app != nil {
		s.app.Close()
	}
	if s.router != nil {
		s.router.Close()
	}
	s.loop.Close()
}

// Handle applies one browser message. Failures are sent back as error
// messages and returned.
func (s *Session) Handle(msg Message) error {
	err := s.handle(msg)
	if err != nil {
		s.logger.Warn("live: message rejected", "type", msg.Type, "op", msg.Op, "error", err)
		s.sendError(err)
	}
	return err
}

func (s *Session) handle(msg Message) error {
	if msg.Type == TypeHello {
		return s.hello(msg)
	}
	if !s.Started() {
		return errors.New("SF065").WithDetailf("got %q before hello", msg.Type)
	}

	switch msg.Type {
	case TypeNavigate:
		path, err := router.ValidateNavPath(msg.URL)
		if err != nil {
			return errors.New("SF062").WithDetail(msg.URL).Wrap(err)
		}
		s.router.Push(path)

	case TypeBack:
		s.history.Back()

	case TypeForward:
		s.history.Forward()

	case TypeQuery:
		s.router.SetQuery(msg.Query)

	case TypeProducts:
		return s.products(msg)

	case TypeCart:
		return s.cart(msg)

	case TypeUI:
		return s.ui(msg)

	default:
		return errors.New("SF061").WithDetailf("type %q", msg.Type)
	}
	return nil
}

// hello builds the page runtime at msg.URL and applies the initial data
// before the first render. A second hello is rejected.
func (s *Session) hello(msg Message) error {
	if s.Started() {
		return errors.New("SF061").WithDetail("session already started")
	}
	url := msg.URL
	if url == "" {
		url = "/"
	}
	url, err := router.ValidateNavPath(url)
	if err != nil {
		return errors.New("SF062").WithDetail(msg.URL).Wrap(err)
	}

	routerOpts := []router.Option{router.WithBase(s.cfg.base), router.WithLogger(s.logger)}
	if s.cfg.resolve != nil {
		routerOpts = append(routerOpts, router.WithResolveHook(s.cfg.resolve))
	}
	s.history = router.NewMemoryHistory(url)
	s.router = router.New[app.Page](s.history, routerOpts...)

	appOpts := []app.Option{
		app.WithMode(app.ModeLive),
		app.WithLoop(s.loop),
		app.WithLogger(s.logger),
		app.WithBaseContext(s.ctx),
		app.WithStoreOptions(s.cfg.storeOpts...),
		app.WithToastDuration(s.cfg.toast),
	}
	if s.cfg.cart != nil {
		appOpts = append(appOpts, app.WithCartStorage(s.cfg.cart))
	}
	s.app = app.New(s.router, s.cfg.catalog, appOpts...)
	pages.Register(s.app)

	hydrateErr := s.app.Hydrate(msg.Data, url)
	s.app.LoadCartFromStorage()

	s.app.Subscribe(s.render)
	s.router.Start()

	if hydrateErr != nil {
		// The page still renders; it loads its own data.
		return hydrateErr
	}
	return nil
}

func (s *Session) products(msg Message) error {
	c := s.app
	switch msg.Op {
	case "search":
		c.SearchProducts(msg.Value)
	case "category":
		c.SetCategory(msg.Category1, msg.Category2)
	case "sort":
		c.SetSort(msg.Value)
	case "limit":
		limit, err := strconv.Atoi(msg.Value)
		if err != nil || limit <= 0 {
			return errors.New("SF023").WithDetailf("limit %q", msg.Value)
		}
		c.SetLimit(limit)
	case "load-more":
		s.logLoad(c.LoadMoreProducts(s.ctx))
	case "retry":
		if route := s.router.Route(); route != nil && route.Path == pages.DetailPath {
			s.logLoad(c.LoadProductDetail(s.ctx, s.router.Params()["id"]))
			return nil
		}
		s.logLoad(c.LoadProductsAndCategories(s.ctx))
	default:
		return errors.New("SF061").WithDetailf("products operation %q", msg.Op)
	}
	return nil
}

// logLoad logs a failed load. The failure itself is shown by the page.
func (s *Session) logLoad(err error) {
	if err != nil {
		s.logger.Warn("live: load failed", "error", err)
	}
}

func (s *Session) cart(msg Message) error {
	c := s.app
	switch msg.Op {
	case "add":
		quantity := msg.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		if err := c.AddToCartByID(s.ctx, msg.ProductID, quantity); err != nil {
			if stderrors.Is(err, catalog.ErrNotFound) {
				return errors.FromError(err, "SF020").WithDetailf("product %s", msg.ProductID)
			}
			return errors.FromError(err, "SF021")
		}
	case "remove":
		c.RemoveFromCart(msg.ProductID)
	case "quantity":
		c.UpdateCartQuantity(msg.ProductID, msg.Quantity)
	case "toggle":
		c.ToggleCartSelect(msg.ProductID)
	case "select-all":
		c.SelectAllCart()
	case "deselect-all":
		c.DeselectAllCart()
	case "remove-selected":
		c.RemoveSelectedFromCart()
	case "clear":
		c.ClearCart()
	default:
		return errors.New("SF063").WithDetailf("operation %q", msg.Op)
	}
	return nil
}

func (s *Session) ui(msg Message) error {
	c := s.app
	switch msg.Op {
	case "open-cart":
		c.OpenCartModal()
	case "close-cart":
		c.CloseCartModal()
	case "hide-toast":
		c.UI.Dispatch(stores.HideToast{})
	default:
		return errors.New("SF064").WithDetailf("operation %q", msg.Op)
	}
	return nil
}

// flushRender sends the current page unless it is unchanged.
func (s *Session) flushRender() {
	html := s.app.Render()
	url := s.router.Location()

	s.mu.Lock()
	if html == s.lastHTML && url == s.lastURL {
		s.mu.Unlock()
		return
	}
	s.lastHTML, s.lastURL = html, url
	s.renders++
	s.mu.Unlock()

	if err := s.send(Render{Type: TypeRender, URL: url, HTML: html}); err != nil {
		s.logger.Warn("live: render not sent", "error", err)
	}
}

func (s *Session) sendError(err error) {
	if sendErr := s.send(errorMessage(err)); sendErr != nil {
		s.logger.Warn("live: error not sent", "error", sendErr)
	}
}
