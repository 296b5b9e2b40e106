package router

import (
	"net/url"
	"strings"
	"sync"

	"github.com/vango-dev/storefront/pkg/observer"
)

// Router is the client router. It resolves routes against the current
// History entry and notifies subscribers after every navigation.
type Router[H any] struct {
	mu       sync.RWMutex
	routes   table[H]
	current  *Route[H]
	history  History
	observer *observer.Observer
	cfg      config
	cancel   func()
}

// New creates a Router bound to history. The router follows back and
// forward navigation until Close is called.
func New[H any](history History, opts ...Option) *Router[H] {
	cfg := newConfig(opts)
	r := &Router[H]{
		routes:   newTable[H](cfg.base),
		history:  history,
		observer: observer.New(observer.WithLogger(cfg.logger)),
		cfg:      cfg,
	}
	r.cancel = history.OnPop(r.onPop)
	return r
}

// Close stops following the history.
func (r *Router[H]) Close() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Base returns the normalized base path.
func (r *Router[H]) Base() string {
	return r.routes.base
}

// AddRoute registers handler for the template path.
func (r *Router[H]) AddRoute(path string, handler H) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes.add(path, handler)
}

// Start resolves the current history entry and notifies subscribers.
func (r *Router[H]) Start() {
	r.resolve(r.history.Location().String())
	r.observer.Notify()
}

// Push navigates to rawURL. The base path is prepended when missing and a
// history entry is added only when the URL differs from the current one.
// Subscribers are notified either way.
func (r *Router[H]) Push(rawURL string) {
	full := r.normalize(rawURL)

	if escapedURL(r.history.Location()) != escapedURL(parseOrPath(full)) {
		r.history.Push(full)
	}

	r.resolve(full)
	r.observer.Notify()
}

// normalize prefixes rawURL with the base path unless it already has it.
func (r *Router[H]) normalize(rawURL string) string {
	base := r.routes.base
	if base != "" && strings.HasPrefix(rawURL, base) {
		return rawURL
	}
	if !strings.HasPrefix(rawURL, "/") {
		rawURL = "/" + rawURL
	}
	return base + rawURL
}

// escapedURL renders the path and query of u in escaped form, so that
// "/상품" and "/%EC%83%81%ED%92%88" compare equal.
func escapedURL(u *url.URL) string {
	out := u.EscapedPath()
	if out == "" {
		out = "/"
	}
	query := u.RawQuery
	if values, err := url.ParseQuery(query); err == nil {
		query = values.Encode()
	}
	if query != "" {
		out += "?" + query
	}
	return out
}

func parseOrPath(rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &url.URL{Path: rawURL}
	}
	return u
}

func (r *Router[H]) onPop() {
	r.resolve(r.history.Location().String())
	r.observer.Notify()
}

// resolve matches rawURL and stores the result. Failures are logged and
// leave no current route.
func (r *Router[H]) resolve(rawURL string) {
	r.mu.Lock()
	route, err := r.routes.match(rawURL)
	r.current = route
	r.mu.Unlock()

	if err != nil {
		r.cfg.logger.Error("router: navigation failed", "url", rawURL, "error", err)
	}

	path := ""
	if route != nil {
		path = route.Path
	}
	r.cfg.observe(path)
}

// Route returns the current route, or nil when nothing matched.
func (r *Router[H]) Route() *Route[H] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Target returns the current route's handler, or the zero H.
func (r *Router[H]) Target() H {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var zero H
	if r.current == nil {
		return zero
	}
	return r.current.Handler
}

// Params returns the current route params. It is never nil.
func (r *Router[H]) Params() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current == nil {
		return map[string]string{}
	}
	return copyQuery(r.current.Params)
}

// Query parses the current history entry's query. Each call returns a new map.
func (r *Router[H]) Query() map[string]string {
	return ParseQuery(r.history.Location().RawQuery)
}

// Location returns the current history entry as a string.
func (r *Router[H]) Location() string {
	return r.history.Location().String()
}

// SetQuery merges patch into the current query and pushes the result. An
// empty value removes its key.
func (r *Router[H]) SetQuery(patch map[string]string) {
	loc := r.history.Location()
	pathname := loc.EscapedPath()
	if pathname == "" {
		pathname = "/"
	}
	r.Push(BuildURL(ParseQuery(loc.RawQuery), patch, pathname, r.routes.base))
}

// Subscribe registers l for navigation notifications.
func (r *Router[H]) Subscribe(l observer.Listener) func() {
	return r.observer.Subscribe(l)
}

// Snapshot returns the router itself so selectors can read any accessor.
func (r *Router[H]) Snapshot() *Router[H] {
	return r
}
