package router

import (
	"sync"

	"github.com/vango-dev/storefront/pkg/observer"
)

// ServerRouter resolves a single request. It keeps the request query it was
// started with and never touches a history. Resolution errors are logged
// and swallowed so a bad URL renders the not-found page instead of failing.
//
// A ServerRouter does not notify during a render; Subscribe exists so the
// same selections work against both routers.
type ServerRouter[H any] struct {
	mu       sync.RWMutex
	routes   table[H]
	current  *Route[H]
	pathname string
	query    map[string]string
	observer *observer.Observer
	cfg      config
}

// NewServer creates a ServerRouter. Build one per request.
func NewServer[H any](opts ...Option) *ServerRouter[H] {
	cfg := newConfig(opts)
	return &ServerRouter[H]{
		routes:   newTable[H](cfg.base),
		pathname: "/",
		query:    map[string]string{},
		observer: observer.New(observer.WithLogger(cfg.logger)),
		cfg:      cfg,
	}
}

// Base returns the normalized base path.
func (s *ServerRouter[H]) Base() string {
	return s.routes.base
}

// AddRoute registers handler for the template path.
func (s *ServerRouter[H]) AddRoute(path string, handler H) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes.add(path, handler)
}

// Start resolves rawURL and caches query as the request query.
func (s *ServerRouter[H]) Start(rawURL string, query map[string]string) {
	s.mu.Lock()
	s.query = copyQuery(query)
	s.mu.Unlock()

	s.Push(rawURL)
}

// Push re-resolves the route for rawURL. The cached query is unchanged.
func (s *ServerRouter[H]) Push(rawURL string) {
	s.mu.Lock()
	route, err := s.routes.match(rawURL)
	if err != nil {
		s.current = nil
	} else {
		s.current = route
		s.pathname = pathOf(rawURL)
	}
	s.mu.Unlock()

	if err != nil {
		s.cfg.logger.Warn("router: server navigation failed", "url", rawURL, "error", err)
	}

	path := ""
	if route != nil {
		path = route.Path
	}
	s.cfg.observe(path)
}

// SetQuery merges patch into the cached query and re-resolves the current
// pathname with the merged query.
func (s *ServerRouter[H]) SetQuery(patch map[string]string) {
	s.mu.Lock()
	merged := MergeQuery(s.query, patch)
	s.query = merged
	target := BuildURL(nil, merged, s.pathname, s.routes.base)
	s.mu.Unlock()

	s.Push(target)
}

// Route returns the current route, or nil when nothing matched.
func (s *ServerRouter[H]) Route() *Route[H] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Target returns the current route's handler, or the zero H.
func (s *ServerRouter[H]) Target() H {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero H
	if s.current == nil {
		return zero
	}
	return s.current.Handler
}

// Params returns the current route params. It is never nil.
func (s *ServerRouter[H]) Params() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return map[string]string{}
	}
	return copyQuery(s.current.Params)
}

// Query returns the cached request query. The same map is returned until
// the query changes, so callers must not modify it.
func (s *ServerRouter[H]) Query() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Location returns the resolved pathname with the cached query.
func (s *ServerRouter[H]) Location() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BuildURL(nil, s.query, s.pathname, s.routes.base)
}

// Subscribe registers l. A ServerRouter does not notify on its own.
func (s *ServerRouter[H]) Subscribe(l observer.Listener) func() {
	return s.observer.Subscribe(l)
}

// Snapshot returns the router itself so selectors can read any accessor.
func (s *ServerRouter[H]) Snapshot() *ServerRouter[H] {
	return s
}
