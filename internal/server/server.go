package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/internal/config"
	"github.com/vango-dev/storefront/internal/errors"
	"github.com/vango-dev/storefront/internal/live"
	"github.com/vango-dev/storefront/internal/metrics"
	"github.com/vango-dev/storefront/internal/ssr"
	"github.com/vango-dev/storefront/pkg/router"
	"github.com/vango-dev/storefront/pkg/storage"
	"github.com/vango-dev/storefront/pkg/store"
)

// ScriptPath is where the live client is served, below the base path.
const ScriptPath = "/_storefront/live.js"

// Server is the storefront HTTP server.
type Server struct {
	cfg     *config.Config
	base    string
	logger  *slog.Logger
	catalog catalog.Client
	memory  *catalog.Memory
	backend storage.Backend
	closers []func() error
	metrics *metrics.Metrics
	handler http.Handler
}

type options struct {
	logger   *slog.Logger
	catalog  catalog.Client
	backend  storage.Backend
	registry *prometheus.Registry
	tracer   trace.TracerProvider
}

// Option configures a Server.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCatalog replaces the configured product source.
func WithCatalog(c catalog.Client) Option {
	return func(o *options) {
		o.catalog = c
	}
}

// WithBackend replaces the configured cart storage.
func WithBackend(b storage.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithRegistry registers and serves metrics from reg instead of the
// Prometheus default registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithTracerProvider sets the tracer provider for server renders.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracer = tp
	}
}

// New validates cfg and opens the catalog and cart storage it names.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		base:   strings.TrimSuffix(cfg.Server.Base, "/"),
		logger: o.logger,
	}

	if o.catalog != nil {
		s.catalog = o.catalog
		s.memory, _ = o.catalog.(*catalog.Memory)
	} else {
		client, mem, err := openCatalog(cfg)
		if err != nil {
			return nil, err
		}
		s.catalog, s.memory = client, mem
	}

	if o.backend != nil {
		s.backend = o.backend
	} else {
		backend, closeFn, err := openBackend(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.backend = backend
		s.closers = append(s.closers, closeFn)
	}

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		var registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer = prometheus.DefaultGatherer
		if o.registry != nil {
			registerer, gatherer = o.registry, o.registry
		}
		s.metrics = metrics.New(metrics.WithRegistry(registerer))
	}

	s.handler = s.routes(gatherer, o.tracer)
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes(gatherer prometheus.Gatherer, tp trace.TracerProvider) http.Handler {
	var storeOpts []store.Option
	var resolve router.ResolveHook
	var recorder live.Recorder
	ssrOpts := []ssr.Option{ssr.WithBase(s.base), ssr.WithLogger(s.logger)}
	if tp != nil {
		ssrOpts = append(ssrOpts, ssr.WithTracerProvider(tp))
	}
	if s.metrics != nil {
		storeOpts = append(storeOpts, store.WithDispatchHook(s.metrics.DispatchHook()))
		resolve = s.metrics.ResolveHook()
		recorder = s.metrics
		ssrOpts = append(ssrOpts,
			ssr.WithStoreOptions(storeOpts...),
			ssr.WithResolveHook(resolve),
			ssr.WithRenderObserver(s.metrics.ObserveRender),
		)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		r.Handle(s.cfg.Metrics.Path, metrics.Handler(gatherer))
	}

	site := func(r chi.Router) {
		r.Mount("/api", catalog.Handler(s.catalog, s.logger))
		r.Handle("/live", live.Handler(live.Config{
			Catalog:       s.catalog,
			Backend:       s.backend,
			CartKey:       s.cfg.Storage.CartKey,
			Base:          s.base,
			ToastDuration: s.cfg.ToastDuration(),
			StoreOptions:  storeOpts,
			ResolveHook:   resolve,
			Recorder:      recorder,
			Logger:        s.logger,
		}))
		r.Handle(ScriptPath, live.ScriptHandler())
		if dir := s.cfg.StaticPath(); dir != "" {
			r.Handle("/static/*", staticHandler(dir, s.base+"/static"))
		}

		pages := ssr.Handler(ssr.New(s.catalog, ssrOpts...), ssr.HandlerConfig{
			Script: s.base + ScriptPath,
			Live:   s.base + "/live",
			Logger: s.logger,
		})
		r.Handle("/*", pages)
	}
	if s.base == "" {
		site(r)
	} else {
		r.Route(s.base, site)
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, s.base+"/", http.StatusFound)
		})
	}
	return r
}

// requestLogger logs every request with its status and duration.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// Run listens on the configured address until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return errors.New("SF140").WithDetailf("listen on %s", s.cfg.Server.Addr).Wrap(err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully. When
// the catalog is a watched fixture, it is reloaded on change meanwhile.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.cfg.Catalog.Watch && s.memory != nil && s.cfg.Catalog.Fixture != "" {
		s.watch(ctx)
	}

	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String(), "base", s.base)
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.New("SF140").Wrap(err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
		defer cancelShutdown()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
		s.logger.Info("server shutdown complete")
		return nil
	}
}

func (s *Server) watch(ctx context.Context) {
	onReload := func(n int, err error) {
		if err != nil {
			s.logger.Warn("catalog reload failed", "error", err)
		} else {
			s.logger.Info("catalog reloaded", "products", n)
		}
		if s.metrics != nil {
			s.metrics.ObserveReload(n, err)
		}
	}
	w := catalog.NewWatcher(s.cfg.FixturePath(), s.memory,
		catalog.WithWatchLogger(s.logger),
		catalog.OnReload(onReload),
	)
	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			s.logger.Error("catalog watcher stopped", "error", err)
		}
	}()
}

// Close releases the cart storage.
func (s *Server) Close() error {
	var first error
	for _, fn := range s.closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
