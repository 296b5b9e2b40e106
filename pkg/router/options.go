package router

import "log/slog"

// ResolveHook observes every route resolution. path is the template of the
// matched route, or "" when nothing matched.
type ResolveHook func(path string, matched bool)

type config struct {
	base    string
	logger  *slog.Logger
	resolve ResolveHook
}

// Option configures a Router or ServerRouter.
type Option func(*config)

// WithBase sets the base path every template and URL is prefixed with.
// A trailing slash is ignored.
func WithBase(base string) Option {
	return func(c *config) {
		c.base = base
	}
}

// WithLogger sets the logger for resolution failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithResolveHook registers a hook called after every resolution.
func WithResolveHook(h ResolveHook) Option {
	return func(c *config) {
		c.resolve = h
	}
}

func newConfig(opts []Option) config {
	c := config{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// observe reports a resolution to the hook, if any.
func (c config) observe(path string) {
	if c.resolve != nil {
		c.resolve(path, path != "")
	}
}
