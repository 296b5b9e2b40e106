package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/vango-dev/storefront/pkg/observer"
)

// ErrClosed is returned by backends that have been closed.
var ErrClosed = errors.New("storage: backend closed")

// Backend persists raw blobs by key. Implementations must be safe for
// concurrent use.
type Backend interface {
	// GetItem returns the blob stored under key. The boolean is false when
	// no value exists.
	GetItem(ctx context.Context, key string) ([]byte, bool, error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key string, value []byte) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error
}

var (
	defaultMemory     *MemoryBackend
	defaultMemoryOnce sync.Once
)

// DefaultMemory returns the process-wide in-memory backend used when no
// backend is configured.
func DefaultMemory() *MemoryBackend {
	defaultMemoryOnce.Do(func() {
		defaultMemory = NewMemoryBackend()
	})
	return defaultMemory
}

type options struct {
	backend Backend
	logger  *slog.Logger
	ctx     context.Context
}

// Option configures a Storage.
type Option func(*options)

// WithBackend sets the backend. Default: DefaultMemory().
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithLogger sets the logger used for read and write failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithContext sets the context passed to the backend.
// Default: context.Background().
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// Storage is a typed JSON document stored under a single key.
type Storage[T any] struct {
	key     string
	backend Backend
	logger  *slog.Logger
	ctx     context.Context
	obs     *observer.Observer
}

// New creates a Storage for key.
func New[T any](key string, opts ...Option) *Storage[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.backend == nil {
		o.backend = DefaultMemory()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}

	return &Storage[T]{
		key:     key,
		backend: o.backend,
		logger:  o.logger,
		ctx:     o.ctx,
		obs:     observer.New(observer.WithLogger(o.logger)),
	}
}

// Key returns the storage key.
func (s *Storage[T]) Key() string {
	return s.key
}

// Get returns the stored value. The boolean is false when nothing is
// stored, the blob is JSON null, or the blob cannot be read or decoded.
func (s *Storage[T]) Get() (T, bool) {
	var zero T

	data, ok, err := s.backend.GetItem(s.ctx, s.key)
	if err != nil {
		s.logger.Error("storage: read failed", "key", s.key, "error", err)
		return zero, false
	}
	if !ok || len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return zero, false
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		s.logger.Error("storage: malformed value", "key", s.key, "error", err)
		return zero, false
	}
	return value, true
}

// Set stores value. Failures are logged.
func (s *Storage[T]) Set(value T) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("storage: encode failed", "key", s.key, "error", err)
		return
	}
	if err := s.backend.SetItem(s.ctx, s.key, data); err != nil {
		s.logger.Error("storage: write failed", "key", s.key, "error", err)
		return
	}
	s.obs.Notify()
}

// Reset removes the stored value. Failures are logged.
func (s *Storage[T]) Reset() {
	if err := s.backend.RemoveItem(s.ctx, s.key); err != nil {
		s.logger.Error("storage: remove failed", "key", s.key, "error", err)
		return
	}
	s.obs.Notify()
}

// Snapshot returns the stored value, or the zero T when nothing is stored.
func (s *Storage[T]) Snapshot() T {
	v, _ := s.Get()
	return v
}

// Subscribe registers l to run after every successful Set or Reset made
// through this Storage.
func (s *Storage[T]) Subscribe(l observer.Listener) func() {
	return s.obs.Subscribe(l)
}
