package observer

import (
	"fmt"
	"log/slog"
	"sync"
)

// Listener is anything that can be notified of a change.
// Implementations must be comparable (typically pointer types); two
// listeners are the same subscription when they compare equal.
type Listener interface {
	Notify()
}

// funcListener adapts a plain function. Each call to Func returns a new
// pointer, so every adapted function is a distinct listener.
type funcListener struct {
	fn func()
}

func (f *funcListener) Notify() { f.fn() }

// Func wraps fn in a new Listener.
func Func(fn func()) Listener {
	return &funcListener{fn: fn}
}

// Observer is a set of listeners notified on demand.
type Observer struct {
	mu        sync.Mutex
	listeners []Listener
	logger    *slog.Logger
}

// Option configures an Observer.
type Option func(*Observer)

// WithLogger sets the logger used to report panicking listeners.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Observer) {
		o.logger = logger
	}
}

// New creates an empty Observer.
func New(opts ...Option) *Observer {
	o := &Observer{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Subscribe registers l and returns a function that removes it.
// Subscribing a listener that is already registered does not add a
// second entry.
func (o *Observer) Subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}

	o.mu.Lock()
	if o.indexOf(l) < 0 {
		o.listeners = append(o.listeners, l)
	}
	o.mu.Unlock()

	return func() { o.Unsubscribe(l) }
}

// Unsubscribe removes l. Removing an unknown listener is a no-op.
func (o *Observer) Unsubscribe(l Listener) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if i := o.indexOf(l); i >= 0 {
		// Keep registration order for the remaining listeners.
		o.listeners = append(o.listeners[:i], o.listeners[i+1:]...)
	}
}

// Notify calls every registered listener.
// The listener set is copied first, so listeners may subscribe or
// unsubscribe while being notified. A panicking listener is logged and
// does not stop the remaining ones.
func (o *Observer) Notify() {
	o.mu.Lock()
	listeners := make([]Listener, len(o.listeners))
	copy(listeners, o.listeners)
	o.mu.Unlock()

	for _, l := range listeners {
		o.call(l)
	}
}

// Len returns the number of registered listeners.
func (o *Observer) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.listeners)
}

func (o *Observer) call(l Listener) {
	defer func() {
		if r := recover(); r != nil {
			o.log().Error("observer: listener panicked",
				"panic", fmt.Sprint(r),
				"listener", fmt.Sprintf("%T", l),
			)
		}
	}()
	l.Notify()
}

func (o *Observer) indexOf(l Listener) int {
	for i, existing := range o.listeners {
		if existing == l {
			return i
		}
	}
	return -1
}

func (o *Observer) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return slog.Default()
}
