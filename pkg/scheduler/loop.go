package scheduler

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// DefaultQueueSize is the task queue capacity used when none is configured.
const DefaultQueueSize = 256

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger for recovered panics and dropped tasks.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithQueueSize sets the task queue capacity.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.size = n
		}
	}
}

// Loop runs tasks and microtasks for one environment.
type Loop struct {
	mu       sync.Mutex
	micro    []func()
	flushing bool

	size   int
	tasks  chan func()
	done   chan struct{}
	closed bool
	logger *slog.Logger
}

// NewLoop creates a Loop. Tasks are not executed until Run is called.
func NewLoop(opts ...Option) *Loop {
	l := &Loop{size: DefaultQueueSize}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	l.tasks = make(chan func(), l.size)
	l.done = make(chan struct{})
	return l
}

// Defer queues fn to run on the next Flush.
func (l *Loop) Defer(fn func()) {
	l.mu.Lock()
	l.micro = append(l.micro, fn)
	l.mu.Unlock()
}

// Flush runs queued microtasks until none remain, including ones queued
// while flushing. A nested Flush from inside a microtask returns at once;
// the outer call drains the queue.
func (l *Loop) Flush() {
	l.mu.Lock()
	if l.flushing {
		l.mu.Unlock()
		return
	}
	l.flushing = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.flushing = false
		l.mu.Unlock()
	}()

	for {
		l.mu.Lock()
		if len(l.micro) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.micro[0]
		l.micro[0] = nil
		l.micro = l.micro[1:]
		l.mu.Unlock()

		l.execute("microtask", fn)
	}
}

// PendingMicrotasks returns the number of queued microtasks.
func (l *Loop) PendingMicrotasks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.micro)
}

// Dispatch queues fn to run on the loop goroutine. It is safe to call from
// any goroutine. It reports false when the loop is closed or the queue is
// full, in which case fn is discarded.
func (l *Loop) Dispatch(fn func()) bool {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return false
	}

	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	default:
		l.logger.Warn("scheduler: task queue full, discarding task")
		return false
	}
}

// After dispatches fn once d has elapsed. The returned function cancels it
// if it has not been dispatched yet.
func (l *Loop) After(d time.Duration, fn func()) (cancel func()) {
	t := time.AfterFunc(d, func() {
		l.Dispatch(fn)
	})
	return func() { t.Stop() }
}

// Run executes tasks until ctx is done or Close is called, flushing
// microtasks after each one. It returns ctx.Err() or nil after Close.
func (l *Loop) Run(ctx context.Context) error {
	l.Flush()

	for {
		select {
		case fn := <-l.tasks:
			l.execute("task", fn)
			l.Flush()

		case <-l.done:
			return nil

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops Run and rejects further tasks. Queued tasks are dropped.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	close(l.done)
}

// execute runs fn and recovers a panic so one failing task cannot stop the
// loop.
func (l *Loop) execute(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("scheduler: "+kind+" panicked",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
