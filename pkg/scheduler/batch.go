package scheduler

import (
	"sync"

	"github.com/vango-dev/storefront/pkg/observer"
)

// Batched runs a function at most once per flush however often it is
// triggered.
type Batched struct {
	loop *Loop
	fn   func()

	mu        sync.Mutex
	scheduled bool
	runs      int
}

var _ observer.Listener = (*Batched)(nil)

// Batch wraps fn so that it is deferred onto loop on the first Trigger and
// later triggers are dropped until it has run.
func Batch(loop *Loop, fn func()) *Batched {
	return &Batched{loop: loop, fn: fn}
}

// Trigger schedules the function unless it is already scheduled.
func (b *Batched) Trigger() {
	b.mu.Lock()
	if b.scheduled {
		b.mu.Unlock()
		return
	}
	b.scheduled = true
	b.mu.Unlock()

	b.loop.Defer(b.run)
}

// Notify implements observer.Listener by calling Trigger.
func (b *Batched) Notify() {
	b.Trigger()
}

// Runs returns how many times the function has run.
func (b *Batched) Runs() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.runs
}

func (b *Batched) run() {
	b.mu.Lock()
	// Cleared before running so triggers raised by fn schedule another pass.
	b.scheduled = false
	b.runs++
	b.mu.Unlock()

	b.fn()
}
