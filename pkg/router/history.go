package router

import (
	"net/url"
	"sync"
)

// History is the navigation stack a client Router is bound to.
type History interface {
	// Location returns the current entry. Callers may modify the result.
	Location() *url.URL

	// Push adds url as a new entry. It does not fire pop listeners.
	Push(url string)

	// OnPop registers fn to run whenever the current entry changes through
	// back or forward navigation.
	OnPop(fn func()) (cancel func())
}

// MemoryHistory is an in-process History with back and forward stacks.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []string
	index   int
	nextID  int
	pops    map[int]func()
	order   []int
}

var _ History = (*MemoryHistory)(nil)

// NewMemoryHistory creates a history whose only entry is initial.
func NewMemoryHistory(initial string) *MemoryHistory {
	if initial == "" {
		initial = "/"
	}
	return &MemoryHistory{
		entries: []string{initial},
		pops:    make(map[int]func()),
	}
}

// Location returns the current entry.
func (h *MemoryHistory) Location() *url.URL {
	h.mu.Lock()
	current := h.entries[h.index]
	h.mu.Unlock()

	u, err := url.Parse(current)
	if err != nil {
		return &url.URL{Path: "/"}
	}
	return u
}

// Push discards any forward entries and appends rawURL.
func (h *MemoryHistory) Push(rawURL string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries[:h.index+1], rawURL)
	h.index = len(h.entries) - 1
}

// Replace overwrites the current entry without firing pop listeners.
func (h *MemoryHistory) Replace(rawURL string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.index] = rawURL
}

// Back moves one entry back and fires pop listeners. It reports whether
// there was an entry to move to.
func (h *MemoryHistory) Back() bool {
	return h.move(-1)
}

// Forward moves one entry forward and fires pop listeners. It reports
// whether there was an entry to move to.
func (h *MemoryHistory) Forward() bool {
	return h.move(1)
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *MemoryHistory) move(delta int) bool {
	h.mu.Lock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = next

	listeners := make([]func(), 0, len(h.order))
	for _, id := range h.order {
		listeners = append(listeners, h.pops[id])
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return true
}

// OnPop registers fn for back and forward navigation.
func (h *MemoryHistory) OnPop(fn func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.pops[id] = fn
	h.order = append(h.order, id)

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		delete(h.pops, id)
		for i, other := range h.order {
			if other == id {
				h.order = append(h.order[:i], h.order[i+1:]...)
				break
			}
		}
	}
}
