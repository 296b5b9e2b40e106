package router

import "testing"

func TestMemoryHistoryBackForward(t *testing.T) {
	h := NewMemoryHistory("/")
	pops := 0
	cancel := h.OnPop(func() { pops++ })

	h.Push("/a")
	h.Push("/b")
	if pops != 0 {
		t.Fatalf("Push fired %d pops, want 0", pops)
	}

	if !h.Back() {
		t.Fatal("Back() = false, want true")
	}
	if got := h.Location().String(); got != "/a" {
		t.Errorf("Location() = %q, want /a", got)
	}

	if !h.Forward() {
		t.Fatal("Forward() = false, want true")
	}
	if got := h.Location().String(); got != "/b" {
		t.Errorf("Location() = %q, want /b", got)
	}
	if h.Forward() {
		t.Error("Forward() at the end = true, want false")
	}
	if pops != 2 {
		t.Errorf("pops = %d, want 2", pops)
	}

	cancel()
	h.Back()
	if pops != 2 {
		t.Errorf("pops after cancel = %d, want 2", pops)
	}
}

func TestMemoryHistoryPushDropsForwardEntries(t *testing.T) {
	h := NewMemoryHistory("/")
	h.Push("/a")
	h.Push("/b")
	h.Back()
	h.Back()
	h.Push("/c")

	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
	if h.Forward() {
		t.Error("Forward() after push = true, want false")
	}
}

func TestMemoryHistoryReplace(t *testing.T) {
	h := NewMemoryHistory("")
	if got := h.Location().String(); got != "/" {
		t.Errorf("initial Location() = %q, want /", got)
	}

	h.Replace("/?search=x")
	if h.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.Len())
	}
	if got := h.Location().RawQuery; got != "search=x" {
		t.Errorf("RawQuery = %q, want search=x", got)
	}
}
