package storage

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/storefront/pkg/observer"
)

type cartState struct {
	Items       []string `json:"items"`
	SelectedAll bool     `json:"selectedAll"`
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestStorageRoundTrip(t *testing.T) {
	backend := NewMemoryBackend()
	s := New[cartState]("shopping_cart", WithBackend(backend))

	if _, ok := s.Get(); ok {
		t.Fatal("expected empty storage")
	}

	want := cartState{Items: []string{"a", "b"}, SelectedAll: true}
	s.Set(want)

	got, ok := s.Get()
	if !ok {
		t.Fatal("expected stored value")
	}
	if len(got.Items) != 2 || got.Items[1] != "b" || !got.SelectedAll {
		t.Errorf("got %+v, want %+v", got, want)
	}

	s.Reset()
	if _, ok := s.Get(); ok {
		t.Error("expected value removed after Reset")
	}
}

func TestStorageMalformedJSON(t *testing.T) {
	var buf bytes.Buffer
	backend := NewMemoryBackend()
	_ = backend.SetItem(context.Background(), "k", []byte("{not json"))

	s := New[cartState]("k", WithBackend(backend), WithLogger(newTestLogger(&buf)))
	if _, ok := s.Get(); ok {
		t.Error("expected malformed value to read as absent")
	}
	if !strings.Contains(buf.String(), "malformed value") {
		t.Errorf("expected malformed value logged, got %q", buf.String())
	}
}

func TestStorageNullIsAbsent(t *testing.T) {
	backend := NewMemoryBackend()
	_ = backend.SetItem(context.Background(), "k", []byte("null"))

	s := New[cartState]("k", WithBackend(backend))
	if _, ok := s.Get(); ok {
		t.Error("expected JSON null to read as absent")
	}
}

type failingBackend struct{}

var errBackend = errors.New("quota exceeded")

func (failingBackend) GetItem(context.Context, string) ([]byte, bool, error) {
	return nil, false, errBackend
}
func (failingBackend) SetItem(context.Context, string, []byte) error { return errBackend }
func (failingBackend) RemoveItem(context.Context, string) error      { return errBackend }

func TestStorageBackendErrorsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	s := New[cartState]("k", WithBackend(failingBackend{}), WithLogger(newTestLogger(&buf)))

	if _, ok := s.Get(); ok {
		t.Error("expected failed read to report absent")
	}
	s.Set(cartState{})
	s.Reset()

	out := buf.String()
	for _, msg := range []string{"read failed", "write failed", "remove failed"} {
		if !strings.Contains(out, msg) {
			t.Errorf("expected %q in log output %q", msg, out)
		}
	}
}

func TestStorageEncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	backend := NewMemoryBackend()
	s := New[func()]("k", WithBackend(backend), WithLogger(newTestLogger(&buf)))

	s.Set(func() {})
	if backend.Len() != 0 {
		t.Error("expected nothing written for unencodable value")
	}
	if !strings.Contains(buf.String(), "encode failed") {
		t.Errorf("expected encode failure logged, got %q", buf.String())
	}
}

func TestDefaultMemoryIsShared(t *testing.T) {
	a := New[int]("shared_default_key")
	b := New[int]("shared_default_key")
	t.Cleanup(a.Reset)

	a.Set(42)
	got, ok := b.Get()
	if !ok || got != 42 {
		t.Errorf("expected default backend shared across storages, got %d %v", got, ok)
	}
	if DefaultMemory() != DefaultMemory() {
		t.Error("expected DefaultMemory to be a singleton")
	}
}

func TestMemoryBackendIsolation(t *testing.T) {
	first := New[int]("k", WithBackend(NewMemoryBackend()))
	second := New[int]("k", WithBackend(NewMemoryBackend()))

	first.Set(1)
	if _, ok := second.Get(); ok {
		t.Error("expected separate backends not to share values")
	}
}

func TestMemoryBackendCopiesData(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	data := []byte(`"abc"`)
	_ = m.SetItem(ctx, "k", data)
	data[1] = 'z'

	got, ok, err := m.GetItem(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("GetItem() = %v, %v", ok, err)
	}
	if string(got) != `"abc"` {
		t.Errorf("expected stored copy, got %s", got)
	}
}

func TestMemoryBackendClosed(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	_ = m.Close()

	if _, _, err := m.GetItem(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("GetItem() error = %v, want ErrClosed", err)
	}
	if err := m.SetItem(ctx, "k", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("SetItem() error = %v, want ErrClosed", err)
	}
	if err := m.RemoveItem(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("RemoveItem() error = %v, want ErrClosed", err)
	}
}

func TestStorageNotifiesOnWrite(t *testing.T) {
	backend := NewMemoryBackend()
	s := New[cartState]("shopping_cart", WithBackend(backend))

	calls := 0
	s.Subscribe(observer.Func(func() { calls++ }))

	s.Set(cartState{Items: []string{"a"}})
	if got := s.Snapshot(); len(got.Items) != 1 {
		t.Errorf("Snapshot() = %+v", got)
	}
	s.Reset()
	if got := s.Snapshot(); got.Items != nil {
		t.Errorf("Snapshot() after Reset = %+v, want zero", got)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}

	_ = backend.Close()
	s.Set(cartState{})
	if calls != 2 {
		t.Errorf("calls after failed write = %d, want 2", calls)
	}
}

func TestStorageSubscribersPerInstance(t *testing.T) {
	backend := NewMemoryBackend()
	a := New[cartState]("cart_a", WithBackend(backend))
	b := New[cartState]("cart_b", WithBackend(backend))

	var aCalls, bCalls int
	a.Subscribe(observer.Func(func() { aCalls++ }))
	cancel := b.Subscribe(observer.Func(func() { bCalls++ }))

	a.Set(cartState{Items: []string{"x"}})
	if aCalls != 1 || bCalls != 0 {
		t.Errorf("after a.Set calls = (%d, %d), want (1, 0)", aCalls, bCalls)
	}
	cancel()
	b.Set(cartState{Items: []string{"y"}})
	if bCalls != 0 {
		t.Errorf("b calls after cancel = %d, want 0", bCalls)
	}
}
