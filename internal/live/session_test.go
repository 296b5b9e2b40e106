package live

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/vango-dev/storefront/internal/app"
	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/internal/stores"
	"github.com/vango-dev/storefront/pkg/storage"
)

func testCatalog() *catalog.Memory {
	return catalog.NewMemory([]catalog.Product{
		{ProductID: "1", Title: "사과 젤리", Brand: "과일농장", LPrice: "3000", Category1: "식품", Category2: "젤리"},
		{ProductID: "2", Title: "포도 젤리", Brand: "과일농장", LPrice: "1000", Category1: "식품", Category2: "젤리"},
		{ProductID: "3", Title: "Keyboard", LPrice: "1290000", Category1: "디지털", Category2: "입력장치"},
	})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// outbox records what a session sends.
type outbox struct {
	mu   sync.Mutex
	sent []any
}

func (o *outbox) send(v any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, v)
	return nil
}

func (o *outbox) renders() []Render {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []Render
	for _, v := range o.sent {
		if r, ok := v.(Render); ok {
			out = append(out, r)
		}
	}
	return out
}

func (o *outbox) errors() []Error {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []Error
	for _, v := range o.sent {
		if e, ok := v.(Error); ok {
			out = append(out, e)
		}
	}
	return out
}

func (o *outbox) last(t *testing.T) Render {
	t.Helper()
	renders := o.renders()
	if len(renders) == 0 {
		t.Fatal("no render sent")
	}
	return renders[len(renders)-1]
}

type testSession struct {
	*Session
	out     *outbox
	backend *storage.MemoryBackend
}

func newTestSession(t *testing.T) *testSession {
	t.Helper()
	out := &outbox{}
	backend := storage.NewMemoryBackend()
	cart := storage.New[stores.CartState]("shopping_cart:test",
		storage.WithBackend(backend),
		storage.WithLogger(quietLogger()),
	)
	s := newSession(context.Background(), "test", sessionConfig{
		catalog: testCatalog(),
		cart:    cart,
		toast:   app.DefaultToastDuration,
		logger:  quietLogger(),
	}, out.send)
	t.Cleanup(s.Close)
	return &testSession{Session: s, out: out, backend: backend}
}

// do handles msg the way the loop does: the task, then a flush.
func (s *testSession) do(msg Message) error {
	err := s.Handle(msg)
	s.loop.Flush()
	return err
}

func TestHelloLoadsAndRenders(t *testing.T) {
	s := newTestSession(t)

	if err := s.do(Message{Type: TypeHello, URL: "/"}); err != nil {
		t.Fatalf("hello error = %v", err)
	}

	renders := s.out.renders()
	if len(renders) != 2 {
		t.Fatalf("renders = %d, want loading then loaded", len(renders))
	}
	if !strings.Contains(renders[0].HTML, "카테고리 로딩 중") {
		t.Error("expected first render to show loading")
	}
	last := s.out.last(t)
	for _, want := range []string{"사과 젤리", "Keyboard"} {
		if !strings.Contains(last.HTML, want) {
			t.Errorf("expected %q in loaded render", want)
		}
	}
	if last.URL != "/" {
		t.Errorf("URL = %q, want /", last.URL)
	}
}

func TestHelloWithInitialData(t *testing.T) {
	s := newTestSession(t)

	categories := catalog.Categories{}
	categories.Add("식품", "젤리")
	data, err := json.Marshal(app.InitialData{
		Products:   []catalog.Product{{ProductID: "2", Title: "포도 젤리", LPrice: "1000"}},
		TotalCount: 1,
		Categories: categories,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.do(Message{Type: TypeHello, URL: "/", Data: data}); err != nil {
		t.Fatalf("hello error = %v", err)
	}

	renders := s.out.renders()
	if len(renders) != 1 {
		t.Fatalf("renders = %d, want one render from initial data", len(renders))
	}
	if strings.Contains(renders[0].HTML, "Keyboard") {
		t.Error("expected initial data used instead of a load")
	}
}

func TestHelloMalformedData(t *testing.T) {
	s := newTestSession(t)

	err := s.do(Message{Type: TypeHello, URL: "/", Data: json.RawMessage(`[1,2`)})
	if err == nil {
		t.Fatal("expected hydration error")
	}
	if errs := s.out.errors(); len(errs) != 1 || errs[0].Code != "SF040" {
		t.Errorf("errors = %+v, want SF040", errs)
	}
	if !s.Started() {
		t.Fatal("expected session started despite bad data")
	}
	if !strings.Contains(s.out.last(t).HTML, "Keyboard") {
		t.Error("expected page to load its own data")
	}
}

func TestMessagesRejectedBeforeHello(t *testing.T) {
	s := newTestSession(t)

	if err := s.do(Message{Type: TypeNavigate, URL: "/"}); err == nil {
		t.Fatal("expected error before hello")
	}
	if errs := s.out.errors(); len(errs) != 1 || errs[0].Code != "SF065" {
		t.Errorf("errors = %+v, want SF065", errs)
	}
	if len(s.out.renders()) != 0 {
		t.Error("expected no render before hello")
	}
}

func TestProtocolErrors(t *testing.T) {
	s := newTestSession(t)
	if err := s.do(Message{Type: TypeHello, URL: "/"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		msg  Message
		code string
	}{
		{"unknown type", Message{Type: "teleport"}, "SF061"},
		{"second hello", Message{Type: TypeHello, URL: "/"}, "SF061"},
		{"absolute url", Message{Type: TypeNavigate, URL: "https://example.com/"}, "SF062"},
		{"protocol relative", Message{Type: TypeNavigate, URL: "//example.com/"}, "SF062"},
		{"escaping root", Message{Type: TypeNavigate, URL: "/../../etc/passwd"}, "SF062"},
		{"cart op", Message{Type: TypeCart, Op: "steal"}, "SF063"},
		{"ui op", Message{Type: TypeUI, Op: "explode"}, "SF064"},
		{"products op", Message{Type: TypeProducts, Op: "shuffle"}, "SF061"},
		{"bad limit", Message{Type: TypeProducts, Op: "limit", Value: "many"}, "SF023"},
		{"missing product", Message{Type: TypeCart, Op: "add", ProductID: "404"}, "SF020"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(s.out.errors())
			if err := s.do(tt.msg); err == nil {
				t.Fatal("expected error")
			}
			errs := s.out.errors()
			if len(errs) != before+1 {
				t.Fatalf("errors sent = %d, want %d", len(errs), before+1)
			}
			if got := errs[len(errs)-1].Code; got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestNavigateBackForward(t *testing.T) {
	s := newTestSession(t)
	if err := s.do(Message{Type: TypeHello, URL: "/"}); err != nil {
		t.Fatal(err)
	}

	if err := s.do(Message{Type: TypeNavigate, URL: "/product/1/"}); err != nil {
		t.Fatalf("navigate error = %v", err)
	}
	last := s.out.last(t)
	if last.URL != "/product/1/" {
		t.Errorf("URL = %q", last.URL)
	}
	for _, want := range []string{"사과 젤리", "관련 상품", "포도 젤리"} {
		if !strings.Contains(last.HTML, want) {
			t.Errorf("expected %q on detail page", want)
		}
	}

	if err := s.do(Message{Type: TypeBack}); err != nil {
		t.Fatal(err)
	}
	if got := s.out.last(t).URL; got != "/" {
		t.Errorf("URL after back = %q, want /", got)
	}

	if err := s.do(Message{Type: TypeForward}); err != nil {
		t.Fatal(err)
	}
	if got := s.out.last(t).URL; got != "/product/1/" {
		t.Errorf("URL after forward = %q", got)
	}
}

func TestProductsOps(t *testing.T) {
	s := newTestSession(t)
	if err := s.do(Message{Type: TypeHello, URL: "/"}); err != nil {
		t.Fatal(err)
	}

	if err := s.do(Message{Type: TypeProducts, Op: "search", Value: "젤리"}); err != nil {
		t.Fatal(err)
	}
	last := s.out.last(t)
	if !strings.Contains(last.URL, "search=") {
		t.Errorf("URL = %q, want search query", last.URL)
	}
	if strings.Contains(last.HTML, "Keyboard") {
		t.Error("expected search to filter products")
	}

	if err := s.do(Message{Type: TypeQuery, Query: map[string]string{"search": ""}}); err != nil {
		t.Fatal(err)
	}
	last = s.out.last(t)
	if strings.Contains(last.URL, "search=") {
		t.Errorf("URL = %q, want search removed", last.URL)
	}
	if !strings.Contains(last.HTML, "Keyboard") {
		t.Error("expected all products after clearing search")
	}

	if err := s.do(Message{Type: TypeProducts, Op: "category", Category1: "디지털"}); err != nil {
		t.Fatal(err)
	}
	last = s.out.last(t)
	if strings.Contains(last.HTML, "사과 젤리") || !strings.Contains(last.HTML, "Keyboard") {
		t.Error("expected category filter applied")
	}

	for _, msg := range []Message{
		{Type: TypeProducts, Op: "sort", Value: catalog.SortPriceDesc},
		{Type: TypeProducts, Op: "limit", Value: "10"},
		{Type: TypeProducts, Op: "retry"},
		{Type: TypeProducts, Op: "load-more"},
	} {
		if err := s.do(msg); err != nil {
			t.Errorf("%s error = %v", msg.Op, err)
		}
	}
	if got := s.out.last(t).URL; !strings.Contains(got, "limit=10") || !strings.Contains(got, "sort=price_desc") {
		t.Errorf("URL = %q", got)
	}
}

func TestCartOpsPersist(t *testing.T) {
	s := newTestSession(t)
	if err := s.do(Message{Type: TypeHello, URL: "/"}); err != nil {
		t.Fatal(err)
	}

	if err := s.do(Message{Type: TypeCart, Op: "add", ProductID: "3", Quantity: 2}); err != nil {
		t.Fatalf("add error = %v", err)
	}
	if !strings.Contains(s.out.last(t).HTML, "장바구니에 추가되었습니다") {
		t.Error("expected toast after add")
	}

	if err := s.do(Message{Type: TypeCart, Op: "quantity", ProductID: "3", Quantity: 5}); err != nil {
		t.Fatal(err)
	}
	if got := s.app.Cart.State().Items[0].Quantity; got != 5 {
		t.Errorf("quantity = %d, want 5", got)
	}

	raw, ok, err := s.backend.GetItem(context.Background(), "shopping_cart:test")
	if err != nil || !ok {
		t.Fatalf("persisted cart missing: %v %v", ok, err)
	}
	var saved stores.CartState
	if err := json.Unmarshal(raw, &saved); err != nil {
		t.Fatal(err)
	}
	if len(saved.Items) != 1 || saved.Items[0].Quantity != 5 {
		t.Errorf("saved = %+v", saved)
	}

	for _, op := range []string{"toggle", "select-all", "deselect-all", "remove-selected"} {
		if err := s.do(Message{Type: TypeCart, Op: op, ProductID: "3"}); err != nil {
			t.Errorf("%s error = %v", op, err)
		}
	}
	if len(s.app.Cart.State().Items) != 1 {
		t.Error("expected deselected item kept by remove-selected")
	}

	if err := s.do(Message{Type: TypeCart, Op: "remove", ProductID: "3"}); err != nil {
		t.Fatal(err)
	}
	if len(s.app.Cart.State().Items) != 0 {
		t.Error("expected cart empty after remove")
	}
}

func TestUIOps(t *testing.T) {
	s := newTestSession(t)
	if err := s.do(Message{Type: TypeHello, URL: "/"}); err != nil {
		t.Fatal(err)
	}

	if err := s.do(Message{Type: TypeUI, Op: "open-cart"}); err != nil {
		t.Fatal(err)
	}
	if !s.app.UI.State().CartModalOpen {
		t.Error("expected cart modal open")
	}
	if err := s.do(Message{Type: TypeUI, Op: "close-cart"}); err != nil {
		t.Fatal(err)
	}
	if s.app.UI.State().CartModalOpen {
		t.Error("expected cart modal closed")
	}

	s.app.ShowToast("hello", stores.ToastInfo)
	if err := s.do(Message{Type: TypeUI, Op: "hide-toast"}); err != nil {
		t.Fatal(err)
	}
	if s.app.UI.State().Toast.Visible {
		t.Error("expected toast hidden")
	}
}

func TestUnchangedRenderNotResent(t *testing.T) {
	s := newTestSession(t)
	if err := s.do(Message{Type: TypeHello, URL: "/"}); err != nil {
		t.Fatal(err)
	}
	before := s.Renders()

	s.render.Trigger()
	s.loop.Flush()
	if s.Renders() != before {
		t.Errorf("renders = %d, want %d", s.Renders(), before)
	}
}

func TestUnrelatedChangesSkipRenderPass(t *testing.T) {
	s := newTestSession(t)
	if err := s.do(Message{Type: TypeHello, URL: "/?sort=price_desc"}); err != nil {
		t.Fatal(err)
	}
	passes := s.render.Runs()

	steps := []struct {
		name string
		run  func()
	}{
		{"product status", func() { s.app.Products.Dispatch(stores.SetStatus{Status: stores.StatusPending}) }},
		{"global loading", func() { s.app.UI.Dispatch(stores.SetGlobalLoading{Loading: true}) }},
		{"same url", func() { _ = s.Handle(Message{Type: TypeNavigate, URL: "/?sort=price_desc"}) }},
		{"same query", func() { _ = s.Handle(Message{Type: TypeQuery, Query: map[string]string{"sort": "price_desc"}}) }},
	}
	for _, step := range steps {
		step.run()
		s.loop.Flush()
		if got := s.render.Runs(); got != passes {
			t.Errorf("%s: render passes = %d, want %d", step.name, got, passes)
		}
	}

	if err := s.do(Message{Type: TypeUI, Op: "open-cart"}); err != nil {
		t.Fatal(err)
	}
	if got := s.render.Runs(); got != passes+1 {
		t.Errorf("render passes after opening the cart = %d, want %d", got, passes+1)
	}
}
