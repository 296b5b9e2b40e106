package hooks

import (
	"reflect"
	"testing"

	"github.com/vango-dev/storefront/pkg/lifecycle"
	"github.com/vango-dev/storefront/pkg/observer"
	"github.com/vango-dev/storefront/pkg/router"
	"github.com/vango-dev/storefront/pkg/store"
)

type cartItem struct {
	ID       string
	Quantity int
}

type cartState struct {
	Items       []cartItem
	SelectedAll bool
}

type cartAction interface{ isCartAction() }

type addItem struct{ item cartItem }
type toggleAll struct{}

func (addItem) isCartAction()   {}
func (toggleAll) isCartAction() {}

func cartReducer(s cartState, a cartAction) cartState {
	switch a := a.(type) {
	case addItem:
		items := append(append([]cartItem(nil), s.Items...), a.item)
		return cartState{Items: items, SelectedAll: s.SelectedAll}
	case toggleAll:
		return cartState{Items: s.Items, SelectedAll: !s.SelectedAll}
	}
	return s
}

func TestShallowSelectorIsReferentiallyStable(t *testing.T) {
	sel := ShallowSelector(func(m map[string]int) []string {
		keys := make([]string, 0, len(m))
		for _, k := range []string{"a", "b", "c"} {
			if _, ok := m[k]; ok {
				keys = append(keys, k)
			}
		}
		return keys
	})

	first := sel(map[string]int{"a": 1, "b": 2})
	second := sel(map[string]int{"a": 3, "b": 4})
	if reflect.ValueOf(first).Pointer() != reflect.ValueOf(second).Pointer() {
		t.Error("shallowly equal selections should return the previous slice")
	}

	third := sel(map[string]int{"a": 1})
	if len(third) != 1 {
		t.Errorf("third = %v, want [a]", third)
	}
}

func TestUseStoreNotifiesOnlyWhenSliceChanges(t *testing.T) {
	cart := store.New(cartReducer, cartState{})
	count := UseStore(cart, func(s cartState) int { return len(s.Items) })
	defer count.Close()

	calls := 0
	count.Subscribe(observer.Func(func() { calls++ }))

	cart.Dispatch(toggleAll{})
	if calls != 0 {
		t.Errorf("calls after unrelated change = %d, want 0", calls)
	}

	cart.Dispatch(addItem{item: cartItem{ID: "1", Quantity: 1}})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if count.Get() != 1 {
		t.Errorf("Get() = %d, want 1", count.Get())
	}
}

func TestSelectionKeepsStructIdentity(t *testing.T) {
	type summary struct {
		Count    int
		Selected bool
	}

	cart := store.New(cartReducer, cartState{})
	sel := UseStore(cart, func(s cartState) summary {
		return summary{Count: len(s.Items), Selected: s.SelectedAll}
	})
	defer sel.Close()

	calls := 0
	sel.Subscribe(observer.Func(func() { calls++ }))

	cart.Dispatch(toggleAll{})
	cart.Dispatch(toggleAll{})
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if got := sel.Get(); got != (summary{}) {
		t.Errorf("Get() = %+v", got)
	}
}

func TestSelectionClose(t *testing.T) {
	cart := store.New(cartReducer, cartState{})
	count := UseStore(cart, func(s cartState) int { return len(s.Items) })

	calls := 0
	count.Subscribe(observer.Func(func() { calls++ }))
	count.Close()
	count.Close()

	cart.Dispatch(addItem{item: cartItem{ID: "1"}})
	if calls != 0 {
		t.Errorf("calls after Close = %d, want 0", calls)
	}
	// Get still reads the source.
	if count.Get() != 1 {
		t.Errorf("Get() = %d, want 1", count.Get())
	}
}

func TestSelectionsChain(t *testing.T) {
	cart := store.New(cartReducer, cartState{})
	items := UseStore(cart, func(s cartState) []cartItem { return s.Items })
	defer items.Close()
	empty := Select[[]cartItem, bool](items, func(it []cartItem) bool { return len(it) == 0 })
	defer empty.Close()

	calls := 0
	empty.Subscribe(observer.Func(func() { calls++ }))

	cart.Dispatch(addItem{item: cartItem{ID: "1"}})
	cart.Dispatch(addItem{item: cartItem{ID: "2"}})

	if empty.Get() {
		t.Error("Get() = true, want false")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRouterQueryStableAcrossNavigation(t *testing.T) {
	h := router.NewMemoryHistory("/?search=a")
	rt := router.New[string](h)
	defer rt.Close()
	rt.AddRoute("/", "home")
	rt.AddRoute("/product/:id/", "detail")
	rt.Start()

	query := RouterQuery[string](rt)
	defer query.Close()
	page := CurrentPage[string](rt)
	defer page.Close()
	params := RouterParams[string](rt)
	defer params.Close()

	first := query.Get()
	queryCalls, pageCalls := 0, 0
	query.Subscribe(observer.Func(func() { queryCalls++ }))
	page.Subscribe(observer.Func(func() { pageCalls++ }))

	// Same URL: router notifies, query selection does not.
	rt.Push("/?search=a")
	if queryCalls != 0 {
		t.Errorf("queryCalls = %d, want 0", queryCalls)
	}
	if reflect.ValueOf(query.Get()).Pointer() != reflect.ValueOf(first).Pointer() {
		t.Error("query map changed identity without a change")
	}

	rt.SetQuery(map[string]string{"search": "b"})
	if queryCalls != 1 {
		t.Errorf("queryCalls = %d, want 1", queryCalls)
	}
	if pageCalls != 0 {
		t.Errorf("pageCalls = %d, want 0", pageCalls)
	}

	rt.Push("/product/4/")
	if page.Get() != "detail" {
		t.Errorf("page = %q, want detail", page.Get())
	}
	if pageCalls != 1 {
		t.Errorf("pageCalls = %d, want 1", pageCalls)
	}
	if params.Get()["id"] != "4" {
		t.Errorf("params = %v", params.Get())
	}
}

func TestUseRouterOnServerRouter(t *testing.T) {
	s := router.NewServer[string]()
	s.AddRoute("/product/:id/", "detail")
	s.Start("/product/8/", map[string]string{"limit": "20"})

	sel := UseRouter[string](s, func(v RouterView[string]) string {
		return v.Target() + ":" + v.Params()["id"] + ":" + v.Query()["limit"]
	})
	defer sel.Close()

	if got := sel.Get(); got != "detail:8:20" {
		t.Errorf("Get() = %q", got)
	}
}

func TestCurrentPageWithWrappedHandlers(t *testing.T) {
	reg := lifecycle.NewRegistry()
	pageA := lifecycle.Wrap(reg, lifecycle.Hooks{}, func() string { return "A" })
	pageB := lifecycle.Wrap(reg, lifecycle.Hooks{}, func() string { return "B" })

	rt := router.New[func() string](router.NewMemoryHistory("/a"))
	defer rt.Close()
	rt.AddRoute("/a", pageA)
	rt.AddRoute("/b", pageB)
	rt.Start()

	page := CurrentPage[func() string](rt)
	defer page.Close()
	calls := 0
	page.Subscribe(observer.Func(func() { calls++ }))

	if got := page.Get()(); got != "A" {
		t.Fatalf("page = %q, want A", got)
	}

	rt.Push("/b")
	if got := page.Get()(); got != "B" {
		t.Errorf("page after push = %q, want B", got)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	rt.Push("/b")
	if calls != 1 {
		t.Errorf("calls after same page = %d, want 1", calls)
	}

	rt.Push("/a")
	if got := page.Get()(); got != "A" {
		t.Errorf("page after returning = %q, want A", got)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
