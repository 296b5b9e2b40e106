package stores

import (
	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/pkg/store"
)

// CartItem is a product in the cart.
type CartItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Image    string `json:"image"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	Selected bool   `json:"selected"`
}

// CartState is the state of the cart store. It is also the persisted form
// of the cart.
type CartState struct {
	Items       []CartItem `json:"items"`
	SelectedAll bool       `json:"selectedAll"`
}

// InitialCartState is the empty cart.
func InitialCartState() CartState {
	return CartState{Items: []CartItem{}}
}

// Total returns the price of every item times its quantity.
func (s CartState) Total() int {
	total := 0
	for _, item := range s.Items {
		total += item.Price * item.Quantity
	}
	return total
}

// SelectedTotal returns the price of the selected items.
func (s CartState) SelectedTotal() int {
	total := 0
	for _, item := range s.Items {
		if item.Selected {
			total += item.Price * item.Quantity
		}
	}
	return total
}

// SelectedCount returns the number of selected items.
func (s CartState) SelectedCount() int {
	n := 0
	for _, item := range s.Items {
		if item.Selected {
			n++
		}
	}
	return n
}

// CartAction is an action of the cart store.
type CartAction interface {
	cartAction()
}

type (
	// AddItem adds Quantity of Product, merging with an existing item.
	// A non-positive quantity counts as one.
	AddItem struct {
		Product  catalog.Product
		Quantity int
	}

	// RemoveItem removes the item with ProductID.
	RemoveItem struct{ ProductID string }

	// UpdateQuantity sets the quantity of an item, never below one.
	UpdateQuantity struct {
		ProductID string
		Quantity  int
	}

	// ClearCart empties the cart.
	ClearCart struct{}

	// ToggleSelect flips the selection of an item.
	ToggleSelect struct{ ProductID string }

	// SelectAll selects every item.
	SelectAll struct{}

	// DeselectAll clears every selection.
	DeselectAll struct{}

	// RemoveSelected removes the selected items.
	RemoveSelected struct{}

	// LoadFromStorage replaces the cart with a persisted one.
	LoadFromStorage struct{ State CartState }
)

func (AddItem) cartAction()         {}
func (RemoveItem) cartAction()      {}
func (UpdateQuantity) cartAction()  {}
func (ClearCart) cartAction()       {}
func (ToggleSelect) cartAction()    {}
func (SelectAll) cartAction()       {}
func (DeselectAll) cartAction()     {}
func (RemoveSelected) cartAction()  {}
func (LoadFromStorage) cartAction() {}

// ReduceCart is the cart store reducer.
func ReduceCart(s CartState, a CartAction) CartState {
	switch a := a.(type) {
	case AddItem:
		quantity := a.Quantity
		if quantity < 1 {
			quantity = 1
		}
		if i := indexOf(s.Items, a.Product.ProductID); i >= 0 {
			items := cloneItems(s.Items)
			items[i].Quantity += quantity
			s.Items = items
			return s
		}
		items := cloneItems(s.Items)
		s.Items = append(items, CartItem{
			ID:       a.Product.ProductID,
			Title:    a.Product.Title,
			Image:    a.Product.Image,
			Price:    a.Product.Price(),
			Quantity: quantity,
		})

	case RemoveItem:
		if indexOf(s.Items, a.ProductID) < 0 {
			return s
		}
		s.Items = filterItems(s.Items, func(item CartItem) bool { return item.ID != a.ProductID })

	case UpdateQuantity:
		i := indexOf(s.Items, a.ProductID)
		if i < 0 {
			return s
		}
		quantity := max(1, a.Quantity)
		if s.Items[i].Quantity == quantity {
			return s
		}
		items := cloneItems(s.Items)
		items[i].Quantity = quantity
		s.Items = items

	case ClearCart:
		s.Items = []CartItem{}
		s.SelectedAll = false

	case ToggleSelect:
		i := indexOf(s.Items, a.ProductID)
		if i < 0 {
			return s
		}
		items := cloneItems(s.Items)
		items[i].Selected = !items[i].Selected
		s.Items = items
		s.SelectedAll = allSelected(items)

	case SelectAll:
		s.Items = setSelected(s.Items, true)
		s.SelectedAll = true

	case DeselectAll:
		s.Items = setSelected(s.Items, false)
		s.SelectedAll = false

	case RemoveSelected:
		s.Items = filterItems(s.Items, func(item CartItem) bool { return !item.Selected })
		s.SelectedAll = false

	case LoadFromStorage:
		s = a.State
		if s.Items == nil {
			s.Items = []CartItem{}
		}
	}
	return s
}

func indexOf(items []CartItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func cloneItems(items []CartItem) []CartItem {
	out := make([]CartItem, len(items), len(items)+1)
	copy(out, items)
	return out
}

func filterItems(items []CartItem, keep func(CartItem) bool) []CartItem {
	out := make([]CartItem, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func setSelected(items []CartItem, selected bool) []CartItem {
	out := cloneItems(items)
	for i := range out {
		out[i].Selected = selected
	}
	return out
}

func allSelected(items []CartItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.Selected {
			return false
		}
	}
	return true
}

// CartStore is the cart store type.
type CartStore = store.Store[CartState, CartAction]

// NewCartStore creates an empty cart store.
func NewCartStore(opts ...store.Option) *CartStore {
	opts = append([]store.Option{store.WithName("cart")}, opts...)
	return store.New(ReduceCart, InitialCartState(), opts...)
}
