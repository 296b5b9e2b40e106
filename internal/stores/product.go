package stores

import (
	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/pkg/store"
)

// Load status values.
const (
	StatusIdle    = "idle"
	StatusPending = "pending"
	StatusDone    = "done"
)

// ProductState is the state of the product store.
type ProductState struct {
	Products   []catalog.Product  `json:"products"`
	TotalCount int                `json:"totalCount"`
	Categories catalog.Categories `json:"categories"`

	CurrentProduct  *catalog.Product  `json:"currentProduct"`
	RelatedProducts []catalog.Product `json:"relatedProducts"`

	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
	Status  string `json:"status"`
}

// InitialProductState is the state before anything was loaded.
func InitialProductState() ProductState {
	return ProductState{
		Products:        []catalog.Product{},
		Categories:      catalog.Categories{},
		RelatedProducts: []catalog.Product{},
		Loading:         true,
		Status:          StatusIdle,
	}
}

// HasMore reports whether more products can be loaded.
func (s ProductState) HasMore() bool {
	return len(s.Products) < s.TotalCount
}

// ProductAction is an action of the product store.
type ProductAction interface {
	productAction()
}

type (
	// SetStatus sets the load status.
	SetStatus struct{ Status string }

	// SetCategories replaces the category tree and ends loading.
	SetCategories struct{ Categories catalog.Categories }

	// SetProducts replaces the product list.
	SetProducts struct {
		Products   []catalog.Product
		TotalCount int
	}

	// AddProducts appends a page to the product list.
	AddProducts struct {
		Products   []catalog.Product
		TotalCount int
	}

	// SetLoading sets the loading flag.
	SetLoading struct{ Loading bool }

	// SetError records a load failure.
	SetError struct{ Message string }

	// SetCurrentProduct sets the product shown on the detail page.
	SetCurrentProduct struct{ Product *catalog.Product }

	// SetRelatedProducts sets the products related to the current one.
	SetRelatedProducts struct{ Products []catalog.Product }

	// Setup replaces every field whose pointer is set.
	Setup struct {
		Products        *[]catalog.Product
		TotalCount      *int
		Categories      *catalog.Categories
		CurrentProduct  **catalog.Product
		RelatedProducts *[]catalog.Product
		Loading         *bool
		Error           *string
		Status          *string
	}
)

func (SetStatus) productAction()          {}
func (SetCategories) productAction()      {}
func (SetProducts) productAction()        {}
func (AddProducts) productAction()        {}
func (SetLoading) productAction()         {}
func (SetError) productAction()           {}
func (SetCurrentProduct) productAction()  {}
func (SetRelatedProducts) productAction() {}
func (Setup) productAction()              {}

// SetupAll returns a Setup replacing every field with the ones of s.
func SetupAll(s ProductState) Setup {
	return Setup{
		Products:        &s.Products,
		TotalCount:      &s.TotalCount,
		Categories:      &s.Categories,
		CurrentProduct:  &s.CurrentProduct,
		RelatedProducts: &s.RelatedProducts,
		Loading:         &s.Loading,
		Error:           &s.Error,
		Status:          &s.Status,
	}
}

// ReduceProducts is the product store reducer.
func ReduceProducts(s ProductState, a ProductAction) ProductState {
	switch a := a.(type) {
	case SetStatus:
		if s.Status == a.Status {
			return s
		}
		s.Status = a.Status

	case SetCategories:
		s.Categories = a.Categories
		s.Loading = false
		s.Error = ""
		s.Status = StatusDone

	case SetProducts:
		s.Products = a.Products
		s.TotalCount = a.TotalCount
		s.Loading = false
		s.Error = ""
		s.Status = StatusDone

	case AddProducts:
		products := make([]catalog.Product, 0, len(s.Products)+len(a.Products))
		products = append(products, s.Products...)
		s.Products = append(products, a.Products...)
		s.TotalCount = a.TotalCount
		s.Loading = false
		s.Error = ""
		s.Status = StatusDone

	case SetLoading:
		if s.Loading == a.Loading {
			return s
		}
		s.Loading = a.Loading

	case SetError:
		s.Error = a.Message
		s.Loading = false
		s.Status = StatusDone

	case SetCurrentProduct:
		s.CurrentProduct = a.Product
		s.Loading = false
		s.Error = ""
		s.Status = StatusDone

	case SetRelatedProducts:
		s.RelatedProducts = a.Products
		s.Status = StatusDone

	case Setup:
		if a.Products != nil {
			s.Products = *a.Products
		}
		if a.TotalCount != nil {
			s.TotalCount = *a.TotalCount
		}
		if a.Categories != nil {
			s.Categories = *a.Categories
		}
		if a.CurrentProduct != nil {
			s.CurrentProduct = *a.CurrentProduct
		}
		if a.RelatedProducts != nil {
			s.RelatedProducts = *a.RelatedProducts
		}
		if a.Loading != nil {
			s.Loading = *a.Loading
		}
		if a.Error != nil {
			s.Error = *a.Error
		}
		if a.Status != nil {
			s.Status = *a.Status
		}
	}
	return s
}

// ProductStore is the product store type.
type ProductStore = store.Store[ProductState, ProductAction]

// NewProductStore creates a product store in its initial state.
func NewProductStore(opts ...store.Option) *ProductStore {
	opts = append([]store.Option{store.WithName("product")}, opts...)
	return store.New(ReduceProducts, InitialProductState(), opts...)
}
