package app

import (
	"context"

	"github.com/vango-dev/storefront/internal/catalog"
	"github.com/vango-dev/storefront/internal/stores"
)

// Toast messages of the cart use cases.
const (
	MsgAddedToCart     = "장바구니에 추가되었습니다"
	MsgSelectedRemoved = "선택된 상품들이 삭제되었습니다"
	MsgCartCleared     = "장바구니가 비워졌습니다"
)

// LoadCartFromStorage restores the persisted cart, if there is one.
func (c *Context) LoadCartFromStorage() {
	if saved, ok := c.CartStorage.Get(); ok {
		c.Cart.Dispatch(stores.LoadFromStorage{State: saved})
	}
}

func (c *Context) saveCart() {
	c.CartStorage.Set(c.Cart.State())
}

func (c *Context) dispatchCart(a stores.CartAction) {
	c.Cart.Dispatch(a)
	c.saveCart()
}

// AddToCart adds quantity of product and confirms with a toast.
func (c *Context) AddToCart(product catalog.Product, quantity int) {
	c.dispatchCart(stores.AddItem{Product: product, Quantity: quantity})
	c.ShowToast(MsgAddedToCart, stores.ToastSuccess)
}

// AddToCartByID looks the product up and adds it.
func (c *Context) AddToCartByID(ctx context.Context, id string, quantity int) error {
	product, err := c.FindProduct(ctx, id)
	if err != nil {
		return err
	}
	c.AddToCart(*product, quantity)
	return nil
}

// RemoveFromCart removes one item.
func (c *Context) RemoveFromCart(id string) {
	c.dispatchCart(stores.RemoveItem{ProductID: id})
}

// UpdateCartQuantity sets the quantity of one item.
func (c *Context) UpdateCartQuantity(id string, quantity int) {
	c.dispatchCart(stores.UpdateQuantity{ProductID: id, Quantity: quantity})
}

// ToggleCartSelect flips the selection of one item.
func (c *Context) ToggleCartSelect(id string) {
	c.dispatchCart(stores.ToggleSelect{ProductID: id})
}

// SelectAllCart selects every item.
func (c *Context) SelectAllCart() {
	c.dispatchCart(stores.SelectAll{})
}

// DeselectAllCart clears every selection.
func (c *Context) DeselectAllCart() {
	c.dispatchCart(stores.DeselectAll{})
}

// RemoveSelectedFromCart removes the selected items.
func (c *Context) RemoveSelectedFromCart() {
	c.dispatchCart(stores.RemoveSelected{})
	c.ShowToast(MsgSelectedRemoved, stores.ToastInfo)
}

// ClearCart empties the cart.
func (c *Context) ClearCart() {
	c.dispatchCart(stores.ClearCart{})
	c.ShowToast(MsgCartCleared, stores.ToastInfo)
}
