package app

import "github.com/vango-dev/storefront/internal/stores"

// ShowToast shows a toast and hides it after the toast duration. A newer
// toast restarts the timer.
func (c *Context) ShowToast(message, kind string) {
	c.UI.Dispatch(stores.ShowToast{Message: message, Type: kind})

	cancel := c.Loop.After(c.toastDuration, func() {
		c.UI.Dispatch(stores.HideToast{})
	})

	c.mu.Lock()
	previous := c.cancelToast
	c.cancelToast = cancel
	c.mu.Unlock()

	if previous != nil {
		previous()
	}
}

// OpenCartModal shows the cart.
func (c *Context) OpenCartModal() {
	c.UI.Dispatch(stores.OpenCartModal{})
}

// CloseCartModal hides the cart.
func (c *Context) CloseCartModal() {
	c.UI.Dispatch(stores.CloseCartModal{})
}
