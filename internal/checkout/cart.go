package checkout

import (
	"fmt"
	"sync"

	"orderdesk/internal/model"
	"orderdesk/internal/pricing"

	"github.com/shopspring/decimal"
)

// Cart is the customer's cart. It outlives checkout drafts and is only
// cleared by a successful order.
type Cart struct {
	mu    sync.Mutex
	items []model.CartItem
}

// NewCart creates a cart holding items.
func NewCart(items ...model.CartItem) *Cart {
	c := &Cart{}
	for _, item := range items {
		c.items = append(c.items, copyItem(item))
	}
	return c
}

// Add appends an item. Quantity must be at least one.
func (c *Cart) Add(item model.CartItem) error {
	if item.Quantity < 1 {
		return model.ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, copyItem(item))
	return nil
}

// Update replaces the item at index.
func (c *Cart) Update(index int, item model.CartItem) error {
	if item.Quantity < 1 {
		return model.ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.items) {
		return fmt.Errorf("cart index %d out of range", index)
	}
	c.items[index] = copyItem(item)
	return nil
}

// Remove deletes the item at index.
func (c *Cart) Remove(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.items) {
		return fmt.Errorf("cart index %d out of range", index)
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
	return nil
}

// Items returns a snapshot of the cart.
func (c *Cart) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.CartItem, len(c.items))
	for i, item := range c.items {
		out[i] = copyItem(item)
	}
	return out
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Subtotal returns the sum of all line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	return pricing.Subtotal(c.Items())
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

func copyItem(item model.CartItem) model.CartItem {
	if item.ToppingIDs != nil {
		item.ToppingIDs = append([]string(nil), item.ToppingIDs...)
	}
	if item.VariantID != nil {
		v := *item.VariantID
		item.VariantID = &v
	}
	return item
}
