package stores

import (
	"sync"

	"github.com/tbourn/marketplace-state/internal/domain"
	"github.com/tbourn/marketplace-state/internal/storage"
)

// Cart holds quantity-tracked lines keyed by (product identity, community).
// Every mutation is flushed to the cart slot.
type Cart struct {
	Notifier

	mu    sync.Mutex
	slot  *Slot[[]domain.CartLine]
	lines []domain.CartLine
}

// NewCart loads the cart persisted in backend. Lines with a non-positive
// quantity are dropped on load.
func NewCart(backend storage.Backend) *Cart {
	slot := NewSlot(backend, SlotCart, ShapeArray, func() []domain.CartLine { return []domain.CartLine{} })
	loaded := slot.Load()
	lines := make([]domain.CartLine, 0, len(loaded))
	for _, l := range loaded {
		if l.Quantity >= 1 {
			lines = append(lines, l)
		}
	}
	return &Cart{slot: slot, lines: lines}
}

// AddItem increments the line for (p.ID, p.Community) or inserts a new line
// with quantity 1 that snapshots the product's current attributes.
func (c *Cart) AddItem(p domain.Product) {
	c.mu.Lock()
	merged := false
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID && c.lines[i].Community == p.Community {
			c.lines[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		c.lines = append(c.lines, domain.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Community: p.Community,
			Quantity:  1,
			LikeCount: copyInt(p.LikeCount),
		})
	}
	c.flushLocked()
	c.mu.Unlock()
	c.notify()
}

// RemoveItem deletes every line of productID, whatever its community.
func (c *Cart) RemoveItem(productID uint32) {
	c.mu.Lock()
	c.removeLocked(productID)
	c.flushLocked()
	c.mu.Unlock()
	c.notify()
}

// SetQuantity overwrites the quantity of every line of productID. A
// quantity of zero or less removes the lines.
func (c *Cart) SetQuantity(productID uint32, quantity int) {
	c.mu.Lock()
	if quantity <= 0 {
		c.removeLocked(productID)
	} else {
		for i := range c.lines {
			if c.lines[i].ProductID == productID {
				c.lines[i].Quantity = quantity
			}
		}
	}
	c.flushLocked()
	c.mu.Unlock()
	c.notify()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = c.lines[:0]
	c.flushLocked()
	c.mu.Unlock()
	c.notify()
}

// TotalItemCount returns the sum of all quantities.
func (c *Cart) TotalItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// TotalPrice returns the sum of price × quantity over all lines.
func (c *Cart) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum float64
	for _, l := range c.lines {
		sum += l.Subtotal()
	}
	return sum
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.CartLine(nil), c.lines...)
}

func (c *Cart) removeLocked(productID uint32) {
	kept := c.lines[:0]
	for _, l := range c.lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	c.lines = kept
}

func (c *Cart) flushLocked() {
	c.slot.Save(c.lines)
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
