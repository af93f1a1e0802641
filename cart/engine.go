// Package cart holds the merge-and-total rules for shopping carts. Every
// function here is pure: it receives the current cart (nil when the owner has
// none) and returns the next one (nil when the cart must be deleted). Inputs
// are never mutated.
package cart

import (
	"errors"
	"time"

	"loja-backend/models"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("cart: quantity must be a positive integer")
	ErrProductNotFound = errors.New("cart: product not found")
	ErrCartNotFound    = errors.New("cart: cart not found")
	ErrItemNotFound    = errors.New("cart: item not found in cart")
)

type Engine struct {
	now func() time.Time
}

// NewEngine returns an Engine stamping carts with clock(). A nil clock means time.Now.
func NewEngine(clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{now: clock}
}

// AddItem adds quantity units of product to the owner's cart, creating the
// cart when current is nil. Repeated adds of the same product accumulate and
// keep the unit price recorded by the first add.
func (e *Engine) AddItem(current *models.Cart, ownerID string, product *models.Product, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	var next *models.Cart
	if current == nil {
		next = &models.Cart{OwnerID: ownerID}
	} else {
		next = current.Clone()
	}

	if idx := next.FindItem(product.ID); idx >= 0 {
		next.Items[idx].Quantity += quantity
	} else {
		next.Items = append(next.Items, models.LineItem{
			ProductID: product.ID,
			Quantity:  quantity,
			UnitPrice: product.UnitPrice,
			Name:      product.Name,
		})
	}

	return e.touch(next), nil
}

// RemoveItem drops the line for productID. The result is nil when the cart
// ends up empty.
func (e *Engine) RemoveItem(current *models.Cart, productID string) (*models.Cart, error) {
	if current == nil {
		return nil, ErrCartNotFound
	}
	idx := current.FindItem(productID)
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	next := current.Clone()
	next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
	if len(next.Items) == 0 {
		return nil, nil
	}
	return e.touch(next), nil
}

// SetQuantity overwrites the quantity of an existing line. A quantity of zero
// or less behaves exactly like RemoveItem.
func (e *Engine) SetQuantity(current *models.Cart, productID string, quantity int) (*models.Cart, error) {
	if current == nil {
		return nil, ErrCartNotFound
	}
	idx := current.FindItem(productID)
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	if quantity <= 0 {
		return e.RemoveItem(current, productID)
	}

	next := current.Clone()
	next.Items[idx].Quantity = quantity
	return e.touch(next), nil
}

// ComputeTotal is the sum of unit price times quantity over items.
func ComputeTotal(items []models.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (e *Engine) touch(c *models.Cart) *models.Cart {
	c.Total = ComputeTotal(c.Items)
	c.LastUpdatedAt = e.now().UTC()
	return c
}
