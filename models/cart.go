package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one product entry in a cart. UnitPrice and Name are copied from
// the product when the line is first added and never refreshed afterwards.
type LineItem struct {
	ProductID string          `json:"produtoId"`
	Quantity  int             `json:"quantidade"`
	UnitPrice decimal.Decimal `json:"precoUnitario"`
	Name      string          `json:"nome"`
}

// Cart is the per-owner document. A stored cart always has at least one item.
type Cart struct {
	OwnerID       string          `gorm:"type:varchar(64);primaryKey" json:"usuarioId"`
	Items         []LineItem      `gorm:"serializer:json;type:text" json:"itens"`
	Total         decimal.Decimal `gorm:"type:numeric(14,2)" json:"total"`
	LastUpdatedAt time.Time       `json:"dataAtualizacao"`
	// Version is the optimistic concurrency token; 0 means never stored.
	Version int64 `gorm:"not null;default:0" json:"-"`
}

// FindItem returns the index of the line for productID, or -1.
func (c *Cart) FindItem(productID string) int {
	if c == nil {
		return -1
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate the result freely.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = make([]LineItem, len(c.Items))
	copy(out.Items, c.Items)
	return &out
}
