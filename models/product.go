package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Prices and totals travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID          string          `gorm:"type:varchar(64);primaryKey" json:"_id"`
	Name        string          `gorm:"not null" json:"nome"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"preco"`
	PhotoURL    string          `json:"urlfoto"`
	Description string          `json:"descricao"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
