package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	HotelID           uuid.UUID        `json:"hotel_id" db:"hotel_id"`
	Name              string           `json:"name" db:"name"`
	Quantity          int              `json:"quantity" db:"quantity"` // authoritative central stock
	MinQuantity       int              `json:"min_quantity" db:"min_quantity"`
	MaxQuantity       int              `json:"max_quantity" db:"max_quantity"`
	Category          *string          `json:"category" db:"category"`
	IsPortionable     bool             `json:"is_portionable" db:"is_portionable"`
	AveragePrice      *decimal.Decimal `json:"average_price" db:"average_price"`
	LastPurchasePrice *decimal.Decimal `json:"last_purchase_price" db:"last_purchase_price"`
	IsActive          bool             `json:"is_active" db:"is_active"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
}

// UnitCost resolves the monetary value of one unit: average price first, then
// last purchase price, then zero. Zero is legitimate for never-purchased items.
func (p *Product) UnitCost() decimal.Decimal {
	if p.AveragePrice != nil && p.AveragePrice.IsPositive() {
		return *p.AveragePrice
	}
	if p.LastPurchasePrice != nil && p.LastPurchasePrice.IsPositive() {
		return *p.LastPurchasePrice
	}
	return decimal.Zero
}
