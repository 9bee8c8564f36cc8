package models

import (
	"time"

	"github.com/google/uuid"
)

type Sector struct {
	ID       uuid.UUID `json:"id" db:"id"`
	HotelID  uuid.UUID `json:"hotel_id" db:"hotel_id"`
	Name     string    `json:"name" db:"name"`
	IsActive bool      `json:"is_active" db:"is_active"`
}

// SectorStock is the per-sector ledger: stock a sector has received, not stock
// available centrally. It only ever increases through a successful delivery.
type SectorStock struct {
	HotelID     uuid.UUID `json:"hotel_id" db:"hotel_id"`
	SectorID    uuid.UUID `json:"sector_id" db:"sector_id"`
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	Quantity    int       `json:"quantity" db:"quantity"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}
