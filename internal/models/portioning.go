package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PendingPortioningEntry holds a delivered-but-unfinalized transfer for a
// portionable product. An external portioning workflow consumes it; this
// engine never writes the quantity into sector stock directly.
type PendingPortioningEntry struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	HotelID           uuid.UUID       `json:"hotel_id" db:"hotel_id"`
	SectorID          uuid.UUID       `json:"sector_id" db:"sector_id"`
	ProductID         uuid.UUID       `json:"product_id" db:"product_id"`
	QuantityDelivered int             `json:"quantity_delivered" db:"quantity_delivered"`
	PurchaseCost      decimal.Decimal `json:"purchase_cost" db:"purchase_cost"`
	RequisitionID     uuid.UUID       `json:"requisition_id" db:"requisition_id"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}
