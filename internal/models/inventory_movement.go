package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifies an inventory movement. The Spanish names match the
// values the store already holds.
type MovementType string

const (
	MovementEntrada     MovementType = "entrada"
	MovementAjuste      MovementType = "ajuste"
	MovementConsumption MovementType = "consumption"
)

// InventoryMovement is an append-only audit row. QuantityChange carries the
// sign of the central-stock mutation that produced it.
type InventoryMovement struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	HotelID        uuid.UUID       `json:"hotel_id" db:"hotel_id"`
	ProductID      uuid.UUID       `json:"product_id" db:"product_id"`
	QuantityChange int             `json:"quantity_change" db:"quantity_change"`
	MovementType   MovementType    `json:"movement_type" db:"movement_type"`
	Reason         string          `json:"reason" db:"reason"`
	UnitCost       decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	TotalCost      decimal.Decimal `json:"total_cost" db:"total_cost"`
	CreatedBy      *uuid.UUID      `json:"created_by" db:"created_by"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}
