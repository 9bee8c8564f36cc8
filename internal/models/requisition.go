package models

import (
	"time"

	"github.com/google/uuid"
)

// RequisitionStatus is the lifecycle state of a requisition. Transitions are
// one-way: pending -> delivered or pending -> rejected, both terminal.
type RequisitionStatus string

const (
	RequisitionPending   RequisitionStatus = "pending"
	RequisitionDelivered RequisitionStatus = "delivered"
	RequisitionRejected  RequisitionStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed.
func (s RequisitionStatus) IsTerminal() bool {
	return s == RequisitionDelivered || s == RequisitionRejected
}

type Requisition struct {
	ID                   uuid.UUID         `json:"id" db:"id"`
	HotelID              uuid.UUID         `json:"hotel_id" db:"hotel_id"`
	SectorID             uuid.UUID         `json:"sector_id" db:"sector_id"`
	ProductID            *uuid.UUID        `json:"product_id" db:"product_id"` // nil for custom items
	ItemName             string            `json:"item_name" db:"item_name"`   // denormalized, always present
	RequestedQty         int               `json:"requested_quantity" db:"requested_quantity"`
	Status               RequisitionStatus `json:"status" db:"status"`
	DeliveredQty         *int              `json:"delivered_quantity" db:"delivered_quantity"`
	SubstitutedProductID *uuid.UUID        `json:"substituted_product_id" db:"substituted_product_id"`
	SubstitutionReason   *string           `json:"substitution_reason" db:"substitution_reason"`
	RejectionReason      *string           `json:"rejection_reason" db:"rejection_reason"`
	IsCustom             bool              `json:"is_custom" db:"is_custom"`
	CreatedAt            time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at" db:"updated_at"`
}

// DeliveredProductID returns the product whose stock this requisition actually
// debited: the substitute when one was chosen, otherwise the requested product.
// Nil for custom items.
func (r *Requisition) DeliveredProductID() *uuid.UUID {
	if r.SubstitutedProductID != nil {
		return r.SubstitutedProductID
	}
	return r.ProductID
}
