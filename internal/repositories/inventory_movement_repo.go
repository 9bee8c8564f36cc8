package repositories

import (
	"context"

	"stockdesk/internal/models"

	"github.com/google/uuid"
)

type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *models.InventoryMovement) error
	ListByProduct(ctx context.Context, hotelID, productID uuid.UUID, limit, offset int) ([]*models.InventoryMovement, error)
}

type inventoryMovementRepo struct {
	db Database
}

func NewInventoryMovementRepo(db Database) InventoryMovementRepository {
	return &inventoryMovementRepo{db: db}
}

// Create appends an audit row. Movements are never updated or deleted.
func (r *inventoryMovementRepo) Create(ctx context.Context, movement *models.InventoryMovement) error {
	query := `
		INSERT INTO inventory_movements (id, hotel_id, product_id, quantity_change, movement_type, reason, unit_cost, total_cost, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`
	_, err := r.db.Exec(ctx, query, movement.ID, movement.HotelID, movement.ProductID, movement.QuantityChange, movement.MovementType, movement.Reason, movement.UnitCost, movement.TotalCost, movement.CreatedBy)
	return err
}

func (r *inventoryMovementRepo) ListByProduct(ctx context.Context, hotelID, productID uuid.UUID, limit, offset int) ([]*models.InventoryMovement, error) {
	query := `
		SELECT id, hotel_id, product_id, quantity_change, movement_type, reason, unit_cost, total_cost, created_by, created_at
		FROM inventory_movements
		WHERE hotel_id = $1 AND product_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, hotelID, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*models.InventoryMovement
	for rows.Next() {
		m := &models.InventoryMovement{}
		if err := rows.Scan(&m.ID, &m.HotelID, &m.ProductID, &m.QuantityChange, &m.MovementType, &m.Reason, &m.UnitCost, &m.TotalCost, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
