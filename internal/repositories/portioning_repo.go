package repositories

import (
	"context"

	"stockdesk/internal/models"

	"github.com/google/uuid"
)

type PortioningRepository interface {
	Create(ctx context.Context, entry *models.PendingPortioningEntry) error
	ListByHotel(ctx context.Context, hotelID uuid.UUID, limit, offset int) ([]*models.PendingPortioningEntry, error)
	SumByProduct(ctx context.Context, hotelID uuid.UUID) (map[uuid.UUID]int, error)
}

type portioningRepo struct {
	db Database
}

func NewPortioningRepo(db Database) PortioningRepository {
	return &portioningRepo{db: db}
}

func (r *portioningRepo) Create(ctx context.Context, entry *models.PendingPortioningEntry) error {
	query := `
		INSERT INTO pending_portioning_entries (id, hotel_id, sector_id, product_id, quantity_delivered, purchase_cost, requisition_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.HotelID, entry.SectorID, entry.ProductID, entry.QuantityDelivered, entry.PurchaseCost, entry.RequisitionID)
	return err
}

func (r *portioningRepo) ListByHotel(ctx context.Context, hotelID uuid.UUID, limit, offset int) ([]*models.PendingPortioningEntry, error) {
	query := `
		SELECT id, hotel_id, sector_id, product_id, quantity_delivered, purchase_cost, requisition_id, created_at
		FROM pending_portioning_entries
		WHERE hotel_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, hotelID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.PendingPortioningEntry
	for rows.Next() {
		e := &models.PendingPortioningEntry{}
		if err := rows.Scan(&e.ID, &e.HotelID, &e.SectorID, &e.ProductID, &e.QuantityDelivered, &e.PurchaseCost, &e.RequisitionID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SumByProduct totals enqueued quantities per product; together with sector
// credits it must balance against delivered totals.
func (r *portioningRepo) SumByProduct(ctx context.Context, hotelID uuid.UUID) (map[uuid.UUID]int, error) {
	query := `
		SELECT product_id, SUM(quantity_delivered)
		FROM pending_portioning_entries
		WHERE hotel_id = $1
		GROUP BY product_id
	`
	rows, err := r.db.Query(ctx, query, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[uuid.UUID]int)
	for rows.Next() {
		var productID uuid.UUID
		var total int
		if err := rows.Scan(&productID, &total); err != nil {
			return nil, err
		}
		totals[productID] = total
	}
	return totals, rows.Err()
}
