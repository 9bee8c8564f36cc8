package repositories

import (
	"context"
	"errors"

	"stockdesk/internal/apperrors"
	"stockdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SectorStockRepository interface {
	CreditOnDelivery(ctx context.Context, hotelID, sectorID, productID uuid.UUID, qty int) error
	Get(ctx context.Context, hotelID, sectorID, productID uuid.UUID) (*models.SectorStock, error)
	ListBySector(ctx context.Context, hotelID, sectorID uuid.UUID, limit, offset int) ([]*models.SectorStock, error)
	SumByProduct(ctx context.Context, hotelID uuid.UUID) (map[uuid.UUID]int, error)
}

type sectorStockRepo struct {
	db Database
}

func NewSectorStockRepo(db Database) SectorStockRepository {
	return &sectorStockRepo{db: db}
}

// CreditOnDelivery goes through the store's atomic upsert procedure so the
// increment cannot be lost to a concurrent writer.
func (r *sectorStockRepo) CreditOnDelivery(ctx context.Context, hotelID, sectorID, productID uuid.UUID, qty int) error {
	query := `SELECT update_sector_stock_on_delivery($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, hotelID, sectorID, productID, qty)
	return err
}

func (r *sectorStockRepo) Get(ctx context.Context, hotelID, sectorID, productID uuid.UUID) (*models.SectorStock, error) {
	ss := &models.SectorStock{}
	query := `
		SELECT hotel_id, sector_id, product_id, quantity, last_updated
		FROM sector_stock
		WHERE hotel_id = $1 AND sector_id = $2 AND product_id = $3
	`
	err := r.db.QueryRow(ctx, query, hotelID, sectorID, productID).Scan(&ss.HotelID, &ss.SectorID, &ss.ProductID, &ss.Quantity, &ss.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return ss, nil
}

func (r *sectorStockRepo) ListBySector(ctx context.Context, hotelID, sectorID uuid.UUID, limit, offset int) ([]*models.SectorStock, error) {
	query := `
		SELECT hotel_id, sector_id, product_id, quantity, last_updated
		FROM sector_stock
		WHERE hotel_id = $1 AND sector_id = $2
		ORDER BY last_updated DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, hotelID, sectorID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stocks []*models.SectorStock
	for rows.Next() {
		ss := &models.SectorStock{}
		if err := rows.Scan(&ss.HotelID, &ss.SectorID, &ss.ProductID, &ss.Quantity, &ss.LastUpdated); err != nil {
			return nil, err
		}
		stocks = append(stocks, ss)
	}
	return stocks, rows.Err()
}

// SumByProduct totals sector credits per product across all sectors, for the
// reconciliation sweep.
func (r *sectorStockRepo) SumByProduct(ctx context.Context, hotelID uuid.UUID) (map[uuid.UUID]int, error) {
	query := `
		SELECT product_id, SUM(quantity)
		FROM sector_stock
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
