package repositories

import (
	"context"
	"errors"

	"stockdesk/internal/apperrors"
	"stockdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RequisitionRepository interface {
	Create(ctx context.Context, req *models.Requisition) error
	CreateDelivered(ctx context.Context, req *models.Requisition) error
	GetByID(ctx context.Context, hotelID, id uuid.UUID) (*models.Requisition, error)
	MarkDelivered(ctx context.Context, hotelID, id uuid.UUID, deliveredQty int, substitutedProductID *uuid.UUID, substitutionReason *string) error
	MarkRejected(ctx context.Context, hotelID, id uuid.UUID, reason string) error
	ListByStatus(ctx context.Context, hotelID uuid.UUID, status models.RequisitionStatus, limit, offset int) ([]*models.Requisition, error)
	DeliveredTotals(ctx context.Context, hotelID uuid.UUID) (map[uuid.UUID]int, error)
}

type requisitionRepo struct {
	db Database
}

func NewRequisitionRepo(db Database) RequisitionRepository {
	return &requisitionRepo{db: db}
}

const requisitionColumns = `id, hotel_id, sector_id, product_id, item_name, requested_quantity, status, delivered_quantity, substituted_product_id, substitution_reason, rejection_reason, is_custom, created_at, updated_at`

func scanRequisition(row pgx.Row) (*models.Requisition, error) {
	req := &models.Requisition{}
	err := row.Scan(&req.ID, &req.HotelID, &req.SectorID, &req.ProductID, &req.ItemName, &req.RequestedQty, &req.Status, &req.DeliveredQty, &req.SubstitutedProductID, &req.SubstitutionReason, &req.RejectionReason, &req.IsCustom, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *requisitionRepo) Create(ctx context.Context, req *models.Requisition) error {
	query := `
		INSERT INTO requisitions (id, hotel_id, sector_id, product_id, item_name, requested_quantity, status, is_custom, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, req.ID, req.HotelID, req.SectorID, req.ProductID, req.ItemName, req.RequestedQty, req.Status, req.IsCustom)
	return err
}

// CreateDelivered inserts a requisition directly in delivered state. Direct
// deliveries synthesize their audit row this way: there is no pending phase.
func (r *requisitionRepo) CreateDelivered(ctx context.Context, req *models.Requisition) error {
	query := `
		INSERT INTO requisitions (id, hotel_id, sector_id, product_id, item_name, requested_quantity, status, delivered_quantity, is_custom, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, req.ID, req.HotelID, req.SectorID, req.ProductID, req.ItemName, req.RequestedQty, models.RequisitionDelivered, req.DeliveredQty, req.IsCustom)
	return err
}

func (r *requisitionRepo) GetByID(ctx context.Context, hotelID, id uuid.UUID) (*models.Requisition, error) {
	query := `
		SELECT ` + requisitionColumns + `
		FROM requisitions
		WHERE hotel_id = $1 AND id = $2
	`
	req, err := scanRequisition(r.db.QueryRow(ctx, query, hotelID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

// MarkDelivered flips a pending requisition to delivered. The status guard is
// in the WHERE clause so a second terminal action can never apply; zero rows
// are then discriminated into ErrNotFound or ErrInvalidState.
func (r *requisitionRepo) MarkDelivered(ctx context.Context, hotelID, id uuid.UUID, deliveredQty int, substitutedProductID *uuid.UUID, substitutionReason *string) error {
	query := `
		UPDATE requisitions
		SET status = $3, delivered_quantity = $4, substituted_product_id = $5, substitution_reason = $6, updated_at = NOW()
		WHERE hotel_id = $1 AND id = $2 AND status = $7
	`
	tag, err := r.db.Exec(ctx, query, hotelID, id, models.RequisitionDelivered, deliveredQty, substitutedProductID, substitutionReason, models.RequisitionPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.terminalConflict(ctx, hotelID, id)
	}
	return nil
}

// MarkRejected flips a pending requisition to rejected, with the same guard
// semantics as MarkDelivered. No stock or financial effects.
func (r *requisitionRepo) MarkRejected(ctx context.Context, hotelID, id uuid.UUID, reason string) error {
	query := `
		UPDATE requisitions
		SET status = $3, rejection_reason = $4, updated_at = NOW()
		WHERE hotel_id = $1 AND id = $2 AND status = $5
	`
	tag, err := r.db.Exec(ctx, query, hotelID, id, models.RequisitionRejected, reason, models.RequisitionPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.terminalConflict(ctx, hotelID, id)
	}
	return nil
}

func (r *requisitionRepo) terminalConflict(ctx context.Context, hotelID, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, hotelID, id); err != nil {
		return err
	}
	return apperrors.ErrInvalidState
}

func (r *requisitionRepo) ListByStatus(ctx context.Context, hotelID uuid.UUID, status models.RequisitionStatus, limit, offset int) ([]*models.Requisition, error) {
	query := `
		SELECT ` + requisitionColumns + `
		FROM requisitions
		WHERE hotel_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, hotelID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*models.Requisition
	for rows.Next() {
		req, err := scanRequisition(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// DeliveredTotals sums delivered quantities per debited product, counting the
// substitute when one was chosen. Used by the reconciliation sweep.
func (r *requisitionRepo) DeliveredTotals(ctx context.Context, hotelID uuid.UUID) (map[uuid.UUID]int, error) {
	query := `
		SELECT COALESCE(substituted_product_id, product_id) AS debited_product_id, SUM(delivered_quantity)
		FROM requisitions
		WHERE hotel_id = $1 AND status = $2 AND COALESCE(substituted_product_id, product_id) IS NOT NULL
		GROUP BY debited_product_id
	`
	rows, err := r.db.Query(ctx, query, hotelID, models.RequisitionDelivered)
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
