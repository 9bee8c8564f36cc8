package repositories

import (
	"context"
	"errors"

	"stockdesk/internal/apperrors"
	"stockdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SectorRepository interface {
	GetByID(ctx context.Context, hotelID, id uuid.UUID) (*models.Sector, error)
	List(ctx context.Context, hotelID uuid.UUID) ([]*models.Sector, error)
}

type sectorRepo struct {
	db Database
}

func NewSectorRepo(db Database) SectorRepository {
	return &sectorRepo{db: db}
}

func (r *sectorRepo) GetByID(ctx context.Context, hotelID, id uuid.UUID) (*models.Sector, error) {
	s := &models.Sector{}
	query := `
		SELECT id, hotel_id, name, is_active
		FROM sectors
		WHERE hotel_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, hotelID, id).Scan(&s.ID, &s.HotelID, &s.Name, &s.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *sectorRepo) List(ctx context.Context, hotelID uuid.UUID) ([]*models.Sector, error) {
	query := `
		SELECT id, hotel_id, name, is_active
		FROM sectors
		WHERE hotel_id = $1
		ORDER BY name ASC
	`
	rows, err := r.db.Query(ctx, query, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sectors []*models.Sector
	for rows.Next() {
		s := &models.Sector{}
		if err := rows.Scan(&s.ID, &s.HotelID, &s.Name, &s.IsActive); err != nil {
			return nil, err
		}
		sectors = append(sectors, s)
	}
	return sectors, rows.Err()
}
