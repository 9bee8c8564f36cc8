package repositories

import (
	"context"
	"errors"

	"stockdesk/internal/apperrors"
	"stockdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProductRepository interface {
	GetByID(ctx context.Context, hotelID, id uuid.UUID) (*models.Product, error)
	GetByName(ctx context.Context, hotelID uuid.UUID, name string) (*models.Product, error)
	SearchByName(ctx context.Context, hotelID uuid.UUID, name string) (*models.Product, error)
	List(ctx context.Context, hotelID uuid.UUID, limit, offset int) ([]*models.Product, error)
	ListBelowMin(ctx context.Context, hotelID uuid.UUID) ([]*models.Product, error)
	ListHotelIDs(ctx context.Context) ([]uuid.UUID, error)
	Debit(ctx context.Context, hotelID, id uuid.UUID, qty int) (int, error)
	Credit(ctx context.Context, hotelID, id uuid.UUID, qty int) (int, error)
}

type productRepo struct {
	db Database
}

func NewProductRepo(db Database) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, hotel_id, name, quantity, min_quantity, max_quantity, category, is_portionable, average_price, last_purchase_price, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.HotelID, &p.Name, &p.Quantity, &p.MinQuantity, &p.MaxQuantity, &p.Category, &p.IsPortionable, &p.AveragePrice, &p.LastPurchasePrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepo) GetByID(ctx context.Context, hotelID, id uuid.UUID) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE hotel_id = $1 AND id = $2
	`
	p, err := scanProduct(r.db.QueryRow(ctx, query, hotelID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepo) GetByName(ctx context.Context, hotelID uuid.UUID, name string) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE hotel_id = $1 AND name = $2
	`
	p, err := scanProduct(r.db.QueryRow(ctx, query, hotelID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// SearchByName is the fuzzy fallback for name resolution: shortest active name
// containing the term wins.
func (r *productRepo) SearchByName(ctx context.Context, hotelID uuid.UUID, name string) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE hotel_id = $1 AND name ILIKE $2 AND is_active = TRUE
		ORDER BY length(name) ASC
		LIMIT 1
	`
	p, err := scanProduct(r.db.QueryRow(ctx, query, hotelID, "%"+name+"%"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepo) List(ctx context.Context, hotelID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE hotel_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, hotelID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepo) ListBelowMin(ctx context.Context, hotelID uuid.UUID) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE hotel_id = $1 AND is_active = TRUE AND quantity <= min_quantity
		ORDER BY quantity ASC
	`
	rows, err := r.db.Query(ctx, query, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListHotelIDs returns every hotel that has products, for the background
// sweeps that iterate hotels.
func (r *productRepo) ListHotelIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT hotel_id FROM products`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Debit decrements central stock by qty, guarded server-side so the read and
// the write cannot interleave with a concurrent debit on the same product.
// Returns the new quantity.
func (r *productRepo) Debit(ctx context.Context, hotelID, id uuid.UUID, qty int) (int, error) {
	query := `
		UPDATE products
		SET quantity = quantity - $3, updated_at = NOW()
		WHERE hotel_id = $1 AND id = $2 AND quantity >= $3
		RETURNING quantity
	`
	var newQty int
	err := r.db.QueryRow(ctx, query, hotelID, id, qty).Scan(&newQty)
	if err == nil {
		return newQty, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// Zero rows: either the row is gone or the guard failed.
	if _, err := r.GetByID(ctx, hotelID, id); err != nil {
		return 0, err
	}
	return 0, apperrors.ErrInsufficientStock
}

// Credit increments central stock by qty and returns the new quantity.
func (r *productRepo) Credit(ctx context.Context, hotelID, id uuid.UUID, qty int) (int, error) {
	query := `
		UPDATE products
		SET quantity = quantity + $3, updated_at = NOW()
		WHERE hotel_id = $1 AND id = $2
		RETURNING quantity
	`
	var newQty int
	err := r.db.QueryRow(ctx, query, hotelID, id, qty).Scan(&newQty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrProductNotFound
		}
		return 0, err
	}
	return newQty, nil
}
