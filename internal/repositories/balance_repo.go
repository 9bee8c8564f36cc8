package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BalanceRepository interface {
	UpdateHotelBalance(ctx context.Context, hotelID uuid.UUID, transactionType string, amount decimal.Decimal, reason, referenceType string, referenceID uuid.UUID) error
}

type balanceRepo struct {
	db Database
}

func NewBalanceRepo(db Database) BalanceRepository {
	return &balanceRepo{db: db}
}

// UpdateHotelBalance calls the store's financial ledger procedure.
func (r *balanceRepo) UpdateHotelBalance(ctx context.Context, hotelID uuid.UUID, transactionType string, amount decimal.Decimal, reason, referenceType string, referenceID uuid.UUID) error {
	query := `SELECT update_hotel_balance($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query, hotelID, transactionType, amount, reason, referenceType, referenceID)
	return err
}
