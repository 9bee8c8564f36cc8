package services

import (
	"context"

	"stockdesk/internal/models"
	"stockdesk/internal/repositories"
	"stockdesk/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinanceService translates consumption events into monetary debits against
// the hotel balance. Stock state is authoritative over accounting state: a
// missing price never blocks fulfillment.
type FinanceService interface {
	RecordConsumption(ctx context.Context, hotelID uuid.UUID, product *models.Product, qty int, reason, referenceType string, referenceID uuid.UUID) error
}

type financeService struct {
	balanceRepo repositories.BalanceRepository
	log         *logger.Logger
}

func NewFinanceService(balanceRepo repositories.BalanceRepository, log *logger.Logger) FinanceService {
	return &financeService{balanceRepo: balanceRepo, log: log}
}

// RecordConsumption debits unit cost x qty from the hotel balance. A zero
// total is skipped without error: internally sourced items were never
// purchased and legitimately cost nothing. A nil product (record gone by the
// time the delivery settled) is logged and skipped for the same reason.
func (s *financeService) RecordConsumption(ctx context.Context, hotelID uuid.UUID, product *models.Product, qty int, reason, referenceType string, referenceID uuid.UUID) error {
	if product == nil {
		s.log.Warn().
			Stringer("hotel_id", hotelID).
			Stringer("reference_id", referenceID).
			Msg("no product record for consumption, skipping financial debit")
		return nil
	}

	unitCost := product.UnitCost()
	total := unitCost.Mul(decimal.NewFromInt(int64(qty)))
	if total.IsZero() {
		return nil
	}

	if err := s.balanceRepo.UpdateHotelBalance(ctx, hotelID, "debit", total, reason, referenceType, referenceID); err != nil {
		return err
	}

	s.log.Info().
		Stringer("hotel_id", hotelID).
		Stringer("product_id", product.ID).
		Str("amount", total.String()).
		Msg("recorded consumption debit")
	return nil
}
