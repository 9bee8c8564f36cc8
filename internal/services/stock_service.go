package services

import (
	"context"

	"stockdesk/internal/apperrors"
	"stockdesk/internal/models"
	"stockdesk/internal/repositories"
	"stockdesk/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockService is the ledger coordinator: every central-stock mutation goes
// through it, so the serialized-per-product guard, the movement audit trail
// and the viewer broadcast cannot drift apart.
type StockService interface {
	// Debit removes qty from central stock, guarded against concurrent debits
	// and negative quantities. Returns the new central quantity.
	Debit(ctx context.Context, hotelID, productID uuid.UUID, qty int) (int, error)
	// CreditBack restores qty to central stock. Used for inbound adjustments
	// and for compensating a debit whose terminal transition lost a race.
	CreditBack(ctx context.Context, hotelID, productID uuid.UUID, qty int) (int, error)
	// RouteDelivery sends a delivered quantity either to the sector's local
	// stock or, for portionable products, to the pending portioning queue.
	// The decision is made once per delivery.
	RouteDelivery(ctx context.Context, product *models.Product, sectorID uuid.UUID, qty int, requisitionID uuid.UUID) error
	// LogConsumption appends the audit movement matching a delivery debit.
	LogConsumption(ctx context.Context, product *models.Product, qty int, reason string, actor *uuid.UUID) error
	// AdjustStock applies a manual correction or inbound entry, with its own
	// movement row and broadcast.
	AdjustStock(ctx context.Context, hotelID, productID uuid.UUID, delta int, movementType models.MovementType, reason string, actor *uuid.UUID) (int, error)
}

// StockBroadcaster is the ephemeral sync hook; *stocksync.Publisher satisfies
// it in production.
type StockBroadcaster interface {
	PublishStockLevel(ctx context.Context, hotelID, productID uuid.UUID, newQuantity int) error
}

type stockService struct {
	productRepo     repositories.ProductRepository
	sectorStockRepo repositories.SectorStockRepository
	movementRepo    repositories.InventoryMovementRepository
	portioning      PortioningService
	publisher       StockBroadcaster
	log             *logger.Logger
}

func NewStockService(
	productRepo repositories.ProductRepository,
	sectorStockRepo repositories.SectorStockRepository,
	movementRepo repositories.InventoryMovementRepository,
	portioning PortioningService,
	publisher StockBroadcaster,
	log *logger.Logger,
) StockService {
	return &stockService{
		productRepo:     productRepo,
		sectorStockRepo: sectorStockRepo,
		movementRepo:    movementRepo,
		portioning:      portioning,
		publisher:       publisher,
		log:             log,
	}
}

func (s *stockService) Debit(ctx context.Context, hotelID, productID uuid.UUID, qty int) (int, error) {
	if qty <= 0 {
		return 0, apperrors.Invalidf("debit quantity must be positive, got %d", qty)
	}

	newQty, err := s.productRepo.Debit(ctx, hotelID, productID, qty)
	if err != nil {
		return 0, err
	}

	s.broadcast(ctx, hotelID, productID, newQty)
	return newQty, nil
}

func (s *stockService) CreditBack(ctx context.Context, hotelID, productID uuid.UUID, qty int) (int, error) {
	if qty <= 0 {
		return 0, apperrors.Invalidf("credit quantity must be positive, got %d", qty)
	}

	newQty, err := s.productRepo.Credit(ctx, hotelID, productID, qty)
	if err != nil {
		return 0, err
	}

	s.broadcast(ctx, hotelID, productID, newQty)
	return newQty, nil
}

func (s *stockService) RouteDelivery(ctx context.Context, product *models.Product, sectorID uuid.UUID, qty int, requisitionID uuid.UUID) error {
	if product.IsPortionable {
		entry := &models.PendingPortioningEntry{
			ID:                uuid.New(),
			HotelID:           product.HotelID,
			SectorID:          sectorID,
			ProductID:         product.ID,
			QuantityDelivered: qty,
			PurchaseCost:      product.UnitCost(),
			RequisitionID:     requisitionID,
		}
		return s.portioning.Enqueue(ctx, entry)
	}
	return s.sectorStockRepo.CreditOnDelivery(ctx, product.HotelID, sectorID, product.ID, qty)
}

func (s *stockService) LogConsumption(ctx context.Context, product *models.Product, qty int, reason string, actor *uuid.UUID) error {
	unitCost := product.UnitCost()
	movement := &models.InventoryMovement{
		ID:             uuid.New(),
		HotelID:        product.HotelID,
		ProductID:      product.ID,
		QuantityChange: -qty,
		MovementType:   models.MovementConsumption,
		Reason:         reason,
		UnitCost:       unitCost,
		TotalCost:      unitCost.Mul(decimal.NewFromInt(int64(qty))),
		CreatedBy:      actor,
	}
	return s.movementRepo.Create(ctx, movement)
}

func (s *stockService) AdjustStock(ctx context.Context, hotelID, productID uuid.UUID, delta int, movementType models.MovementType, reason string, actor *uuid.UUID) (int, error) {
	if delta == 0 {
		return 0, apperrors.Invalidf("adjustment delta must be non-zero")
	}
	if movementType != models.MovementEntrada && movementType != models.MovementAjuste {
		return 0, apperrors.Invalidf("movement type %q is not an adjustment", movementType)
	}

	product, err := s.productRepo.GetByID(ctx, hotelID, productID)
	if err != nil {
		return 0, err
	}

	var newQty int
	if delta > 0 {
		newQty, err = s.CreditBack(ctx, hotelID, productID, delta)
	} else {
		newQty, err = s.Debit(ctx, hotelID, productID, -delta)
	}
	if err != nil {
		return 0, err
	}

	unitCost := product.UnitCost()
	movement := &models.InventoryMovement{
		ID:             uuid.New(),
		HotelID:        hotelID,
		ProductID:      productID,
		QuantityChange: delta,
		MovementType:   movementType,
		Reason:         reason,
		UnitCost:       unitCost,
		TotalCost:      unitCost.Mul(decimal.NewFromInt(int64(abs(delta)))),
		CreatedBy:      actor,
	}
	if err := s.movementRepo.Create(ctx, movement); err != nil {
		return newQty, &apperrors.PartialFailure{
			Step:      "movement_log",
			ProductID: productID,
			Err:       err,
		}
	}
	return newQty, nil
}

// broadcast pushes the fresh quantity to open viewers. Best effort: the
// durable row already changed, so a miss only delays convergence.
func (s *stockService) broadcast(ctx context.Context, hotelID, productID uuid.UUID, newQty int) {
	if err := s.publisher.PublishStockLevel(ctx, hotelID, productID, newQty); err != nil {
		s.log.Warn().Err(err).Stringer("product_id", productID).Msg("stock broadcast failed, viewers converge on next durable read")
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
