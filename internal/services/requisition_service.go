package services

import (
	"context"
	"fmt"
	"strings"

	"stockdesk/internal/apperrors"
	"stockdesk/internal/models"
	"stockdesk/internal/repositories"
	"stockdesk/pkg/logger"

	"github.com/google/uuid"
)

// RequisitionService drives the requisition lifecycle: pending -> delivered or
// pending -> rejected, both terminal. Terminal actions run the fulfillment
// sequence validate -> debit central -> route to sector/queue -> log movement
// -> debit financial balance -> notify. Anything that fails before the central
// debit aborts cleanly; anything after it comes back as a PartialFailure
// because the goods already left central stock.
type RequisitionService interface {
	Create(ctx context.Context, input CreateRequisitionInput) (*models.Requisition, error)
	Deliver(ctx context.Context, hotelID, requisitionID uuid.UUID, deliveredQty int, actor *uuid.UUID) (*models.Requisition, error)
	Reject(ctx context.Context, hotelID, requisitionID uuid.UUID, reason string, actor *uuid.UUID) (*models.Requisition, error)
	Substitute(ctx context.Context, hotelID, requisitionID, substituteProductID uuid.UUID, deliveredQty int, reason string, actor *uuid.UUID) (*models.Requisition, error)
	DirectDeliver(ctx context.Context, hotelID, productID, sectorID uuid.UUID, quantity int, reason string, actor *uuid.UUID) (*models.Requisition, error)
	GetByID(ctx context.Context, hotelID, requisitionID uuid.UUID) (*models.Requisition, error)
	ListPending(ctx context.Context, hotelID uuid.UUID, limit, offset int) ([]*models.Requisition, error)
	ListHistory(ctx context.Context, hotelID uuid.UUID, limit, offset int) ([]*models.Requisition, error)
}

type CreateRequisitionInput struct {
	HotelID      uuid.UUID
	SectorID     uuid.UUID
	ProductID    *uuid.UUID
	ItemName     string
	RequestedQty int
}

type requisitionService struct {
	requisitionRepo repositories.RequisitionRepository
	productRepo     repositories.ProductRepository
	sectorRepo      repositories.SectorRepository
	stock           StockService
	finance         FinanceService
	notifier        Notifier
	log             *logger.Logger
}

func NewRequisitionService(
	requisitionRepo repositories.RequisitionRepository,
	productRepo repositories.ProductRepository,
	sectorRepo repositories.SectorRepository,
	stock StockService,
	finance FinanceService,
	notifier Notifier,
	log *logger.Logger,
) RequisitionService {
	return &requisitionService{
		requisitionRepo: requisitionRepo,
		productRepo:     productRepo,
		sectorRepo:      sectorRepo,
		stock:           stock,
		finance:         finance,
		notifier:        notifier,
		log:             log,
	}
}

func (s *requisitionService) Create(ctx context.Context, input CreateRequisitionInput) (*models.Requisition, error) {
	if strings.TrimSpace(input.ItemName) == "" {
		return nil, apperrors.Invalidf("item name is required")
	}
	if input.RequestedQty <= 0 {
		return nil, apperrors.Invalidf("requested quantity must be positive, got %d", input.RequestedQty)
	}
	if _, err := s.sectorRepo.GetByID(ctx, input.HotelID, input.SectorID); err != nil {
		return nil, err
	}
	if input.ProductID != nil {
		if _, err := s.productRepo.GetByID(ctx, input.HotelID, *input.ProductID); err != nil {
			return nil, err
		}
	}

	req := &models.Requisition{
		ID:           uuid.New(),
		HotelID:      input.HotelID,
		SectorID:     input.SectorID,
		ProductID:    input.ProductID,
		ItemName:     strings.TrimSpace(input.ItemName),
		RequestedQty: input.RequestedQty,
		Status:       models.RequisitionPending,
		IsCustom:     input.ProductID == nil,
	}
	if err := s.requisitionRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.notifier.NewRequest(ctx, req)
	return req, nil
}

func (s *requisitionService) Deliver(ctx context.Context, hotelID, requisitionID uuid.UUID, deliveredQty int, actor *uuid.UUID) (*models.Requisition, error) {
	if deliveredQty <= 0 {
		return nil, apperrors.Invalidf("delivered quantity must be positive, got %d", deliveredQty)
	}

	req, err := s.requisitionRepo.GetByID(ctx, hotelID, requisitionID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequisitionPending {
		return nil, apperrors.ErrInvalidState
	}

	// Custom items have no product row: the transition happens, stock and
	// finance do not.
	if req.ProductID == nil {
		if err := s.requisitionRepo.MarkDelivered(ctx, hotelID, requisitionID, deliveredQty, nil, nil); err != nil {
			return nil, err
		}
		delivered, err := s.requisitionRepo.GetByID(ctx, hotelID, requisitionID)
		if err != nil {
			return nil, err
		}
		s.notifier.ItemDelivered(ctx, delivered)
		return delivered, nil
	}

	// Fresh read right before the guard; a quantity shown in a view earlier
	// must never back the actual check.
	product, err := s.productRepo.GetByID(ctx, hotelID, *req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Quantity < deliveredQty {
		return nil, apperrors.ErrInsufficientStock
	}

	if _, err := s.stock.Debit(ctx, hotelID, product.ID, deliveredQty); err != nil {
		return nil, err
	}

	if err := s.requisitionRepo.MarkDelivered(ctx, hotelID, requisitionID, deliveredQty, nil, nil); err != nil {
		// Lost a race against another terminal action after our debit landed.
		// Nothing moved physically yet, so put the stock back before failing.
		s.compensateDebit(ctx, hotelID, product.ID, deliveredQty)
		return nil, err
	}

	reason := fmt.Sprintf("Delivery of %q to sector", req.ItemName)
	partial := s.settleDelivery(ctx, req, product, deliveredQty, reason, "requisition", requisitionID, actor)

	delivered, err := s.requisitionRepo.GetByID(ctx, hotelID, requisitionID)
	if err != nil {
		return nil, err
	}
	s.notifier.ItemDelivered(ctx, delivered)

	if partial != nil {
		return delivered, partial
	}
	return delivered, nil
}

func (s *requisitionService) Reject(ctx context.Context, hotelID, requisitionID uuid.UUID, reason string, actor *uuid.UUID) (*models.Requisition, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.Invalidf("rejection reason is required")
	}

	req, err := s.requisitionRepo.GetByID(ctx, hotelID, requisitionID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequisitionPending {
		return nil, apperrors.ErrInvalidState
	}

	if err := s.requisitionRepo.MarkRejected(ctx, hotelID, requisitionID, reason); err != nil {
		return nil, err
	}

	rejected, err := s.requisitionRepo.GetByID(ctx, hotelID, requisitionID)
	if err != nil {
		return nil, err
	}
	s.notifier.ItemRejected(ctx, rejected)
	return rejected, nil
}

func (s *requisitionService) Substitute(ctx context.Context, hotelID, requisitionID, substituteProductID uuid.UUID, deliveredQty int, reason string, actor *uuid.UUID) (*models.Requisition, error) {
	if deliveredQty <= 0 {
		return nil, apperrors.Invalidf("delivered quantity must be positive, got %d", deliveredQty)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.Invalidf("substitution reason is required")
	}

	req, err := s.requisitionRepo.GetByID(ctx, hotelID, requisitionID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequisitionPending {
		return nil, apperrors.ErrInvalidState
	}

	substitute, err := s.productRepo.GetByID(ctx, hotelID, substituteProductID)
	if err != nil {
		return nil, err
	}
	if !substitute.IsActive {
		return nil, apperrors.ErrProductNotFound
	}
	if substitute.Quantity < deliveredQty {
		return nil, apperrors.ErrInsufficientStock
	}

	// The substitute's stock takes the debit; the originally requested
	// product is never touched.
	if _, err := s.stock.Debit(ctx, hotelID, substitute.ID, deliveredQty); err != nil {
		return nil, err
	}

	if err := s.requisitionRepo.MarkDelivered(ctx, hotelID, requisitionID, deliveredQty, &substituteProductID, &reason); err != nil {
		s.compensateDebit(ctx, hotelID, substitute.ID, deliveredQty)
		return nil, err
	}

	movementReason := fmt.Sprintf("Substitution for %q: delivered %q (%s)", req.ItemName, substitute.Name, reason)
	partial := s.settleDelivery(ctx, req, substitute, deliveredQty, movementReason, "requisition", requisitionID, actor)

	delivered, err := s.requisitionRepo.GetByID(ctx, hotelID, requisitionID)
	if err != nil {
		return nil, err
	}
	s.notifier.ItemSubstituted(ctx, delivered, substitute.Name)

	if partial != nil {
		return delivered, partial
	}
	return delivered, nil
}

func (s *requisitionService) DirectDeliver(ctx context.Context, hotelID, productID, sectorID uuid.UUID, quantity int, reason string, actor *uuid.UUID) (*models.Requisition, error) {
	if quantity <= 0 {
		return nil, apperrors.Invalidf("quantity must be positive, got %d", quantity)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.Invalidf("reason is required")
	}

	if _, err := s.sectorRepo.GetByID(ctx, hotelID, sectorID); err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(ctx, hotelID, productID)
	if err != nil {
		return nil, err
	}
	if product.Quantity < quantity {
		return nil, apperrors.ErrInsufficientStock
	}

	if _, err := s.stock.Debit(ctx, hotelID, productID, quantity); err != nil {
		return nil, err
	}

	// Synthesize the requisition already in delivered state for audit parity.
	deliveredQty := quantity
	req := &models.Requisition{
		ID:           uuid.New(),
		HotelID:      hotelID,
		SectorID:     sectorID,
		ProductID:    &productID,
		ItemName:     product.Name,
		RequestedQty: quantity,
		Status:       models.RequisitionDelivered,
		DeliveredQty: &deliveredQty,
	}
	if err := s.requisitionRepo.CreateDelivered(ctx, req); err != nil {
		s.compensateDebit(ctx, hotelID, productID, quantity)
		return nil, err
	}

	movementReason := fmt.Sprintf("Direct delivery of %q: %s", product.Name, reason)
	partial := s.settleDelivery(ctx, req, product, quantity, movementReason, "direct_delivery", req.ID, actor)

	s.notifier.ItemDelivered(ctx, req)

	if partial != nil {
		return req, partial
	}
	return req, nil
}

func (s *requisitionService) GetByID(ctx context.Context, hotelID, requisitionID uuid.UUID) (*models.Requisition, error) {
	return s.requisitionRepo.GetByID(ctx, hotelID, requisitionID)
}

func (s *requisitionService) ListPending(ctx context.Context, hotelID uuid.UUID, limit, offset int) ([]*models.Requisition, error) {
	return s.requisitionRepo.ListByStatus(ctx, hotelID, models.RequisitionPending, limit, offset)
}

func (s *requisitionService) ListHistory(ctx context.Context, hotelID uuid.UUID, limit, offset int) ([]*models.Requisition, error) {
	delivered, err := s.requisitionRepo.ListByStatus(ctx, hotelID, models.RequisitionDelivered, limit, offset)
	if err != nil {
		return nil, err
	}
	rejected, err := s.requisitionRepo.ListByStatus(ctx, hotelID, models.RequisitionRejected, limit, offset)
	if err != nil {
		return nil, err
	}
	return append(delivered, rejected...), nil
}

// settleDelivery runs the post-debit steps: sector routing (or portioning
// enqueue), movement log, financial debit. The central debit and the status
// transition have already committed, so a failure here is reported as the
// first PartialFailure while the remaining steps still run; stock state is
// authoritative and reconciliation is manual.
func (s *requisitionService) settleDelivery(ctx context.Context, req *models.Requisition, product *models.Product, qty int, reason, referenceType string, referenceID uuid.UUID, actor *uuid.UUID) error {
	var partial *apperrors.PartialFailure

	if err := s.stock.RouteDelivery(ctx, product, req.SectorID, qty, req.ID); err != nil {
		step := "sector_credit"
		if product.IsPortionable {
			step = "portioning_enqueue"
		}
		partial = &apperrors.PartialFailure{Step: step, RequisitionID: req.ID, ProductID: product.ID, Err: err}
		s.log.Error().Err(err).Str("step", step).Stringer("requisition_id", req.ID).Msg("delivery settlement step failed after central debit")
	}

	if err := s.stock.LogConsumption(ctx, product, qty, reason, actor); err != nil {
		s.log.Error().Err(err).Str("step", "movement_log").Stringer("requisition_id", req.ID).Msg("delivery settlement step failed after central debit")
		if partial == nil {
			partial = &apperrors.PartialFailure{Step: "movement_log", RequisitionID: req.ID, ProductID: product.ID, Err: err}
		}
	}

	if err := s.finance.RecordConsumption(ctx, req.HotelID, product, qty, reason, referenceType, referenceID); err != nil {
		s.log.Error().Err(err).Str("step", "finance_debit").Stringer("requisition_id", req.ID).Msg("delivery settlement step failed after central debit")
		if partial == nil {
			partial = &apperrors.PartialFailure{Step: "finance_debit", RequisitionID: req.ID, ProductID: product.ID, Err: err}
		}
	}

	if partial != nil {
		return partial
	}
	return nil
}

// compensateDebit restores a central debit whose terminal transition never
// committed. Failing to restore is the one case that degrades into a partial
// failure on an otherwise aborted operation, so it gets the loudest log line.
func (s *requisitionService) compensateDebit(ctx context.Context, hotelID, productID uuid.UUID, qty int) {
	if _, err := s.stock.CreditBack(ctx, hotelID, productID, qty); err != nil {
		s.log.Error().Err(err).
			Stringer("product_id", productID).
			Int("quantity", qty).
			Msg("failed to restore central stock after aborted transition, manual reconciliation required")
	}
}
