package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockdesk/internal/repositories"
	"stockdesk/internal/services"
	"stockdesk/pkg/logger"

	"github.com/google/uuid"
)

// ReconciliationSweep recomputes, per product, the total quantity delivered
// against the quantity accounted for on the receiving side (sector stock
// credits plus pending portioning entries). The two diverge when a delivery
// settled partially; the sweep surfaces those rows, it never writes
// compensating adjustments.
type ReconciliationSweep struct {
	products     repositories.ProductRepository
	requisitions repositories.RequisitionRepository
	sectorStock  repositories.SectorStockRepository
	portioning   repositories.PortioningRepository
	reports      services.ReportService
	bucket       string
	log          *logger.Logger
}

func NewReconciliationSweep(
	products repositories.ProductRepository,
	requisitions repositories.RequisitionRepository,
	sectorStock repositories.SectorStockRepository,
	portioning repositories.PortioningRepository,
	reports services.ReportService,
	bucket string,
	log *logger.Logger,
) *ReconciliationSweep {
	return &ReconciliationSweep{
		products:     products,
		requisitions: requisitions,
		sectorStock:  sectorStock,
		portioning:   portioning,
		reports:      reports,
		bucket:       bucket,
		log:          log,
	}
}

type reconciliationRow struct {
	ProductID      uuid.UUID `json:"product_id"`
	Delivered      int       `json:"delivered"`
	SectorCredits  int       `json:"sector_credits"`
	PortioningHeld int       `json:"portioning_held"`
	Discrepancy    int       `json:"discrepancy"`
}

type reconciliationReport struct {
	HotelID       uuid.UUID           `json:"hotel_id"`
	GeneratedAt   time.Time           `json:"generated_at"`
	Rows          []reconciliationRow `json:"rows"`
	Discrepancies int                 `json:"discrepancies"`
}

// Run sweeps every hotel. Per-hotel failures are logged and the sweep moves
// on; the job itself only errors when no hotel could be listed at all.
func (s *ReconciliationSweep) Run(ctx context.Context) error {
	hotelIDs, err := s.products.ListHotelIDs(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("reconciliation sweep could not list hotels")
		return err
	}

	for _, hotelID := range hotelIDs {
		if err := s.runHotel(ctx, hotelID); err != nil {
			s.log.Error().Err(err).Stringer("hotel_id", hotelID).Msg("reconciliation sweep failed for hotel")
		}
	}
	return nil
}

func (s *ReconciliationSweep) runHotel(ctx context.Context, hotelID uuid.UUID) error {
	delivered, err := s.requisitions.DeliveredTotals(ctx, hotelID)
	if err != nil {
		return fmt.Errorf("delivered totals: %w", err)
	}
	credited, err := s.sectorStock.SumByProduct(ctx, hotelID)
	if err != nil {
		return fmt.Errorf("sector stock totals: %w", err)
	}
	held, err := s.portioning.SumByProduct(ctx, hotelID)
	if err != nil {
		return fmt.Errorf("portioning totals: %w", err)
	}

	report := s.build(hotelID, delivered, credited, held)

	for _, row := range report.Rows {
		if row.Discrepancy != 0 {
			s.log.Warn().
				Stringer("hotel_id", hotelID).
				Stringer("product_id", row.ProductID).
				Int("delivered", row.Delivered).
				Int("accounted", row.SectorCredits+row.PortioningHeld).
				Int("discrepancy", row.Discrepancy).
				Msg("stock discrepancy, manual reconciliation required")
		}
	}

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	objectName := fmt.Sprintf("reconciliation/%s/%s.json", hotelID, report.GeneratedAt.Format("2006-01-02"))
	if err := s.reports.UploadReport(ctx, s.bucket, objectName, payload); err != nil {
		return fmt.Errorf("upload report: %w", err)
	}

	s.log.Info().
		Stringer("hotel_id", hotelID).
		Str("object", objectName).
		Int("discrepancies", report.Discrepancies).
		Msg("reconciliation report stored")
	return nil
}

// build joins the three per-product maps. Products that only ever appear on
// the receiving side (adjustments, legacy rows) still get a row so the
// discrepancy shows up as negative.
func (s *ReconciliationSweep) build(hotelID uuid.UUID, delivered, credited, held map[uuid.UUID]int) *reconciliationReport {
	seen := make(map[uuid.UUID]struct{}, len(delivered))
	report := &reconciliationReport{
		HotelID:     hotelID,
		GeneratedAt: time.Now().UTC(),
	}

	add := func(productID uuid.UUID) {
		if _, ok := seen[productID]; ok {
			return
		}
		seen[productID] = struct{}{}
		row := reconciliationRow{
			ProductID:      productID,
			Delivered:      delivered[productID],
			SectorCredits:  credited[productID],
			PortioningHeld: held[productID],
		}
		row.Discrepancy = row.Delivered - row.SectorCredits - row.PortioningHeld
		if row.Discrepancy != 0 {
			report.Discrepancies++
		}
		report.Rows = append(report.Rows, row)
	}

	for id := range delivered {
		add(id)
	}
	for id := range credited {
		add(id)
	}
	for id := range held {
		add(id)
	}
	return report
}
