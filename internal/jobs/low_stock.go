package jobs

import (
	"context"

	"stockdesk/internal/repositories"
	"stockdesk/pkg/logger"

	"github.com/google/uuid"
)

type LowStockAlertService struct {
	products repositories.ProductRepository
	log      *logger.Logger
}

type LowStockAlert struct {
	HotelID      uuid.UUID
	ProductID    uuid.UUID
	ProductName  string
	CurrentStock int
	MinQuantity  int
}

func NewLowStockAlertService(products repositories.ProductRepository, log *logger.Logger) *LowStockAlertService {
	return &LowStockAlertService{products: products, log: log}
}

// CheckLowStock lists active products at or below their own minimum.
func (a *LowStockAlertService) CheckLowStock(ctx context.Context, hotelID uuid.UUID) ([]LowStockAlert, error) {
	products, err := a.products.ListBelowMin(ctx, hotelID)
	if err != nil {
		a.log.Error().Err(err).Stringer("hotel_id", hotelID).Msg("failed to list low stock products")
		return nil, err
	}

	alerts := make([]LowStockAlert, 0, len(products))
	for _, p := range products {
		alerts = append(alerts, LowStockAlert{
			HotelID:      hotelID,
			ProductID:    p.ID,
			ProductName:  p.Name,
			CurrentStock: p.Quantity,
			MinQuantity:  p.MinQuantity,
		})
	}
	return alerts, nil
}

func (a *LowStockAlertService) LogAlerts(alerts []LowStockAlert) {
	for _, alert := range alerts {
		a.log.Warn().
			Stringer("hotel_id", alert.HotelID).
			Stringer("product_id", alert.ProductID).
			Str("product", alert.ProductName).
			Int("stock", alert.CurrentStock).
			Int("min", alert.MinQuantity).
			Msg("product below minimum stock")
	}
}

// Run sweeps every hotel, logging alerts per product.
func (a *LowStockAlertService) Run(ctx context.Context) error {
	hotelIDs, err := a.products.ListHotelIDs(ctx)
	if err != nil {
		return err
	}
	for _, hotelID := range hotelIDs {
		alerts, err := a.CheckLowStock(ctx, hotelID)
		if err != nil {
			continue
		}
		a.LogAlerts(alerts)
	}
	return nil
}
