package jobs

import (
	"testing"

	"stockdesk/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReconciliationBuild(t *testing.T) {
	hotelID := uuid.New()
	balanced := uuid.New()   // delivered 10, sector 10
	portioned := uuid.New()  // delivered 5, held in portioning 5
	shortfall := uuid.New()  // delivered 8, only 6 accounted for
	orphaned := uuid.New()   // sector credit with no delivery on record

	sweep := NewReconciliationSweep(nil, nil, nil, nil, nil, "reports", logger.Nop())

	report := sweep.build(hotelID,
		map[uuid.UUID]int{balanced: 10, portioned: 5, shortfall: 8},
		map[uuid.UUID]int{balanced: 10, shortfall: 6, orphaned: 3},
		map[uuid.UUID]int{portioned: 5},
	)

	assert.Equal(t, hotelID, report.HotelID)
	assert.Len(t, report.Rows, 4)
	assert.Equal(t, 2, report.Discrepancies)

	byProduct := make(map[uuid.UUID]reconciliationRow, len(report.Rows))
	for _, row := range report.Rows {
		byProduct[row.ProductID] = row
	}

	assert.Equal(t, 0, byProduct[balanced].Discrepancy)
	assert.Equal(t, 0, byProduct[portioned].Discrepancy)
	assert.Equal(t, 2, byProduct[shortfall].Discrepancy)
	assert.Equal(t, -3, byProduct[orphaned].Discrepancy)
}

func TestReconciliationBuild_EmptyHotel(t *testing.T) {
	sweep := NewReconciliationSweep(nil, nil, nil, nil, nil, "reports", logger.Nop())

	report := sweep.build(uuid.New(), nil, nil, nil)

	assert.Empty(t, report.Rows)
	assert.Zero(t, report.Discrepancies)
}
