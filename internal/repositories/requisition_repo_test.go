package repositories

import (
	"context"
	"testing"
	"time"

	"stockdesk/internal/apperrors"
	"stockdesk/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type RequisitionRepoTestSuite struct {
	suite.Suite
	mock          pgxmock.PgxPoolIface
	repo          RequisitionRepository
	hotelID       uuid.UUID
	sectorID      uuid.UUID
	productID     uuid.UUID
	requisitionID uuid.UUID
	context       context.Context
}

func (suite *RequisitionRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewRequisitionRepo(mock)
	suite.hotelID = uuid.New()
	suite.sectorID = uuid.New()
	suite.productID = uuid.New()
	suite.requisitionID = uuid.New()
	suite.context = context.Background()
}

func (suite *RequisitionRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestRequisitionRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RequisitionRepoTestSuite))
}

func (suite *RequisitionRepoTestSuite) requisitionRow(status models.RequisitionStatus) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "hotel_id", "sector_id", "product_id", "item_name", "requested_quantity", "status", "delivered_quantity", "substituted_product_id", "substitution_reason", "rejection_reason", "is_custom", "created_at", "updated_at"}).
		AddRow(suite.requisitionID, suite.hotelID, suite.sectorID, &suite.productID, "Rice 5kg", 10, status, nil, nil, nil, nil, false, now, now)
}

func (suite *RequisitionRepoTestSuite) TestCreate_Success() {
	req := &models.Requisition{
		ID:           suite.requisitionID,
		HotelID:      suite.hotelID,
		SectorID:     suite.sectorID,
		ProductID:    &suite.productID,
		ItemName:     "Rice 5kg",
		RequestedQty: 10,
		Status:       models.RequisitionPending,
	}

	suite.mock.ExpectExec(`
		INSERT INTO requisitions \(id, hotel_id, sector_id, product_id, item_name, requested_quantity, status, is_custom, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, NOW\(\), NOW\(\)\)
	`).WithArgs(req.ID, req.HotelID, req.SectorID, req.ProductID, req.ItemName, req.RequestedQty, req.Status, req.IsCustom).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, req)
	assert.NoError(suite.T(), err)
}

func (suite *RequisitionRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(`
		SELECT (.+)
		FROM requisitions
		WHERE hotel_id = \$1 AND id = \$2
	`).WithArgs(suite.hotelID, suite.requisitionID).
		WillReturnError(pgx.ErrNoRows)

	req, err := suite.repo.GetByID(suite.context, suite.hotelID, suite.requisitionID)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
	assert.Nil(suite.T(), req)
}

func (suite *RequisitionRepoTestSuite) TestMarkDelivered_Success() {
	suite.mock.ExpectExec(`
		UPDATE requisitions
		SET status = \$3, delivered_quantity = \$4, substituted_product_id = \$5, substitution_reason = \$6, updated_at = NOW\(\)
		WHERE hotel_id = \$1 AND id = \$2 AND status = \$7
	`).WithArgs(suite.hotelID, suite.requisitionID, models.RequisitionDelivered, 10, (*uuid.UUID)(nil), (*string)(nil), models.RequisitionPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.MarkDelivered(suite.context, suite.hotelID, suite.requisitionID, 10, nil, nil)
	assert.NoError(suite.T(), err)
}

func (suite *RequisitionRepoTestSuite) TestMarkDelivered_AlreadyTerminal() {
	// Guard blocks the update; the row exists but is no longer pending.
	suite.mock.ExpectExec(`
		UPDATE requisitions
		SET status = \$3, delivered_quantity = \$4, substituted_product_id = \$5, substitution_reason = \$6, updated_at = NOW\(\)
		WHERE hotel_id = \$1 AND id = \$2 AND status = \$7
	`).WithArgs(suite.hotelID, suite.requisitionID, models.RequisitionDelivered, 10, (*uuid.UUID)(nil), (*string)(nil), models.RequisitionPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	suite.mock.ExpectQuery(`
		SELECT (.+)
		FROM requisitions
		WHERE hotel_id = \$1 AND id = \$2
	`).WithArgs(suite.hotelID, suite.requisitionID).
		WillReturnRows(suite.requisitionRow(models.RequisitionRejected))

	err := suite.repo.MarkDelivered(suite.context, suite.hotelID, suite.requisitionID, 10, nil, nil)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
}

func (suite *RequisitionRepoTestSuite) TestMarkDelivered_RowGone() {
	suite.mock.ExpectExec(`
		UPDATE requisitions
		SET status = \$3, delivered_quantity = \$4, substituted_product_id = \$5, substitution_reason = \$6, updated_at = NOW\(\)
		WHERE hotel_id = \$1 AND id = \$2 AND status = \$7
	`).WithArgs(suite.hotelID, suite.requisitionID, models.RequisitionDelivered, 10, (*uuid.UUID)(nil), (*string)(nil), models.RequisitionPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	suite.mock.ExpectQuery(`
		SELECT (.+)
		FROM requisitions
		WHERE hotel_id = \$1 AND id = \$2
	`).WithArgs(suite.hotelID, suite.requisitionID).
		WillReturnError(pgx.ErrNoRows)

	err := suite.repo.MarkDelivered(suite.context, suite.hotelID, suite.requisitionID, 10, nil, nil)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
}

func (suite *RequisitionRepoTestSuite) TestMarkRejected_AlreadyTerminal() {
	suite.mock.ExpectExec(`
		UPDATE requisitions
		SET status = \$3, rejection_reason = \$4, updated_at = NOW\(\)
		WHERE hotel_id = \$1 AND id = \$2 AND status = \$5
	`).WithArgs(suite.hotelID, suite.requisitionID, models.RequisitionRejected, "out of season", models.RequisitionPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	suite.mock.ExpectQuery(`
		SELECT (.+)
		FROM requisitions
		WHERE hotel_id = \$1 AND id = \$2
	`).WithArgs(suite.hotelID, suite.requisitionID).
		WillReturnRows(suite.requisitionRow(models.RequisitionDelivered))

	err := suite.repo.MarkRejected(suite.context, suite.hotelID, suite.requisitionID, "out of season")
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
}

func (suite *RequisitionRepoTestSuite) TestListByStatus() {
	suite.mock.ExpectQuery(`
		SELECT (.+)
		FROM requisitions
		WHERE hotel_id = \$1 AND status = \$2
		ORDER BY created_at DESC
		LIMIT \$3 OFFSET \$4
	`).WithArgs(suite.hotelID, models.RequisitionPending, 50, 0).
		WillReturnRows(suite.requisitionRow(models.RequisitionPending))

	reqs, err := suite.repo.ListByStatus(suite.context, suite.hotelID, models.RequisitionPending, 50, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), reqs, 1)
	assert.Equal(suite.T(), models.RequisitionPending, reqs[0].Status)
}

func (suite *RequisitionRepoTestSuite) TestDeliveredTotals_CountsSubstitute() {
	substituteID := uuid.New()
	suite.mock.ExpectQuery(`
		SELECT COALESCE\(substituted_product_id, product_id\) AS debited_product_id, SUM\(delivered_quantity\)
		FROM requisitions
		WHERE hotel_id = \$1 AND status = \$2 AND COALESCE\(substituted_product_id, product_id\) IS NOT NULL
		GROUP BY debited_product_id
	`).WithArgs(suite.hotelID, models.RequisitionDelivered).
		WillReturnRows(pgxmock.NewRows([]string{"debited_product_id", "sum"}).
			AddRow(suite.productID, 25).
			AddRow(substituteID, 4))

	totals, err := suite.repo.DeliveredTotals(suite.context, suite.hotelID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 25, totals[suite.productID])
	assert.Equal(suite.T(), 4, totals[substituteID])
}
