package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockdesk/internal/apperrors"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ProductRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      ProductRepository
	hotelID   uuid.UUID
	productID uuid.UUID
	context   context.Context
}

func (suite *ProductRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewProductRepo(mock)
	suite.hotelID = uuid.New()
	suite.productID = uuid.New()
	suite.context = context.Background()
}

func (suite *ProductRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestProductRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ProductRepoTestSuite))
}

func (suite *ProductRepoTestSuite) productRow(name string, quantity int) *pgxmock.Rows {
	price := decimal.NewFromFloat(12.50)
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "hotel_id", "name", "quantity", "min_quantity", "max_quantity", "category", "is_portionable", "average_price", "last_purchase_price", "is_active", "created_at", "updated_at"}).
		AddRow(suite.productID, suite.hotelID, name, quantity, 5, 100, nil, false, &price, nil, true, now, now)
}

func (suite *ProductRepoTestSuite) TestDebit_Success() {
	suite.mock.ExpectQuery(`
		UPDATE products
		SET quantity = quantity - \$3, updated_at = NOW\(\)
		WHERE hotel_id = \$1 AND id = \$2 AND quantity >= \$3
		RETURNING quantity
	`).WithArgs(suite.hotelID, suite.productID, 10).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}).AddRow(0))

	newQty, err := suite.repo.Debit(suite.context, suite.hotelID, suite.productID, 10)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, newQty)
}

func (suite *ProductRepoTestSuite) TestDebit_InsufficientStock() {
	// Guard fails: the conditional UPDATE touches no rows, the follow-up read
	// finds the product, so the shortage is the cause.
	suite.mock.ExpectQuery(`
		UPDATE products
		SET quantity = quantity - \$3, updated_at = NOW\(\)
		WHERE hotel_id = \$1 AND id = \$2 AND quantity >= \$3
		RETURNING quantity
	`).WithArgs(suite.hotelID, suite.productID, 5).
		WillReturnError(pgx.ErrNoRows)

	suite.mock.ExpectQuery(`
		SELECT (.+)
		FROM products
		WHERE hotel_id = \$1 AND id = \$2
	`).WithArgs(suite.hotelID, suite.productID).
		WillReturnRows(suite.productRow("Rice 5kg", 3))

	newQty, err := suite.repo.Debit(suite.context, suite.hotelID, suite.productID, 5)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInsufficientStock)
	assert.Zero(suite.T(), newQty)
}

func (suite *ProductRepoTestSuite) TestDebit_ProductMissing() {
	suite.mock.ExpectQuery(`
		UPDATE products
		SET quantity = quantity - \$3, updated_at = NOW\(\)
		WHERE hotel_id = \$1 AND id = \$2 AND quantity >= \$3
		RETURNING quantity
	`).WithArgs(suite.hotelID, suite.productID, 5).
		WillReturnError(pgx.ErrNoRows)

	suite.mock.ExpectQuery(`
		SELECT (.+)
		FROM products
		WHERE hotel_id = \$1 AND id = \$2
	`).WithArgs(suite.hotelID, suite.productID).
		WillReturnError(pgx.ErrNoRows)

	_, err := suite.repo.Debit(suite.context, suite.hotelID, suite.productID, 5)
	assert.ErrorIs(suite.T(), err, apperrors.ErrProductNotFound)
}

func (suite *ProductRepoTestSuite) TestDebit_DatabaseError() {
	suite.mock.ExpectQuery(`
		UPDATE products
		SET quantity = quantity - \$3, updated_at = NOW\(\)
		WHERE hotel_id = \$1 AND id = \$2 AND quantity >= \$3
		RETURNING quantity
	`).WithArgs(suite.hotelID, suite.productID, 5).
		WillReturnError(errors.New("connection reset"))

	_, err := suite.repo.Debit(suite.context, suite.hotelID, suite.productID, 5)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "connection reset")
}

func (suite *ProductRepoTestSuite) TestCredit_Success() {
	suite.mock.ExpectQuery(`
		UPDATE products
		SET quantity = quantity \+ \$3, updated_at = NOW\(\)
		WHERE hotel_id = \$1 AND id = \$2
		RETURNING quantity
	`).WithArgs(suite.hotelID, suite.productID, 4).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}).AddRow(14))

	newQty, err := suite.repo.Credit(suite.context, suite.hotelID, suite.productID, 4)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 14, newQty)
}

func (suite *ProductRepoTestSuite) TestCredit_ProductMissing() {
	suite.mock.ExpectQuery(`
		UPDATE products
		SET quantity = quantity \+ \$3, updated_at = NOW\(\)
		WHERE hotel_id = \$1 AND id = \$2
		RETURNING quantity
	`).WithArgs(suite.hotelID, suite.productID, 4).
		WillReturnError(pgx.ErrNoRows)

	_, err := suite.repo.Credit(suite.context, suite.hotelID, suite.productID, 4)
	assert.ErrorIs(suite.T(), err, apperrors.ErrProductNotFound)
}

func (suite *ProductRepoTestSuite) TestGetByName_NotFound() {
	suite.mock.ExpectQuery(`
		SELECT (.+)
		FROM products
		WHERE hotel_id = \$1 AND name = \$2
	`).WithArgs(suite.hotelID, "Tomato").
		WillReturnError(pgx.ErrNoRows)

	product, err := suite.repo.GetByName(suite.context, suite.hotelID, "Tomato")
	assert.ErrorIs(suite.T(), err, apperrors.ErrProductNotFound)
	assert.Nil(suite.T(), product)
}

func (suite *ProductRepoTestSuite) TestSearchByName_FuzzyMatch() {
	suite.mock.ExpectQuery(`
		SELECT (.+)
		FROM products
		WHERE hotel_id = \$1 AND name ILIKE \$2 AND is_active = TRUE
		ORDER BY length\(name\) ASC
		LIMIT 1
	`).WithArgs(suite.hotelID, "%Rice%").
		WillReturnRows(suite.productRow("Rice 5kg", 20))

	product, err := suite.repo.SearchByName(suite.context, suite.hotelID, "Rice")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Rice 5kg", product.Name)
}

func (suite *ProductRepoTestSuite) TestListBelowMin() {
	suite.mock.ExpectQuery(`
		SELECT (.+)
		FROM products
		WHERE hotel_id = \$1 AND is_active = TRUE AND quantity <= min_quantity
		ORDER BY quantity ASC
	`).WithArgs(suite.hotelID).
		WillReturnRows(suite.productRow("Olive Oil", 2))

	products, err := suite.repo.ListBelowMin(suite.context, suite.hotelID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), products, 1)
	assert.Equal(suite.T(), 2, products[0].Quantity)
}

func (suite *ProductRepoTestSuite) TestListHotelIDs() {
	otherHotel := uuid.New()
	suite.mock.ExpectQuery(`SELECT DISTINCT hotel_id FROM products`).
		WillReturnRows(pgxmock.NewRows([]string{"hotel_id"}).AddRow(suite.hotelID).AddRow(otherHotel))

	ids, err := suite.repo.ListHotelIDs(suite.context)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), ids, 2)
}
