package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"stockledger/internal/models"
)

type RecordRepoTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo RecordRepository
	ctx  context.Context
}

func (suite *RecordRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewRecordRepo(mock)
	suite.ctx = context.Background()
}

func (suite *RecordRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestRecordRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RecordRepoTestSuite))
}

func sampleRecord() *models.InventoryRecord {
	return &models.InventoryRecord{
		ID:             uuid.New(),
		BatchID:        uuid.New(),
		ProductID:      uuid.New(),
		Warehouse:      "CENTRAL",
		Date:           time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		DocumentType:   models.DocumentTypeExit,
		DocumentNumber: "90",
		Quantity:       decimal.NewFromInt(-3),
		UnitCost:       decimal.NewFromInt(10),
		Total:          decimal.NewFromInt(30),
		Category:       "FERRETERIA",
		FinalQuantity:  decimal.NewFromInt(17),
		CostCenter:     "cc1",
	}
}

func (suite *RecordRepoTestSuite) TestInsert_ReportsRowWritten() {
	rec := sampleRecord()

	suite.mock.ExpectExec(`INSERT INTO inventory_records`).
		WithArgs(rec.ID, rec.BatchID, rec.ProductID, rec.Warehouse, rec.Date,
			rec.DocumentType, rec.DocumentNumber, rec.Quantity, rec.UnitCost,
			rec.Total, rec.Category, rec.Lot, rec.FinalQuantity, rec.CostCenter).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ok, err := suite.repo.Insert(suite.ctx, rec)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
}

func (suite *RecordRepoTestSuite) TestInsert_ConflictReportsNoRow() {
	rec := sampleRecord()

	suite.mock.ExpectExec(`INSERT INTO inventory_records`).
		WithArgs(rec.ID, rec.BatchID, rec.ProductID, rec.Warehouse, rec.Date,
			rec.DocumentType, rec.DocumentNumber, rec.Quantity, rec.UnitCost,
			rec.Total, rec.Category, rec.Lot, rec.FinalQuantity, rec.CostCenter).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	ok, err := suite.repo.Insert(suite.ctx, rec)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), ok)
}

func (suite *RecordRepoTestSuite) TestExistsDuplicate() {
	productID := uuid.New()
	date := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	suite.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(productID, "SA", "90", "cc1", date, "CENTRAL").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	duplicate, err := suite.repo.ExistsDuplicate(suite.ctx, productID, "SA", "90", "cc1", date, "CENTRAL")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), duplicate)
}

func (suite *RecordRepoTestSuite) TestDeleteByBatch() {
	batchID := uuid.New()
	suite.mock.ExpectExec(`DELETE FROM inventory_records`).
		WithArgs(batchID).
		WillReturnResult(pgxmock.NewResult("DELETE", 12))

	assert.NoError(suite.T(), suite.repo.DeleteByBatch(suite.ctx, batchID))
}

func (suite *RecordRepoTestSuite) TestTotalQuantityByProduct() {
	a, b := uuid.New(), uuid.New()
	rows := pgxmock.NewRows([]string{"product_id", "sum"}).
		AddRow(a, decimal.NewFromInt(30)).
		AddRow(b, decimal.NewFromInt(-5))

	suite.mock.ExpectQuery(`SELECT ir.product_id, COALESCE\(SUM\(ir.quantity\), 0\)`).
		WithArgs("planta").
		WillReturnRows(rows)

	sums, err := suite.repo.TotalQuantityByProduct(suite.ctx, "planta")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), sums[a].Equal(decimal.NewFromInt(30)))
	assert.True(suite.T(), sums[b].Equal(decimal.NewFromInt(-5)))
}

func (suite *RecordRepoTestSuite) TestMonthlyQuantityByProduct() {
	id := uuid.New()
	rows := pgxmock.NewRows([]string{"product_id", "month", "sum"}).
		AddRow(id, 2, decimal.NewFromInt(-15)).
		AddRow(id, 5, decimal.NewFromInt(-5))

	suite.mock.ExpectQuery(`EXTRACT\(MONTH FROM ir.movement_date\)`).
		WithArgs("planta", 2024).
		WillReturnRows(rows)

	monthly, err := suite.repo.MonthlyQuantityByProduct(suite.ctx, "planta", 2024)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), monthly[id][2].Equal(decimal.NewFromInt(-15)))
	assert.True(suite.T(), monthly[id][5].Equal(decimal.NewFromInt(-5)))
}

func (suite *RecordRepoTestSuite) TestLatestUnitCostByProduct() {
	id := uuid.New()
	rows := pgxmock.NewRows([]string{"product_id", "unit_cost"}).
		AddRow(id, decimal.NewFromInt(7))

	suite.mock.ExpectQuery(`SELECT DISTINCT ON \(ir.product_id\)`).
		WithArgs("planta").
		WillReturnRows(rows)

	costs, err := suite.repo.LatestUnitCostByProduct(suite.ctx, "planta")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), costs[id].Equal(decimal.NewFromInt(7)))
}

func (suite *RecordRepoTestSuite) TestNetQuantityBefore_AppliesFilterClauses() {
	before := time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC)
	filter := &models.MonthlyFilter{Warehouse: "CENTRAL", Category: "FERRETERIA"}

	suite.mock.ExpectQuery(`SELECT COALESCE\(SUM\(ir.quantity\), 0\)`).
		WithArgs("planta", before, "%CENTRAL%", "%FERRETERIA%").
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(decimal.NewFromInt(42)))

	sum, err := suite.repo.NetQuantityBefore(suite.ctx, "planta", filter, before)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), sum.Equal(decimal.NewFromInt(42)))
}
