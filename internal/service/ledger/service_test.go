package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RandySimanca/avicola/internal/domain/models"
	"github.com/RandySimanca/avicola/internal/repository"
	"github.com/RandySimanca/avicola/internal/repository/memory"
	"github.com/RandySimanca/avicola/internal/service/ledger"
)

var testSession = models.Session{UserID: "u1", Name: "Carmen", Role: models.RoleGalponero}

func newFixture(t *testing.T) (*ledger.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return ledger.NewService(store, nil), store
}

func seedBatch(t *testing.T, store *memory.Store, id string, population int) models.Batch {
	t.Helper()
	batch := models.Batch{
		ID:                id,
		Name:              "Lote " + id,
		BirdType:          models.BirdBroiler,
		EntryDate:         time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		InitialPopulation: population,
		CurrentPopulation: population,
		Active:            true,
		CreatedAt:         time.Now().UTC(),
	}
	require.NoError(t, store.Put(context.Background(), repository.Batches, id, batch))
	return batch
}

func seedItem(t *testing.T, store *memory.Store, id string, stock, price float64) models.InventoryItem {
	t.Helper()
	item := models.InventoryItem{
		ID:           id,
		ProductName:  "Concentrado engorde",
		Type:         models.ItemFeed,
		CurrentStock: stock,
		Unit:         "kg",
		UnitPrice:    price,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.Put(context.Background(), repository.InventoryItems, id, item))
	return item
}

func getBatch(t *testing.T, store *memory.Store, id string) models.Batch {
	t.Helper()
	var batch models.Batch
	require.NoError(t, store.Get(context.Background(), repository.Batches, id, &batch))
	return batch
}

func getItem(t *testing.T, store *memory.Store, id string) models.InventoryItem {
	t.Helper()
	var item models.InventoryItem
	require.NoError(t, store.Get(context.Background(), repository.InventoryItems, id, &item))
	return item
}

func TestRecordDailyLogAppliesMortality(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 100)

	record, err := svc.RecordDailyLog(context.Background(), testSession, ledger.DailyLogInput{
		BatchID:        "b1",
		Date:           time.Now().UTC(),
		Mortality:      10,
		FeedConsumedKg: 42,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "u1", record.RecordedBy)

	batch := getBatch(t, store, "b1")
	assert.Equal(t, 90, batch.CurrentPopulation)
	assert.True(t, batch.Active)
}

func TestRecordDailyLogRejectsExcessMortality(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 100)

	_, err := svc.RecordDailyLog(context.Background(), testSession, ledger.DailyLogInput{
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Mortality: 101,
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientPopulation)

	// Nothing committed: population intact, no record written.
	batch := getBatch(t, store, "b1")
	assert.Equal(t, 100, batch.CurrentPopulation)

	var logs []models.DailyLogRecord
	require.NoError(t, store.List(context.Background(), repository.DailyLogs, nil, "", &logs))
	assert.Empty(t, logs)
}

func TestRecordDailyLogExactMortalityFinalizesBatch(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 100)

	_, err := svc.RecordDailyLog(context.Background(), testSession, ledger.DailyLogInput{
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Mortality: 100,
	})
	require.NoError(t, err)

	batch := getBatch(t, store, "b1")
	assert.Equal(t, 0, batch.CurrentPopulation)
	assert.False(t, batch.Active)
	assert.NotNil(t, batch.FinalizationDate)
}

func TestRecordDailyLogUnknownBatch(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.RecordDailyLog(context.Background(), testSession, ledger.DailyLogInput{
		BatchID:   "missing",
		Date:      time.Now().UTC(),
		Mortality: 1,
	})
	assert.ErrorIs(t, err, ledger.ErrBatchNotFound)
}

func TestUpdateDailyLogRevertsOldMortality(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 100)

	record, err := svc.RecordDailyLog(context.Background(), testSession, ledger.DailyLogInput{
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Mortality: 10,
	})
	require.NoError(t, err)
	require.Equal(t, 90, getBatch(t, store, "b1").CurrentPopulation)

	mortality := 4
	updated, err := svc.UpdateDailyLog(context.Background(), testSession, ledger.DailyLogUpdate{
		ID:        record.ID,
		Mortality: &mortality,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Mortality)
	assert.Equal(t, "u1", updated.ModifiedBy)
	assert.NotNil(t, updated.ModifiedAt)

	// 100 - 4, not 90 - 4.
	assert.Equal(t, 96, getBatch(t, store, "b1").CurrentPopulation)
}

func TestUpdateDailyLogValidatesAgainstRestoredPopulation(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 100)

	record, err := svc.RecordDailyLog(context.Background(), testSession, ledger.DailyLogInput{
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Mortality: 90,
	})
	require.NoError(t, err)

	// 95 exceeds the live 10 but not the restored 100.
	mortality := 95
	_, err = svc.UpdateDailyLog(context.Background(), testSession, ledger.DailyLogUpdate{
		ID:        record.ID,
		Mortality: &mortality,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, getBatch(t, store, "b1").CurrentPopulation)

	mortality = 101
	_, err = svc.UpdateDailyLog(context.Background(), testSession, ledger.DailyLogUpdate{
		ID:        record.ID,
		Mortality: &mortality,
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientPopulation)
	assert.Equal(t, 5, getBatch(t, store, "b1").CurrentPopulation)
}

func TestUpdateDailyLogReactivatesBatch(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 100)

	record, err := svc.RecordDailyLog(context.Background(), testSession, ledger.DailyLogInput{
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Mortality: 100,
	})
	require.NoError(t, err)
	require.False(t, getBatch(t, store, "b1").Active)

	mortality := 60
	_, err = svc.UpdateDailyLog(context.Background(), testSession, ledger.DailyLogUpdate{
		ID:        record.ID,
		Mortality: &mortality,
	})
	require.NoError(t, err)

	batch := getBatch(t, store, "b1")
	assert.Equal(t, 40, batch.CurrentPopulation)
	assert.True(t, batch.Active)
	assert.Nil(t, batch.FinalizationDate)
}

func TestDeleteDailyLogRestoresPopulation(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 100)

	record, err := svc.RecordDailyLog(context.Background(), testSession, ledger.DailyLogInput{
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Mortality: 100,
	})
	require.NoError(t, err)
	require.False(t, getBatch(t, store, "b1").Active)

	require.NoError(t, svc.DeleteDailyLog(context.Background(), testSession, record.ID))

	batch := getBatch(t, store, "b1")
	assert.Equal(t, 100, batch.CurrentPopulation)
	assert.True(t, batch.Active)
	assert.Nil(t, batch.FinalizationDate)

	var logs []models.DailyLogRecord
	require.NoError(t, store.List(context.Background(), repository.DailyLogs, nil, "", &logs))
	assert.Empty(t, logs)
}

func TestDeleteDailyLogToleratesMissingBatch(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 100)

	record, err := svc.RecordDailyLog(context.Background(), testSession, ledger.DailyLogInput{
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Mortality: 5,
	})
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), repository.Batches, "b1"))
	assert.NoError(t, svc.DeleteDailyLog(context.Background(), testSession, record.ID))
}

func TestRecordSaleDecrementsPopulation(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 100)

	sale, err := svc.RecordSale(context.Background(), testSession, ledger.SaleInput{
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Quantity:  30,
		UnitPrice: 12.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 375.0, sale.Total)
	assert.Equal(t, 70, getBatch(t, store, "b1").CurrentPopulation)
}

func TestRecordSaleBoundary(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 50)

	_, err := svc.RecordSale(context.Background(), testSession, ledger.SaleInput{
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Quantity:  51,
		UnitPrice: 10,
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientPopulation)
	assert.Equal(t, 50, getBatch(t, store, "b1").CurrentPopulation)

	_, err = svc.RecordSale(context.Background(), testSession, ledger.SaleInput{
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Quantity:  50,
		UnitPrice: 10,
	})
	require.NoError(t, err)

	batch := getBatch(t, store, "b1")
	assert.Equal(t, 0, batch.CurrentPopulation)
	assert.False(t, batch.Active)
}

func TestUpdateSaleRevertsThenReapplies(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 100)

	sale, err := svc.RecordSale(context.Background(), testSession, ledger.SaleInput{
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Quantity:  30,
		UnitPrice: 10,
	})
	require.NoError(t, err)
	require.Equal(t, 70, getBatch(t, store, "b1").CurrentPopulation)

	quantity := 50
	price := 11.0
	updated, err := svc.UpdateSale(context.Background(), testSession, ledger.SaleUpdate{
		ID:        sale.ID,
		Quantity:  &quantity,
		UnitPrice: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, 550.0, updated.Total)
	assert.Equal(t, 50, getBatch(t, store, "b1").CurrentPopulation)
}

func TestDeleteSaleRestoresPopulation(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 40)

	sale, err := svc.RecordSale(context.Background(), testSession, ledger.SaleInput{
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Quantity:  40,
		UnitPrice: 10,
	})
	require.NoError(t, err)
	require.False(t, getBatch(t, store, "b1").Active)

	require.NoError(t, svc.DeleteSale(context.Background(), testSession, sale.ID))

	batch := getBatch(t, store, "b1")
	assert.Equal(t, 40, batch.CurrentPopulation)
	assert.True(t, batch.Active)
}

func TestRecordConsumptionDebitsStockAndDerivesExpense(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 100)
	seedItem(t, store, "i1", 50, 2.5)

	record, err := svc.RecordConsumption(context.Background(), testSession, ledger.ConsumptionInput{
		BatchID:  "b1",
		ItemID:   "i1",
		Date:     time.Now().UTC(),
		Quantity: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 2.5, record.UnitPrice)
	assert.Equal(t, 50.0, record.TotalCost)

	assert.Equal(t, 30.0, getItem(t, store, "i1").CurrentStock)

	var expenses []models.ExpenseRecord
	require.NoError(t, store.List(context.Background(), repository.Expenses, nil, "", &expenses))
	require.Len(t, expenses, 1)
	assert.Equal(t, models.ExpenseBatchConsumption, expenses[0].Category)
	assert.Equal(t, "Consumo: Concentrado engorde", expenses[0].Concept)
	assert.Equal(t, 50.0, expenses[0].Amount)
	assert.Equal(t, "b1", expenses[0].BatchID)
}

func TestRecordConsumptionInsufficientStock(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 100)
	seedItem(t, store, "i1", 50, 2.5)

	_, err := svc.RecordConsumption(context.Background(), testSession, ledger.ConsumptionInput{
		BatchID:  "b1",
		ItemID:   "i1",
		Date:     time.Now().UTC(),
		Quantity: 60,
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientStock)

	assert.Equal(t, 50.0, getItem(t, store, "i1").CurrentStock)

	var expenses []models.ExpenseRecord
	require.NoError(t, store.List(context.Background(), repository.Expenses, nil, "", &expenses))
	assert.Empty(t, expenses)
}

func TestRecordExpenseInvestmentRestocksItem(t *testing.T) {
	svc, store := newFixture(t)
	seedItem(t, store, "i1", 10, 2.0)

	expense, err := svc.RecordExpense(context.Background(), testSession, ledger.ExpenseInput{
		Concept:   "Compra concentrado",
		Category:  models.ExpenseInvestment,
		Date:      time.Now().UTC(),
		Amount:    60,
		Quantity:  20,
		UnitPrice: 3.0,
		ItemID:    "i1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseInvestment, expense.Category)

	item := getItem(t, store, "i1")
	assert.Equal(t, 30.0, item.CurrentStock)
	// Last purchase price wins.
	assert.Equal(t, 3.0, item.UnitPrice)
}

func TestRecordExpenseRejectsDerivedCategory(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.RecordExpense(context.Background(), testSession, ledger.ExpenseInput{
		Concept:  "Manual",
		Category: models.ExpenseBatchConsumption,
		Date:     time.Now().UTC(),
		Amount:   10,
	})
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestDeleteExpenseKeepsStock(t *testing.T) {
	svc, store := newFixture(t)
	seedItem(t, store, "i1", 10, 2.0)

	expense, err := svc.RecordExpense(context.Background(), testSession, ledger.ExpenseInput{
		Concept:   "Compra concentrado",
		Category:  models.ExpenseInvestment,
		Date:      time.Now().UTC(),
		Amount:    60,
		Quantity:  20,
		UnitPrice: 3.0,
		ItemID:    "i1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteExpense(context.Background(), testSession, expense.ID))
	assert.Equal(t, 30.0, getItem(t, store, "i1").CurrentStock)
}

func TestRecordSaleReplayIsIdempotent(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 100)

	in := ledger.SaleInput{
		ID:        "sale-1",
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Quantity:  30,
		UnitPrice: 10,
	}

	first, err := svc.RecordSale(context.Background(), testSession, in)
	require.NoError(t, err)

	second, err := svc.RecordSale(context.Background(), testSession, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Total, second.Total)

	// The population delta applied exactly once.
	assert.Equal(t, 70, getBatch(t, store, "b1").CurrentPopulation)
}

func TestConsumptionReplayIsIdempotent(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 100)
	seedItem(t, store, "i1", 50, 2.5)

	in := ledger.ConsumptionInput{
		ID:        "cons-1",
		ExpenseID: "exp-1",
		BatchID:   "b1",
		ItemID:    "i1",
		Date:      time.Now().UTC(),
		Quantity:  20,
	}

	_, err := svc.RecordConsumption(context.Background(), testSession, in)
	require.NoError(t, err)
	_, err = svc.RecordConsumption(context.Background(), testSession, in)
	require.NoError(t, err)

	assert.Equal(t, 30.0, getItem(t, store, "i1").CurrentStock)

	var expenses []models.ExpenseRecord
	require.NoError(t, store.List(context.Background(), repository.Expenses, nil, "", &expenses))
	assert.Len(t, expenses, 1)
}

func TestConflictRetriesThenSucceeds(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 100)
	store.InjectConflicts(2)

	_, err := svc.RecordSale(context.Background(), testSession, ledger.SaleInput{
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Quantity:  10,
		UnitPrice: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 90, getBatch(t, store, "b1").CurrentPopulation)
}

func TestConflictRetriesExhausted(t *testing.T) {
	svc, store := newFixture(t)
	seedBatch(t, store, "b1", 100)
	store.InjectConflicts(3)

	_, err := svc.RecordSale(context.Background(), testSession, ledger.SaleInput{
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Quantity:  10,
		UnitPrice: 10,
	})
	require.ErrorIs(t, err, ledger.ErrConcurrencyConflict)
	assert.Equal(t, 100, getBatch(t, store, "b1").CurrentPopulation)
}
