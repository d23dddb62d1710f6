package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RandySimanca/avicola/internal/domain/models"
	"github.com/RandySimanca/avicola/internal/repository/memory"
	"github.com/RandySimanca/avicola/internal/service/ledger"
	"github.com/RandySimanca/avicola/internal/service/registry"
)

func newService() (*registry.Service, *memory.Store) {
	store := memory.NewStore()
	return registry.NewService(store, nil), store
}

func TestCreateBatchStartsActive(t *testing.T) {
	svc, _ := newService()

	batch, err := svc.CreateBatch(context.Background(), registry.BatchInput{
		Name:              "Lote marzo",
		BirdType:          models.BirdBroiler,
		EntryDate:         time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		InitialPopulation: 500,
		PurchaseUnitPrice: 2.3,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, batch.ID)
	assert.Equal(t, 500, batch.CurrentPopulation)
	assert.True(t, batch.Active)
	assert.Nil(t, batch.FinalizationDate)

	loaded, err := svc.GetBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.Equal(t, batch.Name, loaded.Name)
}

func TestCreateBatchValidation(t *testing.T) {
	svc, _ := newService()

	_, err := svc.CreateBatch(context.Background(), registry.BatchInput{
		Name: "Sin aves", BirdType: models.BirdBroiler, InitialPopulation: 0,
	})
	assert.ErrorIs(t, err, ledger.ErrValidation)

	_, err = svc.CreateBatch(context.Background(), registry.BatchInput{
		Name: "Pato", BirdType: "DUCK", InitialPopulation: 10,
	})
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestUpdateBatchKeepsCounters(t *testing.T) {
	svc, _ := newService()

	batch, err := svc.CreateBatch(context.Background(), registry.BatchInput{
		Name: "Lote", BirdType: models.BirdLayer, InitialPopulation: 200,
	})
	require.NoError(t, err)

	name := "Lote ponedoras"
	updated, err := svc.UpdateBatch(context.Background(), batch.ID, registry.BatchUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Lote ponedoras", updated.Name)
	assert.Equal(t, 200, updated.CurrentPopulation)
}

func TestFinalizeBatch(t *testing.T) {
	svc, _ := newService()

	batch, err := svc.CreateBatch(context.Background(), registry.BatchInput{
		Name: "Lote", BirdType: models.BirdBroiler, InitialPopulation: 100,
	})
	require.NoError(t, err)

	finalized, err := svc.FinalizeBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.False(t, finalized.Active)
	assert.NotNil(t, finalized.FinalizationDate)
}

func TestGetBatchNotFound(t *testing.T) {
	svc, _ := newService()

	_, err := svc.GetBatch(context.Background(), "missing")
	assert.ErrorIs(t, err, ledger.ErrBatchNotFound)
}

func TestItemCRUD(t *testing.T) {
	svc, _ := newService()

	item, err := svc.CreateItem(context.Background(), registry.ItemInput{
		ProductName:  "Concentrado",
		Type:         models.ItemFeed,
		CurrentStock: 100,
		MinStock:     20,
		Unit:         "kg",
		UnitPrice:    2.5,
	})
	require.NoError(t, err)

	minStock := 30.0
	updated, err := svc.UpdateItem(context.Background(), item.ID, registry.ItemUpdate{MinStock: &minStock})
	require.NoError(t, err)
	assert.Equal(t, 30.0, updated.MinStock)
	assert.Equal(t, 100.0, updated.CurrentStock)

	require.NoError(t, svc.DeleteItem(context.Background(), item.ID))
	_, err = svc.GetItem(context.Background(), item.ID)
	assert.ErrorIs(t, err, ledger.ErrItemNotFound)
}

func TestShedsFilteredByFarm(t *testing.T) {
	svc, _ := newService()

	farm1, err := svc.CreateFarm(context.Background(), registry.FarmInput{Name: "Granja norte"})
	require.NoError(t, err)
	farm2, err := svc.CreateFarm(context.Background(), registry.FarmInput{Name: "Granja sur"})
	require.NoError(t, err)

	_, err = svc.CreateShed(context.Background(), registry.ShedInput{FarmID: farm1.ID, Name: "Galpon 1", Capacity: 1000})
	require.NoError(t, err)
	_, err = svc.CreateShed(context.Background(), registry.ShedInput{FarmID: farm1.ID, Name: "Galpon 2", Capacity: 800})
	require.NoError(t, err)
	_, err = svc.CreateShed(context.Background(), registry.ShedInput{FarmID: farm2.ID, Name: "Galpon A", Capacity: 500})
	require.NoError(t, err)

	sheds, err := svc.ListSheds(context.Background(), farm1.ID)
	require.NoError(t, err)
	assert.Len(t, sheds, 2)

	all, err := svc.ListSheds(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListRecordsFilteredByBatch(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	ledgerSvc := ledger.NewService(store, nil)
	session := models.Session{UserID: "u1"}

	batch, err := svc.CreateBatch(ctx, registry.BatchInput{
		Name: "Lote", BirdType: models.BirdBroiler, InitialPopulation: 100,
	})
	require.NoError(t, err)
	other, err := svc.CreateBatch(ctx, registry.BatchInput{
		Name: "Otro", BirdType: models.BirdBroiler, InitialPopulation: 100,
	})
	require.NoError(t, err)

	_, err = ledgerSvc.RecordSale(ctx, session, ledger.SaleInput{
		BatchID: batch.ID, Date: time.Now().UTC(), Quantity: 10, UnitPrice: 10,
	})
	require.NoError(t, err)
	_, err = ledgerSvc.RecordSale(ctx, session, ledger.SaleInput{
		BatchID: other.ID, Date: time.Now().UTC(), Quantity: 5, UnitPrice: 10,
	})
	require.NoError(t, err)

	sales, err := svc.ListSales(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 10, sales[0].Quantity)

	all, err := svc.ListSales(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
