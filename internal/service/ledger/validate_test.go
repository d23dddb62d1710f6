package ledger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RandySimanca/avicola/internal/domain/models"
	"github.com/RandySimanca/avicola/internal/service/ledger"
)

func TestValidateMortality(t *testing.T) {
	batch := &models.Batch{ID: "b1", CurrentPopulation: 50}

	assert.NoError(t, ledger.ValidateMortality(batch, 0))
	assert.NoError(t, ledger.ValidateMortality(batch, 50))

	err := ledger.ValidateMortality(batch, 51)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrInsufficientPopulation)

	var detail *ledger.InsufficientPopulationError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "b1", detail.BatchID)
	assert.Equal(t, 51, detail.Requested)
	assert.Equal(t, 50, detail.Available)
}

func TestValidateSaleQuantity(t *testing.T) {
	batch := &models.Batch{ID: "b1", CurrentPopulation: 30}

	assert.NoError(t, ledger.ValidateSaleQuantity(batch, 30))
	assert.ErrorIs(t, ledger.ValidateSaleQuantity(batch, 31), ledger.ErrInsufficientPopulation)
}

func TestValidateStockConsumption(t *testing.T) {
	item := &models.InventoryItem{ID: "i1", CurrentStock: 12.5}

	assert.NoError(t, ledger.ValidateStockConsumption(item, 12.5))

	err := ledger.ValidateStockConsumption(item, 12.6)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)

	var detail *ledger.InsufficientStockError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, 12.5, detail.Available)
}
