package ledger

import "github.com/RandySimanca/avicola/internal/domain/models"

// The validators are pure functions over the snapshot passed in. They run
// inside a transaction body against freshly read entities, and are equally
// usable by UI code for early feedback.

// ValidateMortality checks that a mortality count can be absorbed by the
// batch's current population.
func ValidateMortality(batch *models.Batch, newMortality int) error {
	if newMortality > batch.CurrentPopulation {
		return &InsufficientPopulationError{
			BatchID:   batch.ID,
			Requested: newMortality,
			Available: batch.CurrentPopulation,
		}
	}
	return nil
}

// ValidateSaleQuantity checks that a sale does not exceed the batch's current
// population.
func ValidateSaleQuantity(batch *models.Batch, quantity int) error {
	if quantity > batch.CurrentPopulation {
		return &InsufficientPopulationError{
			BatchID:   batch.ID,
			Requested: quantity,
			Available: batch.CurrentPopulation,
		}
	}
	return nil
}

// ValidateStockConsumption checks that a consumption does not drive the
// item's stock negative.
func ValidateStockConsumption(item *models.InventoryItem, quantity float64) error {
	if quantity > item.CurrentStock {
		return &InsufficientStockError{
			ItemID:    item.ID,
			Requested: quantity,
			Available: item.CurrentStock,
		}
	}
	return nil
}
