// Package ledger owns the invariants tying batches, inventory, sales and
// expenses together. Every operation is a single atomic read-validate-write
// transaction against the document store: either all entity updates commit or
// none do.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RandySimanca/avicola/internal/domain/models"
	"github.com/RandySimanca/avicola/internal/repository"
)

const maxTxAttempts = 3

// Service executes the consistency operations.
type Service struct {
	store  repository.Store
	logger *zap.Logger
}

// NewService wires a ledger service instance.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// atomically runs fn as a store transaction, retrying on the store's
// conflict signal. fn re-reads every entity on each attempt, so retries never
// operate on stale values.
func (s *Service) atomically(ctx context.Context, op string, fn func(ctx context.Context, tx repository.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.store.RunTransaction(ctx, fn)
		if !errors.Is(err, repository.ErrConflict) {
			return err
		}
		s.logger.Warn("transaction conflict",
			zap.String("operation", op),
			zap.Int("attempt", attempt))
	}
	return fmt.Errorf("%s: %w", op, ErrConcurrencyConflict)
}

// RecordDailyLog writes a daily production record and applies its mortality
// to the batch population, finalizing the batch when it reaches zero.
func (s *Service) RecordDailyLog(ctx context.Context, session models.Session, in DailyLogInput) (*models.DailyLogRecord, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	var record models.DailyLogRecord
	err := s.atomically(ctx, "record_daily_log", func(ctx context.Context, tx repository.Tx) error {
		if done, err := alreadyApplied(ctx, tx, repository.DailyLogs, in.ID, &record); done || err != nil {
			return err
		}

		var batch models.Batch
		if err := tx.Get(ctx, repository.Batches, in.BatchID, &batch); err != nil {
			return batchNotFound(err, in.BatchID)
		}
		if err := ValidateMortality(&batch, in.Mortality); err != nil {
			return err
		}

		now := time.Now().UTC()
		record = models.DailyLogRecord{
			ID:             in.ID,
			BatchID:        in.BatchID,
			Date:           in.Date,
			Mortality:      in.Mortality,
			FeedConsumedKg: in.FeedConsumedKg,
			EggsTotal:      in.EggsTotal,
			AvgWeightG:     in.AvgWeightG,
			Notes:          in.Notes,
			RecordedBy:     session.UserID,
			CreatedAt:      now,
		}
		if err := tx.Put(ctx, repository.DailyLogs, record.ID, record); err != nil {
			return err
		}

		if in.Mortality > 0 {
			batch.CurrentPopulation -= in.Mortality
			if batch.CurrentPopulation == 0 {
				batch.Finalize(now)
			}
			if err := tx.Put(ctx, repository.Batches, batch.ID, batch); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateDailyLog edits a daily record: the old mortality is reverted from the
// batch before the new one is validated and applied, and the batch's active
// flag is re-derived from the resulting population.
func (s *Service) UpdateDailyLog(ctx context.Context, session models.Session, in DailyLogUpdate) (*models.DailyLogRecord, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var record models.DailyLogRecord
	err := s.atomically(ctx, "update_daily_log", func(ctx context.Context, tx repository.Tx) error {
		if err := tx.Get(ctx, repository.DailyLogs, in.ID, &record); err != nil {
			return recordNotFound(err, in.ID)
		}

		var batch models.Batch
		if err := tx.Get(ctx, repository.Batches, record.BatchID, &batch); err != nil {
			return batchNotFound(err, record.BatchID)
		}

		// Revert the old side-effect, then validate against the restored
		// population.
		batch.CurrentPopulation += record.Mortality
		newMortality := record.Mortality
		if in.Mortality != nil {
			newMortality = *in.Mortality
		}
		if err := ValidateMortality(&batch, newMortality); err != nil {
			return err
		}

		now := time.Now().UTC()
		batch.CurrentPopulation -= newMortality
		switch {
		case batch.CurrentPopulation == 0:
			batch.Finalize(now)
		case !batch.Active:
			batch.Reactivate()
		}
		if err := tx.Put(ctx, repository.Batches, batch.ID, batch); err != nil {
			return err
		}

		record.Mortality = newMortality
		if in.FeedConsumedKg != nil {
			record.FeedConsumedKg = *in.FeedConsumedKg
		}
		if in.EggsTotal != nil {
			record.EggsTotal = in.EggsTotal
		}
		if in.AvgWeightG != nil {
			record.AvgWeightG = in.AvgWeightG
		}
		if in.Notes != nil {
			record.Notes = *in.Notes
		}
		record.ModifiedBy = session.UserID
		record.ModifiedAt = &now
		return tx.Put(ctx, repository.DailyLogs, record.ID, record)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteDailyLog removes a daily record, restoring its mortality to the batch
// population and reactivating the batch if that brings it back above zero.
func (s *Service) DeleteDailyLog(ctx context.Context, session models.Session, id string) error {
	if id == "" {
		return &ValidationError{Field: "id", Message: "must not be empty"}
	}

	return s.atomically(ctx, "delete_daily_log", func(ctx context.Context, tx repository.Tx) error {
		var record models.DailyLogRecord
		if err := tx.Get(ctx, repository.DailyLogs, id, &record); err != nil {
			return recordNotFound(err, id)
		}

		var batch models.Batch
		err := tx.Get(ctx, repository.Batches, record.BatchID, &batch)
		switch {
		case err == nil:
			batch.CurrentPopulation += record.Mortality
			if batch.CurrentPopulation > 0 && !batch.Active {
				batch.Reactivate()
			}
			if err := tx.Put(ctx, repository.Batches, batch.ID, batch); err != nil {
				return err
			}
		case errors.Is(err, repository.ErrNotFound):
			// The batch was removed; the record can still be deleted.
			s.logger.Warn("daily log references missing batch",
				zap.String("record_id", id),
				zap.String("batch_id", record.BatchID))
		default:
			return err
		}

		return tx.Delete(ctx, repository.DailyLogs, id)
	})
}

// RecordSale writes a sale and decrements the batch population, finalizing
// the batch when it reaches zero.
func (s *Service) RecordSale(ctx context.Context, session models.Session, in SaleInput) (*models.SaleRecord, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	var sale models.SaleRecord
	err := s.atomically(ctx, "record_sale", func(ctx context.Context, tx repository.Tx) error {
		if done, err := alreadyApplied(ctx, tx, repository.Sales, in.ID, &sale); done || err != nil {
			return err
		}

		var batch models.Batch
		if err := tx.Get(ctx, repository.Batches, in.BatchID, &batch); err != nil {
			return batchNotFound(err, in.BatchID)
		}
		if err := ValidateSaleQuantity(&batch, in.Quantity); err != nil {
			return err
		}

		now := time.Now().UTC()
		sale = models.SaleRecord{
			ID:            in.ID,
			BatchID:       in.BatchID,
			Date:          in.Date,
			Quantity:      in.Quantity,
			UnitPrice:     in.UnitPrice,
			Total:         float64(in.Quantity) * in.UnitPrice,
			Customer:      in.Customer,
			PaymentMethod: in.PaymentMethod,
			DownPayment:   in.DownPayment,
			RecordedBy:    session.UserID,
			CreatedAt:     now,
		}
		if err := tx.Put(ctx, repository.Sales, sale.ID, sale); err != nil {
			return err
		}

		batch.CurrentPopulation -= in.Quantity
		if batch.CurrentPopulation == 0 {
			batch.Finalize(now)
		}
		return tx.Put(ctx, repository.Batches, batch.ID, batch)
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// UpdateSale edits a sale with the same revert-then-reapply discipline as
// UpdateDailyLog: the old quantity returns to the batch population before the
// new quantity is validated and subtracted.
func (s *Service) UpdateSale(ctx context.Context, session models.Session, in SaleUpdate) (*models.SaleRecord, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var sale models.SaleRecord
	err := s.atomically(ctx, "update_sale", func(ctx context.Context, tx repository.Tx) error {
		if err := tx.Get(ctx, repository.Sales, in.ID, &sale); err != nil {
			return recordNotFound(err, in.ID)
		}

		var batch models.Batch
		if err := tx.Get(ctx, repository.Batches, sale.BatchID, &batch); err != nil {
			return batchNotFound(err, sale.BatchID)
		}

		batch.CurrentPopulation += sale.Quantity
		newQuantity := sale.Quantity
		if in.Quantity != nil {
			newQuantity = *in.Quantity
		}
		if err := ValidateSaleQuantity(&batch, newQuantity); err != nil {
			return err
		}

		now := time.Now().UTC()
		batch.CurrentPopulation -= newQuantity
		switch {
		case batch.CurrentPopulation == 0:
			batch.Finalize(now)
		case !batch.Active:
			batch.Reactivate()
		}
		if err := tx.Put(ctx, repository.Batches, batch.ID, batch); err != nil {
			return err
		}

		sale.Quantity = newQuantity
		if in.UnitPrice != nil {
			sale.UnitPrice = *in.UnitPrice
		}
		if in.Customer != nil {
			sale.Customer = *in.Customer
		}
		if in.PaymentMethod != nil {
			sale.PaymentMethod = *in.PaymentMethod
		}
		if in.DownPayment != nil {
			sale.DownPayment = *in.DownPayment
		}
		sale.Total = float64(sale.Quantity) * sale.UnitPrice
		return tx.Put(ctx, repository.Sales, sale.ID, sale)
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// DeleteSale removes a sale and returns its quantity to the batch
// population, reactivating a finalized batch when applicable.
func (s *Service) DeleteSale(ctx context.Context, session models.Session, id string) error {
	if id == "" {
		return &ValidationError{Field: "id", Message: "must not be empty"}
	}

	return s.atomically(ctx, "delete_sale", func(ctx context.Context, tx repository.Tx) error {
		var sale models.SaleRecord
		if err := tx.Get(ctx, repository.Sales, id, &sale); err != nil {
			return recordNotFound(err, id)
		}

		var batch models.Batch
		if err := tx.Get(ctx, repository.Batches, sale.BatchID, &batch); err != nil {
			return batchNotFound(err, sale.BatchID)
		}

		batch.CurrentPopulation += sale.Quantity
		if batch.CurrentPopulation > 0 && !batch.Active {
			batch.Reactivate()
		}
		if err := tx.Put(ctx, repository.Batches, batch.ID, batch); err != nil {
			return err
		}
		return tx.Delete(ctx, repository.Sales, id)
	})
}

// RecordConsumption registers supplies consumed by a batch: it writes the
// consumption record, debits the item's stock and derives a batch-consumption
// expense priced at the item's current unit price, all in one transaction.
func (s *Service) RecordConsumption(ctx context.Context, session models.Session, in ConsumptionInput) (*models.ConsumptionRecord, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.ExpenseID == "" {
		in.ExpenseID = uuid.NewString()
	}

	var record models.ConsumptionRecord
	err := s.atomically(ctx, "record_consumption", func(ctx context.Context, tx repository.Tx) error {
		if done, err := alreadyApplied(ctx, tx, repository.Consumptions, in.ID, &record); done || err != nil {
			return err
		}

		var item models.InventoryItem
		if err := tx.Get(ctx, repository.InventoryItems, in.ItemID, &item); err != nil {
			return itemNotFound(err, in.ItemID)
		}
		if err := ValidateStockConsumption(&item, in.Quantity); err != nil {
			return err
		}

		now := time.Now().UTC()
		record = models.ConsumptionRecord{
			ID:        in.ID,
			BatchID:   in.BatchID,
			ItemID:    in.ItemID,
			Date:      in.Date,
			Quantity:  in.Quantity,
			UnitPrice: item.UnitPrice,
			TotalCost: in.Quantity * item.UnitPrice,
			AppliedBy: session.UserID,
			CreatedAt: now,
		}
		if err := tx.Put(ctx, repository.Consumptions, record.ID, record); err != nil {
			return err
		}

		item.CurrentStock -= in.Quantity
		if err := tx.Put(ctx, repository.InventoryItems, item.ID, item); err != nil {
			return err
		}

		expense := models.ExpenseRecord{
			ID:         in.ExpenseID,
			Concept:    fmt.Sprintf("Consumo: %s", item.ProductName),
			Category:   models.ExpenseBatchConsumption,
			Date:       in.Date,
			Amount:     record.TotalCost,
			Quantity:   in.Quantity,
			UnitPrice:  item.UnitPrice,
			BatchID:    in.BatchID,
			ItemID:     in.ItemID,
			RecordedBy: session.UserID,
			CreatedAt:  now,
		}
		return tx.Put(ctx, repository.Expenses, expense.ID, expense)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// RecordExpense writes an expense record. Investment purchases that name an
// inventory item also credit the item's stock and overwrite its unit price
// with the purchase price.
func (s *Service) RecordExpense(ctx context.Context, session models.Session, in ExpenseInput) (*models.ExpenseRecord, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	var expense models.ExpenseRecord
	err := s.atomically(ctx, "record_expense", func(ctx context.Context, tx repository.Tx) error {
		if done, err := alreadyApplied(ctx, tx, repository.Expenses, in.ID, &expense); done || err != nil {
			return err
		}

		now := time.Now().UTC()
		expense = models.ExpenseRecord{
			ID:         in.ID,
			Concept:    in.Concept,
			Category:   in.Category,
			Date:       in.Date,
			Amount:     in.Amount,
			Quantity:   in.Quantity,
			UnitPrice:  in.UnitPrice,
			BatchID:    in.BatchID,
			ItemID:     in.ItemID,
			RecordedBy: session.UserID,
			CreatedAt:  now,
		}
		if err := tx.Put(ctx, repository.Expenses, expense.ID, expense); err != nil {
			return err
		}

		if in.Category == models.ExpenseInvestment && in.ItemID != "" {
			var item models.InventoryItem
			if err := tx.Get(ctx, repository.InventoryItems, in.ItemID, &item); err != nil {
				return itemNotFound(err, in.ItemID)
			}
			item.CurrentStock += in.Quantity
			// Last-purchase-price policy: overwrite, never average.
			item.UnitPrice = in.UnitPrice
			if err := tx.Put(ctx, repository.InventoryItems, item.ID, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// DeleteExpense removes an expense record. No stock is reverted: purchases
// already in inventory stay there.
func (s *Service) DeleteExpense(ctx context.Context, session models.Session, id string) error {
	if id == "" {
		return &ValidationError{Field: "id", Message: "must not be empty"}
	}

	return s.atomically(ctx, "delete_expense", func(ctx context.Context, tx repository.Tx) error {
		var expense models.ExpenseRecord
		if err := tx.Get(ctx, repository.Expenses, id, &expense); err != nil {
			return recordNotFound(err, id)
		}
		return tx.Delete(ctx, repository.Expenses, id)
	})
}

// alreadyApplied reports whether a record already exists at the client-chosen
// id, which means a previous attempt of the same operation committed. The
// existing record is decoded into out so the caller can return it unchanged.
func alreadyApplied(ctx context.Context, tx repository.Tx, collection, id string, out any) (bool, error) {
	err := tx.Get(ctx, collection, id, out)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func batchNotFound(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("batch %s: %w", id, ErrBatchNotFound)
	}
	return err
}

func itemNotFound(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("item %s: %w", id, ErrItemNotFound)
	}
	return err
}

func recordNotFound(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("record %s: %w", id, ErrRecordNotFound)
	}
	return err
}
