// Package registry covers the plain CRUD surface around the ledger: farms,
// sheds, batches and inventory items, plus the read-only record listings the
// UI renders. None of these writes require multi-entity transactions; the
// population and stock side-effects live in the ledger service.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RandySimanca/avicola/internal/domain/models"
	"github.com/RandySimanca/avicola/internal/repository"
	"github.com/RandySimanca/avicola/internal/service/ledger"
)

// Service implements the CRUD operations.
type Service struct {
	store  repository.Store
	logger *zap.Logger
}

// NewService wires a registry service instance.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// BatchInput creates a batch.
type BatchInput struct {
	Name              string          `json:"name"`
	BirdType          models.BirdType `json:"bird_type"`
	FarmID            string          `json:"farm_id"`
	ShedID            string          `json:"shed_id"`
	EntryDate         time.Time       `json:"entry_date"`
	InitialPopulation int             `json:"initial_population"`
	PurchaseUnitPrice float64         `json:"purchase_unit_price"`
}

// CreateBatch registers a new batch; the current population starts at the
// initial population and the batch starts active.
func (s *Service) CreateBatch(ctx context.Context, in BatchInput) (*models.Batch, error) {
	switch {
	case in.Name == "":
		return nil, &ledger.ValidationError{Field: "name", Message: "must not be empty"}
	case in.InitialPopulation <= 0:
		return nil, &ledger.ValidationError{Field: "initial_population", Message: "must be positive"}
	}
	if in.BirdType != models.BirdBroiler && in.BirdType != models.BirdLayer {
		return nil, &ledger.ValidationError{Field: "bird_type", Message: "unknown bird type"}
	}

	batch := models.Batch{
		ID:                uuid.NewString(),
		Name:              in.Name,
		BirdType:          in.BirdType,
		FarmID:            in.FarmID,
		ShedID:            in.ShedID,
		EntryDate:         in.EntryDate,
		InitialPopulation: in.InitialPopulation,
		CurrentPopulation: in.InitialPopulation,
		PurchaseUnitPrice: in.PurchaseUnitPrice,
		Active:            true,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.store.Put(ctx, repository.Batches, batch.ID, batch); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	s.logger.Info("batch created", zap.String("id", batch.ID), zap.Int("population", batch.InitialPopulation))
	return &batch, nil
}

// GetBatch loads one batch.
func (s *Service) GetBatch(ctx context.Context, id string) (*models.Batch, error) {
	var batch models.Batch
	if err := s.store.Get(ctx, repository.Batches, id, &batch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("batch %s: %w", id, ledger.ErrBatchNotFound)
		}
		return nil, err
	}
	return &batch, nil
}

// ListBatches returns all batches, newest first.
func (s *Service) ListBatches(ctx context.Context) ([]models.Batch, error) {
	var batches []models.Batch
	if err := s.store.List(ctx, repository.Batches, nil, "-created_at", &batches); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// BatchUpdate edits descriptive batch fields. Population counters are owned
// by the ledger operations and cannot be edited here.
type BatchUpdate struct {
	Name              *string  `json:"name,omitempty"`
	ShedID            *string  `json:"shed_id,omitempty"`
	PurchaseUnitPrice *float64 `json:"purchase_unit_price,omitempty"`
}

// UpdateBatch applies a descriptive edit.
func (s *Service) UpdateBatch(ctx context.Context, id string, in BatchUpdate) (*models.Batch, error) {
	batch, err := s.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		batch.Name = *in.Name
	}
	if in.ShedID != nil {
		batch.ShedID = *in.ShedID
	}
	if in.PurchaseUnitPrice != nil {
		batch.PurchaseUnitPrice = *in.PurchaseUnitPrice
	}
	if err := s.store.Put(ctx, repository.Batches, batch.ID, batch); err != nil {
		return nil, fmt.Errorf("update batch: %w", err)
	}
	return batch, nil
}

// FinalizeBatch closes a batch manually regardless of remaining population.
func (s *Service) FinalizeBatch(ctx context.Context, id string) (*models.Batch, error) {
	batch, err := s.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	batch.Finalize(time.Now().UTC())
	if err := s.store.Put(ctx, repository.Batches, batch.ID, batch); err != nil {
		return nil, fmt.Errorf("finalize batch: %w", err)
	}
	return batch, nil
}

// DeleteBatch removes a batch document.
func (s *Service) DeleteBatch(ctx context.Context, id string) error {
	return s.store.Delete(ctx, repository.Batches, id)
}

// ItemInput creates an inventory item.
type ItemInput struct {
	ProductName  string          `json:"product_name"`
	Type         models.ItemType `json:"type"`
	CurrentStock float64         `json:"current_stock"`
	MinStock     float64         `json:"min_stock"`
	Unit         string          `json:"unit"`
	UnitPrice    float64         `json:"unit_price"`
	Supplier     string          `json:"supplier,omitempty"`
}

// CreateItem registers a new inventory item.
func (s *Service) CreateItem(ctx context.Context, in ItemInput) (*models.InventoryItem, error) {
	switch {
	case in.ProductName == "":
		return nil, &ledger.ValidationError{Field: "product_name", Message: "must not be empty"}
	case in.CurrentStock < 0:
		return nil, &ledger.ValidationError{Field: "current_stock", Message: "must not be negative"}
	}
	switch in.Type {
	case models.ItemFeed, models.ItemMedicine, models.ItemVaccine, models.ItemDisinfectant, models.ItemOther:
	default:
		return nil, &ledger.ValidationError{Field: "type", Message: "unknown item type"}
	}

	item := models.InventoryItem{
		ID:           uuid.NewString(),
		ProductName:  in.ProductName,
		Type:         in.Type,
		CurrentStock: in.CurrentStock,
		MinStock:     in.MinStock,
		Unit:         in.Unit,
		UnitPrice:    in.UnitPrice,
		Supplier:     in.Supplier,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Put(ctx, repository.InventoryItems, item.ID, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return &item, nil
}

// GetItem loads one inventory item.
func (s *Service) GetItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.store.Get(ctx, repository.InventoryItems, id, &item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("item %s: %w", id, ledger.ErrItemNotFound)
		}
		return nil, err
	}
	return &item, nil
}

// ListItems returns all inventory items ordered by name.
func (s *Service) ListItems(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.store.List(ctx, repository.InventoryItems, nil, "product_name", &items); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// ItemUpdate edits descriptive item fields. Stock is owned by the ledger
// operations.
type ItemUpdate struct {
	ProductName *string  `json:"product_name,omitempty"`
	MinStock    *float64 `json:"min_stock,omitempty"`
	Unit        *string  `json:"unit,omitempty"`
	Supplier    *string  `json:"supplier,omitempty"`
}

// UpdateItem applies a descriptive edit.
func (s *Service) UpdateItem(ctx context.Context, id string, in ItemUpdate) (*models.InventoryItem, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ProductName != nil {
		item.ProductName = *in.ProductName
	}
	if in.MinStock != nil {
		item.MinStock = *in.MinStock
	}
	if in.Unit != nil {
		item.Unit = *in.Unit
	}
	if in.Supplier != nil {
		item.Supplier = *in.Supplier
	}
	if err := s.store.Put(ctx, repository.InventoryItems, item.ID, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// DeleteItem removes an inventory item document.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	return s.store.Delete(ctx, repository.InventoryItems, id)
}

// FarmInput creates a farm.
type FarmInput struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Owner    string `json:"owner,omitempty"`
}

// CreateFarm registers a farm.
func (s *Service) CreateFarm(ctx context.Context, in FarmInput) (*models.Farm, error) {
	if in.Name == "" {
		return nil, &ledger.ValidationError{Field: "name", Message: "must not be empty"}
	}
	farm := models.Farm{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Location:  in.Location,
		Owner:     in.Owner,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Put(ctx, repository.Farms, farm.ID, farm); err != nil {
		return nil, fmt.Errorf("create farm: %w", err)
	}
	return &farm, nil
}

// ListFarms returns all farms.
func (s *Service) ListFarms(ctx context.Context) ([]models.Farm, error) {
	var farms []models.Farm
	if err := s.store.List(ctx, repository.Farms, nil, "name", &farms); err != nil {
		return nil, fmt.Errorf("list farms: %w", err)
	}
	return farms, nil
}

// DeleteFarm removes a farm document.
func (s *Service) DeleteFarm(ctx context.Context, id string) error {
	return s.store.Delete(ctx, repository.Farms, id)
}

// ShedInput creates a shed inside a farm.
type ShedInput struct {
	FarmID   string `json:"farm_id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// CreateShed registers a shed.
func (s *Service) CreateShed(ctx context.Context, in ShedInput) (*models.Shed, error) {
	switch {
	case in.FarmID == "":
		return nil, &ledger.ValidationError{Field: "farm_id", Message: "must not be empty"}
	case in.Name == "":
		return nil, &ledger.ValidationError{Field: "name", Message: "must not be empty"}
	case in.Capacity <= 0:
		return nil, &ledger.ValidationError{Field: "capacity", Message: "must be positive"}
	}
	shed := models.Shed{
		ID:        uuid.NewString(),
		FarmID:    in.FarmID,
		Name:      in.Name,
		Capacity:  in.Capacity,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Put(ctx, repository.Sheds, shed.ID, shed); err != nil {
		return nil, fmt.Errorf("create shed: %w", err)
	}
	return &shed, nil
}

// ListSheds returns sheds, optionally restricted to one farm.
func (s *Service) ListSheds(ctx context.Context, farmID string) ([]models.Shed, error) {
	var filter repository.Filter
	if farmID != "" {
		filter = repository.Filter{"farm_id": farmID}
	}
	var sheds []models.Shed
	if err := s.store.List(ctx, repository.Sheds, filter, "name", &sheds); err != nil {
		return nil, fmt.Errorf("list sheds: %w", err)
	}
	return sheds, nil
}

// DeleteShed removes a shed document.
func (s *Service) DeleteShed(ctx context.Context, id string) error {
	return s.store.Delete(ctx, repository.Sheds, id)
}

// ListSales returns sale records, newest first, optionally for one batch.
func (s *Service) ListSales(ctx context.Context, batchID string) ([]models.SaleRecord, error) {
	var filter repository.Filter
	if batchID != "" {
		filter = repository.Filter{"batch_id": batchID}
	}
	var sales []models.SaleRecord
	if err := s.store.List(ctx, repository.Sales, filter, "-date", &sales); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

// ListDailyLogs returns daily records, newest first, optionally for one batch.
func (s *Service) ListDailyLogs(ctx context.Context, batchID string) ([]models.DailyLogRecord, error) {
	var filter repository.Filter
	if batchID != "" {
		filter = repository.Filter{"batch_id": batchID}
	}
	var logs []models.DailyLogRecord
	if err := s.store.List(ctx, repository.DailyLogs, filter, "-date", &logs); err != nil {
		return nil, fmt.Errorf("list daily logs: %w", err)
	}
	return logs, nil
}

// ListExpenses returns expense records, newest first, optionally for one batch.
func (s *Service) ListExpenses(ctx context.Context, batchID string) ([]models.ExpenseRecord, error) {
	var filter repository.Filter
	if batchID != "" {
		filter = repository.Filter{"batch_id": batchID}
	}
	var expenses []models.ExpenseRecord
	if err := s.store.List(ctx, repository.Expenses, filter, "-date", &expenses); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// ListConsumptions returns consumption records, newest first, optionally for
// one batch.
func (s *Service) ListConsumptions(ctx context.Context, batchID string) ([]models.ConsumptionRecord, error) {
	var filter repository.Filter
	if batchID != "" {
		filter = repository.Filter{"batch_id": batchID}
	}
	var consumptions []models.ConsumptionRecord
	if err := s.store.List(ctx, repository.Consumptions, filter, "-date", &consumptions); err != nil {
		return nil, fmt.Errorf("list consumptions: %w", err)
	}
	return consumptions, nil
}
