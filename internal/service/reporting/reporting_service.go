// Package reporting folds the ledger's records into cash-flow and
// balance-sheet figures. It is a pure read-only aggregation: a full scan of
// sales, expenses and inventory is acceptable at this data scale, and no
// invariant is enforced here.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/RandySimanca/avicola/internal/domain/models"
	"github.com/RandySimanca/avicola/internal/repository"
)

// Service exposes the financial summary and dashboard KPIs.
type Service struct {
	store  repository.Store
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// GlobalSummary scans all sales, expenses, inventory items and batches and
// derives the financial picture. Sums run on decimals so long scans do not
// accumulate float drift.
func (s *Service) GlobalSummary(ctx context.Context) (*models.GlobalSummary, error) {
	var sales []models.SaleRecord
	if err := s.store.List(ctx, repository.Sales, nil, "", &sales); err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}

	totalIncome := decimal.Zero
	for _, sale := range sales {
		totalIncome = totalIncome.Add(decimal.NewFromFloat(sale.Total))
	}

	var expenses []models.ExpenseRecord
	if err := s.store.List(ctx, repository.Expenses, nil, "", &expenses); err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}

	operating := decimal.Zero
	investment := decimal.Zero
	consumption := decimal.Zero
	for _, expense := range expenses {
		amount := decimal.NewFromFloat(expense.Amount)
		switch expense.Category {
		case models.ExpenseOperating:
			operating = operating.Add(amount)
		case models.ExpenseInvestment:
			investment = investment.Add(amount)
		case models.ExpenseBatchConsumption:
			// Cost allocation only; it never leaves the cash box.
			consumption = consumption.Add(amount)
		default:
			s.logger.Debug("expense without category treated as operating", zap.String("id", expense.ID))
			operating = operating.Add(amount)
		}
	}

	var items []models.InventoryItem
	if err := s.store.List(ctx, repository.InventoryItems, nil, "", &items); err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	inventoryValue := decimal.Zero
	for _, item := range items {
		value := decimal.NewFromFloat(item.CurrentStock).Mul(decimal.NewFromFloat(item.UnitPrice))
		inventoryValue = inventoryValue.Add(value)
	}

	var batches []models.Batch
	if err := s.store.List(ctx, repository.Batches, nil, "", &batches); err != nil {
		return nil, fmt.Errorf("load batches: %w", err)
	}

	initialBirds := 0
	for _, batch := range batches {
		initialBirds += batch.InitialPopulation
	}

	outflow := operating.Add(investment)
	cash := totalIncome.Sub(outflow)
	netWorth := cash.Add(inventoryValue)
	profit := totalIncome.Sub(operating).Sub(consumption)

	margin := 0.0
	if totalIncome.IsPositive() {
		margin, _ = profit.Div(totalIncome).Mul(decimal.NewFromInt(100)).Float64()
	}

	summary := &models.GlobalSummary{
		GeneratedAt: time.Now().UTC(),
		CashFlow: models.CashFlow{
			TotalIncome:       totalIncome.InexactFloat64(),
			OperatingExpenses: operating.InexactFloat64(),
			Investment:        investment.InexactFloat64(),
			TotalOutflow:      outflow.InexactFloat64(),
			CashOnHand:        cash.InexactFloat64(),
		},
		Balance: models.BalanceSheet{
			Cash:           cash.InexactFloat64(),
			InventoryValue: inventoryValue.InexactFloat64(),
			NetWorth:       netWorth.InexactFloat64(),
		},
		Result: models.OperatingResult{
			OperatingProfit: profit.InexactFloat64(),
			OperatingMargin: margin,
			ConsumptionCost: consumption.InexactFloat64(),
		},
		TotalBatches: len(batches),
		InitialBirds: initialBirds,
	}
	return summary, nil
}

// GlobalKPIs computes the operational headline figures: live birds and
// active batch count from the batch collection, eggs collected today from
// the daily logs.
func (s *Service) GlobalKPIs(ctx context.Context) (*models.GlobalKPIs, error) {
	var batches []models.Batch
	if err := s.store.List(ctx, repository.Batches, repository.Filter{"active": true}, "", &batches); err != nil {
		return nil, fmt.Errorf("load active batches: %w", err)
	}

	liveBirds := 0
	for _, batch := range batches {
		liveBirds += batch.CurrentPopulation
	}

	var logs []models.DailyLogRecord
	if err := s.store.List(ctx, repository.DailyLogs, nil, "", &logs); err != nil {
		return nil, fmt.Errorf("load daily logs: %w", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	eggsToday := 0
	for _, log := range logs {
		if log.EggsTotal == nil {
			continue
		}
		if log.Date.UTC().Truncate(24 * time.Hour).Equal(today) {
			eggsToday += *log.EggsTotal
		}
	}

	return &models.GlobalKPIs{
		LiveBirds:     liveBirds,
		ActiveBatches: len(batches),
		EggsToday:     eggsToday,
	}, nil
}
