package models

import "time"

// CashFlow reflects actual money movement: income versus cash leaving the
// operation. Batch consumption expenses are cost allocations and do not
// appear here.
type CashFlow struct {
	TotalIncome       float64 `json:"total_income"`
	OperatingExpenses float64 `json:"operating_expenses"`
	Investment        float64 `json:"investment"`
	TotalOutflow      float64 `json:"total_outflow"`
	CashOnHand        float64 `json:"cash_on_hand"`
}

// BalanceSheet values what the operation holds.
type BalanceSheet struct {
	Cash           float64 `json:"cash"`
	InventoryValue float64 `json:"inventory_value"`
	NetWorth       float64 `json:"net_worth"`
}

// OperatingResult measures profitability including allocated consumption costs.
type OperatingResult struct {
	OperatingProfit float64 `json:"operating_profit"`
	OperatingMargin float64 `json:"operating_margin"`
	ConsumptionCost float64 `json:"consumption_cost"`
}

// GlobalSummary is the full financial picture derived by the reporting
// aggregator from a scan of sales, expenses and inventory.
type GlobalSummary struct {
	GeneratedAt  time.Time       `json:"generated_at"`
	CashFlow     CashFlow        `json:"cash_flow"`
	Balance      BalanceSheet    `json:"balance"`
	Result       OperatingResult `json:"result"`
	TotalBatches int             `json:"total_batches"`
	InitialBirds int             `json:"initial_birds"`
}

// GlobalKPIs are the operational headline figures for dashboards.
type GlobalKPIs struct {
	LiveBirds     int `json:"live_birds"`
	ActiveBatches int `json:"active_batches"`
	EggsToday     int `json:"eggs_today"`
}
