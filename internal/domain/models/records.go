package models

import "time"

// ExpenseCategory classifies how an expense affects the books.
type ExpenseCategory string

const (
	// ExpenseOperating covers payroll, utilities, rent and similar cash outflows.
	ExpenseOperating ExpenseCategory = "OPERATING"
	// ExpenseInvestment is a supply purchase that lands in inventory stock.
	ExpenseInvestment ExpenseCategory = "INVESTMENT"
	// ExpenseBatchConsumption is derived automatically when a batch consumes
	// stocked supplies. It is a cost allocation, not a cash outflow.
	ExpenseBatchConsumption ExpenseCategory = "BATCH_CONSUMPTION"
)

// DailyLogRecord captures one day of production data for a batch. A positive
// mortality count carries a population side-effect on the referenced batch.
type DailyLogRecord struct {
	ID             string     `bson:"_id" json:"id"`
	BatchID        string     `bson:"batch_id" json:"batch_id"`
	Date           time.Time  `bson:"date" json:"date"`
	Mortality      int        `bson:"mortality" json:"mortality"`
	FeedConsumedKg float64    `bson:"feed_consumed_kg" json:"feed_consumed_kg"`
	EggsTotal      *int       `bson:"eggs_total,omitempty" json:"eggs_total,omitempty"`
	AvgWeightG     *float64   `bson:"avg_weight_g,omitempty" json:"avg_weight_g,omitempty"`
	Notes          string     `bson:"notes,omitempty" json:"notes,omitempty"`
	RecordedBy     string     `bson:"recorded_by,omitempty" json:"recorded_by,omitempty"`
	ModifiedBy     string     `bson:"modified_by,omitempty" json:"modified_by,omitempty"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	ModifiedAt     *time.Time `bson:"modified_at,omitempty" json:"modified_at,omitempty"`
}

// SaleRecord captures a bird sale. Creating one decrements the batch
// population; deleting one restores it.
type SaleRecord struct {
	ID            string    `bson:"_id" json:"id"`
	BatchID       string    `bson:"batch_id" json:"batch_id"`
	Date          time.Time `bson:"date" json:"date"`
	Quantity      int       `bson:"quantity" json:"quantity"`
	UnitPrice     float64   `bson:"unit_price" json:"unit_price"`
	Total         float64   `bson:"total" json:"total"`
	Customer      string    `bson:"customer,omitempty" json:"customer,omitempty"`
	PaymentMethod string    `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	DownPayment   float64   `bson:"down_payment" json:"down_payment"`
	RecordedBy    string    `bson:"recorded_by,omitempty" json:"recorded_by,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

// ConsumptionRecord captures a batch consuming stocked supplies. UnitPrice is
// a snapshot of the item price at consumption time; the derived expense uses it.
type ConsumptionRecord struct {
	ID        string    `bson:"_id" json:"id"`
	BatchID   string    `bson:"batch_id" json:"batch_id"`
	ItemID    string    `bson:"item_id" json:"item_id"`
	Date      time.Time `bson:"date" json:"date"`
	Quantity  float64   `bson:"quantity" json:"quantity"`
	UnitPrice float64   `bson:"unit_price" json:"unit_price"`
	TotalCost float64   `bson:"total_cost" json:"total_cost"`
	AppliedBy string    `bson:"applied_by,omitempty" json:"applied_by,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// ExpenseRecord is a ledger entry for money (or allocated cost) leaving the
// operation. Investment expenses referencing an inventory item additionally
// credit that item's stock.
type ExpenseRecord struct {
	ID         string          `bson:"_id" json:"id"`
	Concept    string          `bson:"concept" json:"concept"`
	Category   ExpenseCategory `bson:"category" json:"category"`
	Date       time.Time       `bson:"date" json:"date"`
	Amount     float64         `bson:"amount" json:"amount"`
	Quantity   float64         `bson:"quantity,omitempty" json:"quantity,omitempty"`
	UnitPrice  float64         `bson:"unit_price,omitempty" json:"unit_price,omitempty"`
	BatchID    string          `bson:"batch_id,omitempty" json:"batch_id,omitempty"`
	ItemID     string          `bson:"item_id,omitempty" json:"item_id,omitempty"`
	RecordedBy string          `bson:"recorded_by,omitempty" json:"recorded_by,omitempty"`
	CreatedAt  time.Time       `bson:"created_at" json:"created_at"`
}
