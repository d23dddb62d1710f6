package ledger

import (
	"time"

	"github.com/RandySimanca/avicola/internal/domain/models"
)

// Operation inputs. IDs are client-chosen (generated before the first
// attempt) so a replayed operation can be detected by the presence of its
// record, never double-applying population or stock deltas. The structs are
// JSON-serializable because the offline outbox persists them verbatim.

// DailyLogInput creates a daily production record.
type DailyLogInput struct {
	ID             string    `json:"id"`
	BatchID        string    `json:"batch_id"`
	Date           time.Time `json:"date"`
	Mortality      int       `json:"mortality"`
	FeedConsumedKg float64   `json:"feed_consumed_kg"`
	EggsTotal      *int      `json:"eggs_total,omitempty"`
	AvgWeightG     *float64  `json:"avg_weight_g,omitempty"`
	Notes          string    `json:"notes,omitempty"`
}

func (in *DailyLogInput) Validate() error {
	switch {
	case in.BatchID == "":
		return &ValidationError{Field: "batch_id", Message: "must not be empty"}
	case in.Date.IsZero():
		return &ValidationError{Field: "date", Message: "must be set"}
	case in.Mortality < 0:
		return &ValidationError{Field: "mortality", Message: "must not be negative"}
	case in.FeedConsumedKg < 0:
		return &ValidationError{Field: "feed_consumed_kg", Message: "must not be negative"}
	}
	return nil
}

// DailyLogUpdate edits an existing daily record. Nil fields keep the stored
// value.
type DailyLogUpdate struct {
	ID             string   `json:"id"`
	Mortality      *int     `json:"mortality,omitempty"`
	FeedConsumedKg *float64 `json:"feed_consumed_kg,omitempty"`
	EggsTotal      *int     `json:"eggs_total,omitempty"`
	AvgWeightG     *float64 `json:"avg_weight_g,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}

func (in *DailyLogUpdate) Validate() error {
	if in.ID == "" {
		return &ValidationError{Field: "id", Message: "must not be empty"}
	}
	if in.Mortality != nil && *in.Mortality < 0 {
		return &ValidationError{Field: "mortality", Message: "must not be negative"}
	}
	if in.FeedConsumedKg != nil && *in.FeedConsumedKg < 0 {
		return &ValidationError{Field: "feed_consumed_kg", Message: "must not be negative"}
	}
	return nil
}

// SaleInput creates a sale record.
type SaleInput struct {
	ID            string    `json:"id"`
	BatchID       string    `json:"batch_id"`
	Date          time.Time `json:"date"`
	Quantity      int       `json:"quantity"`
	UnitPrice     float64   `json:"unit_price"`
	Customer      string    `json:"customer,omitempty"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	DownPayment   float64   `json:"down_payment,omitempty"`
}

func (in *SaleInput) Validate() error {
	switch {
	case in.BatchID == "":
		return &ValidationError{Field: "batch_id", Message: "must not be empty"}
	case in.Quantity <= 0:
		return &ValidationError{Field: "quantity", Message: "must be positive"}
	case in.UnitPrice < 0:
		return &ValidationError{Field: "unit_price", Message: "must not be negative"}
	case in.DownPayment < 0:
		return &ValidationError{Field: "down_payment", Message: "must not be negative"}
	}
	return nil
}

// SaleUpdate edits an existing sale. Nil fields keep the stored value; the
// population delta of the old quantity is reverted before the new quantity is
// validated and applied.
type SaleUpdate struct {
	ID            string   `json:"id"`
	Quantity      *int     `json:"quantity,omitempty"`
	UnitPrice     *float64 `json:"unit_price,omitempty"`
	Customer      *string  `json:"customer,omitempty"`
	PaymentMethod *string  `json:"payment_method,omitempty"`
	DownPayment   *float64 `json:"down_payment,omitempty"`
}

func (in *SaleUpdate) Validate() error {
	if in.ID == "" {
		return &ValidationError{Field: "id", Message: "must not be empty"}
	}
	if in.Quantity != nil && *in.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be positive"}
	}
	if in.UnitPrice != nil && *in.UnitPrice < 0 {
		return &ValidationError{Field: "unit_price", Message: "must not be negative"}
	}
	return nil
}

// ConsumptionInput registers a batch consuming stocked supplies.
type ConsumptionInput struct {
	ID      string    `json:"id"`
	BatchID string    `json:"batch_id"`
	ItemID  string    `json:"item_id"`
	Date    time.Time `json:"date"`
	// Quantity is expressed in the item's unit.
	Quantity float64 `json:"quantity"`
	// ExpenseID names the derived expense record so retries reuse the same id.
	ExpenseID string `json:"expense_id,omitempty"`
}

func (in *ConsumptionInput) Validate() error {
	switch {
	case in.BatchID == "":
		return &ValidationError{Field: "batch_id", Message: "must not be empty"}
	case in.ItemID == "":
		return &ValidationError{Field: "item_id", Message: "must not be empty"}
	case in.Quantity <= 0:
		return &ValidationError{Field: "quantity", Message: "must be positive"}
	}
	return nil
}

// ExpenseInput records an expense. Investment expenses referencing an
// inventory item restock it and overwrite its unit price.
type ExpenseInput struct {
	ID        string                 `json:"id"`
	Concept   string                 `json:"concept"`
	Category  models.ExpenseCategory `json:"category"`
	Date      time.Time              `json:"date"`
	Amount    float64                `json:"amount"`
	Quantity  float64                `json:"quantity,omitempty"`
	UnitPrice float64                `json:"unit_price,omitempty"`
	BatchID   string                 `json:"batch_id,omitempty"`
	ItemID    string                 `json:"item_id,omitempty"`
}

func (in *ExpenseInput) Validate() error {
	switch {
	case in.Concept == "":
		return &ValidationError{Field: "concept", Message: "must not be empty"}
	case in.Amount <= 0:
		return &ValidationError{Field: "amount", Message: "must be positive"}
	}
	switch in.Category {
	case models.ExpenseOperating, models.ExpenseInvestment:
	case models.ExpenseBatchConsumption:
		return &ValidationError{Field: "category", Message: "batch consumption expenses are derived, not recorded directly"}
	default:
		return &ValidationError{Field: "category", Message: "unknown category"}
	}
	if in.Category == models.ExpenseInvestment && in.ItemID != "" {
		if in.Quantity <= 0 {
			return &ValidationError{Field: "quantity", Message: "must be positive for an inventory purchase"}
		}
		if in.UnitPrice <= 0 {
			return &ValidationError{Field: "unit_price", Message: "must be positive for an inventory purchase"}
		}
	}
	return nil
}
