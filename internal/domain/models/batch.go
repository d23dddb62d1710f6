package models

import "time"

// BirdType distinguishes meat batches from egg-laying batches.
type BirdType string

const (
	BirdBroiler BirdType = "BROILER"
	BirdLayer   BirdType = "LAYER"
)

// Batch is a cohort of birds managed as a unit with its own population count.
// CurrentPopulation always equals InitialPopulation minus accumulated
// mortality and sold birds, and Active tracks whether it is above zero.
type Batch struct {
	ID                string     `bson:"_id" json:"id"`
	Name              string     `bson:"name" json:"name"`
	BirdType          BirdType   `bson:"bird_type" json:"bird_type"`
	FarmID            string     `bson:"farm_id" json:"farm_id"`
	ShedID            string     `bson:"shed_id" json:"shed_id"`
	EntryDate         time.Time  `bson:"entry_date" json:"entry_date"`
	InitialPopulation int        `bson:"initial_population" json:"initial_population"`
	CurrentPopulation int        `bson:"current_population" json:"current_population"`
	PurchaseUnitPrice float64    `bson:"purchase_unit_price" json:"purchase_unit_price"`
	Active            bool       `bson:"active" json:"active"`
	FinalizationDate  *time.Time `bson:"finalization_date,omitempty" json:"finalization_date,omitempty"`
	CreatedAt         time.Time  `bson:"created_at" json:"created_at"`
}

// Finalize marks the batch as exhausted.
func (b *Batch) Finalize(at time.Time) {
	b.Active = false
	b.FinalizationDate = &at
}

// Reactivate restores a finalized batch once its population is positive again,
// for example after a sale or mortality record is deleted.
func (b *Batch) Reactivate() {
	b.Active = true
	b.FinalizationDate = nil
}
