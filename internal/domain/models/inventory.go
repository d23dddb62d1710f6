package models

import "time"

// ItemType classifies inventory items.
type ItemType string

const (
	ItemFeed         ItemType = "FEED"
	ItemMedicine     ItemType = "MEDICINE"
	ItemVaccine      ItemType = "VACCINE"
	ItemDisinfectant ItemType = "DISINFECTANT"
	ItemOther        ItemType = "OTHER"
)

// InventoryItem is a stocked supply (feed, medicine, vaccine, ...).
// UnitPrice follows a last-purchase-price policy: every investment purchase
// overwrites it rather than averaging.
type InventoryItem struct {
	ID           string    `bson:"_id" json:"id"`
	ProductName  string    `bson:"product_name" json:"product_name"`
	Type         ItemType  `bson:"type" json:"type"`
	CurrentStock float64   `bson:"current_stock" json:"current_stock"`
	MinStock     float64   `bson:"min_stock" json:"min_stock"`
	Unit         string    `bson:"unit" json:"unit"`
	UnitPrice    float64   `bson:"unit_price" json:"unit_price"`
	Supplier     string    `bson:"supplier,omitempty" json:"supplier,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
