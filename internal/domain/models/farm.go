package models

import "time"

// Farm is a physical site hosting one or more sheds.
type Farm struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Location  string    `bson:"location,omitempty" json:"location,omitempty"`
	Owner     string    `bson:"owner,omitempty" json:"owner,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Shed is a housing unit inside a farm with a fixed bird capacity.
type Shed struct {
	ID        string    `bson:"_id" json:"id"`
	FarmID    string    `bson:"farm_id" json:"farm_id"`
	Name      string    `bson:"name" json:"name"`
	Capacity  int       `bson:"capacity" json:"capacity"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
