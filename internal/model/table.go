package model

// Place is a row of the `places` table.  Restaurants and accommodations
// both hang off a place.
type Place struct {
	ID       string  `json:"id"`       // places.id
	Name     string  `json:"name"`     // places.name
	Location *string `json:"location"` // places.location (nullable)
}

// Restaurant mirrors the `restaurants` table.
//
// Fields:
//
//	ID      – primary key.
//	PlaceID – owning place.
//	Name    – display name.
type Restaurant struct {
	ID      string `json:"id"`       // restaurants.id
	PlaceID string `json:"place_id"` // restaurants.place_id
	Name    string `json:"name"`     // restaurants.name
}

// RestaurantTable models a row in the `restaurant_tables` table.  The
// IsAvailable column is a denormalized flag kept in step with confirmed
// reservations; the reservations table remains the source of truth for
// conflicts.
//
// Fields:
//
//	ID              – primary key.
//	RestaurantID    – owning restaurant.
//	TableName       – label shown to guests (e.g. "T4").
//	SeatingCapacity – maximum guests; nil when not recorded.
//	IsAvailable     – derived availability flag.
//	DepositCents    – optional deposit amount in cents.
type RestaurantTable struct {
	ID              string `json:"id"`               // restaurant_tables.id
	RestaurantID    string `json:"restaurant_id"`    // restaurant_tables.restaurant_id
	TableName       string `json:"table_name"`       // restaurant_tables.table_name
	SeatingCapacity *int   `json:"seating_capacity"` // restaurant_tables.seating_capacity (nullable)
	IsAvailable     bool   `json:"is_available"`     // restaurant_tables.is_available
	DepositCents    *int64 `json:"deposit_cents"`    // restaurant_tables.deposit_cents (nullable)
}

func (t RestaurantTable) Ref() ItemRef { return TableRef(t.ID) }

func (t RestaurantTable) Capacity() (int, bool) {
	if t.SeatingCapacity == nil {
		return 0, false
	}
	return *t.SeatingCapacity, true
}

// TableAvailabilityChange describes one flag rewrite performed (or, in a
// dry run, proposed) by the reconciliation pass.
type TableAvailabilityChange struct {
	TableID      string `json:"table_id"`
	RestaurantID string `json:"restaurant_id"`
	From         bool   `json:"from"`
	To           bool   `json:"to"`
}
