package model

// UserSummary is the public slice of a user embedded in reservation details.
type UserSummary struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
}

// TableDetail is a restaurant table with its restaurant and place.
type TableDetail struct {
	RestaurantTable
	Restaurant Restaurant `json:"restaurant"`
	Place      Place      `json:"place"`
}

// UnitDetail is an accommodation unit with its accommodation and place.
type UnitDetail struct {
	AccomUnit
	Accommodation Accommodation `json:"accommodation"`
	Place         Place         `json:"place"`
}

// ReservationDetail is the enriched view returned by the get-by-id path.
// Exactly one of Table and Unit is set, matching the reservation's item
// kind.  Either may also be nil when the referenced row has since been
// removed, since item references carry no foreign key.
type ReservationDetail struct {
	Reservation
	User  *UserSummary `json:"user"`
	Table *TableDetail `json:"restaurant_table,omitempty"`
	Unit  *UnitDetail  `json:"accom_unit,omitempty"`
}
