package model

// Accommodation mirrors the `accommodations` table (a hotel, hostel or
// rental owned by a place).
type Accommodation struct {
	ID      string `json:"id"`       // accommodations.id
	PlaceID string `json:"place_id"` // accommodations.place_id
	Name    string `json:"name"`     // accommodations.name
}

// AccomUnit models a bookable unit (room, suite, cabin) of an
// accommodation.  Unlike restaurant tables its is_available column is
// informational only and never gates bookings.
type AccomUnit struct {
	ID              string `json:"id"`               // accom_units.id
	AccommodationID string `json:"accommodation_id"` // accom_units.accommodation_id
	Name            string `json:"name"`             // accom_units.name
	MaxOccupancy    *int   `json:"max_occupancy"`    // accom_units.max_occupancy (nullable)
	IsAvailable     bool   `json:"is_available"`     // accom_units.is_available
	UnitPriceCents  *int64 `json:"unit_price_cents"` // accom_units.unit_price_cents (nullable)
}

func (u AccomUnit) Ref() ItemRef { return UnitRef(u.ID) }

func (u AccomUnit) Capacity() (int, bool) {
	if u.MaxOccupancy == nil {
		return 0, false
	}
	return *u.MaxOccupancy, true
}
