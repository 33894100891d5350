package model

import "strings"

// ItemKind identifies which table a reservation's item_id points into.
type ItemKind string

const (
	KindRestaurantTable ItemKind = "restaurant_table"
	KindAccomUnit       ItemKind = "accom_unit"
)

// ParseItemKind maps a raw item kind onto ItemKind.  "accommodation_unit"
// is accepted as an alias of accom_unit.
func ParseItemKind(raw string) (ItemKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(KindRestaurantTable):
		return KindRestaurantTable, true
	case string(KindAccomUnit), "accommodation_unit":
		return KindAccomUnit, true
	}
	return "", false
}

// Label returns a human readable name for error messages.
func (k ItemKind) Label() string {
	switch k {
	case KindRestaurantTable:
		return "restaurant table"
	case KindAccomUnit:
		return "accommodation unit"
	}
	return string(k)
}

// ItemRef is the tagged reference a reservation holds to its item.
type ItemRef struct {
	Kind ItemKind
	ID   string
}

// TableRef builds a reference to a restaurant table.
func TableRef(id string) ItemRef { return ItemRef{Kind: KindRestaurantTable, ID: id} }

// UnitRef builds a reference to an accommodation unit.
func UnitRef(id string) ItemRef { return ItemRef{Kind: KindAccomUnit, ID: id} }

func (r ItemRef) String() string { return string(r.Kind) + ":" + r.ID }

// Bookable is implemented by every item kind a reservation can point at.
type Bookable interface {
	Ref() ItemRef
	// Capacity returns the static guest capacity and whether one is set.
	Capacity() (int, bool)
}
