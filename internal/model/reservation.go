package model

import (
	"strings"
	"time"
)

// ReservationStatus is the lifecycle state stored in reservations.status.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
	StatusNoShow    ReservationStatus = "no_show"
)

// Statuses lists every recognised status in declaration order.
var Statuses = []ReservationStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow}

// NonBlockingStatuses are the statuses that do not hold an item.  Every
// other status counts towards conflict detection.
var NonBlockingStatuses = []ReservationStatus{StatusCancelled, StatusNoShow}

// ParseStatus maps a raw status string onto a ReservationStatus.  The
// comparison is case-insensitive and ignores surrounding whitespace.
func ParseStatus(raw string) (ReservationStatus, bool) {
	s := ReservationStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Statuses {
		if s == known {
			return s, true
		}
	}
	return "", false
}

// Blocking reports whether a reservation in this status occupies its item.
func (s ReservationStatus) Blocking() bool {
	for _, nb := range NonBlockingStatuses {
		if s == nb {
			return false
		}
	}
	return true
}

// Reservation is a row of the `reservations` table.  It books a single
// item (restaurant table or accommodation unit) for the half-open
// interval [StartDatetime, EndDatetime).
//
// Fields:
//
//	ID              – opaque identifier (UUID string).
//	Item            – item kind and id; polymorphic, no cross-kind foreign key.
//	UserID          – requesting user.
//	StartDatetime   – inclusive start of the booking.
//	EndDatetime     – exclusive end of the booking.
//	GuestCount      – number of guests, always positive.
//	Status          – lifecycle state.
//	SpecialRequests – optional free text.
//	CreatedAt       – immutable creation timestamp.
type Reservation struct {
	ID              string            `json:"id"`               // reservations.id
	Item            ItemRef           `json:"-"`                // reservations.item_type + reservations.item_id
	ItemType        ItemKind          `json:"item_type"`        // mirrors Item.Kind for JSON
	ItemID          string            `json:"item_id"`          // mirrors Item.ID for JSON
	UserID          string            `json:"user_id"`          // reservations.user_id
	StartDatetime   time.Time         `json:"start_datetime"`   // reservations.start_datetime
	EndDatetime     time.Time         `json:"end_datetime"`     // reservations.end_datetime
	GuestCount      int               `json:"guest_count"`      // reservations.guest_count
	Status          ReservationStatus `json:"status"`           // reservations.status
	SpecialRequests *string           `json:"special_requests"` // reservations.special_requests (nullable)
	CreatedAt       time.Time         `json:"created_at"`       // reservations.created_at
}

// SetItem assigns the item reference and keeps the JSON mirror fields in
// sync with it.
func (r *Reservation) SetItem(ref ItemRef) {
	r.Item = ref
	r.ItemType = ref.Kind
	r.ItemID = ref.ID
}

// Interval returns the booked time range.
func (r Reservation) Interval() Interval {
	return Interval{Start: r.StartDatetime, End: r.EndDatetime}
}

// IsConfirmedTableBooking reports whether the reservation is a confirmed
// restaurant table booking, the only kind that drives the table flag.
func (r Reservation) IsConfirmedTableBooking() bool {
	return r.Item.Kind == KindRestaurantTable && r.Status == StatusConfirmed
}
