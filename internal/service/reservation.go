package service

import (
	"context"

	"github.com/iliyamo/travel-booking/internal/model"
)

// Reservations is the reservation engine.  ReservationGeneric holds the
// core logic; the ReservationCaching, ReservationPublishing and
// ReservationLogging types in reservation_*.go wrap it.
type Reservations interface {
	Create(ctx context.Context, in CreateInput) (model.Reservation, error)
	Update(ctx context.Context, id string, in UpdateInput) (model.Reservation, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (model.ReservationDetail, error)
	List(ctx context.Context, f ListFilter) ([]model.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]model.Reservation, error)
	AvailableTables(ctx context.Context, q TableQuery) ([]model.RestaurantTable, error)
	ReconcileTables(ctx context.Context, restaurantID string, dryRun bool) ([]model.TableAvailabilityChange, error)
}

// CreateInput is a reservation request as submitted by a client.  Fields
// stay raw so that validation can tell a missing value from a malformed one.
type CreateInput struct {
	UserID          string  `json:"user_id"`
	ItemType        string  `json:"item_type"`
	ItemID          string  `json:"item_id"`
	StartDatetime   string  `json:"start_datetime"`
	EndDatetime     string  `json:"end_datetime"`
	GuestCount      *int    `json:"guest_count"`
	Status          string  `json:"status"`
	SpecialRequests *string `json:"special_requests"`
}

// UpdateInput is a partial update.  Nil fields are left untouched.
type UpdateInput struct {
	StartDatetime   *string `json:"start_datetime"`
	EndDatetime     *string `json:"end_datetime"`
	GuestCount      *int    `json:"guest_count"`
	Status          *string `json:"status"`
	SpecialRequests *string `json:"special_requests"`
}

// ListFilter holds the optional list filters in their raw query form.
type ListFilter struct {
	Status   string
	FromDate string
	ToDate   string
}

// TableQuery asks for tables of a restaurant free over [Start, End).
type TableQuery struct {
	RestaurantID string
	Start        string
	End          string
	GuestCount   int
}
