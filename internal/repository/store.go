package repository

import (
	"context"
	"time"

	"github.com/iliyamo/travel-booking/internal/model"
)

// ReservationFilter narrows List.  Nil fields are not applied.
type ReservationFilter struct {
	Status *model.ReservationStatus
	From   *time.Time // start_datetime >= From
	To     *time.Time // end_datetime <= To
}

// ReservationRepository reads and writes the reservations table.
type ReservationRepository interface {
	// Get returns ErrNotFound when the id is unknown.
	Get(ctx context.Context, id string) (model.Reservation, error)
	// GetForUpdate is Get with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, id string) (model.Reservation, error)
	Insert(ctx context.Context, r model.Reservation) error
	// Update rewrites the mutable columns of an existing reservation.
	Update(ctx context.Context, r model.Reservation) error
	Delete(ctx context.Context, id string) error
	// ListOverlapping returns blocking reservations of the item whose
	// interval overlaps iv.  excludeID, when non-empty, is skipped.
	ListOverlapping(ctx context.Context, ref model.ItemRef, iv model.Interval, excludeID string) ([]model.Reservation, error)
	// List returns reservations matching f, newest first.
	List(ctx context.Context, f ReservationFilter) ([]model.Reservation, error)
	// ListByUser returns the user's reservations by ascending start.
	ListByUser(ctx context.Context, userID string) ([]model.Reservation, error)
	// BlockedTableIDs returns the ids of the restaurant's tables holding a
	// blocking reservation that overlaps iv.
	BlockedTableIDs(ctx context.Context, restaurantID string, iv model.Interval) (map[string]bool, error)
	// ConfirmedTableIDs returns ids of tables with a confirmed reservation
	// ending after now.  An empty restaurantID means every restaurant.
	ConfirmedTableIDs(ctx context.Context, restaurantID string, now time.Time) (map[string]bool, error)
}

// TableRepository reads and writes restaurant_tables.
type TableRepository interface {
	Get(ctx context.Context, id string) (model.RestaurantTable, error)
	// Lock takes a row lock on the table for the rest of the transaction.
	Lock(ctx context.Context, id string) error
	SetAvailable(ctx context.Context, id string, available bool) error
	// ListBookable returns the restaurant's tables flagged available with
	// capacity of at least minCapacity, by ascending capacity then id.
	ListBookable(ctx context.Context, restaurantID string, minCapacity int) ([]model.RestaurantTable, error)
	// ListByRestaurant returns every table of the restaurant, or of all
	// restaurants when restaurantID is empty.
	ListByRestaurant(ctx context.Context, restaurantID string) ([]model.RestaurantTable, error)
	GetDetail(ctx context.Context, id string) (model.TableDetail, error)
}

// UnitRepository reads accom_units.
type UnitRepository interface {
	Get(ctx context.Context, id string) (model.AccomUnit, error)
	Lock(ctx context.Context, id string) error
	GetDetail(ctx context.Context, id string) (model.UnitDetail, error)
}

// UserRepository reads users.
type UserRepository interface {
	Get(ctx context.Context, id string) (model.User, error)
}

// Store groups the repositories behind one handle.  WithTx runs fn with
// a Store whose repositories share a single database transaction;
// calling WithTx on a transactional Store reuses the open transaction.
type Store interface {
	Reservations() ReservationRepository
	Tables() TableRepository
	Units() UnitRepository
	Users() UserRepository
	WithTx(ctx context.Context, fn func(Store) error) error
}
