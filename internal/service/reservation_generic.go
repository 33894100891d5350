package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// ReservationGeneric implements Reservations on top of a repository.Store.
// Writes run in one transaction: the item row is locked, the overlap
// query runs, the reservation is written and the table flag is updated,
// so a failure at any step leaves no partial state behind.
//
// Inside a write transaction every row lock is taken before the first
// plain read.  Under MySQL REPEATABLE READ the first plain read fixes the
// snapshot, and an overlap query reading a snapshot older than the item
// lock would miss bookings committed while waiting for it.
type ReservationGeneric struct {
	Store repository.Store
	Now   func() time.Time
	NewID func() string
}

// NewReservationGeneric wires the engine with the wall clock and UUIDv4 ids.
func NewReservationGeneric(store repository.Store) *ReservationGeneric {
	return &ReservationGeneric{Store: store, Now: time.Now, NewID: uuid.NewString}
}

func (rg *ReservationGeneric) now() time.Time {
	if rg.Now != nil {
		return rg.Now().UTC()
	}
	return time.Now().UTC()
}

func (rg *ReservationGeneric) newID() string {
	if rg.NewID != nil {
		return rg.NewID()
	}
	return uuid.NewString()
}

func (rg *ReservationGeneric) Create(ctx context.Context, in CreateInput) (model.Reservation, error) {
	v := Validator{Store: rg.Store, Now: rg.now}
	res, _, err := v.ValidateCreate(ctx, in)
	if err != nil {
		return model.Reservation{}, err
	}
	if res.Status == "" {
		res.Status = model.StatusPending
	}
	res.ID = rg.newID()
	res.CreatedAt = rg.now()

	err = rg.Store.WithTx(ctx, func(s repository.Store) error {
		if err := lockItem(ctx, s, res.Item); err != nil {
			return err
		}
		if err := CheckAvailability(ctx, s, res.Item, res.Interval(), ""); err != nil {
			return err
		}
		if err := s.Reservations().Insert(ctx, res); err != nil {
			return writeError("create reservation", res.Item, err)
		}
		if res.IsConfirmedTableBooking() {
			return setTableAvailable(ctx, s, res.Item.ID, false)
		}
		return nil
	})
	if err != nil {
		return model.Reservation{}, internal("create reservation", err)
	}
	return res, nil
}

func (rg *ReservationGeneric) Update(ctx context.Context, id string, in UpdateInput) (model.Reservation, error) {
	var updated model.Reservation
	err := rg.Store.WithTx(ctx, func(s repository.Store) error {
		current, err := lockReservation(ctx, s, id)
		if err != nil {
			return err
		}
		if err := lockItem(ctx, s, current.Item); err != nil && !IsKind(err, KindNotFound) {
			return err
		}

		v := Validator{Store: s, Now: rg.now}
		next, datesTouched, err := v.ValidateUpdate(ctx, current, in)
		if err != nil {
			return err
		}

		// Re-check on new dates, and when a released reservation becomes
		// blocking again.  A confirmed table booking holds the table flag
		// itself, so the flag gate is skipped for it.
		reactivated := !current.Status.Blocking() && next.Status.Blocking()
		if next.Status.Blocking() && (datesTouched || reactivated) {
			gate := !current.IsConfirmedTableBooking()
			if err := checkAvailability(ctx, s, current.Item, next.Interval(), current.ID, gate); err != nil {
				return err
			}
		}

		if err := s.Reservations().Update(ctx, next); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound(CodeReservationNotFound, "reservation with ID %s not found", id)
			}
			return writeError("update reservation", current.Item, err)
		}

		if current.Item.Kind == model.KindRestaurantTable && in.Status != nil && next.Status != current.Status {
			switch {
			case next.Status == model.StatusConfirmed:
				if err := setTableAvailable(ctx, s, current.Item.ID, false); err != nil {
					return err
				}
			case next.Status == model.StatusCancelled && current.Status == model.StatusConfirmed:
				if err := setTableAvailable(ctx, s, current.Item.ID, true); err != nil {
					return err
				}
			}
		}
		updated = next
		return nil
	})
	if err != nil {
		return model.Reservation{}, internal("update reservation", err)
	}
	return updated, nil
}

func (rg *ReservationGeneric) Delete(ctx context.Context, id string) error {
	err := rg.Store.WithTx(ctx, func(s repository.Store) error {
		current, err := lockReservation(ctx, s, id)
		if err != nil {
			return err
		}
		if err := s.Reservations().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound(CodeReservationNotFound, "reservation with ID %s not found", id)
			}
			return internal("delete reservation", err)
		}
		if current.IsConfirmedTableBooking() {
			err := setTableAvailable(ctx, s, current.Item.ID, true)
			if IsKind(err, KindNotFound) {
				return nil
			}
			return err
		}
		return nil
	})
	return internal("delete reservation", err)
}

func (rg *ReservationGeneric) Get(ctx context.Context, id string) (model.ReservationDetail, error) {
	res, err := getReservation(ctx, rg.Store, id)
	if err != nil {
		return model.ReservationDetail{}, err
	}
	d := model.ReservationDetail{Reservation: res}

	u, err := rg.Store.Users().Get(ctx, res.UserID)
	switch {
	case err == nil:
		d.User = &model.UserSummary{ID: u.ID, Email: u.Email, FullName: u.FullName}
	case !errors.Is(err, repository.ErrNotFound):
		return model.ReservationDetail{}, internal("fetch reservation", err)
	}

	switch res.Item.Kind {
	case model.KindRestaurantTable:
		t, err := rg.Store.Tables().GetDetail(ctx, res.Item.ID)
		switch {
		case err == nil:
			d.Table = &t
		case !errors.Is(err, repository.ErrNotFound):
			return model.ReservationDetail{}, internal("fetch reservation", err)
		}
	case model.KindAccomUnit:
		un, err := rg.Store.Units().GetDetail(ctx, res.Item.ID)
		switch {
		case err == nil:
			d.Unit = &un
		case !errors.Is(err, repository.ErrNotFound):
			return model.ReservationDetail{}, internal("fetch reservation", err)
		}
	}
	return d, nil
}

func (rg *ReservationGeneric) List(ctx context.Context, f ListFilter) ([]model.Reservation, error) {
	var filter repository.ReservationFilter
	if strings.TrimSpace(f.Status) != "" {
		s, ok := model.ParseStatus(f.Status)
		if !ok {
			return nil, Invalid(CodeInvalidStatus, "invalid status: %s", f.Status)
		}
		filter.Status = &s
	}
	if strings.TrimSpace(f.FromDate) != "" {
		t, ok := ParseTimestamp(f.FromDate)
		if !ok {
			return nil, Invalid(CodeInvalidDateFormat, "invalid from_date")
		}
		filter.From = &t
	}
	if strings.TrimSpace(f.ToDate) != "" {
		t, ok := ParseTimestamp(f.ToDate)
		if !ok {
			return nil, Invalid(CodeInvalidDateFormat, "invalid to_date")
		}
		filter.To = &t
	}
	out, err := rg.Store.Reservations().List(ctx, filter)
	if err != nil {
		return nil, internal("fetch reservations", err)
	}
	return out, nil
}

func (rg *ReservationGeneric) ListByUser(ctx context.Context, userID string) ([]model.Reservation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, Invalid(CodeMissingField, "missing required field: user_id")
	}
	if _, err := rg.Store.Users().Get(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(CodeUserNotFound, "user with ID %s not found", userID)
		}
		return nil, internal("fetch user reservations", err)
	}
	out, err := rg.Store.Reservations().ListByUser(ctx, userID)
	if err != nil {
		return nil, internal("fetch user reservations", err)
	}
	return out, nil
}

// AvailableTables returns the restaurant's flagged-available tables that
// seat the party and have no blocking reservation overlapping the
// window, smallest sufficient table first.
func (rg *ReservationGeneric) AvailableTables(ctx context.Context, q TableQuery) ([]model.RestaurantTable, error) {
	if strings.TrimSpace(q.RestaurantID) == "" {
		return nil, Invalid(CodeMissingField, "missing required field: restaurant_id")
	}
	start, okStart := ParseTimestamp(q.Start)
	end, okEnd := ParseTimestamp(q.End)
	if !okStart || !okEnd {
		return nil, Invalid(CodeInvalidDateFormat, "invalid date format")
	}
	iv := model.Interval{Start: start, End: end}
	if !iv.Valid() {
		return nil, Invalid(CodeInvalidDateRange, "start date must be before end date")
	}
	if q.GuestCount <= 0 {
		return nil, Invalid(CodeInvalidGuestCount, "guest_count must be positive")
	}

	tables, err := rg.Store.Tables().ListBookable(ctx, q.RestaurantID, q.GuestCount)
	if err != nil {
		return nil, internal("fetch available tables", err)
	}
	blocked, err := rg.Store.Reservations().BlockedTableIDs(ctx, q.RestaurantID, iv)
	if err != nil {
		return nil, internal("fetch available tables", err)
	}

	out := make([]model.RestaurantTable, 0, len(tables))
	for _, t := range tables {
		if blocked[t.ID] {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, _ := out[i].Capacity()
		cj, _ := out[j].Capacity()
		if ci != cj {
			return ci < cj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ReconcileTables rebuilds is_available from the reservations table: a
// table is available unless a confirmed reservation on it ends after
// now.  With dryRun the differences are reported but not written.
func (rg *ReservationGeneric) ReconcileTables(ctx context.Context, restaurantID string, dryRun bool) ([]model.TableAvailabilityChange, error) {
	changes := make([]model.TableAvailabilityChange, 0)
	run := func(s repository.Store) error {
		tables, err := s.Tables().ListByRestaurant(ctx, restaurantID)
		if err != nil {
			return err
		}
		held, err := s.Reservations().ConfirmedTableIDs(ctx, restaurantID, rg.now())
		if err != nil {
			return err
		}
		for _, t := range tables {
			want := !held[t.ID]
			if t.IsAvailable == want {
				continue
			}
			if !dryRun {
				if err := s.Tables().SetAvailable(ctx, t.ID, want); err != nil {
					return err
				}
			}
			changes = append(changes, model.TableAvailabilityChange{
				TableID: t.ID, RestaurantID: t.RestaurantID, From: t.IsAvailable, To: want,
			})
		}
		return nil
	}

	var err error
	if dryRun {
		err = run(rg.Store)
	} else {
		err = rg.Store.WithTx(ctx, run)
	}
	if err != nil {
		return nil, internal("reconcile table availability", err)
	}
	return changes, nil
}

func getReservation(ctx context.Context, s repository.Store, id string) (model.Reservation, error) {
	if strings.TrimSpace(id) == "" {
		return model.Reservation{}, Invalid(CodeMissingField, "missing required field: id")
	}
	res, err := s.Reservations().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Reservation{}, notFound(CodeReservationNotFound, "reservation with ID %s not found", id)
		}
		return model.Reservation{}, internal("fetch reservation", err)
	}
	return res, nil
}

func lockReservation(ctx context.Context, s repository.Store, id string) (model.Reservation, error) {
	if strings.TrimSpace(id) == "" {
		return model.Reservation{}, Invalid(CodeMissingField, "missing required field: id")
	}
	res, err := s.Reservations().GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Reservation{}, notFound(CodeReservationNotFound, "reservation with ID %s not found", id)
		}
		return model.Reservation{}, internal("lock reservation", err)
	}
	return res, nil
}

func lockItem(ctx context.Context, s repository.Store, ref model.ItemRef) error {
	var err error
	switch ref.Kind {
	case model.KindRestaurantTable:
		err = s.Tables().Lock(ctx, ref.ID)
	case model.KindAccomUnit:
		err = s.Units().Lock(ctx, ref.ID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(CodeItemNotFound, "%s with ID %s not found", ref.Kind.Label(), ref.ID)
		}
		return internal("lock "+ref.Kind.Label(), err)
	}
	return nil
}

func setTableAvailable(ctx context.Context, s repository.Store, tableID string, available bool) error {
	if err := s.Tables().SetAvailable(ctx, tableID, available); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(CodeItemNotFound, "restaurant table with ID %s not found", tableID)
		}
		return internal("update table availability", err)
	}
	return nil
}

// writeError maps a storage-level double booking onto ITEM_ALREADY_RESERVED.
func writeError(op string, ref model.ItemRef, err error) error {
	if errors.Is(err, repository.ErrConflict) {
		return &Error{
			Kind:    KindConflict,
			Code:    CodeItemAlreadyReserved,
			Message: ref.Kind.Label() + " is already reserved for the requested time period",
			Err:     err,
		}
	}
	return internal(op, err)
}
