package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// Validator rejects malformed or unsatisfiable reservation requests
// before conflict detection runs.  It only reads from the store.
type Validator struct {
	Store repository.Store
	Now   func() time.Time
}

// ValidateCreate checks a create request and returns the candidate
// reservation (without id, created_at or default status) together with
// the referenced item.  Checks run in a fixed order and the first
// failure wins.
func (v Validator) ValidateCreate(ctx context.Context, in CreateInput) (model.Reservation, model.Bookable, error) {
	required := []struct {
		name    string
		present bool
	}{
		{"user_id", strings.TrimSpace(in.UserID) != ""},
		{"item_type", strings.TrimSpace(in.ItemType) != ""},
		{"item_id", strings.TrimSpace(in.ItemID) != ""},
		{"start_datetime", strings.TrimSpace(in.StartDatetime) != ""},
		{"end_datetime", strings.TrimSpace(in.EndDatetime) != ""},
		{"guest_count", in.GuestCount != nil && *in.GuestCount != 0},
	}
	for _, f := range required {
		if !f.present {
			return model.Reservation{}, nil, Invalid(CodeMissingField, "missing required field: %s", f.name)
		}
	}

	kind, ok := model.ParseItemKind(in.ItemType)
	if !ok {
		return model.Reservation{}, nil, Invalid(CodeInvalidItemKind,
			"invalid item_type: %s. Must be 'restaurant_table' or 'accom_unit'", in.ItemType)
	}

	start, okStart := ParseTimestamp(in.StartDatetime)
	end, okEnd := ParseTimestamp(in.EndDatetime)
	if !okStart || !okEnd {
		return model.Reservation{}, nil, Invalid(CodeInvalidDateFormat, "invalid date format")
	}
	if !start.Before(end) {
		return model.Reservation{}, nil, Invalid(CodeInvalidDateRange, "start date must be before end date")
	}
	if start.Before(v.now()) {
		return model.Reservation{}, nil, Invalid(CodePastDate, "cannot create reservations in the past")
	}

	guests := *in.GuestCount
	if guests < 0 {
		return model.Reservation{}, nil, Invalid(CodeInvalidGuestCount, "guest_count must be positive")
	}

	ref := model.ItemRef{Kind: kind, ID: strings.TrimSpace(in.ItemID)}
	item, err := LookupItem(ctx, v.Store, ref)
	if err != nil {
		return model.Reservation{}, nil, err
	}

	userID := strings.TrimSpace(in.UserID)
	if _, err := v.Store.Users().Get(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Reservation{}, nil, notFound(CodeUserNotFound, "user with ID %s not found", userID)
		}
		return model.Reservation{}, nil, internal("look up user", err)
	}

	if err := checkCapacity(item, guests); err != nil {
		return model.Reservation{}, nil, err
	}

	var status model.ReservationStatus
	if strings.TrimSpace(in.Status) != "" {
		s, ok := model.ParseStatus(in.Status)
		if !ok {
			return model.Reservation{}, nil, Invalid(CodeInvalidStatus, "invalid status: %s", in.Status)
		}
		status = s
	}

	r := model.Reservation{
		UserID:          userID,
		StartDatetime:   start,
		EndDatetime:     end,
		GuestCount:      guests,
		Status:          status,
		SpecialRequests: in.SpecialRequests,
	}
	r.SetItem(ref)
	return r, item, nil
}

// ValidateUpdate applies a patch to the current reservation and checks
// the result.  The past-date rule is not re-applied on update.  It
// reports whether either endpoint of the interval was supplied.
func (v Validator) ValidateUpdate(ctx context.Context, current model.Reservation, in UpdateInput) (model.Reservation, bool, error) {
	next := current
	datesTouched := in.StartDatetime != nil || in.EndDatetime != nil

	if in.StartDatetime != nil {
		t, ok := ParseTimestamp(*in.StartDatetime)
		if !ok {
			return model.Reservation{}, false, Invalid(CodeInvalidDateFormat, "invalid date format")
		}
		next.StartDatetime = t
	}
	if in.EndDatetime != nil {
		t, ok := ParseTimestamp(*in.EndDatetime)
		if !ok {
			return model.Reservation{}, false, Invalid(CodeInvalidDateFormat, "invalid date format")
		}
		next.EndDatetime = t
	}
	if datesTouched && !next.StartDatetime.Before(next.EndDatetime) {
		return model.Reservation{}, false, Invalid(CodeInvalidDateRange, "start date must be before end date")
	}

	if in.Status != nil {
		s, ok := model.ParseStatus(*in.Status)
		if !ok {
			return model.Reservation{}, false, Invalid(CodeInvalidStatus, "invalid status: %s", *in.Status)
		}
		next.Status = s
	}

	if in.GuestCount != nil {
		if *in.GuestCount <= 0 {
			return model.Reservation{}, false, Invalid(CodeInvalidGuestCount, "guest_count must be positive")
		}
		item, err := LookupItem(ctx, v.Store, current.Item)
		if err != nil {
			return model.Reservation{}, false, err
		}
		if err := checkCapacity(item, *in.GuestCount); err != nil {
			return model.Reservation{}, false, err
		}
		next.GuestCount = *in.GuestCount
	}

	if in.SpecialRequests != nil {
		next.SpecialRequests = in.SpecialRequests
	}
	return next, datesTouched, nil
}

func (v Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// LookupItem resolves an item reference through the repository of its kind.
func LookupItem(ctx context.Context, s repository.Store, ref model.ItemRef) (model.Bookable, error) {
	var (
		item model.Bookable
		err  error
	)
	switch ref.Kind {
	case model.KindRestaurantTable:
		var t model.RestaurantTable
		t, err = s.Tables().Get(ctx, ref.ID)
		item = t
	case model.KindAccomUnit:
		var u model.AccomUnit
		u, err = s.Units().Get(ctx, ref.ID)
		item = u
	default:
		return nil, Invalid(CodeInvalidItemKind, "invalid item_type: %s", ref.Kind)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(CodeItemNotFound, "%s with ID %s not found", ref.Kind.Label(), ref.ID)
		}
		return nil, internal("look up "+ref.Kind.Label(), err)
	}
	return item, nil
}

// checkCapacity enforces the item's static capacity when one is recorded.
// A zero capacity is treated as not recorded.
func checkCapacity(item model.Bookable, guests int) error {
	capacity, ok := item.Capacity()
	if !ok || capacity <= 0 || capacity >= guests {
		return nil
	}
	return Invalid(CodeCapacityExceeded, "%s capacity (%d) is less than requested guest count (%d)",
		item.Ref().Kind.Label(), capacity, guests)
}
