package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// CheckAvailability fails when a blocking reservation of the item
// overlaps iv, or when the item is a restaurant table whose
// availability flag is off.  excludeID skips one reservation so that an
// update does not conflict with itself.
func CheckAvailability(ctx context.Context, s repository.Store, ref model.ItemRef, iv model.Interval, excludeID string) error {
	return checkAvailability(ctx, s, ref, iv, excludeID, true)
}

func checkAvailability(ctx context.Context, s repository.Store, ref model.ItemRef, iv model.Interval, excludeID string, gateOnFlag bool) error {
	existing, err := s.Reservations().ListOverlapping(ctx, ref, iv, excludeID)
	if err != nil {
		return internal("check availability", err)
	}
	for _, r := range existing {
		// the repository already filters, this keeps fakes honest
		if r.ID == excludeID || !r.Status.Blocking() || !r.Interval().Overlaps(iv) {
			continue
		}
		return conflict(CodeItemAlreadyReserved,
			"%s is already reserved for the requested time period (reservation %s, %s to %s)",
			ref.Kind.Label(), r.ID, r.StartDatetime.Format(time.RFC3339), r.EndDatetime.Format(time.RFC3339))
	}

	if !gateOnFlag || ref.Kind != model.KindRestaurantTable {
		return nil
	}
	t, err := s.Tables().Get(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(CodeItemNotFound, "%s with ID %s not found", ref.Kind.Label(), ref.ID)
		}
		return internal("look up restaurant table", err)
	}
	if !t.IsAvailable {
		return conflict(CodeItemTemporarilyUnavailable, "restaurant table %s is currently not available", ref.ID)
	}
	return nil
}
