package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/model"
)

// ReservationLogging logs every operation with its outcome and duration.
type ReservationLogging struct {
	Reservations

	Log *zap.Logger
}

func (rl *ReservationLogging) done(msg string, t0 time.Time, err error, fields ...zap.Field) {
	fields = append(fields, zap.Duration("delay", time.Since(t0)))
	if err == nil {
		rl.Log.Info(msg, fields...)
		return
	}
	fields = append(fields, zap.String("code", CodeOf(err)), zap.Error(err))
	if KindOf(err) == KindInternal {
		rl.Log.Error(msg+" failed", fields...)
		return
	}
	rl.Log.Warn(msg+" rejected", fields...)
}

func (rl *ReservationLogging) Create(ctx context.Context, in CreateInput) (r model.Reservation, err error) {
	defer func(t0 time.Time) {
		rl.done("reservation create", t0, err,
			zap.String("reservation_id", r.ID),
			zap.String("item_type", in.ItemType),
			zap.String("item_id", in.ItemID),
			zap.String("user_id", in.UserID))
	}(time.Now())
	return rl.Reservations.Create(ctx, in)
}

func (rl *ReservationLogging) Update(ctx context.Context, id string, in UpdateInput) (r model.Reservation, err error) {
	defer func(t0 time.Time) {
		rl.done("reservation update", t0, err,
			zap.String("reservation_id", id),
			zap.String("status", string(r.Status)))
	}(time.Now())
	return rl.Reservations.Update(ctx, id, in)
}

func (rl *ReservationLogging) Delete(ctx context.Context, id string) (err error) {
	defer func(t0 time.Time) {
		rl.done("reservation delete", t0, err, zap.String("reservation_id", id))
	}(time.Now())
	return rl.Reservations.Delete(ctx, id)
}

func (rl *ReservationLogging) Get(ctx context.Context, id string) (d model.ReservationDetail, err error) {
	defer func(t0 time.Time) {
		rl.done("reservation get", t0, err, zap.String("reservation_id", id))
	}(time.Now())
	return rl.Reservations.Get(ctx, id)
}

func (rl *ReservationLogging) List(ctx context.Context, f ListFilter) (out []model.Reservation, err error) {
	defer func(t0 time.Time) {
		rl.done("reservation list", t0, err,
			zap.String("status", f.Status),
			zap.String("from_date", f.FromDate),
			zap.String("to_date", f.ToDate),
			zap.Int("count", len(out)))
	}(time.Now())
	return rl.Reservations.List(ctx, f)
}

func (rl *ReservationLogging) ListByUser(ctx context.Context, userID string) (out []model.Reservation, err error) {
	defer func(t0 time.Time) {
		rl.done("reservation list by user", t0, err, zap.String("user_id", userID), zap.Int("count", len(out)))
	}(time.Now())
	return rl.Reservations.ListByUser(ctx, userID)
}

func (rl *ReservationLogging) AvailableTables(ctx context.Context, q TableQuery) (out []model.RestaurantTable, err error) {
	defer func(t0 time.Time) {
		rl.done("available tables", t0, err,
			zap.String("restaurant_id", q.RestaurantID),
			zap.Int("guest_count", q.GuestCount),
			zap.Int("count", len(out)))
	}(time.Now())
	return rl.Reservations.AvailableTables(ctx, q)
}

func (rl *ReservationLogging) ReconcileTables(ctx context.Context, restaurantID string, dryRun bool) (out []model.TableAvailabilityChange, err error) {
	defer func(t0 time.Time) {
		rl.done("reconcile tables", t0, err,
			zap.String("restaurant_id", restaurantID),
			zap.Bool("dry_run", dryRun),
			zap.Int("changes", len(out)))
	}(time.Now())
	return rl.Reservations.ReconcileTables(ctx, restaurantID, dryRun)
}
