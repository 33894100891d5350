package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/queue"
)

// EventPublisher delivers reservation events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, event queue.ReservationEvent) error
}

// ReservationPublishing emits an event after every successful write.
// Publish failures are logged and do not fail the operation.
type ReservationPublishing struct {
	Reservations

	Publisher EventPublisher
	Timeout   time.Duration
	Now       func() time.Time
	Log       *zap.Logger
}

func (rp *ReservationPublishing) Create(ctx context.Context, in CreateInput) (model.Reservation, error) {
	r, err := rp.Reservations.Create(ctx, in)
	if err != nil {
		return r, err
	}
	rp.publish(ctx, queue.EventCreated, r, "")
	return r, nil
}

func (rp *ReservationPublishing) Update(ctx context.Context, id string, in UpdateInput) (model.Reservation, error) {
	var previous model.ReservationStatus
	if before, err := rp.Reservations.Get(ctx, id); err == nil {
		previous = before.Status
	}
	r, err := rp.Reservations.Update(ctx, id, in)
	if err != nil {
		return r, err
	}
	rp.publish(ctx, queue.EventUpdated, r, previous)
	return r, nil
}

func (rp *ReservationPublishing) Delete(ctx context.Context, id string) error {
	before, getErr := rp.Reservations.Get(ctx, id)
	if err := rp.Reservations.Delete(ctx, id); err != nil {
		return err
	}
	snapshot := model.Reservation{ID: id}
	if getErr == nil {
		snapshot = before.Reservation
	}
	rp.publish(ctx, queue.EventDeleted, snapshot, snapshot.Status)
	return nil
}

func (rp *ReservationPublishing) publish(ctx context.Context, eventType string, r model.Reservation, previous model.ReservationStatus) {
	now := time.Now
	if rp.Now != nil {
		now = rp.Now
	}
	timeout := rp.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	// the request may finish before the broker answers
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	ev := queue.NewReservationEvent(eventType, r, previous, now())
	if err := rp.Publisher.Publish(pctx, ev); err != nil && rp.Log != nil {
		rp.Log.Warn("can't publish reservation event",
			zap.String("type", eventType),
			zap.String("reservation_id", r.ID),
			zap.Error(err))
	}
}
