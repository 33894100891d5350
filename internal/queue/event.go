// Package queue defines the reservation event payload and the RabbitMQ
// publisher and consumer that carry it.
package queue

import (
	"time"

	"github.com/iliyamo/travel-booking/internal/model"
)

// ReservationsQueue is the durable queue reservation events are sent to.
const ReservationsQueue = "reservation.events"

// Event types.
const (
	EventCreated = "reservation.created"
	EventUpdated = "reservation.updated"
	EventDeleted = "reservation.deleted"
)

// ReservationEvent is published after a reservation write commits.  It
// carries enough for downstream consumers to log, notify or feed
// analytics without querying the primary database.
type ReservationEvent struct {
	Type           string `json:"type"`
	ReservationID  string `json:"reservation_id"`
	ItemKind       string `json:"item_kind"`
	ItemID         string `json:"item_id"`
	UserID         string `json:"user_id"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status,omitempty"`
	Start          string `json:"start"`
	End            string `json:"end"`
	OccurredAt     string `json:"occurred_at"`
}

// NewReservationEvent builds an event from a reservation snapshot.
// previous is the status before the write, empty when unknown.
func NewReservationEvent(eventType string, r model.Reservation, previous model.ReservationStatus, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:           eventType,
		ReservationID:  r.ID,
		ItemKind:       string(r.Item.Kind),
		ItemID:         r.Item.ID,
		UserID:         r.UserID,
		Status:         string(r.Status),
		PreviousStatus: string(previous),
		Start:          r.StartDatetime.UTC().Format(time.RFC3339),
		End:            r.EndDatetime.UTC().Format(time.RFC3339),
		OccurredAt:     at.UTC().Format(time.RFC3339),
	}
}
