package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/model"
)

func sampleReservation() model.Reservation {
	r := model.Reservation{
		ID:            "res-1",
		UserID:        "u1",
		StartDatetime: time.Date(2025, 5, 1, 20, 0, 0, 0, time.FixedZone("CEST", 2*3600)),
		EndDatetime:   time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC),
		GuestCount:    2,
		Status:        model.StatusConfirmed,
	}
	r.SetItem(model.TableRef("t4"))
	return r
}

func TestNewReservationEvent(t *testing.T) {
	at := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	ev := NewReservationEvent(EventUpdated, sampleReservation(), model.StatusPending, at)

	assert.Equal(t, ReservationEvent{
		Type:           EventUpdated,
		ReservationID:  "res-1",
		ItemKind:       "restaurant_table",
		ItemID:         "t4",
		UserID:         "u1",
		Status:         "confirmed",
		PreviousStatus: "pending",
		Start:          "2025-05-01T18:00:00Z",
		End:            "2025-05-01T20:00:00Z",
		OccurredAt:     "2025-04-01T12:00:00Z",
	}, ev)

	b, err := json.Marshal(NewReservationEvent(EventCreated, sampleReservation(), "", at))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "previous_status")
}

func TestFormatLine(t *testing.T) {
	ev := NewReservationEvent(EventUpdated, sampleReservation(), model.StatusPending, time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC))
	assert.Equal(t,
		"[2025-04-01T12:00:00Z] reservation.updated | reservation_id=res-1 | user_id=u1 | item=restaurant_table:t4 | status=pending->confirmed | from=2025-05-01T18:00:00Z | to=2025-05-01T20:00:00Z\n",
		FormatLine(ev))

	ev.PreviousStatus = ev.Status
	assert.Contains(t, FormatLine(ev), "| status=confirmed |")
}

func TestHandleMessageAppendsToLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	c := NewConsumer("amqp://unused", dir, zap.NewNop())

	for _, typ := range []string{EventCreated, EventDeleted} {
		body, err := json.Marshal(NewReservationEvent(typ, sampleReservation(), "", time.Now()))
		require.NoError(t, err)
		require.NoError(t, c.HandleMessage(body))
	}

	data, err := os.ReadFile(filepath.Join(dir, "reservations.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], EventCreated)
	assert.Contains(t, lines[1], EventDeleted)
}

func TestHandleMessageRejectsBadPayloads(t *testing.T) {
	c := NewConsumer("amqp://unused", t.TempDir(), zap.NewNop())

	assert.Error(t, c.HandleMessage([]byte("{not json")))
	assert.Error(t, c.HandleMessage([]byte(`{"type":"reservation.created"}`)))
	assert.Error(t, c.HandleMessage([]byte(`{"reservation_id":"res-1"}`)))
}
