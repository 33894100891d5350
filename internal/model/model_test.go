package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour int) time.Time {
	return time.Date(2025, 5, 1, hour, 0, 0, 0, time.UTC)
}

func TestIntervalOverlaps(t *testing.T) {
	base := Interval{Start: at(18), End: at(20)}

	cases := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"same", base, true},
		{"inside", Interval{Start: at(18), End: at(19)}, true},
		{"covers", Interval{Start: at(17), End: at(21)}, true},
		{"straddles start", Interval{Start: at(17), End: at(19)}, true},
		{"straddles end", Interval{Start: at(19), End: at(21)}, true},
		{"touches before", Interval{Start: at(16), End: at(18)}, false},
		{"touches after", Interval{Start: at(20), End: at(22)}, false},
		{"disjoint", Interval{Start: at(8), End: at(9)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, base.Overlaps(tc.other))
			assert.Equal(t, tc.want, tc.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestIntervalValid(t *testing.T) {
	assert.True(t, Interval{Start: at(18), End: at(20)}.Valid())
	assert.False(t, Interval{Start: at(18), End: at(18)}.Valid())
	assert.False(t, Interval{Start: at(20), End: at(18)}.Valid())
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("  No_Show ")
	assert.True(t, ok)
	assert.Equal(t, StatusNoShow, s)

	_, ok = ParseStatus("booked")
	assert.False(t, ok)
	_, ok = ParseStatus("")
	assert.False(t, ok)
}

func TestStatusBlocking(t *testing.T) {
	blocking := map[ReservationStatus]bool{
		StatusPending:   true,
		StatusConfirmed: true,
		StatusCompleted: true,
		StatusCancelled: false,
		StatusNoShow:    false,
	}
	for s, want := range blocking {
		assert.Equal(t, want, s.Blocking(), s)
	}
}

func TestParseItemKind(t *testing.T) {
	k, ok := ParseItemKind("Restaurant_Table")
	assert.True(t, ok)
	assert.Equal(t, KindRestaurantTable, k)

	k, ok = ParseItemKind("accommodation_unit")
	assert.True(t, ok)
	assert.Equal(t, KindAccomUnit, k)

	_, ok = ParseItemKind("room")
	assert.False(t, ok)
}

func TestReservationItem(t *testing.T) {
	var r Reservation
	r.SetItem(TableRef("t4"))
	r.Status = StatusConfirmed
	assert.Equal(t, KindRestaurantTable, r.ItemType)
	assert.Equal(t, "t4", r.ItemID)
	assert.True(t, r.IsConfirmedTableBooking())
	assert.Equal(t, "restaurant_table:t4", r.Item.String())

	r.SetItem(UnitRef("a2"))
	assert.False(t, r.IsConfirmedTableBooking())
}

func TestCapacity(t *testing.T) {
	four := 4
	n, ok := RestaurantTable{SeatingCapacity: &four}.Capacity()
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = AccomUnit{}.Capacity()
	assert.False(t, ok)
}
