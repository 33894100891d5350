package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository/memory"
)

var clock = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store *memory.Store
	svc   *ReservationGeneric
}

func intp(n int) *int       { return &n }
func strp(s string) *string { return &s }
func fixedNow() time.Time   { return clock }

func ts(s string) time.Time {
	t, ok := ParseTimestamp(s)
	if !ok {
		panic("bad timestamp in test: " + s)
	}
	return t
}

// newFixture seeds one user, one restaurant (tables t2, t4, t6 and an
// unavailable t8) and one accommodation with unit a2.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	st.AddUser(model.User{ID: "u1", Email: "ana@example.com", FullName: strp("Ana Perez"), Role: model.RoleCustomer})
	st.AddUser(model.User{ID: "u2", Email: "ben@example.com", Role: model.RoleCustomer})
	st.AddPlace(model.Place{ID: "p1", Name: "Old Town", Location: strp("Main Square 1")})
	st.AddRestaurant(model.Restaurant{ID: "r1", PlaceID: "p1", Name: "Bistro"})
	st.AddRestaurant(model.Restaurant{ID: "r2", PlaceID: "p1", Name: "Cellar"})
	st.AddTable(model.RestaurantTable{ID: "t2", RestaurantID: "r1", TableName: "T2", SeatingCapacity: intp(2), IsAvailable: true})
	st.AddTable(model.RestaurantTable{ID: "t4", RestaurantID: "r1", TableName: "T4", SeatingCapacity: intp(4), IsAvailable: true})
	st.AddTable(model.RestaurantTable{ID: "t6", RestaurantID: "r1", TableName: "T6", SeatingCapacity: intp(6), IsAvailable: true})
	st.AddTable(model.RestaurantTable{ID: "t8", RestaurantID: "r1", TableName: "T8", SeatingCapacity: intp(8), IsAvailable: false})
	st.AddTable(model.RestaurantTable{ID: "x4", RestaurantID: "r2", TableName: "X4", SeatingCapacity: intp(4), IsAvailable: true})
	st.AddAccommodation(model.Accommodation{ID: "h1", PlaceID: "p1", Name: "Harbour Inn"})
	st.AddUnit(model.AccomUnit{ID: "a2", AccommodationID: "h1", Name: "Room 2", MaxOccupancy: intp(2), IsAvailable: true})

	var n atomic.Int64
	svc := &ReservationGeneric{
		Store: st,
		Now:   fixedNow,
		NewID: func() string { return fmt.Sprintf("res-%d", n.Add(1)) },
	}
	return &fixture{store: st, svc: svc}
}

func tableInput(tableID, start, end string, guests int) CreateInput {
	return CreateInput{
		UserID:        "u1",
		ItemType:      string(model.KindRestaurantTable),
		ItemID:        tableID,
		StartDatetime: start,
		EndDatetime:   end,
		GuestCount:    intp(guests),
	}
}

func unitInput(unitID, start, end string, guests int) CreateInput {
	in := tableInput(unitID, start, end, guests)
	in.ItemType = string(model.KindAccomUnit)
	return in
}

func (f *fixture) tableAvailable(t *testing.T, id string) bool {
	t.Helper()
	tbl, ok := f.store.Table(id)
	require.True(t, ok, "table %s", id)
	return tbl.IsAvailable
}

func requireCode(t *testing.T, err error, kind Kind, code string) {
	t.Helper()
	require.Error(t, err)
	se, ok := AsError(err)
	require.True(t, ok, "expected *service.Error, got %T: %v", err, err)
	require.Equal(t, code, se.Code, se.Message)
	require.Equal(t, kind, se.Kind, se.Message)
}
