package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking/internal/model"
)

func TestValidateCreate(t *testing.T) {
	f := newFixture(t)
	v := Validator{Store: f.store, Now: fixedNow}

	valid := func() CreateInput {
		return tableInput("t4", "2025-05-01T18:00:00Z", "2025-05-01T20:00:00Z", 2)
	}

	cases := []struct {
		name   string
		mutate func(*CreateInput)
		kind   Kind
		code   string
	}{
		{"missing user", func(in *CreateInput) { in.UserID = "" }, KindValidation, CodeMissingField},
		{"missing item type", func(in *CreateInput) { in.ItemType = " " }, KindValidation, CodeMissingField},
		{"missing item id", func(in *CreateInput) { in.ItemID = "" }, KindValidation, CodeMissingField},
		{"missing start", func(in *CreateInput) { in.StartDatetime = "" }, KindValidation, CodeMissingField},
		{"missing end", func(in *CreateInput) { in.EndDatetime = "" }, KindValidation, CodeMissingField},
		{"missing guests", func(in *CreateInput) { in.GuestCount = nil }, KindValidation, CodeMissingField},
		{"zero guests", func(in *CreateInput) { in.GuestCount = intp(0) }, KindValidation, CodeMissingField},
		{"unknown kind", func(in *CreateInput) { in.ItemType = "desk" }, KindValidation, CodeInvalidItemKind},
		{"bad start", func(in *CreateInput) { in.StartDatetime = "05/01/2025" }, KindValidation, CodeInvalidDateFormat},
		{"bad end", func(in *CreateInput) { in.EndDatetime = "later" }, KindValidation, CodeInvalidDateFormat},
		{"inverted range", func(in *CreateInput) { in.EndDatetime = "2025-05-01T17:00:00Z" }, KindValidation, CodeInvalidDateRange},
		{"in the past", func(in *CreateInput) {
			in.StartDatetime = "2025-03-01T18:00:00Z"
			in.EndDatetime = "2025-03-01T20:00:00Z"
		}, KindValidation, CodePastDate},
		{"negative guests", func(in *CreateInput) { in.GuestCount = intp(-1) }, KindValidation, CodeInvalidGuestCount},
		{"unknown table", func(in *CreateInput) { in.ItemID = "t99" }, KindNotFound, CodeItemNotFound},
		{"unknown unit", func(in *CreateInput) {
			in.ItemType = "accom_unit"
			in.ItemID = "t4"
		}, KindNotFound, CodeItemNotFound},
		{"unknown user", func(in *CreateInput) { in.UserID = "ghost" }, KindNotFound, CodeUserNotFound},
		{"over capacity", func(in *CreateInput) { in.GuestCount = intp(9) }, KindValidation, CodeCapacityExceeded},
		{"unknown status", func(in *CreateInput) { in.Status = "maybe" }, KindValidation, CodeInvalidStatus},

		// first failing check wins
		{"missing beats kind", func(in *CreateInput) {
			in.ItemType = "desk"
			in.GuestCount = nil
		}, KindValidation, CodeMissingField},
		{"item beats user", func(in *CreateInput) {
			in.ItemID = "t99"
			in.UserID = "ghost"
		}, KindNotFound, CodeItemNotFound},
		{"capacity beats status", func(in *CreateInput) {
			in.GuestCount = intp(9)
			in.Status = "maybe"
		}, KindValidation, CodeCapacityExceeded},
		{"range beats past", func(in *CreateInput) {
			in.StartDatetime = "2025-03-01T20:00:00Z"
			in.EndDatetime = "2025-03-01T18:00:00Z"
		}, KindValidation, CodeInvalidDateRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid()
			tc.mutate(&in)
			_, _, err := v.ValidateCreate(context.Background(), in)
			requireCode(t, err, tc.kind, tc.code)
		})
	}

	t.Run("valid", func(t *testing.T) {
		in := valid()
		in.Status = " Confirmed "
		r, item, err := v.ValidateCreate(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, r.Status)
		assert.Equal(t, model.TableRef("t4"), item.Ref())
		assert.Equal(t, ts("2025-05-01T18:00:00Z"), r.StartDatetime)
	})

	t.Run("accommodation alias", func(t *testing.T) {
		in := unitInput("a2", "2025-06-01T14:00:00Z", "2025-06-02T10:00:00Z", 2)
		in.ItemType = "accommodation_unit"
		r, _, err := v.ValidateCreate(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, model.KindAccomUnit, r.Item.Kind)
		assert.Empty(t, r.Status)
	})

	t.Run("no capacity recorded", func(t *testing.T) {
		f.store.AddTable(model.RestaurantTable{ID: "bar", RestaurantID: "r1", TableName: "Bar", IsAvailable: true})
		_, _, err := v.ValidateCreate(context.Background(), tableInput("bar", "2025-05-01T18:00:00Z", "2025-05-01T20:00:00Z", 12))
		require.NoError(t, err)
	})

	t.Run("zero capacity counts as unrecorded", func(t *testing.T) {
		f.store.AddTable(model.RestaurantTable{ID: "patio", RestaurantID: "r1", TableName: "Patio", SeatingCapacity: intp(0), IsAvailable: true})
		_, _, err := v.ValidateCreate(context.Background(), tableInput("patio", "2025-05-01T18:00:00Z", "2025-05-01T20:00:00Z", 12))
		require.NoError(t, err)
	})
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]string{
		"2025-05-01T18:00:00Z":      "2025-05-01T18:00:00Z",
		"2025-05-01T20:00:00+02:00": "2025-05-01T18:00:00Z",
		"2025-05-01T18:00:00.250Z":  "2025-05-01T18:00:00.25Z",
		"2025-05-01T18:00:00":       "2025-05-01T18:00:00Z",
		"2025-05-01 18:00":          "2025-05-01T18:00:00Z",
		"2025-05-01":                "2025-05-01T00:00:00Z",
	}
	for in, want := range cases {
		got, ok := ParseTimestamp(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got.Format("2006-01-02T15:04:05.999999999Z07:00"), in)
	}
	for _, bad := range []string{"", "yesterday", "2025-13-01", "01/05/2025"} {
		_, ok := ParseTimestamp(bad)
		assert.False(t, ok, bad)
	}
}

func TestCheckAvailabilityReportsOverlap(t *testing.T) {
	f := newFixture(t)
	f.store.AddReservation(model.Reservation{
		ID: "held", Item: model.UnitRef("a2"), UserID: "u1",
		StartDatetime: ts("2025-06-01T14:00:00Z"), EndDatetime: ts("2025-06-03T10:00:00Z"),
		GuestCount: 2, Status: model.StatusCompleted,
	})
	ctx := context.Background()
	window := model.Interval{Start: ts("2025-06-02T00:00:00Z"), End: ts("2025-06-02T12:00:00Z")}

	err := CheckAvailability(ctx, f.store, model.UnitRef("a2"), window, "")
	requireCode(t, err, KindConflict, CodeItemAlreadyReserved)
	assert.Contains(t, err.Error(), "held")

	assert.NoError(t, CheckAvailability(ctx, f.store, model.UnitRef("a2"), window, "held"))

	err = CheckAvailability(ctx, f.store, model.TableRef("missing"), window, "")
	requireCode(t, err, KindNotFound, CodeItemNotFound)
}
