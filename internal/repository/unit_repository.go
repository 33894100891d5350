package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/travel-booking/internal/model"
)

// UnitRepo provides read access to accom_units.
type UnitRepo struct {
	c conn
}

// Get fetches one accommodation unit by id.
func (r *UnitRepo) Get(ctx context.Context, id string) (model.AccomUnit, error) {
	const q = `SELECT id, accommodation_id, name, max_occupancy, is_available, unit_price_cents FROM accom_units WHERE id = ?`
	var (
		u         model.AccomUnit
		occupancy sql.NullInt64
		price     sql.NullInt64
	)
	err := r.c.queryRow(ctx, q, id).Scan(&u.ID, &u.AccommodationID, &u.Name, &occupancy, &u.IsAvailable, &price)
	if err != nil {
		return model.AccomUnit{}, mapError(err)
	}
	setUnitNullables(&u, occupancy, price)
	return u, nil
}

// Lock takes a row lock on the unit for the rest of the transaction.
func (r *UnitRepo) Lock(ctx context.Context, id string) error {
	var got string
	err := r.c.queryRow(ctx, `SELECT id FROM accom_units WHERE id = ? FOR UPDATE`, id).Scan(&got)
	return mapError(err)
}

// GetDetail loads a unit together with its accommodation and place.
func (r *UnitRepo) GetDetail(ctx context.Context, id string) (model.UnitDetail, error) {
	const q = `SELECT u.id, u.accommodation_id, u.name, u.max_occupancy, u.is_available, u.unit_price_cents,
			a.id, a.place_id, a.name, p.id, p.name, p.location
		FROM accom_units u
		JOIN accommodations a ON a.id = u.accommodation_id
		JOIN places p ON p.id = a.place_id
		WHERE u.id = ?`
	var (
		d         model.UnitDetail
		occupancy sql.NullInt64
		price     sql.NullInt64
		location  sql.NullString
	)
	err := r.c.queryRow(ctx, q, id).Scan(
		&d.ID, &d.AccommodationID, &d.Name, &occupancy, &d.IsAvailable, &price,
		&d.Accommodation.ID, &d.Accommodation.PlaceID, &d.Accommodation.Name,
		&d.Place.ID, &d.Place.Name, &location,
	)
	if err != nil {
		return model.UnitDetail{}, mapError(err)
	}
	setUnitNullables(&d.AccomUnit, occupancy, price)
	if location.Valid {
		l := location.String
		d.Place.Location = &l
	}
	return d, nil
}

func setUnitNullables(u *model.AccomUnit, occupancy, price sql.NullInt64) {
	if occupancy.Valid {
		n := int(occupancy.Int64)
		u.MaxOccupancy = &n
	}
	if price.Valid {
		p := price.Int64
		u.UnitPriceCents = &p
	}
}
