package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/travel-booking/internal/model"
)

// TableRepo provides access to restaurant_tables.  It also owns the
// is_available flag, which the reservation service keeps in step with
// confirmed bookings.
type TableRepo struct {
	c conn
}

const tableColumns = `id, restaurant_id, table_name, seating_capacity, is_available, deposit_cents`

func scanTable(s rowScanner) (model.RestaurantTable, error) {
	var (
		t        model.RestaurantTable
		capacity sql.NullInt64
		deposit  sql.NullInt64
	)
	if err := s.Scan(&t.ID, &t.RestaurantID, &t.TableName, &capacity, &t.IsAvailable, &deposit); err != nil {
		return model.RestaurantTable{}, err
	}
	if capacity.Valid {
		n := int(capacity.Int64)
		t.SeatingCapacity = &n
	}
	if deposit.Valid {
		d := deposit.Int64
		t.DepositCents = &d
	}
	return t, nil
}

func (r *TableRepo) list(ctx context.Context, query string, args ...any) ([]model.RestaurantTable, error) {
	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RestaurantTable, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get fetches one table by id.
func (r *TableRepo) Get(ctx context.Context, id string) (model.RestaurantTable, error) {
	const q = `SELECT ` + tableColumns + ` FROM restaurant_tables WHERE id = ?`
	t, err := scanTable(r.c.queryRow(ctx, q, id))
	if err != nil {
		return model.RestaurantTable{}, mapError(err)
	}
	return t, nil
}

// Lock issues SELECT ... FOR UPDATE on the table row so concurrent
// bookings of the same table serialize until the transaction ends.
func (r *TableRepo) Lock(ctx context.Context, id string) error {
	var got string
	err := r.c.queryRow(ctx, `SELECT id FROM restaurant_tables WHERE id = ? FOR UPDATE`, id).Scan(&got)
	return mapError(err)
}

// SetAvailable writes the derived availability flag.
func (r *TableRepo) SetAvailable(ctx context.Context, id string, available bool) error {
	result, err := r.c.exec(ctx, `UPDATE restaurant_tables SET is_available = ? WHERE id = ?`, available, id)
	if err != nil {
		return fmt.Errorf("can't update availability of table %s: %w", id, err)
	}
	return requireAffected(result, "restaurant table")
}

// ListBookable returns flagged-available tables able to seat minCapacity
// guests, smallest first.  Tables without a recorded capacity are left out.
func (r *TableRepo) ListBookable(ctx context.Context, restaurantID string, minCapacity int) ([]model.RestaurantTable, error) {
	const q = `SELECT ` + tableColumns + ` FROM restaurant_tables
		WHERE restaurant_id = ? AND is_available = ? AND seating_capacity >= ?
		ORDER BY seating_capacity ASC, id ASC`
	out, err := r.list(ctx, q, restaurantID, true, minCapacity)
	if err != nil {
		return nil, fmt.Errorf("can't list bookable tables of restaurant %s: %w", restaurantID, err)
	}
	return out, nil
}

// ListByRestaurant returns all tables of one restaurant, or of every
// restaurant when restaurantID is empty.
func (r *TableRepo) ListByRestaurant(ctx context.Context, restaurantID string) ([]model.RestaurantTable, error) {
	q := `SELECT ` + tableColumns + ` FROM restaurant_tables`
	var args []any
	if restaurantID != "" {
		q += ` WHERE restaurant_id = ?`
		args = append(args, restaurantID)
	}
	q += ` ORDER BY restaurant_id ASC, id ASC`
	out, err := r.list(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't list tables: %w", err)
	}
	return out, nil
}

// GetDetail loads a table together with its restaurant and place.
func (r *TableRepo) GetDetail(ctx context.Context, id string) (model.TableDetail, error) {
	const q = `SELECT t.id, t.restaurant_id, t.table_name, t.seating_capacity, t.is_available, t.deposit_cents,
			rs.id, rs.place_id, rs.name, p.id, p.name, p.location
		FROM restaurant_tables t
		JOIN restaurants rs ON rs.id = t.restaurant_id
		JOIN places p ON p.id = rs.place_id
		WHERE t.id = ?`
	var (
		d        model.TableDetail
		capacity sql.NullInt64
		deposit  sql.NullInt64
		location sql.NullString
	)
	err := r.c.queryRow(ctx, q, id).Scan(
		&d.ID, &d.RestaurantID, &d.TableName, &capacity, &d.IsAvailable, &deposit,
		&d.Restaurant.ID, &d.Restaurant.PlaceID, &d.Restaurant.Name,
		&d.Place.ID, &d.Place.Name, &location,
	)
	if err != nil {
		return model.TableDetail{}, mapError(err)
	}
	if capacity.Valid {
		n := int(capacity.Int64)
		d.SeatingCapacity = &n
	}
	if deposit.Valid {
		v := deposit.Int64
		d.DepositCents = &v
	}
	if location.Valid {
		l := location.String
		d.Place.Location = &l
	}
	return d, nil
}
