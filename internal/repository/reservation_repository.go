package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/travel-booking/internal/model"
)

// ReservationRepo provides CRUD and overlap queries over the reservations
// table.  Timestamps are written and read in UTC.  Item references are
// polymorphic: item_type selects the table item_id points into and no
// foreign key is enforced across kinds.
type ReservationRepo struct {
	c conn
}

const reservationColumns = `id, item_type, item_id, user_id, start_datetime, end_datetime, guest_count, status, special_requests, created_at`

// blockingClause filters out statuses that do not hold an item.
const blockingClause = `status NOT IN ('cancelled', 'no_show')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(s rowScanner) (model.Reservation, error) {
	var (
		r        model.Reservation
		itemType string
		itemID   string
		status   string
		requests sql.NullString
	)
	err := s.Scan(&r.ID, &itemType, &itemID, &r.UserID, &r.StartDatetime, &r.EndDatetime,
		&r.GuestCount, &status, &requests, &r.CreatedAt)
	if err != nil {
		return model.Reservation{}, err
	}
	r.SetItem(model.ItemRef{Kind: model.ItemKind(itemType), ID: itemID})
	r.Status = model.ReservationStatus(status)
	if requests.Valid {
		s := requests.String
		r.SpecialRequests = &s
	}
	r.StartDatetime = r.StartDatetime.UTC()
	r.EndDatetime = r.EndDatetime.UTC()
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

func (r *ReservationRepo) list(ctx context.Context, query string, args ...any) ([]model.Reservation, error) {
	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Get fetches a reservation by id.  Missing rows yield ErrNotFound.
func (r *ReservationRepo) Get(ctx context.Context, id string) (model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.c.queryRow(ctx, q, id))
	if err != nil {
		return model.Reservation{}, mapError(err)
	}
	return res, nil
}

// GetForUpdate locks the reservation row.  It is a locking read, so on
// MySQL it sees the latest committed row and does not open the
// transaction's snapshot.
func (r *ReservationRepo) GetForUpdate(ctx context.Context, id string) (model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? FOR UPDATE`
	res, err := scanReservation(r.c.queryRow(ctx, q, id))
	if err != nil {
		return model.Reservation{}, mapError(err)
	}
	return res, nil
}

// Insert writes a new reservation.  The caller supplies the id and
// created_at.  A PostgreSQL exclusion violation surfaces as ErrConflict.
func (r *ReservationRepo) Insert(ctx context.Context, res model.Reservation) error {
	const q = `INSERT INTO reservations (` + reservationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.c.exec(ctx, q,
		res.ID, string(res.Item.Kind), res.Item.ID, res.UserID,
		res.StartDatetime.UTC(), res.EndDatetime.UTC(), res.GuestCount,
		string(res.Status), nullString(res.SpecialRequests), res.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("can't insert reservation: %w", mapError(err))
	}
	return nil
}

// Update rewrites the mutable columns (interval, guests, status and
// special requests).  The item reference, owner and created_at never
// change.
func (r *ReservationRepo) Update(ctx context.Context, res model.Reservation) error {
	const q = `UPDATE reservations
		SET start_datetime = ?, end_datetime = ?, guest_count = ?, status = ?, special_requests = ?
		WHERE id = ?`
	result, err := r.c.exec(ctx, q,
		res.StartDatetime.UTC(), res.EndDatetime.UTC(), res.GuestCount,
		string(res.Status), nullString(res.SpecialRequests), res.ID)
	if err != nil {
		return fmt.Errorf("can't update reservation: %w", mapError(err))
	}
	return requireAffected(result, "reservation")
}

// Delete removes a reservation by id.
func (r *ReservationRepo) Delete(ctx context.Context, id string) error {
	result, err := r.c.exec(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("can't delete reservation: %w", err)
	}
	return requireAffected(result, "reservation")
}

// ListOverlapping applies the half-open overlap predicate
// (start_datetime < end AND end_datetime > start) to the blocking
// reservations of one item.
func (r *ReservationRepo) ListOverlapping(ctx context.Context, ref model.ItemRef, iv model.Interval, excludeID string) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE item_type = ? AND item_id = ? AND ` + blockingClause + `
		  AND start_datetime < ? AND end_datetime > ?`
	args := []any{string(ref.Kind), ref.ID, iv.End.UTC(), iv.Start.UTC()}
	if excludeID != "" {
		q += ` AND id <> ?`
		args = append(args, excludeID)
	}
	q += ` ORDER BY start_datetime ASC`
	out, err := r.list(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't list overlapping reservations for %s: %w", ref, err)
	}
	return out, nil
}

// List returns reservations filtered by status and date bounds, newest first.
func (r *ReservationRepo) List(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*f.Status))
	}
	if f.From != nil {
		where = append(where, "start_datetime >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		where = append(where, "end_datetime <= ?")
		args = append(args, f.To.UTC())
	}
	q := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id ASC`
	out, err := r.list(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't list reservations: %w", err)
	}
	return out, nil
}

// ListByUser returns one user's reservations ordered by start ascending.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID string) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = ? ORDER BY start_datetime ASC, id ASC`
	out, err := r.list(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("can't list reservations of user %s: %w", userID, err)
	}
	return out, nil
}

// BlockedTableIDs joins blocking table reservations overlapping iv with
// the restaurant's tables.
func (r *ReservationRepo) BlockedTableIDs(ctx context.Context, restaurantID string, iv model.Interval) (map[string]bool, error) {
	const q = `SELECT DISTINCT r.item_id FROM reservations r
		JOIN restaurant_tables t ON t.id = r.item_id
		WHERE r.item_type = 'restaurant_table' AND t.restaurant_id = ?
		  AND r.status NOT IN ('cancelled', 'no_show')
		  AND r.start_datetime < ? AND r.end_datetime > ?`
	ids, err := r.idSet(ctx, q, restaurantID, iv.End.UTC(), iv.Start.UTC())
	if err != nil {
		return nil, fmt.Errorf("can't list blocked tables of restaurant %s: %w", restaurantID, err)
	}
	return ids, nil
}

// ConfirmedTableIDs returns tables still held by a confirmed reservation
// at now.
func (r *ReservationRepo) ConfirmedTableIDs(ctx context.Context, restaurantID string, now time.Time) (map[string]bool, error) {
	q := `SELECT DISTINCT r.item_id FROM reservations r
		JOIN restaurant_tables t ON t.id = r.item_id
		WHERE r.item_type = 'restaurant_table' AND r.status = 'confirmed' AND r.end_datetime > ?`
	args := []any{now.UTC()}
	if restaurantID != "" {
		q += ` AND t.restaurant_id = ?`
		args = append(args, restaurantID)
	}
	ids, err := r.idSet(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't list confirmed tables: %w", err)
	}
	return ids, nil
}

func (r *ReservationRepo) idSet(ctx context.Context, query string, args ...any) (map[string]bool, error) {
	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// requireAffected turns a zero-row write into ErrNotFound.
func requireAffected(result sql.Result, entity string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't read affected rows for %s: %w", entity, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
