package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/travel-booking/internal/database"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn pairs a querier with the dialect used to rebind placeholders.
type conn struct {
	q       querier
	dialect database.Dialect
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.q.ExecContext(ctx, database.Rebind(c.dialect, query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.q.QueryContext(ctx, database.Rebind(c.dialect, query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, database.Rebind(c.dialect, query), args...)
}

// SQLStore is the database/sql backed Store.
type SQLStore struct {
	db   *sql.DB
	conn conn
	inTx bool
}

// NewSQLStore returns a Store bound to db speaking the given dialect.
func NewSQLStore(db *sql.DB, dialect database.Dialect) *SQLStore {
	return &SQLStore{db: db, conn: conn{q: db, dialect: dialect}}
}

func (s *SQLStore) Reservations() ReservationRepository { return &ReservationRepo{c: s.conn} }
func (s *SQLStore) Tables() TableRepository             { return &TableRepo{c: s.conn} }
func (s *SQLStore) Units() UnitRepository               { return &UnitRepo{c: s.conn} }
func (s *SQLStore) Users() UserRepository               { return &UserRepo{c: s.conn} }

func (s *SQLStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&SQLStore{db: s.db, conn: conn{q: tx, dialect: s.conn.dialect}, inTx: true})
	})
}
