// Package repository defines the storage interfaces used by the
// reservation service together with their SQL implementations.  The
// sentinel errors below let higher layers distinguish missing rows and
// storage-level conflicts from plain I/O failures.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a row looked up by id does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when the database itself rejects a write
// because it would double-book an item (the PostgreSQL exclusion
// constraint) or duplicate a primary key.  The service translates this
// into an ITEM_ALREADY_RESERVED failure.
var ErrConflict = errors.New("conflict")

// PostgreSQL SQLSTATE codes and MySQL error numbers mapped to ErrConflict.
const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
	mysqlDuplicateEntry  = 1062
)

// mapError normalizes driver errors onto the package sentinels.  The
// original error stays in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation, pgUniqueViolation:
			return errors.Join(ErrConflict, err)
		}
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return errors.Join(ErrConflict, err)
	}
	return err
}
