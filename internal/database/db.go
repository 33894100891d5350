package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Dialect names the SQL flavour spoken by the connected server.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
)

// ParseDialect accepts the DB_DRIVER values understood by Open.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mysql":
		return MySQL, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return "", fmt.Errorf("unsupported db driver %q", s)
}

// Options carries the connection settings for Open.
type Options struct {
	Dialect Dialect
	User    string
	Pass    string
	Host    string
	Port    string
	Name    string
	SSLMode string // postgres only
}

// DSN builds the driver name and data source name for the options.
func DSN(o Options) (driver, dsn string) {
	switch o.Dialect {
	case Postgres:
		u := url.URL{
			Scheme: "postgres",
			Host:   o.Host + ":" + o.Port,
			Path:   "/" + o.Name,
		}
		if o.Pass != "" {
			u.User = url.UserPassword(o.User, o.Pass)
		} else {
			u.User = url.User(o.User)
		}
		sslmode := o.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		u.RawQuery = "sslmode=" + url.QueryEscape(sslmode)
		return "pgx", u.String()
	default:
		auth := o.User
		if o.Pass != "" {
			auth = fmt.Sprintf("%s:%s", o.User, o.Pass)
		}
		// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
		// clientFoundRows=true -> RowsAffected counts matched rows, not changed ones
		return "mysql", fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
			auth, o.Host, o.Port, o.Name)
	}
}

// Open connects to MySQL or PostgreSQL and verifies the connection.
func Open(ctx context.Context, o Options) (*sql.DB, error) {
	driver, dsn := DSN(o)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Rebind rewrites `?` placeholders into the form expected by the dialect.
// Queries are written once with `?`; PostgreSQL receives $1, $2, ...
// Question marks inside single-quoted literals are left alone.
func Rebind(d Dialect, query string) string {
	if d != Postgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			b.WriteByte(ch)
		case ch == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
