package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
)

//go:embed migrations
var migrations embed.FS

// Migrate applies every embedded migration for the dialect that has not
// been recorded in schema_migrations yet, in file name order.  It returns
// the names of the files it applied.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) ([]string, error) {
	dir := path.Join("migrations", string(d))
	entries, err := migrations.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("no migrations for %s: %w", d, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(255) PRIMARY KEY)`); err != nil {
		return nil, fmt.Errorf("can't create schema_migrations: %w", err)
	}

	var applied []string
	for _, f := range files {
		var n int
		if err := db.QueryRowContext(ctx, Rebind(d, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`), f).Scan(&n); err != nil {
			return applied, err
		}
		if n > 0 {
			continue
		}

		b, err := migrations.ReadFile(path.Join(dir, f))
		if err != nil {
			return applied, err
		}
		err = WithTx(ctx, db, func(tx *sql.Tx) error {
			for _, stmt := range SplitStatements(string(b)) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			_, err := tx.ExecContext(ctx, Rebind(d, `INSERT INTO schema_migrations (version) VALUES (?)`), f)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("apply %s: %w", f, err)
		}
		applied = append(applied, f)
	}
	return applied, nil
}

// SplitStatements breaks a migration file into individual statements on
// semicolons that end a line.  Drivers differ on multi-statement support,
// so statements are executed one at a time.
func SplitStatements(script string) []string {
	var (
		out []string
		cur strings.Builder
	)
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSuffix(strings.TrimSpace(cur.String()), ";")
			if stmt != "" {
				out = append(out, stmt)
			}
			cur.Reset()
		}
	}
	if tail := strings.TrimSpace(cur.String()); tail != "" {
		out = append(out, tail)
	}
	return out
}
