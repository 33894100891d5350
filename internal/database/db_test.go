package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	q := `SELECT id FROM reservations WHERE item_type = ? AND item_id = ? AND status NOT IN ('x?', 'y') AND id <> ?`

	assert.Equal(t, q, Rebind(MySQL, q))
	assert.Equal(t,
		`SELECT id FROM reservations WHERE item_type = $1 AND item_id = $2 AND status NOT IN ('x?', 'y') AND id <> $3`,
		Rebind(Postgres, q))
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{"": MySQL, "mysql": MySQL, "Postgres": Postgres, "pgx": Postgres} {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDialect("sqlite")
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	driver, dsn := DSN(Options{Dialect: MySQL, User: "app", Pass: "secret", Host: "db", Port: "3306", Name: "travel"})
	assert.Equal(t, "mysql", driver)
	assert.Equal(t, "app:secret@tcp(db:3306)/travel?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true", dsn)

	driver, dsn = DSN(Options{Dialect: Postgres, User: "app", Host: "db", Port: "5432", Name: "travel"})
	assert.Equal(t, "pgx", driver)
	assert.Equal(t, "postgres://app@db:5432/travel?sslmode=disable", dsn)
}

func TestSplitStatements(t *testing.T) {
	script := "-- header\nCREATE TABLE a (\n  id INT\n);\n\nCREATE INDEX i ON a (id);\nINSERT INTO a VALUES (1)"
	stmts := SplitStatements(script)
	require.Len(t, stmts, 3)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE a ("))
	assert.Equal(t, "CREATE INDEX i ON a (id)", stmts[1])
	assert.Equal(t, "INSERT INTO a VALUES (1)", stmts[2])
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	for _, d := range []Dialect{MySQL, Postgres} {
		b, err := migrations.ReadFile("migrations/" + string(d) + "/001_init.sql")
		require.NoError(t, err)
		stmts := SplitStatements(string(b))
		assert.NotEmpty(t, stmts)
		assert.Contains(t, string(b), "CREATE TABLE IF NOT EXISTS reservations")
	}
}
