// Package dbtest provides migrated in-memory SQLite databases for tests.
package dbtest

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"github.com/stepbookstep/server/internal/db"
	"github.com/stepbookstep/server/internal/model"
)

// New returns a fresh database with every migration applied. The pool is
// pinned to one connection because each SQLite memory connection is its own
// database.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	database, err := db.Init("sqlite", ":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	database.SetConnMaxLifetime(0)
	t.Cleanup(func() { _ = database.Close() })

	goose.SetLogger(goose.NopLogger())
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	return database
}

// InsertBook adds a catalog entry.
func InsertBook(t testing.TB, database *sqlx.DB, book model.Book) {
	t.Helper()

	_, err := database.NamedExec(`INSERT INTO books (id, title, author, publisher, pub_year, cover_url, item_page, genre, weight)
		VALUES (:id, :title, :author, :publisher, :pub_year, :cover_url, :item_page, :genre, :weight)`, book)
	require.NoError(t, err)
}
