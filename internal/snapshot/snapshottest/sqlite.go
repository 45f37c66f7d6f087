// Package snapshottest builds snapshots of throwaway in-memory SQLite
// databases for tests.
package snapshottest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbsnap/internal/database"
	sqlitedb "github.com/koustreak/dbsnap/internal/database/sqlite"
	"github.com/koustreak/dbsnap/internal/snapshot"

	_ "github.com/koustreak/dbsnap/internal/dialect/sqlite"
)

// Shop is a small schema with keys, indexes, a view and the change-log
// table.
const Shop = `
CREATE TABLE customers (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	email VARCHAR(120) NOT NULL,
	tier  TEXT DEFAULT 'basic'
);
CREATE TABLE orders (
	id          INTEGER PRIMARY KEY,
	customer_id INTEGER NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
	total       DECIMAL(10, 2) DEFAULT 0,
	placed_at   DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX idx_orders_customer ON orders(customer_id);
CREATE INDEX idx_orders_placed ON orders(placed_at) WHERE total > 0;
CREATE UNIQUE INDEX ux_customers_email ON customers(email);
CREATE TABLE databasechangelog (id TEXT, author TEXT);
CREATE VIEW v_big_orders AS SELECT id, total FROM orders WHERE total > 100;
`

// OpenSQLite returns an in-memory SQLite database loaded with ddl.
func OpenSQLite(t testing.TB, ddl string) *sqlitedb.Driver {
	t.Helper()
	ctx := context.Background()

	db, err := sqlitedb.New(ctx, &database.Config{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	if ddl != "" {
		require.NoError(t, db.Exec(ctx, ddl))
	}
	return db
}

// New captures the main schema of an in-memory SQLite database loaded
// with ddl.
func New(t testing.TB, ddl string) *snapshot.Snapshot {
	t.Helper()

	snap, err := snapshot.Open(context.Background(), OpenSQLite(t, ddl), snapshot.OpenOptions{Driver: "sqlite"})
	require.NoError(t, err)
	return snap
}
