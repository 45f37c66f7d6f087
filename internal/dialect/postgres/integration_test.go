//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/koustreak/dbsnap/internal/database"
	dbpostgres "github.com/koustreak/dbsnap/internal/database/postgres"
	_ "github.com/koustreak/dbsnap/internal/dialect/postgres"
	"github.com/koustreak/dbsnap/internal/schema"
	"github.com/koustreak/dbsnap/internal/snapshot"
)

const shopDDL = `
CREATE SEQUENCE invoice_no START 1000;
CREATE TABLE customers (
	id    BIGSERIAL PRIMARY KEY,
	email VARCHAR(120) NOT NULL UNIQUE,
	tier  TEXT DEFAULT 'basic'
);
COMMENT ON TABLE customers IS 'people who buy things';
CREATE TABLE orders (
	tenant_id   INT NOT NULL,
	id          INT NOT NULL,
	customer_id BIGINT NOT NULL REFERENCES customers(id) ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED,
	total       NUMERIC(10, 2) DEFAULT 0,
	placed_at   TIMESTAMPTZ DEFAULT now(),
	PRIMARY KEY (tenant_id, id)
);
CREATE INDEX idx_orders_placed ON orders(placed_at) WHERE total > 0;
CREATE TABLE databasechangelog (id TEXT, author TEXT);
CREATE VIEW v_big_orders AS SELECT id, total FROM orders WHERE total > 100;
`

func TestSnapshot_Postgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("shop"),
		tcpostgres.WithUsername("dbsnap"),
		tcpostgres.WithPassword("dbsnap"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	cfg := database.DefaultConfig(dsn)
	db, err := dbpostgres.New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	// multi-statement DDL needs the simple protocol of a plain Exec
	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, shopDDL)
	require.NoError(t, err)
	require.NoError(t, conn.Close(ctx))

	snap, err := snapshot.Open(ctx, db, snapshot.OpenOptions{Driver: "postgres", Concurrency: 4})
	require.NoError(t, err)

	assert.Equal(t, "public", snap.Schema())
	assert.True(t, snap.HasChangeLogTable())
	require.Len(t, snap.Tables(), 2)

	customers := snap.Table("CUSTOMERS")
	require.NotNil(t, customers)
	assert.Equal(t, "people who buy things", customers.Remarks)

	id := snap.Column("customers", "id")
	require.NotNil(t, id)
	assert.True(t, id.AutoIncrement)
	assert.True(t, id.PrimaryKey)

	pk := snap.PrimaryKeyForTable("orders")
	require.NotNil(t, pk)
	assert.Equal(t, []string{"tenant_id", "id"}, pk.ColumnNames())

	require.Len(t, snap.ForeignKeys(), 1)
	fk := snap.ForeignKeys()[0]
	assert.Equal(t, "customers", fk.PrimaryKeyTable.Name)
	require.NotNil(t, fk.DeleteRule)
	assert.Equal(t, schema.RuleCascade, *fk.DeleteRule)
	assert.Equal(t, schema.InitiallyDeferred, fk.Deferrability)

	assert.NotNil(t, snap.Index("idx_orders_placed"))
	assert.Nil(t, snap.Index("orders_pkey"), "primary key index is redundant")

	v := snap.View("v_big_orders")
	require.NotNil(t, v)
	assert.Contains(t, v.Definition, "total > ")

	// bigserial brings its own sequence
	assert.NotNil(t, snap.Sequence("INVOICE_NO"))
	assert.NotNil(t, snap.Sequence("customers_id_seq"))
}
