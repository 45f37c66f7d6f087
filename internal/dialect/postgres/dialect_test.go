package postgres

import (
	"context"
	"testing"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/dialect"
	"github.com/koustreak/dbsnap/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistered(t *testing.T) {
	f, err := dialect.Lookup(Name)
	require.NoError(t, err)

	d, c := f(nil, dialect.DefaultOptions())
	assert.Equal(t, Name, d.Name())
	assert.IsType(t, &Catalog{}, c)
}

func TestDialect_Schema(t *testing.T) {
	d := New(nil, dialect.Options{})
	assert.Equal(t, "public", d.ResolveSchema(""))
	assert.Equal(t, "sales", d.ResolveSchema("sales"))

	cat, sch := d.Coordinates("sales")
	assert.Empty(t, cat)
	assert.Equal(t, "sales", sch)

	assert.True(t, d.IsSystemTable("", "pg_catalog", "pg_class"))
	assert.True(t, d.IsSystemTable("", "public", "pg_stat_statements"))
	assert.True(t, d.IsSystemView("", "information_schema", "tables"))
	assert.False(t, d.IsSystemTable("", "public", "orders"))

	assert.True(t, d.SupportsSequences())
	assert.True(t, d.SupportsInitiallyDeferrableColumns())
	assert.False(t, d.NeedsRawIndexQuery())
}

func TestDialect_ConvertDefault(t *testing.T) {
	d := New(nil, dialect.Options{})

	tests := []struct {
		name     string
		raw      any
		dataType catalog.SQLType
		want     any
	}{
		{"varchar cast", "'draft'::character varying", catalog.VarChar, "draft"},
		{"text array", "'{}'::text[]", catalog.Array, "{}"},
		{"negative", "(-1)", catalog.Integer, int64(-1)},
		{"numeric cast", "'12.5'::numeric(10,2)", catalog.Numeric, 12.5},
		{"null cast", "NULL::character varying", catalog.VarChar, nil},
		{"boolean", "true", catalog.Boolean, true},
		{"serial", "nextval('orders_id_seq'::regclass)", catalog.Integer, schema.Function("nextval('orders_id_seq'::regclass)")},
		{"now literal", "'now'::text", catalog.TimestampTZ, schema.Function("'now'::text")},
		{"quoted type", `'a'::"char"`, catalog.Char, "a"},
		{"cast inside literal", "'a::b'::text", catalog.VarChar, "a::b"},
		{"bit string", `B'101'::"bit"`, catalog.Bit, int64(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.ConvertDefault(tt.raw, tt.dataType, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDialect_ColumnType(t *testing.T) {
	d := New(nil, dialect.Options{})

	assert.Equal(t, "serial", d.ColumnType("int4", true))
	assert.Equal(t, "bigserial", d.ColumnType("int8", true))
	assert.Equal(t, "integer", d.ColumnType("int4", false))
	assert.Equal(t, "integer[]", d.ColumnType("_int4", false))
	assert.Equal(t, "char", d.ColumnType("bpchar", false))
	assert.Equal(t, "timestamptz", d.ColumnType("timestamptz", true))
}

func TestSQLType(t *testing.T) {
	assert.Equal(t, catalog.Integer, sqlType("integer", "int4"))
	assert.Equal(t, catalog.Array, sqlType("ARRAY", "_text"))
	assert.Equal(t, catalog.VarChar, sqlType("text", "text"))
	assert.Equal(t, catalog.TimestampTZ, sqlType("timestamp with time zone", "timestamptz"))
	assert.Equal(t, catalog.Other, sqlType("USER-DEFINED", "mood"))
}

func TestFindSequencesSQL_QuotesSchema(t *testing.T) {
	d := New(nil, dialect.Options{})
	assert.Contains(t, d.FindSequencesSQL("o'neil"), "n.nspname = 'o''neil'")
}

func TestDialect_AutoIncrementFromRecord(t *testing.T) {
	d := New(nil, dialect.Options{})
	auto, err := d.IsColumnAutoIncrement(context.Background(), "public", "orders",
		catalog.Record{catalog.FieldIsAutoIncrement: "YES"})
	require.NoError(t, err)
	assert.True(t, auto)
}
