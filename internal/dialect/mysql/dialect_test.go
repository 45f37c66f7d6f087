package mysql

import (
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

func TestDialect_Coordinates(t *testing.T) {
	d := New(nil, dialect.Options{})
	assert.Equal(t, "", d.ResolveSchema(""))
	assert.Equal(t, "shop", New(nil, dialect.Options{DefaultSchema: "shop"}).ResolveSchema(""))

	cat, sch := d.Coordinates("shop")
	assert.Equal(t, "shop", cat)
	assert.Empty(t, sch)

	assert.True(t, d.IsSystemTable("mysql", "", "user"))
	assert.True(t, d.IsSystemView("SYS", "", "x"))
	assert.False(t, d.IsSystemTable("shop", "", "orders"))

	assert.False(t, d.SupportsSequences())
	assert.False(t, d.SupportsInitiallyDeferrableColumns())
}

func TestDialect_ConvertDefault(t *testing.T) {
	d := New(nil, dialect.Options{})

	got, err := d.ConvertDefault("CURRENT_TIMESTAMP", catalog.Timestamp, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, schema.Function("CURRENT_TIMESTAMP"), got)

	got, err = d.ConvertDefault([]byte("pending"), catalog.VarChar, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, "pending", got)

	got, err = d.ConvertDefault("1", catalog.Bit, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = d.ConvertDefault("b'00000101'", catalog.Bit, 8, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)

	got, err = d.ConvertDefault("2020", sqlType("year", "year"), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2020), got)
}

func TestSQLType(t *testing.T) {
	assert.Equal(t, catalog.Bit, sqlType("tinyint", "tinyint(1)"))
	assert.Equal(t, catalog.TinyInt, sqlType("tinyint", "tinyint(4)"))
	assert.Equal(t, catalog.Integer, sqlType("int", "int unsigned"))
	assert.Equal(t, catalog.LongVarChar, sqlType("json", "json"))
	assert.Equal(t, catalog.Other, sqlType("geometry", "geometry"))
	assert.Equal(t, catalog.SmallInt, sqlType("year", "year"))
	assert.Equal(t, catalog.Date, sqlType("date", "date"))

	assert.Equal(t, "INT UNSIGNED", typeName("int", "int(10) unsigned"))
	assert.Equal(t, "VARCHAR", typeName("varchar", "varchar(20)"))
}
