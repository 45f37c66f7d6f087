package dialect

import (
	"testing"
	"time"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/errs"
	"github.com/koustreak/dbsnap/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertValue(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		dataType catalog.SQLType
		digits   int
		want     any
	}{
		{"nil", nil, catalog.Integer, 0, nil},
		{"null keyword", "NULL", catalog.VarChar, 0, nil},
		{"quoted text", "'it''s'", catalog.VarChar, 0, "it's"},
		{"bare text", "pending", catalog.VarChar, 0, "pending"},
		{"bytes", []byte("'x'"), catalog.Char, 0, "x"},
		{"integer", "42", catalog.Integer, 0, int64(42)},
		{"quoted integer", "'-7'", catalog.BigInt, 0, int64(-7)},
		{"decimal", "12.50", catalog.Decimal, 2, 12.5},
		{"numeric whole", "10", catalog.Numeric, 0, int64(10)},
		{"bool word", "true", catalog.Boolean, 0, true},
		{"bool digit", "0", catalog.Bit, 0, false},
		{"bit literal", "b'1'", catalog.Bit, 0, true},
		{"bit string", "B'101'", catalog.Bit, 0, int64(5)},
		{"bit byte", "b'00000101'", catalog.Bit, 0, int64(5)},
		{"keyword function", "CURRENT_TIMESTAMP", catalog.Timestamp, 0, schema.Function("CURRENT_TIMESTAMP")},
		{"call", "now()", catalog.TimestampTZ, 0, schema.Function("now()")},
		{"parenthesized", "(datetime('now'))", catalog.VarChar, 0, schema.Function("(datetime('now'))")},
		{"nextval", "nextval('orders_id_seq'::regclass)", catalog.Integer, 0, schema.Function("nextval('orders_id_seq'::regclass)")},
		{"date", "'2024-02-29'", catalog.Date, 0, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"timestamp", "2024-02-29 10:11:12", catalog.Timestamp, 0, time.Date(2024, 2, 29, 10, 11, 12, 0, time.UTC)},
		{"already typed", int64(3), catalog.Integer, 0, int64(3)},
		{"other type", "'{}'", catalog.Other, 0, "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertValue(tt.raw, tt.dataType, tt.digits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertValue_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		dataType catalog.SQLType
	}{
		{"integer", "'abc'", catalog.Integer},
		{"decimal", "twelve", catalog.Decimal},
		{"bool", "maybe", catalog.Boolean},
		{"date", "'not-a-date'", catalog.Date},
		{"bit string", "b'012'", catalog.Bit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertValue(tt.raw, tt.dataType, 0)
			require.Error(t, err)
			assert.True(t, errs.IsInvalidData(err))
		})
	}
}

func TestIsFunction(t *testing.T) {
	assert.True(t, IsFunction("current_date"))
	assert.True(t, IsFunction("gen_random_uuid()"))
	assert.True(t, IsFunction("pg_catalog.now()"))
	assert.False(t, IsFunction("'now()'"))
	assert.False(t, IsFunction("12"))
}

func TestUnquote(t *testing.T) {
	s, ok := Unquote("'a''b'")
	assert.True(t, ok)
	assert.Equal(t, "a'b", s)

	s, ok = Unquote("abc")
	assert.False(t, ok)
	assert.Equal(t, "abc", s)
}
