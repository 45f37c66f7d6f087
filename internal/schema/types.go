// Package schema holds the structural objects a snapshot is made of.
//
// Objects reference each other by pointer: a Column points at its owning
// Table or View, keys and indexes point at their Table. The snapshot
// builds these graphs once and never mutates them afterwards.
package schema

import (
	"strings"

	"github.com/koustreak/dbsnap/internal/catalog"
)

// Nullability is a column's tri-state NULL permission.
type Nullability int

const (
	NullabilityUnknown Nullability = iota
	NotNull
	Nullable
)

func (n Nullability) String() string {
	switch n {
	case NotNull:
		return "not_null"
	case Nullable:
		return "nullable"
	default:
		return "unknown"
	}
}

// NullabilityFromCode maps a catalog NULLABLE code.
func NullabilityFromCode(code int) Nullability {
	switch code {
	case catalog.ColumnNoNulls:
		return NotNull
	case catalog.ColumnNullable:
		return Nullable
	default:
		return NullabilityUnknown
	}
}

// Table is a base table (or alias) of the snapshot schema.
type Table struct {
	Name    string
	Schema  string
	Remarks string
	Columns []*Column // discovery order
}

// Column returns the table's column named name, compared case-insensitively.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// View is a named stored query.
type View struct {
	Name       string
	Schema     string
	Definition string
	Columns    []*Column
}

// Column is a column of exactly one Table or View.
type Column struct {
	Name          string
	Table         *Table
	View          *View
	DataType      catalog.SQLType
	ColumnSize    int
	DecimalDigits int
	Nullable      Nullability
	PrimaryKey    bool
	AutoIncrement bool
	DefaultValue  any
	TypeName      string
	Remarks       string
}

// OwnerName returns the name of the owning Table or View.
func (c *Column) OwnerName() string {
	switch {
	case c.Table != nil:
		return c.Table.Name
	case c.View != nil:
		return c.View.Name
	}
	return ""
}

// Key returns "owner.column", the snapshot's column lookup key.
func (c *Column) Key() string {
	return ColumnKey(c.OwnerName(), c.Name)
}

// ColumnKey builds the "owner.column" lookup key.
func ColumnKey(owner, column string) string {
	return owner + "." + column
}

// Sequence is a schema-level number generator.
type Sequence struct {
	Name   string
	Schema string
}

// Function is a column default computed by the database (CURRENT_TIMESTAMP,
// nextval('seq'), …) rather than a literal.
type Function string

func (f Function) String() string { return string(f) }
