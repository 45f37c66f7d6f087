// Package dialect describes how one database product differs when its
// structure is read: schema coordinates, system object filtering, value
// normalization and the few catalog calls that need product SQL.
//
// Product packages (postgres, mysql, sqlite, oracle) implement Dialect and
// register a Factory that also builds the matching catalog.Catalog.
package dialect

import (
	"context"
	"strings"

	"github.com/koustreak/dbsnap/internal/catalog"
)

// Dialect is the per-product seam of the snapshot engine.
type Dialect interface {
	// Name identifies the product ("postgres", "mysql", …).
	Name() string

	// ResolveSchema maps a requested schema name to the one to read;
	// "" resolves to the connection's default.
	ResolveSchema(requested string) string

	// Coordinates returns the catalog and schema arguments for catalog
	// calls against schema. Either may be "".
	Coordinates(schema string) (catalogName, schemaName string)

	IsSystemTable(catalogName, schemaName, name string) bool
	IsSystemView(catalogName, schemaName, name string) bool

	// IsBookkeepingTable reports whether name is one of the migration
	// tool's own tables (change-log or change-log lock).
	IsBookkeepingTable(name string) bool

	// ChangeLogTableName is the table whose presence the snapshot records.
	ChangeLogTableName() string

	SupportsSequences() bool
	SupportsInitiallyDeferrableColumns() bool

	// NeedsRawIndexQuery reports whether indexes must be read with
	// RawIndexQuery instead of Catalog.IndexInfo.
	NeedsRawIndexQuery() bool
	RawIndexQuery(schema, table string) string

	// IsColumnAutoIncrement decides whether the column row col of table
	// is generated by the database.
	IsColumnAutoIncrement(ctx context.Context, schema, table string, col catalog.Record) (bool, error)

	// ConvertDefault turns a raw COLUMN_DEF into a typed value.
	ConvertDefault(raw any, dataType catalog.SQLType, size, digits int) (any, error)

	// ColumnType returns the canonical type name for TYPE_NAME.
	ColumnType(typeName string, autoIncrement bool) string

	ViewDefinition(ctx context.Context, schema, view string) (string, error)

	// FindSequencesSQL returns a statement whose first column is the
	// sequence name.
	FindSequencesSQL(schema string) string
}

// Options carries settings shared by every dialect.
type Options struct {
	ChangeLogTable     string `yaml:"changelog_table"`
	ChangeLogLockTable string `yaml:"changelog_lock_table"`
	DefaultSchema      string `yaml:"default_schema"`
}

// DefaultOptions returns the standard bookkeeping table names.
func DefaultOptions() Options {
	return Options{
		ChangeLogTable:     "databasechangelog",
		ChangeLogLockTable: "databasechangeloglock",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ChangeLogTable == "" {
		o.ChangeLogTable = d.ChangeLogTable
	}
	if o.ChangeLogLockTable == "" {
		o.ChangeLogLockTable = d.ChangeLogLockTable
	}
	return o
}

// Base implements the parts of Dialect most products share. Product
// dialects embed it and override what differs.
type Base struct {
	opts Options
}

// NewBase returns a Base for opts with empty names defaulted.
func NewBase(opts Options) Base {
	return Base{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (b Base) Options() Options { return b.opts }

// ResolveSchemaOr returns requested, else the configured default, else def.
func (b Base) ResolveSchemaOr(requested, def string) string {
	switch {
	case requested != "":
		return requested
	case b.opts.DefaultSchema != "":
		return b.opts.DefaultSchema
	}
	return def
}

func (b Base) IsBookkeepingTable(name string) bool {
	return strings.EqualFold(name, b.opts.ChangeLogTable) ||
		strings.EqualFold(name, b.opts.ChangeLogLockTable)
}

func (b Base) ChangeLogTableName() string { return b.opts.ChangeLogTable }

func (b Base) IsSystemView(_, _, _ string) bool { return false }

func (b Base) SupportsSequences() bool                  { return false }
func (b Base) SupportsInitiallyDeferrableColumns() bool { return false }
func (b Base) NeedsRawIndexQuery() bool                 { return false }
func (b Base) RawIndexQuery(_, _ string) string         { return "" }
func (b Base) FindSequencesSQL(_ string) string         { return "" }

// IsColumnAutoIncrement reads IS_AUTOINCREMENT from the column row.
func (b Base) IsColumnAutoIncrement(_ context.Context, _, _ string, col catalog.Record) (bool, error) {
	return col.Bool(catalog.FieldIsAutoIncrement), nil
}

func (b Base) ConvertDefault(raw any, dataType catalog.SQLType, size, digits int) (any, error) {
	return ConvertValue(raw, dataType, digits)
}

func (b Base) ColumnType(typeName string, _ bool) string {
	return strings.TrimSpace(typeName)
}
