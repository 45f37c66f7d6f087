// Package oracle implements the Oracle dialect and metadata catalog.
//
// No Oracle driver is linked into dbsnap; callers wrap their own
// connection as a database.DB and build the dialect through the registry.
package oracle

import (
	"context"
	"strings"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/database"
	"github.com/koustreak/dbsnap/internal/dialect"
	"github.com/koustreak/dbsnap/internal/errs"
)

// Name is the registry key of this dialect.
const Name = "oracle"

func init() {
	dialect.Register(Name, func(db database.DB, opts dialect.Options) (dialect.Dialect, catalog.Catalog) {
		return New(db, opts), NewCatalog(db)
	})
}

var systemSchemas = map[string]bool{
	"SYS": true, "SYSTEM": true, "OUTLN": true, "XDB": true, "MDSYS": true,
	"CTXSYS": true, "DBSNMP": true, "ORDSYS": true, "WMSYS": true, "APPQOSSYS": true,
}

// Dialect is the Oracle dialect. Schemas are owners and are upper-cased.
type Dialect struct {
	dialect.Base
	db database.DB
}

// New returns the Oracle dialect reading view text through db.
func New(db database.DB, opts dialect.Options) *Dialect {
	return &Dialect{Base: dialect.NewBase(opts), db: db}
}

func (d *Dialect) Name() string { return Name }

// ResolveSchema keeps "" when no default is configured; the snapshot
// then asks CurrentSchema.
func (d *Dialect) ResolveSchema(requested string) string {
	return strings.ToUpper(d.ResolveSchemaOr(requested, ""))
}

// CurrentSchema returns the session's current schema, which is the
// login user unless ALTER SESSION SET CURRENT_SCHEMA changed it.
func (d *Dialect) CurrentSchema(ctx context.Context) (string, error) {
	names, err := database.QueryStrings(ctx, d.db, `SELECT SYS_CONTEXT('USERENV', 'CURRENT_SCHEMA') FROM DUAL`)
	if err != nil {
		return "", err
	}
	if len(names) == 0 || strings.TrimSpace(names[0]) == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "oracle session has no current schema; set snapshot.dialect.default_schema")
	}
	return strings.TrimSpace(names[0]), nil
}

func (d *Dialect) Coordinates(schema string) (string, string) {
	return "", schema
}

// IsSystemTable also hides recycle-bin (BIN$) and internal ($-named) tables.
func (d *Dialect) IsSystemTable(_, schemaName, name string) bool {
	return systemSchemas[strings.ToUpper(schemaName)] || strings.Contains(name, "$")
}

func (d *Dialect) IsSystemView(_, schemaName, _ string) bool {
	return systemSchemas[strings.ToUpper(schemaName)]
}

func (d *Dialect) SupportsSequences() bool                  { return true }
func (d *Dialect) SupportsInitiallyDeferrableColumns() bool { return true }

// NeedsRawIndexQuery is true: the driver's index metadata call runs
// ANALYZE on the table, so indexes are read from ALL_IND_COLUMNS instead.
func (d *Dialect) NeedsRawIndexQuery() bool { return true }

func (d *Dialect) RawIndexQuery(schema, table string) string {
	return `SELECT INDEX_NAME, 3 AS TYPE, TABLE_NAME, COLUMN_NAME, COLUMN_POSITION AS ORDINAL_POSITION, ` +
		`NULL AS FILTER_CONDITION FROM ALL_IND_COLUMNS ` +
		`WHERE TABLE_OWNER = ` + database.QuoteLiteral(schema) +
		` AND TABLE_NAME = ` + database.QuoteLiteral(table) +
		` ORDER BY INDEX_NAME, ORDINAL_POSITION`
}

func (d *Dialect) ColumnType(typeName string, _ bool) string {
	return strings.ToUpper(strings.TrimSpace(typeName))
}

func (d *Dialect) ViewDefinition(ctx context.Context, schema, view string) (string, error) {
	const q = `SELECT TEXT FROM ALL_VIEWS WHERE OWNER = ? AND VIEW_NAME = ?`

	defs, err := database.QueryStrings(ctx, d.db, database.Rebind(database.PlaceholderColon, q), schema, view)
	if err != nil {
		return "", err
	}
	if len(defs) == 0 {
		return "", nil
	}
	return strings.TrimSpace(defs[0]), nil
}

func (d *Dialect) FindSequencesSQL(schema string) string {
	return `SELECT SEQUENCE_NAME AS NAME FROM ALL_SEQUENCES WHERE SEQUENCE_OWNER = ` +
		database.QuoteLiteral(schema)
}
