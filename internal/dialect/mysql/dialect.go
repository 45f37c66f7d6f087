// Package mysql implements the MySQL dialect and metadata catalog.
package mysql

import (
	"context"
	"strings"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/database"
	"github.com/koustreak/dbsnap/internal/dialect"
)

// Name is the registry key of this dialect.
const Name = "mysql"

func init() {
	dialect.Register(Name, func(db database.DB, opts dialect.Options) (dialect.Dialect, catalog.Catalog) {
		return New(db, opts), NewCatalog(db)
	})
}

var systemDatabases = map[string]bool{
	"information_schema": true,
	"mysql":              true,
	"performance_schema": true,
	"sys":                true,
}

// Dialect is the MySQL dialect. The requested schema names a database.
type Dialect struct {
	dialect.Base
	db database.DB
}

// New returns the MySQL dialect reading view text through db.
func New(db database.DB, opts dialect.Options) *Dialect {
	return &Dialect{Base: dialect.NewBase(opts), db: db}
}

func (d *Dialect) Name() string { return Name }

// ResolveSchema keeps "" when no default is configured; catalog calls then
// read the connection's current database.
func (d *Dialect) ResolveSchema(requested string) string {
	return d.ResolveSchemaOr(requested, "")
}

func (d *Dialect) Coordinates(schema string) (string, string) {
	return schema, ""
}

func (d *Dialect) IsSystemTable(catalogName, _, _ string) bool {
	return systemDatabases[strings.ToLower(catalogName)]
}

func (d *Dialect) IsSystemView(catalogName, _, _ string) bool {
	return systemDatabases[strings.ToLower(catalogName)]
}

func (d *Dialect) ColumnType(typeName string, _ bool) string {
	return strings.ToUpper(strings.TrimSpace(typeName))
}

func (d *Dialect) ViewDefinition(ctx context.Context, schema, view string) (string, error) {
	const q = `
		SELECT view_definition
		FROM information_schema.views
		WHERE table_schema = ` + currentDB + `
		  AND table_name   = ?`

	rows, err := database.QueryStrings(ctx, d.db, q, schema, view)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return strings.TrimSpace(rows[0]), nil
}
