// Package sqlite implements the SQLite dialect and metadata catalog.
package sqlite

import (
	"context"
	"regexp"
	"strings"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/database"
	"github.com/koustreak/dbsnap/internal/dialect"
)

// Name is the registry key of this dialect.
const Name = "sqlite"

func init() {
	dialect.Register(Name, func(db database.DB, opts dialect.Options) (dialect.Dialect, catalog.Catalog) {
		return New(db, opts), NewCatalog(db)
	})
}

var viewBody = regexp.MustCompile(`(?is)^\s*CREATE\s+(?:TEMP\s+|TEMPORARY\s+)?VIEW\s+.*?\bAS\b\s*(.*)$`)

// Dialect is the SQLite dialect. Schemas are attached database names.
type Dialect struct {
	dialect.Base
	db database.DB
}

// New returns the SQLite dialect reading view text through db.
func New(db database.DB, opts dialect.Options) *Dialect {
	return &Dialect{Base: dialect.NewBase(opts), db: db}
}

func (d *Dialect) Name() string { return Name }

func (d *Dialect) ResolveSchema(requested string) string {
	return d.ResolveSchemaOr(requested, "main")
}

func (d *Dialect) Coordinates(schema string) (string, string) {
	return "", schema
}

func (d *Dialect) IsSystemTable(_, _, name string) bool {
	return strings.HasPrefix(strings.ToLower(name), "sqlite_")
}

func (d *Dialect) IsSystemView(_, _, name string) bool {
	return strings.HasPrefix(strings.ToLower(name), "sqlite_")
}

func (d *Dialect) ColumnType(typeName string, _ bool) string {
	return strings.ToUpper(strings.TrimSpace(typeName))
}

// ViewDefinition returns the SELECT part of the stored CREATE VIEW text.
func (d *Dialect) ViewDefinition(ctx context.Context, schema, view string) (string, error) {
	q := `SELECT sql FROM ` + master(schema) + ` WHERE type = 'view' AND name = ?`

	defs, err := database.QueryStrings(ctx, d.db, q, view)
	if err != nil {
		return "", err
	}
	if len(defs) == 0 {
		return "", nil
	}
	if m := viewBody.FindStringSubmatch(defs[0]); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	return strings.TrimSpace(defs[0]), nil
}
