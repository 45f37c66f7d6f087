// Package postgres implements the PostgreSQL dialect and metadata catalog.
package postgres

import (
	"context"
	"regexp"
	"strings"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/database"
	"github.com/koustreak/dbsnap/internal/dialect"
	"github.com/koustreak/dbsnap/internal/schema"
)

// Name is the registry key of this dialect.
const Name = "postgres"

func init() {
	dialect.Register(Name, func(db database.DB, opts dialect.Options) (dialect.Dialect, catalog.Catalog) {
		return New(db, opts), NewCatalog(db)
	})
}

var (
	trailingCast   = regexp.MustCompile(`::"?[A-Za-z_][\w. ]*"?(\[\])?(\(\d+(,\s*\d+)?\))?$`)
	parenthesized  = regexp.MustCompile(`^\((-?[\d.]+|'.*')\)$`)
	specialLiteral = map[string]bool{
		"now": true, "today": true, "tomorrow": true, "yesterday": true,
		"infinity": true, "-infinity": true, "epoch": true, "allballs": true,
	}
)

// Dialect is the PostgreSQL dialect.
type Dialect struct {
	dialect.Base
	db database.DB
}

// New returns the PostgreSQL dialect reading view text through db.
func New(db database.DB, opts dialect.Options) *Dialect {
	return &Dialect{Base: dialect.NewBase(opts), db: db}
}

func (d *Dialect) Name() string { return Name }

func (d *Dialect) ResolveSchema(requested string) string {
	return d.ResolveSchemaOr(requested, "public")
}

func (d *Dialect) Coordinates(schema string) (string, string) {
	return "", schema
}

func (d *Dialect) IsSystemTable(_, schemaName, name string) bool {
	return isSystemSchema(schemaName) || strings.HasPrefix(name, "pg_")
}

func (d *Dialect) IsSystemView(_, schemaName, name string) bool {
	return isSystemSchema(schemaName) || strings.HasPrefix(name, "pg_")
}

func isSystemSchema(s string) bool {
	return s == "pg_catalog" || s == "information_schema" || strings.HasPrefix(s, "pg_toast")
}

func (d *Dialect) SupportsSequences() bool                  { return true }
func (d *Dialect) SupportsInitiallyDeferrableColumns() bool { return true }

// ConvertDefault strips the type casts PostgreSQL attaches to literal
// defaults before normalizing the value.
func (d *Dialect) ConvertDefault(raw any, dataType catalog.SQLType, size, digits int) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return d.Base.ConvertDefault(raw, dataType, size, digits)
	}

	v := stripCasts(strings.TrimSpace(s))
	if lit, quoted := dialect.Unquote(v); quoted && specialLiteral[strings.ToLower(lit)] {
		return schema.Function(s), nil
	}
	return dialect.ConvertValue(v, dataType, digits)
}

// stripCasts removes trailing ::type casts and the parentheses PostgreSQL
// puts around negative numbers and cast literals.
func stripCasts(s string) string {
	for {
		prev := s
		s = trailingCast.ReplaceAllString(s, "")
		if m := parenthesized.FindStringSubmatch(s); m != nil {
			s = m[1]
		}
		if s == prev {
			return s
		}
	}
}

func (d *Dialect) ColumnType(typeName string, autoIncrement bool) string {
	return columnType(strings.TrimSpace(typeName), autoIncrement)
}

// ViewDefinition returns the reconstructed SELECT of view.
func (d *Dialect) ViewDefinition(ctx context.Context, schemaName, view string) (string, error) {
	const q = `SELECT pg_get_viewdef(format('%I.%I', $1::text, $2::text)::regclass, true)`

	row, err := d.db.QueryRow(ctx, q, schemaName, view)
	if err != nil {
		return "", err
	}
	var def *string
	if err := row.Scan(&def); err != nil {
		return "", err
	}
	if def == nil {
		return "", nil
	}
	return strings.TrimSpace(*def), nil
}

// FindSequencesSQL lists the sequences of schema.
func (d *Dialect) FindSequencesSQL(schemaName string) string {
	return `SELECT c.relname::text AS sequence_name
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind = 'S'
		  AND n.nspname = ` + database.QuoteLiteral(schemaName) + `
		ORDER BY c.relname`
}
