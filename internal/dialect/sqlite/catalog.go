package sqlite

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/database"
)

var (
	declaredType = regexp.MustCompile(`^\s*([^(]*?)\s*(?:\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\))?\s*$`)
	whereClause  = regexp.MustCompile(`(?is)\bWHERE\b(.*)$`)
	autoInc      = regexp.MustCompile(`(?i)\bAUTOINCREMENT\b`)
)

// Catalog answers metadata calls from sqlite_master and the table-valued
// PRAGMA functions. The schema argument names an attached database
// ("main" for the primary one).
type Catalog struct {
	db database.DB
}

// NewCatalog returns a Catalog reading through db.
func NewCatalog(db database.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) run(ctx context.Context, q string, args ...any) (catalog.Cursor, error) {
	return catalog.Run(ctx, c.db, database.PlaceholderQuestion, q, args...)
}

func (c *Catalog) collect(ctx context.Context, q string, args ...any) ([]catalog.Record, error) {
	cur, err := c.run(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return catalog.Collect(cur)
}

func master(schema string) string {
	return database.QuoteIdent(schemaOrMain(schema)) + ".sqlite_master"
}

func schemaOrMain(schema string) string {
	if schema == "" {
		return "main"
	}
	return schema
}

func (c *Catalog) Tables(ctx context.Context, _, schema string, types []string) (catalog.Cursor, error) {
	q := fmt.Sprintf(`
		SELECT name AS table_name,
		       CASE type WHEN 'view' THEN 'VIEW' ELSE 'TABLE' END AS table_type
		FROM %s
		WHERE type IN ('table', 'view')
		ORDER BY type, name`, master(schema))

	records, err := c.collect(ctx, q)
	if err != nil {
		return nil, err
	}

	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	out := make([]catalog.Record, 0, len(records))
	for _, r := range records {
		if len(types) > 0 && !want[r.String(catalog.FieldTableType)] {
			continue
		}
		r[catalog.FieldTableCat] = nil
		r[catalog.FieldTableSchem] = schemaOrMain(schema)
		r[catalog.FieldRemarks] = nil
		out = append(out, r)
	}
	return catalog.NewCursor(out...), nil
}

func (c *Catalog) Columns(ctx context.Context, _, schema string) (catalog.Cursor, error) {
	q := fmt.Sprintf(`
		SELECT m.name       AS table_name,
		       m.sql        AS table_sql,
		       p.name       AS column_name,
		       p.type       AS declared_type,
		       p."notnull"  AS not_null,
		       p.dflt_value AS column_def,
		       p.pk         AS pk
		FROM %s m, pragma_table_info(m.name, ?) p
		WHERE m.type IN ('table', 'view')
		ORDER BY m.name, p.cid`, master(schema))

	records, err := c.collect(ctx, q, schemaOrMain(schema))
	if err != nil {
		return nil, err
	}

	pkCount := make(map[string]int)
	for _, r := range records {
		if r.Int("PK") > 0 {
			pkCount[r.String(catalog.FieldTableName)]++
		}
	}

	for _, r := range records {
		name, size, digits := parseDeclaredType(r.String("DECLARED_TYPE"))
		r[catalog.FieldTypeName] = name
		r[catalog.FieldDataType] = int(sqlType(name))
		r[catalog.FieldColumnSize] = size
		r[catalog.FieldDecimalDigits] = digits
		r[catalog.FieldRemarks] = nil

		nullable := catalog.ColumnNullable
		if r.Bool("NOT_NULL") {
			nullable = catalog.ColumnNoNulls
		}
		r[catalog.FieldNullable] = nullable

		table := r.String(catalog.FieldTableName)
		rowid := r.Int("PK") == 1 && pkCount[table] == 1 && name == "INTEGER"
		if rowid && autoInc.MatchString(r.String("TABLE_SQL")) {
			r[catalog.FieldIsAutoIncrement] = "YES"
		} else {
			r[catalog.FieldIsAutoIncrement] = "NO"
		}
	}
	return catalog.NewCursor(records...), nil
}

// ExportedKeys scans the foreign key lists of every table for references
// to table. SQLite does not name foreign keys, so FK_NAME is synthesized
// from the referencing table and the key id.
func (c *Catalog) ExportedKeys(ctx context.Context, _, schema, table string) (catalog.Cursor, error) {
	q := fmt.Sprintf(`
		SELECT m.name      AS fktable_name,
		       f.id        AS fk_id,
		       f.seq       AS fk_seq,
		       f."from"    AS fkcolumn_name,
		       f."to"      AS pkcolumn_name,
		       f.on_update AS on_update,
		       f.on_delete AS on_delete
		FROM %s m, pragma_foreign_key_list(m.name, ?) f
		WHERE m.type = 'table'
		  AND f."table" = ? COLLATE NOCASE
		ORDER BY m.name, f.id, f.seq`, master(schema))

	records, err := c.collect(ctx, q, schemaOrMain(schema), table)
	if err != nil {
		return nil, err
	}

	var pkCols []string
	for _, r := range records {
		if r.IsNull(catalog.FieldPKColumnName) {
			if pkCols == nil {
				if pkCols, err = c.primaryKeyColumns(ctx, schema, table); err != nil {
					return nil, err
				}
			}
			if seq := r.Int("FK_SEQ"); seq < len(pkCols) {
				r[catalog.FieldPKColumnName] = pkCols[seq]
			}
		}
		fkTable := r.String(catalog.FieldFKTableName)
		r[catalog.FieldPKTableName] = table
		r[catalog.FieldFKTableSchem] = schemaOrMain(schema)
		r[catalog.FieldKeySeq] = r.Int("FK_SEQ") + 1
		r[catalog.FieldFKName] = "fk_" + fkTable + "_" + strconv.Itoa(r.Int("FK_ID"))
		r[catalog.FieldUpdateRule] = ruleCode(r.String("ON_UPDATE"))
		r[catalog.FieldDeleteRule] = ruleCode(r.String("ON_DELETE"))
		r[catalog.FieldDeferrability] = catalog.KeyNotDeferrable
	}
	return catalog.NewCursor(records...), nil
}

// primaryKeyColumns returns the primary key columns of table in key order.
func (c *Catalog) primaryKeyColumns(ctx context.Context, schema, table string) ([]string, error) {
	const q = `SELECT name FROM pragma_table_info(?, ?) WHERE pk > 0 ORDER BY pk`
	return database.QueryStrings(ctx, c.db, q, table, schemaOrMain(schema))
}

func (c *Catalog) PrimaryKeys(ctx context.Context, _, schema, table string) (catalog.Cursor, error) {
	const q = `
		SELECT ?    AS table_name,
		       name AS column_name,
		       pk   AS key_seq,
		       NULL AS pk_name
		FROM pragma_table_info(?, ?)
		WHERE pk > 0
		ORDER BY name`

	return c.run(ctx, q, table, table, schemaOrMain(schema))
}

func (c *Catalog) IndexInfo(ctx context.Context, _, schema, table string, unique, _ bool) (catalog.Cursor, error) {
	q := fmt.Sprintf(`
		SELECT ?                AS table_name,
		       il.name          AS index_name,
		       NOT il."unique"  AS non_unique,
		       3                AS type,
		       ii.seqno + 1     AS ordinal_position,
		       ii.name          AS column_name,
		       il.partial       AS partial,
		       s.sql            AS index_sql
		FROM pragma_index_list(?, ?) il
		JOIN pragma_index_info(il.name, ?) ii
		LEFT JOIN %s s ON s.type = 'index' AND s.name = il.name
		ORDER BY non_unique, il.name, ii.seqno`, master(schema))

	sch := schemaOrMain(schema)
	records, err := c.collect(ctx, q, table, table, sch, sch)
	if err != nil {
		return nil, err
	}

	out := make([]catalog.Record, 0, len(records))
	for _, r := range records {
		if unique && r.Bool(catalog.FieldNonUnique) {
			continue
		}
		if r.Bool("PARTIAL") {
			if m := whereClause.FindStringSubmatch(r.String("INDEX_SQL")); m != nil {
				r[catalog.FieldFilterCondition] = strings.TrimSpace(m[1])
			}
		}
		out = append(out, r)
	}
	return catalog.NewCursor(out...), nil
}

func (c *Catalog) Query(ctx context.Context, sql string, args ...any) (catalog.Cursor, error) {
	return c.run(ctx, sql, args...)
}

func ruleCode(action string) int {
	switch strings.ToUpper(action) {
	case "CASCADE":
		return catalog.KeyCascade
	case "RESTRICT":
		return catalog.KeyRestrict
	case "SET NULL":
		return catalog.KeySetNull
	case "SET DEFAULT":
		return catalog.KeySetDefault
	}
	return catalog.KeyNoAction
}

// parseDeclaredType splits "DECIMAL(10, 2)" into its name and modifiers.
func parseDeclaredType(declared string) (name string, size, digits int) {
	m := declaredType.FindStringSubmatch(declared)
	if m == nil {
		return strings.ToUpper(strings.TrimSpace(declared)), 0, 0
	}
	name = strings.ToUpper(m[1])
	if m[2] != "" {
		size, _ = strconv.Atoi(m[2])
	}
	if m[3] != "" {
		digits, _ = strconv.Atoi(m[3])
	}
	return name, size, digits
}

// sqlType maps a declared type to a type code, recognizing common type
// names first and falling back to SQLite's affinity rules.
func sqlType(name string) catalog.SQLType {
	switch name {
	case "BOOLEAN", "BOOL":
		return catalog.Boolean
	case "DATE":
		return catalog.Date
	case "DATETIME", "TIMESTAMP":
		return catalog.Timestamp
	case "TIME":
		return catalog.Time
	case "BIGINT":
		return catalog.BigInt
	case "SMALLINT":
		return catalog.SmallInt
	case "TINYINT":
		return catalog.TinyInt
	case "CHAR", "CHARACTER", "NCHAR":
		return catalog.Char
	case "CLOB":
		return catalog.Clob
	case "REAL":
		return catalog.Real
	case "FLOAT":
		return catalog.Float
	case "DECIMAL":
		return catalog.Decimal
	}

	switch {
	case strings.Contains(name, "INT"):
		return catalog.Integer
	case strings.Contains(name, "CHAR"), strings.Contains(name, "CLOB"), strings.Contains(name, "TEXT"):
		return catalog.VarChar
	case name == "", strings.Contains(name, "BLOB"):
		return catalog.Blob
	case strings.Contains(name, "REAL"), strings.Contains(name, "FLOA"), strings.Contains(name, "DOUB"):
		return catalog.Double
	}
	return catalog.Numeric
}
