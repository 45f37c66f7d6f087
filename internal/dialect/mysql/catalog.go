package mysql

import (
	"context"
	"strings"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/database"
)

// currentDB resolves an empty catalog argument to the connection's database.
const currentDB = `COALESCE(NULLIF(?, ''), DATABASE())`

// Catalog answers metadata calls from information_schema. MySQL has no
// schema level: the database is the catalog.
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

func (c *Catalog) Tables(ctx context.Context, catalogName, _ string, types []string) (catalog.Cursor, error) {
	const q = `
		SELECT table_schema AS table_cat,
		       table_schema AS table_schem,
		       table_name   AS table_name,
		       CASE table_type
		            WHEN 'BASE TABLE'  THEN 'TABLE'
		            WHEN 'SYSTEM VIEW' THEN 'SYSTEM VIEW'
		            ELSE table_type END AS table_type,
		       CASE WHEN table_type = 'VIEW' THEN NULL
		            ELSE NULLIF(table_comment, '') END AS remarks
		FROM information_schema.tables
		WHERE table_schema = ` + currentDB + `
		ORDER BY table_type, table_name`

	cur, err := c.run(ctx, q, catalogName)
	if err != nil {
		return nil, err
	}
	records, err := catalog.Collect(cur)
	if err != nil {
		return nil, err
	}

	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	kept := records[:0]
	for _, r := range records {
		if len(types) == 0 || want[r.String(catalog.FieldTableType)] {
			kept = append(kept, r)
		}
	}
	return catalog.NewCursor(kept...), nil
}

func (c *Catalog) Columns(ctx context.Context, catalogName, _ string) (catalog.Cursor, error) {
	const q = `
		SELECT table_name  AS table_name,
		       column_name AS column_name,
		       data_type   AS mysql_data_type,
		       column_type AS mysql_column_type,
		       COALESCE(character_maximum_length, numeric_precision, datetime_precision) AS column_size,
		       numeric_scale AS decimal_digits,
		       CASE is_nullable WHEN 'YES' THEN 1 ELSE 0 END AS nullable,
		       column_default AS column_def,
		       CASE WHEN extra LIKE '%auto_increment%' THEN 'YES' ELSE 'NO' END AS is_autoincrement,
		       NULLIF(column_comment, '') AS remarks
		FROM information_schema.columns
		WHERE table_schema = ` + currentDB + `
		ORDER BY table_name, ordinal_position`

	cur, err := c.run(ctx, q, catalogName)
	if err != nil {
		return nil, err
	}
	records, err := catalog.Collect(cur)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		dataType := r.String("MYSQL_DATA_TYPE")
		columnType := r.String("MYSQL_COLUMN_TYPE")
		r[catalog.FieldDataType] = int(sqlType(dataType, columnType))
		r[catalog.FieldTypeName] = typeName(dataType, columnType)
	}
	return catalog.NewCursor(records...), nil
}

func (c *Catalog) ExportedKeys(ctx context.Context, catalogName, _, table string) (catalog.Cursor, error) {
	const q = `
		SELECT kcu.referenced_table_name  AS pktable_name,
		       kcu.referenced_column_name AS pkcolumn_name,
		       kcu.table_schema           AS fktable_schem,
		       kcu.table_name             AS fktable_name,
		       kcu.column_name            AS fkcolumn_name,
		       kcu.ordinal_position       AS key_seq,
		       CASE rc.update_rule
		            WHEN 'CASCADE' THEN 0 WHEN 'RESTRICT' THEN 1 WHEN 'SET NULL' THEN 2
		            WHEN 'NO ACTION' THEN 3 WHEN 'SET DEFAULT' THEN 4 END AS update_rule,
		       CASE rc.delete_rule
		            WHEN 'CASCADE' THEN 0 WHEN 'RESTRICT' THEN 1 WHEN 'SET NULL' THEN 2
		            WHEN 'NO ACTION' THEN 3 WHEN 'SET DEFAULT' THEN 4 END AS delete_rule,
		       kcu.constraint_name        AS fk_name,
		       7                          AS deferrability
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
		  ON rc.constraint_schema = kcu.constraint_schema
		 AND rc.constraint_name   = kcu.constraint_name
		 AND rc.table_name        = kcu.table_name
		WHERE kcu.referenced_table_schema = ` + currentDB + `
		  AND kcu.referenced_table_name   = ?
		ORDER BY fktable_name, fk_name, key_seq`

	return c.run(ctx, q, catalogName, table)
}

func (c *Catalog) PrimaryKeys(ctx context.Context, catalogName, _, table string) (catalog.Cursor, error) {
	const q = `
		SELECT table_name       AS table_name,
		       column_name      AS column_name,
		       ordinal_position AS key_seq,
		       'PRIMARY'        AS pk_name
		FROM information_schema.key_column_usage
		WHERE table_schema    = ` + currentDB + `
		  AND table_name      = ?
		  AND constraint_name = 'PRIMARY'
		ORDER BY column_name`

	return c.run(ctx, q, catalogName, table)
}

// IndexInfo lists index columns from information_schema.statistics.
// MySQL has no partial indexes, so FILTER_CONDITION is not reported.
func (c *Catalog) IndexInfo(ctx context.Context, catalogName, _, table string, unique, _ bool) (catalog.Cursor, error) {
	q := `
		SELECT table_name   AS table_name,
		       non_unique   AS non_unique,
		       index_name   AS index_name,
		       3            AS type,
		       seq_in_index AS ordinal_position,
		       column_name  AS column_name
		FROM information_schema.statistics
		WHERE table_schema = ` + currentDB + `
		  AND table_name   = ?`
	if unique {
		q += `
		  AND non_unique = 0`
	}
	q += `
		ORDER BY non_unique, index_name, seq_in_index`

	return c.run(ctx, q, catalogName, table)
}

func (c *Catalog) Query(ctx context.Context, sql string, args ...any) (catalog.Cursor, error) {
	return c.run(ctx, sql, args...)
}

// sqlType maps information_schema data_type / column_type to a type code.
func sqlType(dataType, columnType string) catalog.SQLType {
	switch strings.ToLower(dataType) {
	case "bit":
		return catalog.Bit
	case "tinyint":
		if strings.HasPrefix(strings.ToLower(columnType), "tinyint(1)") {
			return catalog.Bit
		}
		return catalog.TinyInt
	case "smallint":
		return catalog.SmallInt
	case "mediumint", "int", "integer":
		return catalog.Integer
	case "bigint":
		return catalog.BigInt
	case "float":
		return catalog.Real
	case "double", "real":
		return catalog.Double
	case "decimal", "numeric":
		return catalog.Decimal
	case "char", "enum", "set":
		return catalog.Char
	case "varchar":
		return catalog.VarChar
	case "tinytext", "text", "mediumtext", "longtext", "json":
		return catalog.LongVarChar
	case "year":
		return catalog.SmallInt
	case "date":
		return catalog.Date
	case "time":
		return catalog.Time
	case "datetime", "timestamp":
		return catalog.Timestamp
	case "binary":
		return catalog.Binary
	case "varbinary":
		return catalog.VarBinary
	case "tinyblob", "blob", "mediumblob", "longblob":
		return catalog.LongVarBinary
	}
	return catalog.Other
}

// typeName renders the upper-case type name, keeping the UNSIGNED flag.
func typeName(dataType, columnType string) string {
	name := strings.ToUpper(dataType)
	if strings.Contains(strings.ToLower(columnType), "unsigned") {
		name += " UNSIGNED"
	}
	return name
}
