package oracle

import (
	"context"
	"strings"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/database"
)

// Catalog answers metadata calls from the ALL_* dictionary views.
type Catalog struct {
	db database.DB
}

// NewCatalog returns a Catalog reading through db, which must accept
// :1-style placeholders.
func NewCatalog(db database.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) run(ctx context.Context, q string, args ...any) (catalog.Cursor, error) {
	return catalog.Run(ctx, c.db, database.PlaceholderColon, q, args...)
}

func (c *Catalog) Tables(ctx context.Context, _, schema string, types []string) (catalog.Cursor, error) {
	const q = `
		SELECT NULL AS TABLE_CAT, t.OWNER AS TABLE_SCHEM, t.TABLE_NAME, 'TABLE' AS TABLE_TYPE, tc.COMMENTS AS REMARKS
		FROM ALL_TABLES t
		LEFT JOIN ALL_TAB_COMMENTS tc ON tc.OWNER = t.OWNER AND tc.TABLE_NAME = t.TABLE_NAME
		WHERE t.OWNER = ?
		UNION ALL
		SELECT NULL, v.OWNER, v.VIEW_NAME, 'VIEW', NULL
		FROM ALL_VIEWS v
		WHERE v.OWNER = ?
		ORDER BY 4, 3`

	cur, err := c.run(ctx, q, schema, schema)
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

func (c *Catalog) Columns(ctx context.Context, _, schema string) (catalog.Cursor, error) {
	const q = `
		SELECT col.TABLE_NAME,
		       col.COLUMN_NAME,
		       col.DATA_TYPE AS TYPE_NAME,
		       COALESCE(col.DATA_PRECISION, col.CHAR_LENGTH, col.DATA_LENGTH) AS COLUMN_SIZE,
		       col.DATA_SCALE AS DECIMAL_DIGITS,
		       CASE col.NULLABLE WHEN 'Y' THEN 1 ELSE 0 END AS NULLABLE,
		       col.DATA_DEFAULT AS COLUMN_DEF,
		       col.IDENTITY_COLUMN AS IS_AUTOINCREMENT,
		       cc.COMMENTS AS REMARKS
		FROM ALL_TAB_COLUMNS col
		LEFT JOIN ALL_COL_COMMENTS cc
		  ON cc.OWNER = col.OWNER AND cc.TABLE_NAME = col.TABLE_NAME AND cc.COLUMN_NAME = col.COLUMN_NAME
		WHERE col.OWNER = ?
		ORDER BY col.TABLE_NAME, col.COLUMN_ID`

	cur, err := c.run(ctx, q, schema)
	if err != nil {
		return nil, err
	}
	records, err := catalog.Collect(cur)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		r[catalog.FieldDataType] = int(sqlType(r.String(catalog.FieldTypeName), r.Int(catalog.FieldDecimalDigits)))
	}
	return catalog.NewCursor(records...), nil
}

// ExportedKeys lists foreign keys referencing table. Oracle has no ON
// UPDATE action, so UPDATE_RULE is always NULL.
func (c *Catalog) ExportedKeys(ctx context.Context, _, schema, table string) (catalog.Cursor, error) {
	const q = `
		SELECT p.TABLE_NAME       AS PKTABLE_NAME,
		       pc.COLUMN_NAME     AS PKCOLUMN_NAME,
		       f.OWNER            AS FKTABLE_SCHEM,
		       f.TABLE_NAME       AS FKTABLE_NAME,
		       fc.COLUMN_NAME     AS FKCOLUMN_NAME,
		       fc.POSITION        AS KEY_SEQ,
		       NULL               AS UPDATE_RULE,
		       DECODE(f.DELETE_RULE, 'CASCADE', 0, 'SET NULL', 2, 'NO ACTION', 3, NULL) AS DELETE_RULE,
		       f.CONSTRAINT_NAME  AS FK_NAME,
		       DECODE(f.DEFERRABLE, 'NOT DEFERRABLE', 7, DECODE(f.DEFERRED, 'DEFERRED', 5, 6)) AS DEFERRABILITY
		FROM ALL_CONSTRAINTS f
		JOIN ALL_CONS_COLUMNS fc ON fc.OWNER = f.OWNER AND fc.CONSTRAINT_NAME = f.CONSTRAINT_NAME
		JOIN ALL_CONSTRAINTS p   ON p.OWNER = f.R_OWNER AND p.CONSTRAINT_NAME = f.R_CONSTRAINT_NAME
		JOIN ALL_CONS_COLUMNS pc ON pc.OWNER = p.OWNER AND pc.CONSTRAINT_NAME = p.CONSTRAINT_NAME
		                        AND pc.POSITION = fc.POSITION
		WHERE f.CONSTRAINT_TYPE = 'R'
		  AND p.OWNER = ?
		  AND p.TABLE_NAME = ?
		ORDER BY FKTABLE_NAME, FK_NAME, KEY_SEQ`

	return c.run(ctx, q, schema, table)
}

func (c *Catalog) PrimaryKeys(ctx context.Context, _, schema, table string) (catalog.Cursor, error) {
	const q = `
		SELECT c.TABLE_NAME, cc.COLUMN_NAME, cc.POSITION AS KEY_SEQ, c.CONSTRAINT_NAME AS PK_NAME
		FROM ALL_CONSTRAINTS c
		JOIN ALL_CONS_COLUMNS cc ON cc.OWNER = c.OWNER AND cc.CONSTRAINT_NAME = c.CONSTRAINT_NAME
		WHERE c.CONSTRAINT_TYPE = 'P'
		  AND c.OWNER = ?
		  AND c.TABLE_NAME = ?
		ORDER BY cc.COLUMN_NAME`

	return c.run(ctx, q, schema, table)
}

// IndexInfo reads ALL_INDEXES. The snapshot prefers Dialect.RawIndexQuery
// for this product; this path serves direct catalog users.
func (c *Catalog) IndexInfo(ctx context.Context, _, schema, table string, unique, _ bool) (catalog.Cursor, error) {
	q := `
		SELECT i.TABLE_NAME,
		       CASE i.UNIQUENESS WHEN 'UNIQUE' THEN 0 ELSE 1 END AS NON_UNIQUE,
		       i.INDEX_NAME,
		       3 AS TYPE,
		       ic.COLUMN_POSITION AS ORDINAL_POSITION,
		       ic.COLUMN_NAME
		FROM ALL_INDEXES i
		JOIN ALL_IND_COLUMNS ic ON ic.INDEX_OWNER = i.OWNER AND ic.INDEX_NAME = i.INDEX_NAME
		WHERE i.TABLE_OWNER = ?
		  AND i.TABLE_NAME = ?`
	if unique {
		q += `
		  AND i.UNIQUENESS = 'UNIQUE'`
	}
	q += `
		ORDER BY NON_UNIQUE, i.INDEX_NAME, ic.COLUMN_POSITION`

	return c.run(ctx, q, schema, table)
}

func (c *Catalog) Query(ctx context.Context, sql string, args ...any) (catalog.Cursor, error) {
	return c.run(ctx, sql, args...)
}

func sqlType(typeName string, scale int) catalog.SQLType {
	t := strings.ToUpper(typeName)
	switch {
	case t == "NUMBER":
		if scale == 0 {
			return catalog.Numeric
		}
		return catalog.Decimal
	case t == "FLOAT":
		return catalog.Float
	case t == "BINARY_FLOAT":
		return catalog.Real
	case t == "BINARY_DOUBLE":
		return catalog.Double
	case t == "VARCHAR2", t == "VARCHAR":
		return catalog.VarChar
	case t == "NVARCHAR2":
		return catalog.NVarChar
	case t == "CHAR":
		return catalog.Char
	case t == "NCHAR":
		return catalog.NChar
	case t == "LONG":
		return catalog.LongVarChar
	case t == "CLOB":
		return catalog.Clob
	case t == "NCLOB":
		return catalog.NClob
	case t == "BLOB":
		return catalog.Blob
	case t == "RAW":
		return catalog.VarBinary
	case t == "LONG RAW":
		return catalog.LongVarBinary
	case t == "DATE":
		return catalog.Date
	case strings.HasPrefix(t, "TIMESTAMP") && strings.Contains(t, "TIME ZONE"):
		return catalog.TimestampTZ
	case strings.HasPrefix(t, "TIMESTAMP"):
		return catalog.Timestamp
	}
	return catalog.Other
}
