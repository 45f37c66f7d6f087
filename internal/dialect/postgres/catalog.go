package postgres

import (
	"context"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/database"
)

// Catalog answers metadata calls from pg_catalog and information_schema.
type Catalog struct {
	db database.DB
}

// NewCatalog returns a Catalog reading through db.
func NewCatalog(db database.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) run(ctx context.Context, q string, args ...any) (catalog.Cursor, error) {
	return catalog.Run(ctx, c.db, database.PlaceholderDollar, q, args...)
}

// Tables lists tables, partitioned tables, foreign tables, views and
// materialized views of schema. Partitions are folded into their parent.
func (c *Catalog) Tables(ctx context.Context, _, schema string, types []string) (catalog.Cursor, error) {
	const q = `
		SELECT current_database()::text AS table_cat,
		       n.nspname::text          AS table_schem,
		       c.relname::text          AS table_name,
		       CASE WHEN c.relkind IN ('v', 'm') THEN 'VIEW' ELSE 'TABLE' END AS table_type,
		       obj_description(c.oid, 'pg_class') AS remarks
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = ?
		  AND c.relkind IN ('r', 'p', 'f', 'v', 'm')
		  AND NOT c.relispartition
		ORDER BY table_type, table_name`

	cur, err := c.run(ctx, q, schema)
	if err != nil {
		return nil, err
	}
	return filterTypes(cur, types)
}

// Columns lists every column of every relation in schema.
func (c *Catalog) Columns(ctx context.Context, _, schema string) (catalog.Cursor, error) {
	const q = `
		SELECT c.table_name::text  AS table_name,
		       c.column_name::text AS column_name,
		       c.data_type::text   AS pg_data_type,
		       c.udt_name::text    AS type_name,
		       COALESCE(c.character_maximum_length, c.numeric_precision, c.datetime_precision)::int AS column_size,
		       c.numeric_scale::int AS decimal_digits,
		       CASE c.is_nullable WHEN 'YES' THEN 1 ELSE 0 END AS nullable,
		       c.column_default::text AS column_def,
		       CASE WHEN c.is_identity = 'YES' OR c.column_default LIKE 'nextval(%'
		            THEN 'YES' ELSE 'NO' END AS is_autoincrement,
		       col_description(format('%I.%I', c.table_schema, c.table_name)::regclass,
		                       c.ordinal_position::int) AS remarks
		FROM information_schema.columns c
		WHERE c.table_schema = ?
		ORDER BY c.table_name, c.ordinal_position`

	cur, err := c.run(ctx, q, schema)
	if err != nil {
		return nil, err
	}
	records, err := catalog.Collect(cur)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		r[catalog.FieldDataType] = int(sqlType(r.String("PG_DATA_TYPE"), r.String(catalog.FieldTypeName)))
	}
	return catalog.NewCursor(records...), nil
}

// ExportedKeys lists the foreign key columns referencing table.
func (c *Catalog) ExportedKeys(ctx context.Context, _, schema, table string) (catalog.Cursor, error) {
	const q = `
		SELECT pkc.relname::text AS pktable_name,
		       pka.attname::text AS pkcolumn_name,
		       fkn.nspname::text AS fktable_schem,
		       fkc.relname::text AS fktable_name,
		       fka.attname::text AS fkcolumn_name,
		       k.pos::int        AS key_seq,
		       CASE con.confupdtype
		            WHEN 'c' THEN 0 WHEN 'r' THEN 1 WHEN 'n' THEN 2
		            WHEN 'a' THEN 3 WHEN 'd' THEN 4 END AS update_rule,
		       CASE con.confdeltype
		            WHEN 'c' THEN 0 WHEN 'r' THEN 1 WHEN 'n' THEN 2
		            WHEN 'a' THEN 3 WHEN 'd' THEN 4 END AS delete_rule,
		       con.conname::text AS fk_name,
		       CASE WHEN con.condeferrable AND con.condeferred THEN 5
		            WHEN con.condeferrable THEN 6
		            ELSE 7 END AS deferrability
		FROM pg_catalog.pg_constraint con
		JOIN pg_catalog.pg_class pkc     ON pkc.oid = con.confrelid
		JOIN pg_catalog.pg_namespace pkn ON pkn.oid = pkc.relnamespace
		JOIN pg_catalog.pg_class fkc     ON fkc.oid = con.conrelid
		JOIN pg_catalog.pg_namespace fkn ON fkn.oid = fkc.relnamespace
		CROSS JOIN LATERAL unnest(con.confkey, con.conkey) WITH ORDINALITY AS k(pkattnum, fkattnum, pos)
		JOIN pg_catalog.pg_attribute pka ON pka.attrelid = con.confrelid AND pka.attnum = k.pkattnum
		JOIN pg_catalog.pg_attribute fka ON fka.attrelid = con.conrelid  AND fka.attnum = k.fkattnum
		WHERE con.contype = 'f'
		  AND pkn.nspname = ?
		  AND pkc.relname = ?
		ORDER BY fktable_name, fk_name, key_seq`

	return c.run(ctx, q, schema, table)
}

// PrimaryKeys lists the primary key columns of table, ordered by column
// name; KEY_SEQ carries the key position.
func (c *Catalog) PrimaryKeys(ctx context.Context, _, schema, table string) (catalog.Cursor, error) {
	const q = `
		SELECT c.relname::text   AS table_name,
		       a.attname::text   AS column_name,
		       k.pos::int        AS key_seq,
		       con.conname::text AS pk_name
		FROM pg_catalog.pg_constraint con
		JOIN pg_catalog.pg_class c     ON c.oid = con.conrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		CROSS JOIN LATERAL unnest(con.conkey) WITH ORDINALITY AS k(attnum, pos)
		JOIN pg_catalog.pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
		WHERE con.contype = 'p'
		  AND n.nspname = ?
		  AND c.relname = ?
		ORDER BY column_name`

	return c.run(ctx, q, schema, table)
}

// IndexInfo lists the key columns of every index on table. Expression
// columns are reported as their expression text.
func (c *Catalog) IndexInfo(ctx context.Context, _, schema, table string, unique, _ bool) (catalog.Cursor, error) {
	q := `
		SELECT ct.relname::text    AS table_name,
		       NOT i.indisunique   AS non_unique,
		       ci.relname::text    AS index_name,
		       3                   AS type,
		       k.pos::int          AS ordinal_position,
		       CASE WHEN k.attnum = 0
		            THEN pg_get_indexdef(i.indexrelid, k.pos::int, false)
		            ELSE a.attname::text END AS column_name,
		       pg_get_expr(i.indpred, i.indrelid) AS filter_condition
		FROM pg_catalog.pg_index i
		JOIN pg_catalog.pg_class ct    ON ct.oid = i.indrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = ct.relnamespace
		JOIN pg_catalog.pg_class ci    ON ci.oid = i.indexrelid
		CROSS JOIN LATERAL unnest(i.indkey::int2[]) WITH ORDINALITY AS k(attnum, pos)
		LEFT JOIN pg_catalog.pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = k.attnum
		WHERE n.nspname = ?
		  AND ct.relname = ?
		  AND k.pos <= i.indnkeyatts`
	if unique {
		q += `
		  AND i.indisunique`
	}
	q += `
		ORDER BY non_unique, index_name, ordinal_position`

	return c.run(ctx, q, schema, table)
}

// Query runs sql as given.
func (c *Catalog) Query(ctx context.Context, sql string, args ...any) (catalog.Cursor, error) {
	return catalog.Run(ctx, c.db, database.PlaceholderQuestion, sql, args...)
}

func filterTypes(cur catalog.Cursor, types []string) (catalog.Cursor, error) {
	records, err := catalog.Collect(cur)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return catalog.NewCursor(records...), nil
	}

	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	kept := records[:0]
	for _, r := range records {
		if want[r.String(catalog.FieldTableType)] {
			kept = append(kept, r)
		}
	}
	return catalog.NewCursor(kept...), nil
}
