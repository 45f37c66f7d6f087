// Package catalog defines the metadata catalog a snapshot is read from.
//
// A Catalog answers the classic driver metadata calls (tables, columns,
// exported keys, primary keys, index info) plus ad-hoc queries. Every call
// returns a Cursor of Records keyed by the standard upper-case field names
// (TABLE_NAME, KEY_SEQ, …). Dialect packages implement Catalog for each
// product; the snapshot engine consumes it without knowing which product
// answered.
package catalog

import "context"

// Catalog is the metadata interface of one live database.
//
// catalog and schema are the product's coordinates for the requested
// schema; either may be empty when the product has no such level.
type Catalog interface {
	// Tables lists relations of the given TABLE_TYPE values.
	// Fields: TABLE_CAT, TABLE_SCHEM, TABLE_NAME, TABLE_TYPE, REMARKS.
	Tables(ctx context.Context, catalog, schema string, types []string) (Cursor, error)

	// Columns lists the columns of every relation in the schema.
	// Fields: TABLE_NAME, COLUMN_NAME, DATA_TYPE, TYPE_NAME, COLUMN_SIZE,
	// DECIMAL_DIGITS, NULLABLE, COLUMN_DEF, REMARKS.
	Columns(ctx context.Context, catalog, schema string) (Cursor, error)

	// ExportedKeys lists the foreign key columns that reference table,
	// ordered by FKTABLE_NAME, FK_NAME, KEY_SEQ.
	// Fields: PKTABLE_NAME, PKCOLUMN_NAME, FKTABLE_SCHEM, FKTABLE_NAME,
	// FKCOLUMN_NAME, KEY_SEQ, UPDATE_RULE, DELETE_RULE, FK_NAME,
	// DEFERRABILITY.
	ExportedKeys(ctx context.Context, catalog, schema, table string) (Cursor, error)

	// PrimaryKeys lists the primary key columns of table.
	// Fields: TABLE_NAME, COLUMN_NAME, KEY_SEQ, PK_NAME.
	PrimaryKeys(ctx context.Context, catalog, schema, table string) (Cursor, error)

	// IndexInfo lists the index columns of table.
	// Fields: INDEX_NAME, NON_UNIQUE (optional), TYPE, COLUMN_NAME,
	// ORDINAL_POSITION, FILTER_CONDITION.
	IndexInfo(ctx context.Context, catalog, schema, table string, unique, approximate bool) (Cursor, error)

	// Query runs an arbitrary read-only statement.
	Query(ctx context.Context, sql string, args ...any) (Cursor, error)
}

// Cursor iterates the Records of one catalog call.
// Callers must always call Close, even after an error.
type Cursor interface {
	Next() bool
	Record() Record
	Err() error
	Close() error
}

// Drain calls fn for every record of c and always closes c.
// Iteration stops at the first error from fn or from the cursor.
func Drain(c Cursor, fn func(Record) error) (err error) {
	defer func() {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}()

	for c.Next() {
		if err := fn(c.Record()); err != nil {
			return err
		}
	}
	return c.Err()
}

// Collect drains c into a slice and closes it.
func Collect(c Cursor) ([]Record, error) {
	var out []Record
	err := Drain(c, func(r Record) error {
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
