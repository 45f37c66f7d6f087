package snapshot

import (
	"context"
	"slices"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/schema"
)

// readUniqueConstraints asks the dialect for unique constraints when it
// can list them. Bundled dialects cannot, which leaves the set empty.
func (b *builder) readUniqueConstraints(ctx context.Context) error {
	r, ok := b.dialect.(UniqueConstraintReader)
	if !ok {
		return nil
	}
	ucs, err := r.UniqueConstraints(ctx, b.catalog, b.schemaName, b.sortedTables())
	if err != nil {
		return err
	}
	b.uniqueConstraints = append(b.uniqueConstraints, ucs...)
	return nil
}

func (b *builder) readIndexes(ctx context.Context) error {
	tables := b.sortedTables()
	results, err := b.perTable(ctx, tables, b.fetchIndexRows)
	if err != nil {
		return err
	}

	for i, records := range results {
		for _, ix := range assembleIndexes(tables[i], records) {
			if !ix.Complete() {
				b.log.WarnWith("index has unfilled column positions; ignoring", map[string]any{
					"index": ix.Name,
					"table": ix.Table.Name,
				})
				continue
			}
			b.indexes = append(b.indexes, ix)
		}
	}
	b.indexes = slices.DeleteFunc(b.indexes, b.isRedundantIndex)
	return nil
}

func (b *builder) fetchIndexRows(ctx context.Context, t *schema.Table) ([]catalog.Record, error) {
	var (
		cur catalog.Cursor
		err error
	)
	if b.dialect.NeedsRawIndexQuery() {
		cur, err = b.catalog.Query(ctx, b.dialect.RawIndexQuery(b.schemaArg, t.Name))
	} else {
		cur, err = b.catalog.IndexInfo(ctx, b.catalogArg, b.schemaArg, t.Name, false, true)
	}
	if err != nil {
		return nil, err
	}
	return catalog.Collect(cur)
}

// assembleIndexes groups the index rows of table by index name. The first
// row of an index decides uniqueness and filter; columns go to their
// 1-based ORDINAL_POSITION.
func assembleIndexes(table *schema.Table, records []catalog.Record) []*schema.Index {
	byName := make(map[string]*schema.Index)
	var order []*schema.Index

	for _, r := range records {
		if r.Int(catalog.FieldType) == catalog.IndexStatistic && !r.IsNull(catalog.FieldType) {
			continue
		}
		column, ok := r.NullString(catalog.FieldColumnName)
		if !ok {
			continue
		}

		name := r.String(catalog.FieldIndexName)
		ix, ok := byName[name]
		if !ok {
			nonUnique := true
			if r.Has(catalog.FieldNonUnique) {
				nonUnique = r.Bool(catalog.FieldNonUnique)
			}
			ix = &schema.Index{
				Name:            name,
				Table:           table,
				Unique:          !nonUnique,
				FilterCondition: r.String(catalog.FieldFilterCondition),
			}
			byName[name] = ix
			order = append(order, ix)
		}
		ix.SetColumn(r.Int(catalog.FieldOrdinalPosition), column)
	}
	return order
}

// isRedundantIndex reports whether ix duplicates, column for column and
// in order, a primary key, the referencing side of a foreign key or a
// unique constraint on the same table.
func (b *builder) isRedundantIndex(ix *schema.Index) bool {
	for _, pk := range b.primaryKeys {
		if ix.Covers(pk.Table, pk.ColumnNames()) {
			return true
		}
	}
	for _, fk := range b.foreignKeys {
		if ix.Covers(fk.ForeignKeyTable, fk.ForeignKeyColumns) {
			return true
		}
	}
	for _, uc := range b.uniqueConstraints {
		if ix.Covers(uc.Table, uc.Columns) {
			return true
		}
	}
	return false
}
