package snapshot

import (
	"context"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/schema"
)

// readForeignKeys rebuilds composite foreign keys from exported-key rows.
// Rows of one key arrive together in KEY_SEQ order; a new key starts at
// KEY_SEQ 1 or when the referenced table changes.
func (b *builder) readForeignKeys(ctx context.Context) error {
	tables := b.sortedTables()
	results, err := b.perTable(ctx, tables, func(ctx context.Context, t *schema.Table) ([]catalog.Record, error) {
		cur, err := b.catalog.ExportedKeys(ctx, b.catalogArg, b.schemaArg, t.Name)
		if err != nil {
			return nil, err
		}
		return catalog.Collect(cur)
	})
	if err != nil {
		return err
	}

	for _, records := range results {
		var fk *schema.ForeignKey
		for _, r := range records {
			fk = b.addForeignKeyRow(fk, r)
		}
	}
	return nil
}

// addForeignKeyRow folds one exported-key row into the key being built
// and returns the key that the next row continues.
func (b *builder) addForeignKeyRow(fk *schema.ForeignKey, r catalog.Record) *schema.ForeignKey {
	fkName := r.String(catalog.FieldFKName)
	pkTableName := r.String(catalog.FieldPKTableName)

	pkTable, ok := b.tables[pkTableName]
	if !ok {
		b.log.WarnWith("foreign key references a table outside the snapshot; ignoring", map[string]any{
			"fk":    fkName,
			"table": pkTableName,
		})
		// the key in progress continues with the next row
		return fk
	}

	keySeq := r.Int(catalog.FieldKeySeq)
	if fk == nil || keySeq == 1 || fk.PrimaryKeyTable.Name != pkTableName {
		fk = &schema.ForeignKey{}
		b.foreignKeys = append(b.foreignKeys, fk)
	}

	fk.PrimaryKeyTable = pkTable
	fk.PrimaryKeyColumns = append(fk.PrimaryKeyColumns, r.String(catalog.FieldPKColumnName))

	fkTableName := r.String(catalog.FieldFKTableName)
	fkTable, ok := b.tables[fkTableName]
	if !ok {
		fkTable = &schema.Table{
			Name:   fkTableName,
			Schema: r.String(catalog.FieldFKTableSchem),
		}
		b.log.WarnWith("foreign key lives in a table of another schema; keeping it without columns", map[string]any{
			"fk":     fkName,
			"table":  fkTableName,
			"schema": fkTable.Schema,
		})
	}
	fk.ForeignKeyTable = fkTable
	fk.ForeignKeyColumns = append(fk.ForeignKeyColumns, r.String(catalog.FieldFKColumnName))
	fk.Name = fkName

	if code, ok := r.NullInt(catalog.FieldUpdateRule); ok {
		rule := schema.Rule(code)
		fk.UpdateRule = &rule
	}
	if code, ok := r.NullInt(catalog.FieldDeleteRule); ok {
		rule := schema.Rule(code)
		fk.DeleteRule = &rule
	}
	if b.dialect.SupportsInitiallyDeferrableColumns() {
		fk.Deferrability = schema.DeferrabilityFromCode(r.Int(catalog.FieldDeferrability))
	}
	return fk
}

// readPrimaryKeys merges primary key rows per table name, placing each
// column at KEY_SEQ-1. Keys join the snapshot only once every table has
// been read.
func (b *builder) readPrimaryKeys(ctx context.Context) error {
	tables := b.sortedTables()
	results, err := b.perTable(ctx, tables, func(ctx context.Context, t *schema.Table) ([]catalog.Record, error) {
		cur, err := b.catalog.PrimaryKeys(ctx, b.catalogArg, b.schemaArg, t.Name)
		if err != nil {
			return nil, err
		}
		return catalog.Collect(cur)
	})
	if err != nil {
		return err
	}

	working := make(map[string]*schema.PrimaryKey)
	var order []string
	for i, records := range results {
		for _, r := range records {
			tableName := r.String(catalog.FieldTableName)
			pos := r.Int(catalog.FieldKeySeq) - 1
			if pos < 0 {
				continue
			}

			pk, ok := working[tableName]
			if !ok {
				pk = &schema.PrimaryKey{
					Name:  r.String(catalog.FieldPKName),
					Table: tables[i],
				}
				working[tableName] = pk
				order = append(order, tableName)
			}
			pk.AddColumn(pos, r.String(catalog.FieldColumnName))
		}
	}

	for _, name := range order {
		b.primaryKeys = append(b.primaryKeys, working[name])
	}
	return nil
}

// isPrimaryKeyColumn reports whether column of table belongs to a
// primary key read earlier.
func (b *builder) isPrimaryKeyColumn(table *schema.Table, column string) bool {
	for _, pk := range b.primaryKeys {
		if schema.SameTable(pk.Table, table) && pk.Contains(column) {
			return true
		}
	}
	return false
}
