package snapshot

import (
	"context"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/errs"
	"github.com/koustreak/dbsnap/internal/schema"
)

func (b *builder) readColumns(ctx context.Context) error {
	cur, err := b.catalog.Columns(ctx, b.catalogArg, b.schemaArg)
	if err != nil {
		return err
	}
	return catalog.Drain(cur, func(r catalog.Record) error {
		return b.addColumn(ctx, r)
	})
}

func (b *builder) addColumn(ctx context.Context, r catalog.Record) error {
	ownerName := r.String(catalog.FieldTableName)
	name := r.String(catalog.FieldColumnName)

	if b.skipRelation(r.String(catalog.FieldTableCat), r.String(catalog.FieldTableSchem), ownerName, false) {
		return nil
	}

	col := &schema.Column{Name: name}
	if table, ok := b.tables[ownerName]; ok {
		auto, err := b.dialect.IsColumnAutoIncrement(ctx, b.schemaName, ownerName, r)
		if err != nil {
			return err
		}
		col.Table = table
		col.AutoIncrement = auto
		col.PrimaryKey = b.isPrimaryKeyColumn(table, name)
		table.Columns = append(table.Columns, col)
	} else if view, ok := b.views[ownerName]; ok {
		col.View = view
		view.Columns = append(view.Columns, col)
	} else {
		// index pseudo-columns and other relations we did not keep
		return nil
	}

	col.DataType = catalog.SQLType(r.Int(catalog.FieldDataType))
	col.ColumnSize = r.Int(catalog.FieldColumnSize)
	col.DecimalDigits = r.Int(catalog.FieldDecimalDigits)
	if code, ok := r.NullInt(catalog.FieldNullable); ok {
		col.Nullable = schema.NullabilityFromCode(code)
	}
	col.Remarks = r.String(catalog.FieldRemarks)

	def, err := b.dialect.ConvertDefault(r.Value(catalog.FieldColumnDef), col.DataType, col.ColumnSize, col.DecimalDigits)
	if err != nil {
		if errs.KindOf(err) == errs.ErrKindUnknown {
			err = errs.Wrap(errs.ErrKindInvalidData, "invalid column default", err)
		}
		return errs.Annotate("column "+col.Key(), err)
	}
	col.DefaultValue = def
	col.TypeName = b.dialect.ColumnType(r.String(catalog.FieldTypeName), col.AutoIncrement)

	b.columns[schema.ColumnKey(ownerName, name)] = col
	return nil
}
