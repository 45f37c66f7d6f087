package snapshot

import (
	"context"
	"strings"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/errs"
	"github.com/koustreak/dbsnap/internal/schema"
)

var relationTypes = []string{catalog.TypeTable, catalog.TypeView, catalog.TypeAlias}

func (b *builder) readTablesAndViews(ctx context.Context) error {
	cur, err := b.catalog.Tables(ctx, b.catalogArg, b.schemaArg, relationTypes)
	if err != nil {
		return err
	}

	return catalog.Drain(cur, func(r catalog.Record) error {
		name := r.String(catalog.FieldTableName)
		catalogName := r.String(catalog.FieldTableCat)
		schemaName := r.String(catalog.FieldTableSchem)

		if b.skipRelation(catalogName, schemaName, name, true) {
			return nil
		}

		owner := b.ownerSchema(r)
		switch r.String(catalog.FieldTableType) {
		case catalog.TypeTable, catalog.TypeAlias:
			b.tables[name] = &schema.Table{
				Name:    name,
				Schema:  owner,
				Remarks: strings.TrimSpace(r.String(catalog.FieldRemarks)),
			}
		case catalog.TypeView:
			def, err := b.dialect.ViewDefinition(ctx, b.schemaName, name)
			if err != nil {
				return errs.Wrapf(errs.ErrKindViewDefinition, err, "reading definition of view %q", name)
			}
			b.views[name] = &schema.View{
				Name:       name,
				Schema:     owner,
				Definition: def,
			}
		}
		return nil
	})
}

// skipRelation reports whether a relation is a system object or one of
// the bookkeeping tables. With record set, sighting the change-log table
// sets the snapshot flag.
func (b *builder) skipRelation(catalogName, schemaName, name string, record bool) bool {
	d := b.dialect
	if !d.IsSystemTable(catalogName, schemaName, name) &&
		!d.IsSystemView(catalogName, schemaName, name) &&
		!d.IsBookkeepingTable(name) {
		return false
	}
	if record && strings.EqualFold(name, d.ChangeLogTableName()) {
		b.hasChangeLogTable = true
	}
	return true
}

// ownerSchema picks the schema name reported for a relation row.
func (b *builder) ownerSchema(r catalog.Record) string {
	if s := r.String(catalog.FieldTableSchem); s != "" {
		return s
	}
	if c := r.String(catalog.FieldTableCat); c != "" {
		return c
	}
	return b.schemaName
}
