// Package snapshot captures the structure of one live database schema.
//
// New reads the schema through a catalog.Catalog in a fixed order:
// tables and views, foreign keys, primary keys, columns, unique
// constraints, indexes, sequences. Later stages depend on what earlier
// ones built. A failure in any stage discards the whole capture. The
// returned Snapshot is never mutated afterwards and is safe for
// concurrent readers.
package snapshot

import (
	"strings"

	"github.com/koustreak/dbsnap/internal/schema"
)

// Snapshot is the captured structure of one schema.
type Snapshot struct {
	schemaName  string
	dialectName string

	tableMap  map[string]*schema.Table
	viewMap   map[string]*schema.View
	columnMap map[string]*schema.Column

	tables            []*schema.Table
	views             []*schema.View
	columns           []*schema.Column
	primaryKeys       []*schema.PrimaryKey
	foreignKeys       []*schema.ForeignKey
	uniqueConstraints []*schema.UniqueConstraint
	indexes           []*schema.Index
	sequences         []*schema.Sequence

	hasChangeLogTable bool
}

// Schema returns the resolved schema the snapshot was read from.
func (s *Snapshot) Schema() string { return s.schemaName }

// Dialect returns the name of the dialect that read the snapshot.
func (s *Snapshot) Dialect() string { return s.dialectName }

// HasChangeLogTable reports whether the migration change-log table was
// seen while reading tables.
func (s *Snapshot) HasChangeLogTable() bool { return s.hasChangeLogTable }

// Collection accessors return slices sorted by name. Callers must not
// modify them.

func (s *Snapshot) Tables() []*schema.Table                       { return s.tables }
func (s *Snapshot) Views() []*schema.View                         { return s.views }
func (s *Snapshot) Columns() []*schema.Column                     { return s.columns }
func (s *Snapshot) PrimaryKeys() []*schema.PrimaryKey             { return s.primaryKeys }
func (s *Snapshot) ForeignKeys() []*schema.ForeignKey             { return s.foreignKeys }
func (s *Snapshot) UniqueConstraints() []*schema.UniqueConstraint { return s.uniqueConstraints }
func (s *Snapshot) Indexes() []*schema.Index                      { return s.indexes }
func (s *Snapshot) Sequences() []*schema.Sequence                 { return s.sequences }

// Table returns the table named name, ignoring case, or nil.
func (s *Snapshot) Table(name string) *schema.Table {
	if t, ok := s.tableMap[name]; ok {
		return t
	}
	return findFold(s.tables, name, func(t *schema.Table) string { return t.Name })
}

// View returns the view named name, ignoring case, or nil.
func (s *Snapshot) View(name string) *schema.View {
	if v, ok := s.viewMap[name]; ok {
		return v
	}
	return findFold(s.views, name, func(v *schema.View) string { return v.Name })
}

func (s *Snapshot) Index(name string) *schema.Index {
	return findFold(s.indexes, name, func(ix *schema.Index) string { return ix.Name })
}

func (s *Snapshot) ForeignKey(name string) *schema.ForeignKey {
	return findFold(s.foreignKeys, name, func(fk *schema.ForeignKey) string { return fk.Name })
}

// PrimaryKey returns the primary key whose constraint name is name.
func (s *Snapshot) PrimaryKey(name string) *schema.PrimaryKey {
	return findFold(s.primaryKeys, name, func(pk *schema.PrimaryKey) string { return pk.Name })
}

// PrimaryKeyForTable returns the primary key of the named table.
func (s *Snapshot) PrimaryKeyForTable(table string) *schema.PrimaryKey {
	return findFold(s.primaryKeys, table, func(pk *schema.PrimaryKey) string { return pk.Table.Name })
}

func (s *Snapshot) UniqueConstraint(name string) *schema.UniqueConstraint {
	return findFold(s.uniqueConstraints, name, func(uc *schema.UniqueConstraint) string { return uc.Name })
}

func (s *Snapshot) Sequence(name string) *schema.Sequence {
	return findFold(s.sequences, name, func(seq *schema.Sequence) string { return seq.Name })
}

// Column looks up owner.column among table and view columns. The exact
// key is tried first, then a case-insensitive scan.
func (s *Snapshot) Column(owner, column string) *schema.Column {
	key := schema.ColumnKey(owner, column)
	if c, ok := s.columnMap[key]; ok {
		return c
	}
	return findFold(s.columns, key, (*schema.Column).Key)
}

// ColumnOf returns the snapshot's column with the same owner and name as
// c, which may come from another snapshot.
func (s *Snapshot) ColumnOf(c *schema.Column) *schema.Column {
	if c == nil {
		return nil
	}
	return s.Column(c.OwnerName(), c.Name)
}

func findFold[T any](list []T, name string, nameOf func(T) string) T {
	for _, item := range list {
		if strings.EqualFold(nameOf(item), name) {
			return item
		}
	}
	var zero T
	return zero
}
