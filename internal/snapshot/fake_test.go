package snapshot

import (
	"context"
	"strings"
	"sync"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/dialect"
	"github.com/koustreak/dbsnap/internal/errs"
)

// fakeDialect is a configurable in-memory dialect. Relations prefixed
// "sys_" are system tables.
type fakeDialect struct {
	dialect.Base

	sequences  bool
	deferrable bool
	rawIndex   bool
	viewDefs   map[string]string
	viewErr    error
}

func newFakeDialect() *fakeDialect {
	return &fakeDialect{Base: dialect.NewBase(dialect.DefaultOptions()), viewDefs: map[string]string{}}
}

func (d *fakeDialect) Name() string { return "fake" }

func (d *fakeDialect) ResolveSchema(requested string) string {
	return d.ResolveSchemaOr(requested, "app")
}

func (d *fakeDialect) Coordinates(schema string) (string, string) { return "", schema }

func (d *fakeDialect) IsSystemTable(_, _, name string) bool {
	return strings.HasPrefix(strings.ToLower(name), "sys_")
}

func (d *fakeDialect) IsSystemView(_, _, name string) bool {
	return strings.HasPrefix(strings.ToLower(name), "sysv_")
}

func (d *fakeDialect) SupportsSequences() bool                  { return d.sequences }
func (d *fakeDialect) SupportsInitiallyDeferrableColumns() bool { return d.deferrable }
func (d *fakeDialect) NeedsRawIndexQuery() bool                 { return d.rawIndex }

func (d *fakeDialect) RawIndexQuery(schema, table string) string {
	return "raw-index " + schema + "." + table
}

func (d *fakeDialect) FindSequencesSQL(schema string) string {
	return "list-sequences " + schema
}

func (d *fakeDialect) ViewDefinition(_ context.Context, _, view string) (string, error) {
	if d.viewErr != nil {
		return "", d.viewErr
	}
	return d.viewDefs[view], nil
}

// fakeCatalog serves canned records and counts open cursors.
type fakeCatalog struct {
	mu sync.Mutex

	tables   []catalog.Record
	columns  []catalog.Record
	exported map[string][]catalog.Record
	pks      map[string][]catalog.Record
	indexes  map[string][]catalog.Record
	queries  map[string][]catalog.Record

	failOn   string // call name that returns an error
	brokenOn string // call name whose cursor fails after its records
	failErr  error

	calls []string
	open  int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		exported: map[string][]catalog.Record{},
		pks:      map[string][]catalog.Record{},
		indexes:  map[string][]catalog.Record{},
		queries:  map[string][]catalog.Record{},
	}
}

func (c *fakeCatalog) serve(call string, records []catalog.Record) (catalog.Cursor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, call)
	name, _, _ := strings.Cut(call, " ")
	if c.failOn != "" && (c.failOn == name || c.failOn == call) {
		return nil, c.failErr
	}
	c.open++
	var cur catalog.Cursor = &trackedCursor{Cursor: catalog.NewCursor(records...), owner: c}
	if c.brokenOn != "" && c.brokenOn == name {
		cur = &failingCursor{Cursor: cur, err: c.failErr}
	}
	return cur, nil
}

func (c *fakeCatalog) openCursors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *fakeCatalog) called(prefix string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, call := range c.calls {
		if strings.HasPrefix(call, prefix) {
			out = append(out, call)
		}
	}
	return out
}

func (c *fakeCatalog) Tables(_ context.Context, _, _ string, _ []string) (catalog.Cursor, error) {
	return c.serve("tables", c.tables)
}

func (c *fakeCatalog) Columns(_ context.Context, _, _ string) (catalog.Cursor, error) {
	return c.serve("columns", c.columns)
}

func (c *fakeCatalog) ExportedKeys(_ context.Context, _, _, table string) (catalog.Cursor, error) {
	return c.serve("exported "+table, c.exported[table])
}

func (c *fakeCatalog) PrimaryKeys(_ context.Context, _, _, table string) (catalog.Cursor, error) {
	return c.serve("pks "+table, c.pks[table])
}

func (c *fakeCatalog) IndexInfo(_ context.Context, _, _, table string, _, _ bool) (catalog.Cursor, error) {
	return c.serve("indexinfo "+table, c.indexes[table])
}

func (c *fakeCatalog) Query(_ context.Context, sql string, _ ...any) (catalog.Cursor, error) {
	return c.serve("query "+sql, c.queries[sql])
}

type trackedCursor struct {
	catalog.Cursor
	owner  *fakeCatalog
	closed bool
}

func (t *trackedCursor) Close() error {
	if !t.closed {
		t.closed = true
		t.owner.mu.Lock()
		t.owner.open--
		t.owner.mu.Unlock()
	}
	return t.Cursor.Close()
}

// failingCursor yields one record and then reports err.
type failingCursor struct {
	catalog.Cursor
	err error
}

func (f *failingCursor) Err() error { return f.err }

// Record builders.

func table(name string) catalog.Record {
	return catalog.Record{
		catalog.FieldTableName:  name,
		catalog.FieldTableSchem: "app",
		catalog.FieldTableType:  catalog.TypeTable,
	}
}

func view(name string) catalog.Record {
	r := table(name)
	r[catalog.FieldTableType] = catalog.TypeView
	return r
}

func column(owner, name string, dataType catalog.SQLType, def any) catalog.Record {
	return catalog.Record{
		catalog.FieldTableName:  owner,
		catalog.FieldColumnName: name,
		catalog.FieldDataType:   int(dataType),
		catalog.FieldTypeName:   strings.ToLower(dataType.String()),
		catalog.FieldNullable:   catalog.ColumnNullable,
		catalog.FieldColumnDef:  def,
	}
}

func pkRow(tableName, col string, seq int) catalog.Record {
	return catalog.Record{
		catalog.FieldTableName:  tableName,
		catalog.FieldColumnName: col,
		catalog.FieldKeySeq:     seq,
		catalog.FieldPKName:     "pk_" + tableName,
	}
}

func fkRow(name, pkTable, pkCol, fkTable, fkCol string, seq int) catalog.Record {
	return catalog.Record{
		catalog.FieldFKName:        name,
		catalog.FieldPKTableName:   pkTable,
		catalog.FieldPKColumnName:  pkCol,
		catalog.FieldFKTableName:   fkTable,
		catalog.FieldFKTableSchem:  "app",
		catalog.FieldFKColumnName:  fkCol,
		catalog.FieldKeySeq:        seq,
		catalog.FieldUpdateRule:    nil,
		catalog.FieldDeleteRule:    nil,
		catalog.FieldDeferrability: catalog.KeyNotDeferrable,
	}
}

func indexRow(name, col string, pos int, nonUnique bool) catalog.Record {
	return catalog.Record{
		catalog.FieldIndexName:       name,
		catalog.FieldNonUnique:       nonUnique,
		catalog.FieldType:            catalog.IndexOther,
		catalog.FieldColumnName:      col,
		catalog.FieldOrdinalPosition: pos,
	}
}

var errBoom = errs.New(errs.ErrKindPermissionDenied, "permission denied for relation")
