package snapshot

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/database"
	"github.com/koustreak/dbsnap/internal/errs"
	"github.com/koustreak/dbsnap/internal/logger"
	"github.com/koustreak/dbsnap/internal/schema"
)

// ordersFixture is orders(id, customer_id) -> customers(id) with an index
// on orders(customer_id) that duplicates the foreign key.
func ordersFixture() (*fakeDialect, *fakeCatalog) {
	d := newFakeDialect()
	c := newFakeCatalog()

	c.tables = []catalog.Record{table("orders"), table("customers")}
	c.columns = []catalog.Record{
		column("orders", "id", catalog.Integer, nil),
		column("orders", "customer_id", catalog.Integer, nil),
		column("customers", "id", catalog.Integer, nil),
	}
	c.pks["orders"] = []catalog.Record{pkRow("orders", "id", 1)}
	c.pks["customers"] = []catalog.Record{pkRow("customers", "id", 1)}
	c.exported["customers"] = []catalog.Record{
		fkRow("fk_orders_customer", "customers", "id", "orders", "customer_id", 1),
	}
	c.indexes["orders"] = []catalog.Record{indexRow("idx_fk", "customer_id", 1, true)}
	return d, c
}

func capture(t *testing.T, d *fakeDialect, c *fakeCatalog) *Snapshot {
	t.Helper()
	snap, err := New(context.Background(), Config{Dialect: d, Catalog: c})
	require.NoError(t, err)
	require.Equal(t, 0, c.openCursors(), "every cursor must be closed")
	return snap
}

func TestNew_OrdersAndCustomers(t *testing.T) {
	d, c := ordersFixture()
	snap := capture(t, d, c)

	orders := snap.Table("orders")
	require.NotNil(t, orders)
	assert.Len(t, orders.Columns, 2)

	id := snap.Column("orders", "id")
	require.NotNil(t, id)
	assert.True(t, id.PrimaryKey)
	assert.Same(t, orders, id.Table)
	assert.False(t, snap.Column("orders", "customer_id").PrimaryKey)

	require.Len(t, snap.ForeignKeys(), 1)
	fk := snap.ForeignKeys()[0]
	assert.Equal(t, "fk_orders_customer", fk.Name)
	assert.Same(t, orders, fk.ForeignKeyTable)
	assert.Equal(t, []string{"customer_id"}, fk.ForeignKeyColumns)
	assert.Equal(t, "customers", fk.PrimaryKeyTable.Name)
	assert.Equal(t, []string{"id"}, fk.PrimaryKeyColumns)

	for _, ix := range snap.Indexes() {
		assert.NotEqual(t, "orders", ix.Table.Name, "duplicate index %s must be removed", ix.Name)
	}
	assert.Nil(t, snap.Index("idx_fk"))
}

func TestNew_StageOrder(t *testing.T) {
	d, c := ordersFixture()
	d.sequences = true
	capture(t, d, c)

	var stages []string
	for _, call := range c.called("") {
		name, _, _ := strings.Cut(call, " ")
		if len(stages) == 0 || stages[len(stages)-1] != name {
			stages = append(stages, name)
		}
	}
	assert.Equal(t, []string{"tables", "exported", "pks", "columns", "indexinfo", "query"}, stages)
}

func TestNew_DefaultSchema(t *testing.T) {
	d, c := ordersFixture()
	snap := capture(t, d, c)

	assert.Equal(t, "app", snap.Schema())
	assert.Equal(t, "fake", snap.Dialect())
	assert.Equal(t, "app", snap.Table("orders").Schema)
}

func TestNew_CompositePrimaryKey(t *testing.T) {
	tests := []struct {
		name string
		rows []catalog.Record
	}{
		{
			name: "in key order",
			rows: []catalog.Record{pkRow("orders", "tenant_id", 1), pkRow("orders", "order_id", 2)},
		},
		{
			name: "reversed",
			rows: []catalog.Record{pkRow("orders", "order_id", 2), pkRow("orders", "tenant_id", 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDialect()
			c := newFakeCatalog()
			c.tables = []catalog.Record{table("orders")}
			c.columns = []catalog.Record{
				column("orders", "tenant_id", catalog.Integer, nil),
				column("orders", "order_id", catalog.Integer, nil),
			}
			c.pks["orders"] = tt.rows

			snap := capture(t, d, c)

			require.Len(t, snap.PrimaryKeys(), 1)
			pk := snap.PrimaryKeyForTable("ORDERS")
			require.NotNil(t, pk)
			assert.Equal(t, []string{"tenant_id", "order_id"}, pk.ColumnNames())
			assert.Equal(t, "pk_orders", pk.Name)
			assert.Same(t, pk, snap.PrimaryKey("PK_ORDERS"))
			assert.True(t, snap.Column("orders", "tenant_id").PrimaryKey)
			assert.True(t, snap.Column("orders", "order_id").PrimaryKey)
		})
	}
}

func TestNew_CompositeForeignKeys(t *testing.T) {
	d := newFakeDialect()
	c := newFakeCatalog()
	c.tables = []catalog.Record{table("customers"), table("orders"), table("regions")}
	c.exported["customers"] = []catalog.Record{
		fkRow("fk_a", "customers", "tenant", "orders", "tenant_id", 1),
		fkRow("fk_a", "customers", "id", "orders", "customer_id", 2),
		fkRow("fk_b", "customers", "id", "orders", "billing_id", 1),
		// referenced table changes without KEY_SEQ restarting
		fkRow("fk_c", "regions", "code", "orders", "region", 2),
	}

	snap := capture(t, d, c)

	require.Len(t, snap.ForeignKeys(), 3)

	a := snap.ForeignKey("FK_A")
	require.NotNil(t, a)
	assert.Equal(t, []string{"tenant_id", "customer_id"}, a.ForeignKeyColumns)
	assert.Equal(t, []string{"tenant", "id"}, a.PrimaryKeyColumns)

	b := snap.ForeignKey("fk_b")
	require.NotNil(t, b)
	assert.Equal(t, []string{"billing_id"}, b.ForeignKeyColumns)

	cfk := snap.ForeignKey("fk_c")
	require.NotNil(t, cfk)
	assert.Equal(t, "regions", cfk.PrimaryKeyTable.Name)
	assert.Equal(t, []string{"region"}, cfk.ForeignKeyColumns)
}

func TestNew_ForeignKeyEndpoints(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(&logger.Config{Level: "warn", Format: "json", Output: buf})

	d := newFakeDialect()
	c := newFakeCatalog()
	c.tables = []catalog.Record{table("customers")}
	c.exported["customers"] = []catalog.Record{
		fkRow("fk_ghost", "ghost", "id", "orders", "ghost_id", 1),
		fkRow("fk_audit", "customers", "id", "audit_orders", "customer_id", 1),
	}
	c.exported["customers"][1][catalog.FieldFKTableSchem] = "audit"

	snap, err := New(context.Background(), Config{Dialect: d, Catalog: c, Logger: log})
	require.NoError(t, err)

	assert.Nil(t, snap.ForeignKey("fk_ghost"))
	assert.Contains(t, buf.String(), "fk_ghost")

	audit := snap.ForeignKey("fk_audit")
	require.NotNil(t, audit)
	assert.Equal(t, "audit_orders", audit.ForeignKeyTable.Name)
	assert.Equal(t, "audit", audit.ForeignKeyTable.Schema)
	assert.Empty(t, audit.ForeignKeyTable.Columns)
	assert.Nil(t, snap.Table("audit_orders"), "stand-in tables are not part of the snapshot")
	assert.Contains(t, buf.String(), "fk_audit")
}

func TestNew_ForeignKeyContinuesPastUnknownTable(t *testing.T) {
	d := newFakeDialect()
	c := newFakeCatalog()
	c.tables = []catalog.Record{table("customers"), table("orders")}
	c.exported["customers"] = []catalog.Record{
		fkRow("fk_orders_customer", "customers", "tenant_id", "orders", "tenant_id", 1),
		fkRow("fk_ghost", "ghost", "id", "orders", "ghost_id", 1),
		fkRow("fk_orders_customer", "customers", "id", "orders", "customer_id", 2),
	}

	snap := capture(t, d, c)

	require.Len(t, snap.ForeignKeys(), 1)
	fk := snap.ForeignKey("fk_orders_customer")
	require.NotNil(t, fk)
	assert.Equal(t, []string{"tenant_id", "id"}, fk.PrimaryKeyColumns)
	assert.Equal(t, []string{"tenant_id", "customer_id"}, fk.ForeignKeyColumns)
	assert.Nil(t, snap.ForeignKey("fk_ghost"))
}

func TestNew_ForeignKeyRulesAndDeferrability(t *testing.T) {
	build := func(deferrable bool) *schema.ForeignKey {
		d := newFakeDialect()
		d.deferrable = deferrable
		c := newFakeCatalog()
		c.tables = []catalog.Record{table("customers"), table("orders")}
		row := fkRow("fk", "customers", "id", "orders", "customer_id", 1)
		row[catalog.FieldUpdateRule] = catalog.KeyCascade
		row[catalog.FieldDeferrability] = catalog.KeyInitiallyDeferred
		c.exported["customers"] = []catalog.Record{row}

		snap := capture(t, d, c)
		require.Len(t, snap.ForeignKeys(), 1)
		return snap.ForeignKeys()[0]
	}

	fk := build(false)
	require.NotNil(t, fk.UpdateRule)
	assert.Equal(t, schema.RuleCascade, *fk.UpdateRule)
	assert.Nil(t, fk.DeleteRule, "NULL rule must stay unknown")
	assert.Equal(t, schema.DeferrabilityUnknown, fk.Deferrability)

	fk = build(true)
	assert.Equal(t, schema.InitiallyDeferred, fk.Deferrability)
}

func TestNew_IndexDeduplication(t *testing.T) {
	d, c := ordersFixture()
	c.indexes["orders"] = []catalog.Record{
		indexRow("idx_fk", "customer_id", 1, true),
		indexRow("idx_pk", "id", 1, false),
		indexRow("idx_pair", "customer_id", 1, true),
		indexRow("idx_pair", "id", 2, true),
	}
	c.indexes["customers"] = []catalog.Record{
		// duplicates the customers primary key
		indexRow("idx_customer_id", "id", 1, false),
	}
	c.pks["orders"] = []catalog.Record{pkRow("orders", "id", 1), pkRow("orders", "customer_id", 2)}

	snap := capture(t, d, c)

	assert.Nil(t, snap.Index("idx_fk"))
	assert.NotNil(t, snap.Index("idx_pk"), "prefix of the key is not a duplicate")
	assert.NotNil(t, snap.Index("idx_pair"), "reordered key columns are not a duplicate")
	assert.Nil(t, snap.Index("idx_customer_id"))
}

type uniqueDialect struct {
	*fakeDialect
	constraints []*schema.UniqueConstraint
}

func (u *uniqueDialect) UniqueConstraints(_ context.Context, _ catalog.Catalog, _ string, _ []*schema.Table) ([]*schema.UniqueConstraint, error) {
	return u.constraints, nil
}

func TestNew_UniqueConstraintSeam(t *testing.T) {
	d := newFakeDialect()
	c := newFakeCatalog()
	c.tables = []catalog.Record{table("orders")}
	c.indexes["orders"] = []catalog.Record{
		indexRow("ux_ab", "a", 1, false),
		indexRow("ux_ab", "b", 2, false),
		indexRow("ux_ba", "b", 1, false),
		indexRow("ux_ba", "a", 2, false),
	}

	// bundled dialects contribute nothing
	snap := capture(t, d, c)
	assert.Empty(t, snap.UniqueConstraints())
	assert.Len(t, snap.Indexes(), 2)

	ud := &uniqueDialect{
		fakeDialect: d,
		constraints: []*schema.UniqueConstraint{
			{Name: "uc_ab", Table: &schema.Table{Name: "ORDERS"}, Columns: []string{"a", "b"}},
		},
	}
	snap, err := New(context.Background(), Config{Dialect: ud, Catalog: c})
	require.NoError(t, err)

	require.NotNil(t, snap.UniqueConstraint("UC_AB"))
	assert.Nil(t, snap.Index("ux_ab"))
	ba := snap.Index("ux_ba")
	require.NotNil(t, ba)
	assert.True(t, ba.Unique)
	assert.Equal(t, []string{"b", "a"}, ba.Columns())
}

func TestNew_IndexAssembly(t *testing.T) {
	d := newFakeDialect()
	c := newFakeCatalog()
	c.tables = []catalog.Record{table("orders")}

	stat := indexRow("", "", 0, true)
	stat[catalog.FieldType] = catalog.IndexStatistic
	stat[catalog.FieldColumnName] = nil
	noColumn := indexRow("ix_expr", "", 1, true)
	noColumn[catalog.FieldColumnName] = nil

	first := indexRow("ix_multi", "placed_at", 2, false)
	first[catalog.FieldFilterCondition] = "total > 0"
	second := indexRow("ix_multi", "customer_id", 1, true)

	gap := indexRow("ix_gap", "region", 3, true)

	c.indexes["orders"] = []catalog.Record{stat, noColumn, first, second, gap}

	snap := capture(t, d, c)

	require.Len(t, snap.Indexes(), 1)
	ix := snap.Index("IX_MULTI")
	require.NotNil(t, ix)
	assert.Equal(t, []string{"customer_id", "placed_at"}, ix.Columns())
	assert.True(t, ix.Unique, "uniqueness comes from the first row")
	assert.Equal(t, "total > 0", ix.FilterCondition)
	assert.Nil(t, snap.Index("ix_gap"), "an index with empty slots is never exposed")
}

func TestNew_RawIndexQuery(t *testing.T) {
	d := newFakeDialect()
	d.rawIndex = true
	c := newFakeCatalog()
	c.tables = []catalog.Record{table("orders")}
	c.queries["raw-index app.orders"] = []catalog.Record{
		{
			catalog.FieldIndexName:       "ix_placed",
			catalog.FieldType:            catalog.IndexOther,
			catalog.FieldTableName:       "orders",
			catalog.FieldColumnName:      "placed_at",
			catalog.FieldOrdinalPosition: 1,
			catalog.FieldFilterCondition: nil,
		},
	}
	c.indexes["orders"] = []catalog.Record{indexRow("from_index_info", "x", 1, true)}

	snap := capture(t, d, c)

	assert.Empty(t, c.called("indexinfo"))
	ix := snap.Index("ix_placed")
	require.NotNil(t, ix)
	assert.False(t, ix.Unique, "missing NON_UNIQUE means non-unique")
	assert.Nil(t, snap.Index("from_index_info"))
}

func TestNew_SystemAndBookkeepingTables(t *testing.T) {
	tests := []struct {
		name     string
		extra    []catalog.Record
		flag     bool
		excluded []string
	}{
		{
			name:     "change-log table",
			extra:    []catalog.Record{table("DATABASECHANGELOG")},
			flag:     true,
			excluded: []string{"DATABASECHANGELOG"},
		},
		{
			name:     "lock table only",
			extra:    []catalog.Record{table("databasechangeloglock")},
			flag:     false,
			excluded: []string{"databasechangeloglock"},
		},
		{
			name:     "system objects",
			extra:    []catalog.Record{table("sys_stats"), view("sysv_info")},
			flag:     false,
			excluded: []string{"sys_stats", "sysv_info"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, c := ordersFixture()
			c.tables = append(c.tables, tt.extra...)
			for _, r := range tt.extra {
				c.columns = append(c.columns, column(r.String(catalog.FieldTableName), "id", catalog.Integer, nil))
			}

			snap := capture(t, d, c)

			assert.Equal(t, tt.flag, snap.HasChangeLogTable())
			for _, name := range tt.excluded {
				assert.Nil(t, snap.Table(name))
				assert.Nil(t, snap.View(name))
				assert.Nil(t, snap.Column(name, "id"))
				assert.Empty(t, c.called("pks "+name))
			}
			assert.Len(t, snap.Tables(), 2)
		})
	}
}

func TestNew_Views(t *testing.T) {
	d, c := ordersFixture()
	c.tables = append(c.tables, view("v_orders"))
	c.columns = append(c.columns, column("v_orders", "id", catalog.Integer, nil))
	d.viewDefs["v_orders"] = "SELECT id FROM orders"

	snap := capture(t, d, c)

	v := snap.View("V_ORDERS")
	require.NotNil(t, v)
	assert.Equal(t, "SELECT id FROM orders", v.Definition)
	require.Len(t, v.Columns, 1)

	col := snap.Column("v_orders", "id")
	require.NotNil(t, col)
	assert.Same(t, v, col.View)
	assert.Nil(t, col.Table)
	assert.False(t, col.AutoIncrement)
	assert.Empty(t, c.called("exported v_orders"), "views are not key endpoints")
}

func TestNew_ViewDefinitionFailure(t *testing.T) {
	d, c := ordersFixture()
	c.tables = append(c.tables, view("v_broken"))
	d.viewErr = errBoom

	snap, err := New(context.Background(), Config{Dialect: d, Catalog: c})

	require.Error(t, err)
	assert.Nil(t, snap)
	assert.True(t, errs.IsViewDefinition(err))
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "v_broken")
	assert.Equal(t, 0, c.openCursors())
}

func TestNew_ColumnDetails(t *testing.T) {
	d, c := ordersFixture()
	auto := column("orders", "id", catalog.Integer, nil)
	auto[catalog.FieldIsAutoIncrement] = "YES"
	total := column("orders", "total", catalog.Decimal, "0.00")
	total[catalog.FieldDecimalDigits] = 2
	total[catalog.FieldNullable] = catalog.ColumnNoNulls
	total[catalog.FieldRemarks] = "order total"
	placed := column("orders", "placed_at", catalog.Timestamp, "CURRENT_TIMESTAMP")
	placed[catalog.FieldNullable] = nil
	c.columns = []catalog.Record{
		auto,
		total,
		placed,
		column("orders", "status", catalog.VarChar, "'new'"),
		column("pseudo_index", "x", catalog.Integer, nil),
	}

	snap := capture(t, d, c)

	id := snap.Column("orders", "id")
	require.NotNil(t, id)
	assert.True(t, id.AutoIncrement)
	assert.Equal(t, schema.Nullable, id.Nullable)

	tc := snap.Column("orders", "total")
	require.NotNil(t, tc)
	assert.Equal(t, 0.0, tc.DefaultValue)
	assert.Equal(t, schema.NotNull, tc.Nullable)
	assert.Equal(t, "order total", tc.Remarks)
	assert.Equal(t, "decimal", tc.TypeName)

	pc := snap.Column("orders", "placed_at")
	require.NotNil(t, pc)
	assert.Equal(t, schema.Function("CURRENT_TIMESTAMP"), pc.DefaultValue)
	assert.Equal(t, schema.NullabilityUnknown, pc.Nullable)

	assert.Equal(t, "new", snap.Column("orders", "status").DefaultValue)
	assert.Nil(t, snap.Column("pseudo_index", "x"))

	names := make([]string, 0)
	for _, col := range snap.Table("orders").Columns {
		names = append(names, col.Name)
	}
	assert.Equal(t, []string{"id", "total", "placed_at", "status"}, names)
}

func TestNew_ColumnDefaultConversionFailure(t *testing.T) {
	d, c := ordersFixture()
	c.columns = append(c.columns, column("orders", "qty", catalog.Integer, "'many'"))

	snap, err := New(context.Background(), Config{Dialect: d, Catalog: c})

	require.Error(t, err)
	assert.Nil(t, snap)
	assert.True(t, errs.IsInvalidData(err))
	assert.Contains(t, err.Error(), "orders.qty")
	assert.Equal(t, 0, c.openCursors())
}

func TestSnapshot_ColumnLookup(t *testing.T) {
	d, c := ordersFixture()
	snap := capture(t, d, c)

	assert.NotNil(t, snap.Column("orders", "customer_id"))
	assert.NotNil(t, snap.Column("ORDERS", "Customer_ID"))
	assert.Nil(t, snap.Column("orders", "missing"))
	assert.Nil(t, snap.Column("ghost", "id"))

	foreign := &schema.Column{Name: "ID", Table: &schema.Table{Name: "Orders"}}
	assert.Same(t, snap.Column("orders", "id"), snap.ColumnOf(foreign))
	assert.Nil(t, snap.ColumnOf(nil))
}

func TestSnapshot_DuplicateTableNames(t *testing.T) {
	d := newFakeDialect()
	c := newFakeCatalog()
	first := table("orders")
	first[catalog.FieldRemarks] = "first"
	second := table("orders")
	second[catalog.FieldRemarks] = "second"
	c.tables = []catalog.Record{first, second}

	snap := capture(t, d, c)

	require.Len(t, snap.Tables(), 1)
	assert.Equal(t, "second", snap.Table("orders").Remarks)
}

func TestNew_Sequences(t *testing.T) {
	d, c := ordersFixture()
	d.sequences = true
	c.queries["LIST-SEQUENCES APP /*V1*/"] = []catalog.Record{
		{"SEQUENCE_NAME": "  seq_orders "},
		{"SEQUENCE_NAME": "seq_customers\n"},
	}

	snap, err := New(context.Background(), Config{
		Dialect: d,
		Catalog: c,
		SQLVisitors: []database.SQLVisitor{
			func(sql string) string { return sql + " /*v1*/" },
			strings.ToUpper,
		},
	})
	require.NoError(t, err)

	require.Len(t, snap.Sequences(), 2)
	assert.Equal(t, "seq_customers", snap.Sequences()[0].Name)
	seq := snap.Sequence("SEQ_ORDERS")
	require.NotNil(t, seq)
	assert.Equal(t, "seq_orders", seq.Name)
	assert.Equal(t, "app", seq.Schema)
}

// upperCoordDialect passes schemas to the catalog in upper case.
type upperCoordDialect struct {
	*fakeDialect
}

func (u *upperCoordDialect) Coordinates(schema string) (string, string) {
	return "", strings.ToUpper(schema)
}

func TestNew_SequencesTaggedWithCatalogSchema(t *testing.T) {
	d, c := ordersFixture()
	d.sequences = true
	c.queries["list-sequences app"] = []catalog.Record{{"SEQUENCE_NAME": "seq_orders"}}

	snap, err := New(context.Background(), Config{Dialect: &upperCoordDialect{d}, Catalog: c})
	require.NoError(t, err)

	assert.Equal(t, "app", snap.Schema())
	seq := snap.Sequence("seq_orders")
	require.NotNil(t, seq)
	assert.Equal(t, "APP", seq.Schema)
}

// sessionDialect has no default schema of its own and asks the session.
type sessionDialect struct {
	*fakeDialect
	current string
	err     error
	asked   int
}

func (s *sessionDialect) ResolveSchema(requested string) string {
	return s.ResolveSchemaOr(requested, "")
}

func (s *sessionDialect) CurrentSchema(context.Context) (string, error) {
	s.asked++
	return s.current, s.err
}

func TestNew_CurrentSchema(t *testing.T) {
	d, c := ordersFixture()
	d.sequences = true
	c.queries["list-sequences sales"] = []catalog.Record{{"SEQUENCE_NAME": "seq_orders"}}

	sd := &sessionDialect{fakeDialect: d, current: "sales"}
	snap, err := New(context.Background(), Config{Dialect: sd, Catalog: c})
	require.NoError(t, err)
	assert.Equal(t, 1, sd.asked)
	assert.Equal(t, "sales", snap.Schema())
	require.NotNil(t, snap.Sequence("seq_orders"))
	assert.Equal(t, "sales", snap.Sequence("seq_orders").Schema)

	// an explicit schema needs no session lookup
	sd = &sessionDialect{fakeDialect: d, current: "sales"}
	snap, err = New(context.Background(), Config{Dialect: sd, Catalog: newFakeCatalog(), Schema: "hr"})
	require.NoError(t, err)
	assert.Zero(t, sd.asked)
	assert.Equal(t, "hr", snap.Schema())
}

func TestNew_CurrentSchemaFailure(t *testing.T) {
	d, c := ordersFixture()
	sd := &sessionDialect{fakeDialect: d, err: errBoom}

	snap, err := New(context.Background(), Config{Dialect: sd, Catalog: c})
	require.Error(t, err)
	assert.Nil(t, snap)
	assert.True(t, errs.IsPermissionDenied(err))
	assert.Empty(t, c.calls, "nothing is read without a schema")
}

func TestNew_SequencesUnsupported(t *testing.T) {
	d, c := ordersFixture()
	c.queries["list-sequences app"] = []catalog.Record{{"SEQUENCE_NAME": "seq_orders"}}

	snap := capture(t, d, c)

	assert.Empty(t, snap.Sequences())
	assert.Empty(t, c.called("query"))
}

func TestNew_Listeners(t *testing.T) {
	d, c := ordersFixture()
	var messages []string

	snap, err := New(context.Background(), Config{
		Dialect: d,
		Catalog: c,
		Listeners: []StatusListener{
			StatusListenerFunc(func(string) { panic("listener bug") }),
			StatusListenerFunc(func(m string) { messages = append(messages, m) }),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, snap)

	require.Len(t, messages, 7)
	assert.True(t, strings.HasPrefix(messages[0], "Reading tables"))
	assert.True(t, strings.HasPrefix(messages[4], "Reading unique constraints"))
	assert.True(t, strings.HasPrefix(messages[6], "Reading sequences"))
}

func TestNew_CatalogFailures(t *testing.T) {
	tests := []struct {
		name     string
		failOn   string
		brokenOn string
		stage    string
	}{
		{name: "tables call", failOn: "tables", stage: "tables"},
		{name: "primary keys call", failOn: "pks", stage: "primary keys"},
		{name: "index call", failOn: "indexinfo", stage: "indexes"},
		{name: "columns cursor", brokenOn: "columns", stage: "columns"},
		{name: "exported keys cursor", brokenOn: "exported", stage: "foreign keys"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, c := ordersFixture()
			c.failOn = tt.failOn
			c.brokenOn = tt.brokenOn
			c.failErr = errBoom

			snap, err := New(context.Background(), Config{Dialect: d, Catalog: c, Concurrency: 2})

			require.Error(t, err)
			assert.Nil(t, snap)
			assert.True(t, errs.IsPermissionDenied(err), "kind of the cause is kept: %v", err)
			assert.Contains(t, err.Error(), tt.stage)
			assert.Equal(t, 0, c.openCursors())
		})
	}
}

func TestNew_Concurrency(t *testing.T) {
	build := func(n int) *Snapshot {
		d, c := ordersFixture()
		for _, name := range []string{"a", "b", "c", "d", "e"} {
			c.tables = append(c.tables, table(name))
			c.pks[name] = []catalog.Record{pkRow(name, "k2", 2), pkRow(name, "k1", 1)}
			c.indexes[name] = []catalog.Record{indexRow("ix_"+name, "v", 1, true)}
		}
		snap, err := New(context.Background(), Config{Dialect: d, Catalog: c, Concurrency: n})
		require.NoError(t, err)
		return snap
	}

	serial, parallel := build(1), build(4)

	require.Len(t, parallel.PrimaryKeys(), len(serial.PrimaryKeys()))
	for i, pk := range serial.PrimaryKeys() {
		assert.Equal(t, pk.Table.Name, parallel.PrimaryKeys()[i].Table.Name)
		assert.Equal(t, pk.ColumnNames(), parallel.PrimaryKeys()[i].ColumnNames())
	}
	require.Len(t, parallel.Indexes(), len(serial.Indexes()))
	for i, ix := range serial.Indexes() {
		assert.Equal(t, ix.Name, parallel.Indexes()[i].Name)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	d, c := ordersFixture()

	_, err := New(context.Background(), Config{Catalog: c})
	assert.True(t, errs.IsInvalidInput(err))

	_, err = New(context.Background(), Config{Dialect: d})
	assert.True(t, errs.IsInvalidInput(err))

	_, err = New(context.Background(), Config{Dialect: d, Catalog: c, Concurrency: -1})
	assert.True(t, errs.IsInvalidInput(err))
}

func TestOpen_UnknownDriver(t *testing.T) {
	snap, err := Open(context.Background(), nil, OpenOptions{Driver: "db2"})
	assert.Nil(t, snap)
	assert.True(t, errs.IsInvalidInput(err))
}
