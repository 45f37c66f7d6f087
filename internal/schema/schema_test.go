package schema

import (
	"testing"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/stretchr/testify/assert"
)

func TestPrimaryKey_AddColumnOutOfOrder(t *testing.T) {
	pk := &PrimaryKey{Name: "pk_order_line"}
	pk.AddColumn(1, "line_no")
	pk.AddColumn(0, "order_id")

	assert.Equal(t, []string{"order_id", "line_no"}, pk.ColumnNames())
	assert.True(t, pk.Contains("line_no"))
	assert.False(t, pk.Contains("LINE_NO"))
}

func TestIndex_PaddingAndCompletion(t *testing.T) {
	ix := &Index{Name: "idx_a_b_c"}
	ix.SetColumn(3, "c")
	assert.Equal(t, []string{"", "", "c"}, ix.Columns())
	assert.False(t, ix.Complete())

	ix.SetColumn(1, "a")
	ix.SetColumn(2, "b")
	ix.SetColumn(0, "ignored")
	assert.Equal(t, []string{"a", "b", "c"}, ix.Columns())
	assert.True(t, ix.Complete())

	assert.False(t, (&Index{}).Complete())
}

func TestIndex_Covers(t *testing.T) {
	orders := &Table{Name: "orders"}
	ix := &Index{Name: "ix", Table: orders}
	ix.SetColumn(1, "a")
	ix.SetColumn(2, "b")

	assert.True(t, ix.Covers(&Table{Name: "ORDERS"}, []string{"a", "b"}))
	assert.False(t, ix.Covers(orders, []string{"b", "a"}), "order matters")
	assert.False(t, ix.Covers(orders, []string{"a"}), "prefix is not a match")
	assert.False(t, ix.Covers(&Table{Name: "other"}, []string{"a", "b"}))
}

func TestColumn_OwnerAndKey(t *testing.T) {
	tbl := &Table{Name: "customer"}
	c := &Column{Name: "id", Table: tbl}
	tbl.Columns = append(tbl.Columns, c)

	assert.Equal(t, "customer.id", c.Key())
	assert.Same(t, c, tbl.Column("ID"))
	assert.Nil(t, tbl.Column("missing"))

	v := &Column{Name: "total", View: &View{Name: "v_sales"}}
	assert.Equal(t, "v_sales.total", v.Key())
	assert.Equal(t, "", (&Column{Name: "x"}).OwnerName())
}

func TestCodes(t *testing.T) {
	assert.Equal(t, NotNull, NullabilityFromCode(catalog.ColumnNoNulls))
	assert.Equal(t, Nullable, NullabilityFromCode(catalog.ColumnNullable))
	assert.Equal(t, NullabilityUnknown, NullabilityFromCode(catalog.ColumnNullableUnknown))

	assert.Equal(t, InitiallyDeferred, DeferrabilityFromCode(5))
	assert.Equal(t, InitiallyImmediate, DeferrabilityFromCode(6))
	assert.Equal(t, NotDeferrable, DeferrabilityFromCode(7))
	assert.Equal(t, DeferrabilityUnknown, DeferrabilityFromCode(0))

	assert.Equal(t, "SET NULL", RuleSetNull.String())
	assert.Equal(t, "NO ACTION", Rule(catalog.KeyNoAction).String())
}

func TestSameTable(t *testing.T) {
	assert.True(t, SameTable(&Table{Name: "A"}, &Table{Name: "a"}))
	assert.True(t, SameTable(nil, nil))
	assert.False(t, SameTable(&Table{Name: "a"}, nil))
}
