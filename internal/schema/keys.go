package schema

import (
	"slices"
	"strings"

	"github.com/koustreak/dbsnap/internal/catalog"
)

// PrimaryKey is the primary key of one Table.
type PrimaryKey struct {
	Name    string
	Table   *Table
	columns []string
}

// AddColumn stores name at the 0-based position pos, padding any gap.
func (pk *PrimaryKey) AddColumn(pos int, name string) {
	pk.columns = setAt(pk.columns, pos, name)
}

// ColumnNames returns the key columns in key order.
func (pk *PrimaryKey) ColumnNames() []string {
	return slices.Clone(pk.columns)
}

// Contains reports whether column is part of the key.
func (pk *PrimaryKey) Contains(column string) bool {
	return slices.Contains(pk.columns, column)
}

// Rule is a referential action of a foreign key.
type Rule int

const (
	RuleCascade    Rule = catalog.KeyCascade
	RuleRestrict   Rule = catalog.KeyRestrict
	RuleSetNull    Rule = catalog.KeySetNull
	RuleNoAction   Rule = catalog.KeyNoAction
	RuleSetDefault Rule = catalog.KeySetDefault
)

func (r Rule) String() string {
	switch r {
	case RuleCascade:
		return "CASCADE"
	case RuleRestrict:
		return "RESTRICT"
	case RuleSetNull:
		return "SET NULL"
	case RuleNoAction:
		return "NO ACTION"
	case RuleSetDefault:
		return "SET DEFAULT"
	}
	return "UNKNOWN"
}

// Deferrability records when a foreign key is checked.
type Deferrability int

const (
	DeferrabilityUnknown Deferrability = iota
	InitiallyDeferred
	InitiallyImmediate
	NotDeferrable
)

func (d Deferrability) String() string {
	switch d {
	case InitiallyDeferred:
		return "initially_deferred"
	case InitiallyImmediate:
		return "initially_immediate"
	case NotDeferrable:
		return "not_deferrable"
	}
	return "unknown"
}

// DeferrabilityFromCode maps a catalog DEFERRABILITY code.
func DeferrabilityFromCode(code int) Deferrability {
	switch code {
	case catalog.KeyInitiallyDeferred:
		return InitiallyDeferred
	case catalog.KeyInitiallyImmediate:
		return InitiallyImmediate
	case catalog.KeyNotDeferrable:
		return NotDeferrable
	}
	return DeferrabilityUnknown
}

// ForeignKey links columns of ForeignKeyTable to columns of PrimaryKeyTable.
// A nil rule means the catalog did not report one.
type ForeignKey struct {
	Name              string
	PrimaryKeyTable   *Table
	PrimaryKeyColumns []string
	ForeignKeyTable   *Table
	ForeignKeyColumns []string
	UpdateRule        *Rule
	DeleteRule        *Rule
	Deferrability     Deferrability
}

// UniqueConstraint is a named uniqueness rule over ordered columns.
type UniqueConstraint struct {
	Name    string
	Table   *Table
	Columns []string
}

// SameTable reports whether a and b name the same table, ignoring case.
func SameTable(a, b *Table) bool {
	if a == nil || b == nil {
		return a == b
	}
	return strings.EqualFold(a.Name, b.Name)
}

func setAt(list []string, pos int, name string) []string {
	for len(list) <= pos {
		list = append(list, "")
	}
	list[pos] = name
	return list
}
