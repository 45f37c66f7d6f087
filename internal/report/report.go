// Package report turns a snapshot into a serializable document.
package report

import (
	"fmt"
	"time"

	"github.com/koustreak/dbsnap/internal/schema"
	"github.com/koustreak/dbsnap/internal/snapshot"
)

// Report is the rendered form of one snapshot.
type Report struct {
	Schema            string    `yaml:"schema" json:"schema"`
	Dialect           string    `yaml:"dialect" json:"dialect"`
	CapturedAt        time.Time `yaml:"captured_at" json:"captured_at"`
	HasChangeLogTable bool      `yaml:"has_changelog_table" json:"has_changelog_table"`

	Tables            []Table            `yaml:"tables" json:"tables"`
	Views             []View             `yaml:"views,omitempty" json:"views,omitempty"`
	UniqueConstraints []UniqueConstraint `yaml:"unique_constraints,omitempty" json:"unique_constraints,omitempty"`
	Sequences         []string           `yaml:"sequences,omitempty" json:"sequences,omitempty"`

	// ExternalForeignKeys reference this schema from tables outside it.
	ExternalForeignKeys []ForeignKey `yaml:"external_foreign_keys,omitempty" json:"external_foreign_keys,omitempty"`
}

type Table struct {
	Name        string       `yaml:"name" json:"name"`
	Schema      string       `yaml:"schema,omitempty" json:"schema,omitempty"`
	Remarks     string       `yaml:"remarks,omitempty" json:"remarks,omitempty"`
	Columns     []Column     `yaml:"columns" json:"columns"`
	PrimaryKey  *PrimaryKey  `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	ForeignKeys []ForeignKey `yaml:"foreign_keys,omitempty" json:"foreign_keys,omitempty"`
	Indexes     []Index      `yaml:"indexes,omitempty" json:"indexes,omitempty"`
}

type View struct {
	Name       string   `yaml:"name" json:"name"`
	Schema     string   `yaml:"schema,omitempty" json:"schema,omitempty"`
	Definition string   `yaml:"definition" json:"definition"`
	Columns    []Column `yaml:"columns" json:"columns"`
}

type Column struct {
	Name          string `yaml:"name" json:"name"`
	Type          string `yaml:"type" json:"type"`
	DataType      string `yaml:"data_type" json:"data_type"`
	Size          int    `yaml:"size,omitempty" json:"size,omitempty"`
	Digits        int    `yaml:"digits,omitempty" json:"digits,omitempty"`
	Nullable      string `yaml:"nullable" json:"nullable"`
	PrimaryKey    bool   `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	AutoIncrement bool   `yaml:"auto_increment,omitempty" json:"auto_increment,omitempty"`
	Default       string `yaml:"default,omitempty" json:"default,omitempty"`
	// DefaultComputed marks a default evaluated by the database.
	DefaultComputed bool   `yaml:"default_computed,omitempty" json:"default_computed,omitempty"`
	Remarks         string `yaml:"remarks,omitempty" json:"remarks,omitempty"`
}

type PrimaryKey struct {
	Name    string   `yaml:"name,omitempty" json:"name,omitempty"`
	Columns []string `yaml:"columns" json:"columns"`
}

type ForeignKey struct {
	Name              string   `yaml:"name" json:"name"`
	Table             string   `yaml:"table" json:"table"`
	Columns           []string `yaml:"columns" json:"columns"`
	References        string   `yaml:"references" json:"references"`
	ReferencedColumns []string `yaml:"referenced_columns" json:"referenced_columns"`
	OnUpdate          string   `yaml:"on_update,omitempty" json:"on_update,omitempty"`
	OnDelete          string   `yaml:"on_delete,omitempty" json:"on_delete,omitempty"`
	Deferrability     string   `yaml:"deferrability,omitempty" json:"deferrability,omitempty"`
}

type Index struct {
	Name    string   `yaml:"name" json:"name"`
	Unique  bool     `yaml:"unique" json:"unique"`
	Columns []string `yaml:"columns" json:"columns"`
	Filter  string   `yaml:"filter,omitempty" json:"filter,omitempty"`
}

type UniqueConstraint struct {
	Name    string   `yaml:"name" json:"name"`
	Table   string   `yaml:"table" json:"table"`
	Columns []string `yaml:"columns" json:"columns"`
}

// Build renders snap, stamping it with at.
func Build(snap *snapshot.Snapshot, at time.Time) *Report {
	r := &Report{
		Schema:            snap.Schema(),
		Dialect:           snap.Dialect(),
		CapturedAt:        at.UTC(),
		HasChangeLogTable: snap.HasChangeLogTable(),
		Tables:            make([]Table, 0, len(snap.Tables())),
	}

	for _, t := range snap.Tables() {
		r.Tables = append(r.Tables, buildTable(snap, t))
	}
	for _, v := range snap.Views() {
		r.Views = append(r.Views, View{
			Name:       v.Name,
			Schema:     v.Schema,
			Definition: v.Definition,
			Columns:    buildColumns(v.Columns),
		})
	}
	for _, uc := range snap.UniqueConstraints() {
		r.UniqueConstraints = append(r.UniqueConstraints, UniqueConstraint{
			Name:    uc.Name,
			Table:   uc.Table.Name,
			Columns: uc.Columns,
		})
	}
	for _, seq := range snap.Sequences() {
		r.Sequences = append(r.Sequences, seq.Name)
	}
	for _, fk := range snap.ForeignKeys() {
		if snap.Table(fk.ForeignKeyTable.Name) != fk.ForeignKeyTable {
			r.ExternalForeignKeys = append(r.ExternalForeignKeys, buildForeignKey(fk))
		}
	}
	return r
}

// BuildTable renders the named table of snap, or returns false.
func BuildTable(snap *snapshot.Snapshot, name string) (Table, bool) {
	t := snap.Table(name)
	if t == nil {
		return Table{}, false
	}
	return buildTable(snap, t), true
}

func buildTable(snap *snapshot.Snapshot, t *schema.Table) Table {
	out := Table{
		Name:    t.Name,
		Schema:  t.Schema,
		Remarks: t.Remarks,
		Columns: buildColumns(t.Columns),
	}
	if pk := snap.PrimaryKeyForTable(t.Name); pk != nil {
		out.PrimaryKey = &PrimaryKey{Name: pk.Name, Columns: pk.ColumnNames()}
	}
	for _, fk := range snap.ForeignKeys() {
		if fk.ForeignKeyTable == t {
			out.ForeignKeys = append(out.ForeignKeys, buildForeignKey(fk))
		}
	}
	for _, ix := range snap.Indexes() {
		if ix.Table == t {
			out.Indexes = append(out.Indexes, Index{
				Name:    ix.Name,
				Unique:  ix.Unique,
				Columns: ix.Columns(),
				Filter:  ix.FilterCondition,
			})
		}
	}
	return out
}

func buildColumns(cols []*schema.Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		def, computed := formatDefault(c.DefaultValue)
		out = append(out, Column{
			Name:            c.Name,
			Type:            c.TypeName,
			DataType:        c.DataType.String(),
			Size:            c.ColumnSize,
			Digits:          c.DecimalDigits,
			Nullable:        c.Nullable.String(),
			PrimaryKey:      c.PrimaryKey,
			AutoIncrement:   c.AutoIncrement,
			Default:         def,
			DefaultComputed: computed,
			Remarks:         c.Remarks,
		})
	}
	return out
}

func buildForeignKey(fk *schema.ForeignKey) ForeignKey {
	out := ForeignKey{
		Name:              fk.Name,
		Table:             fk.ForeignKeyTable.Name,
		Columns:           fk.ForeignKeyColumns,
		References:        fk.PrimaryKeyTable.Name,
		ReferencedColumns: fk.PrimaryKeyColumns,
	}
	if fk.UpdateRule != nil {
		out.OnUpdate = fk.UpdateRule.String()
	}
	if fk.DeleteRule != nil {
		out.OnDelete = fk.DeleteRule.String()
	}
	if fk.Deferrability != schema.DeferrabilityUnknown {
		out.Deferrability = fk.Deferrability.String()
	}
	return out
}

func formatDefault(v any) (string, bool) {
	switch d := v.(type) {
	case nil:
		return "", false
	case schema.Function:
		return string(d), true
	case time.Time:
		return d.Format(time.RFC3339Nano), false
	default:
		return fmt.Sprint(d), false
	}
}
