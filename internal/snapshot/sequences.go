package snapshot

import (
	"context"
	"strings"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/database"
	"github.com/koustreak/dbsnap/internal/schema"
)

func (b *builder) readSequences(ctx context.Context) error {
	if !b.dialect.SupportsSequences() {
		return nil
	}

	sql := database.ApplyVisitors(b.dialect.FindSequencesSQL(b.schemaName), b.cfg.SQLVisitors...)
	cur, err := b.catalog.Query(ctx, sql)
	if err != nil {
		return err
	}

	return catalog.Drain(cur, func(r catalog.Record) error {
		name, ok := firstString(r)
		if !ok {
			return nil
		}
		b.sequences = append(b.sequences, &schema.Sequence{
			Name:   strings.TrimSpace(name),
			Schema: b.sequenceSchema(),
		})
		return nil
	})
}

// sequenceSchema is the schema coordinate used in catalog calls, falling
// back to the catalog coordinate and then the resolved name.
func (b *builder) sequenceSchema() string {
	switch {
	case b.schemaArg != "":
		return b.schemaArg
	case b.catalogArg != "":
		return b.catalogArg
	}
	return b.schemaName
}

var sequenceNameFields = []string{"SEQUENCE_NAME", "NAME"}

// firstString returns the sequence name of a listing row: a known name
// field, or the only field when the statement used another label.
func firstString(r catalog.Record) (string, bool) {
	for _, f := range sequenceNameFields {
		if r.Has(f) {
			return r.NullString(f)
		}
	}
	if len(r) == 1 {
		for k := range r {
			return r.NullString(k)
		}
	}
	return "", false
}
