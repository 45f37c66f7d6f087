package catalog

import (
	"context"
	"strings"

	"github.com/koustreak/dbsnap/internal/database"
)

// sliceCursor is a Cursor over materialized records.
type sliceCursor struct {
	records []Record
	pos     int
	closed  bool
}

// NewCursor returns a Cursor over records.
func NewCursor(records ...Record) Cursor {
	return &sliceCursor{records: records}
}

func (c *sliceCursor) Next() bool {
	if c.closed || c.pos >= len(c.records) {
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Record() Record {
	if c.pos == 0 || c.pos > len(c.records) {
		return nil
	}
	return c.records[c.pos-1]
}

func (c *sliceCursor) Err() error   { return nil }
func (c *sliceCursor) Close() error { c.closed = true; return nil }

// FromRows materializes rows into a Cursor, upper-casing column names so
// lower-case catalog views (information_schema, PRAGMA) line up with the
// standard field names. rows is always closed.
func FromRows(rows database.Rows) (Cursor, error) {
	maps, err := database.ScanRows(rows)
	if err != nil {
		return nil, err
	}

	records := make([]Record, len(maps))
	for i, m := range maps {
		r := make(Record, len(m))
		for k, v := range m {
			r[strings.ToUpper(k)] = v
		}
		records[i] = r
	}
	return NewCursor(records...), nil
}

// Run rebinds sql to the placeholder style p, executes it on db and
// materializes the result.
func Run(ctx context.Context, db database.DB, p database.Placeholder, sql string, args ...any) (Cursor, error) {
	rows, err := db.Query(ctx, database.Rebind(p, sql), args...)
	if err != nil {
		return nil, err
	}
	return FromRows(rows)
}
