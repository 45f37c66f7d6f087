package snapshot

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/dialect"
	"github.com/koustreak/dbsnap/internal/errs"
	"github.com/koustreak/dbsnap/internal/logger"
	"github.com/koustreak/dbsnap/internal/schema"
)

// builder holds the working state of one capture.
type builder struct {
	cfg     Config
	dialect dialect.Dialect
	catalog catalog.Catalog
	log     *logger.Logger

	// resolved schema and its catalog coordinates
	schemaName string
	catalogArg string
	schemaArg  string

	tables            map[string]*schema.Table
	views             map[string]*schema.View
	columns           map[string]*schema.Column
	primaryKeys       []*schema.PrimaryKey
	foreignKeys       []*schema.ForeignKey
	uniqueConstraints []*schema.UniqueConstraint
	indexes           []*schema.Index
	sequences         []*schema.Sequence
	hasChangeLogTable bool
}

type stage struct {
	name    string
	message string
	run     func(*builder, context.Context) error
}

var stages = []stage{
	{"tables", "Reading tables", (*builder).readTablesAndViews},
	{"foreign keys", "Reading foreign keys", (*builder).readForeignKeys},
	{"primary keys", "Reading primary keys", (*builder).readPrimaryKeys},
	{"columns", "Reading columns", (*builder).readColumns},
	{"unique constraints", "Reading unique constraints", (*builder).readUniqueConstraints},
	{"indexes", "Reading indexes", (*builder).readIndexes},
	{"sequences", "Reading sequences", (*builder).readSequences},
}

// New captures the schema described by cfg. Any stage failure aborts the
// capture; the error keeps the kind of its cause so errs.Is* predicates
// still apply.
func New(ctx context.Context, cfg Config) (*Snapshot, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	b := &builder{
		cfg:     cfg,
		dialect: cfg.Dialect,
		catalog: cfg.Catalog,
		log:     cfg.Logger,
		tables:  make(map[string]*schema.Table),
		views:   make(map[string]*schema.View),
		columns: make(map[string]*schema.Column),
	}
	if b.log == nil {
		b.log = logger.Nop()
	}
	b.schemaName = b.dialect.ResolveSchema(cfg.Schema)
	if b.schemaName == "" {
		if r, ok := b.dialect.(CurrentSchemaReader); ok {
			current, err := r.CurrentSchema(ctx)
			if err != nil {
				return nil, errs.Annotate("snapshot: resolving current schema", err)
			}
			b.schemaName = b.dialect.ResolveSchema(current)
		}
	}
	b.catalogArg, b.schemaArg = b.dialect.Coordinates(b.schemaName)
	b.log = b.log.With().
		Str("dialect", b.dialect.Name()).
		Str("schema", b.schemaName).
		Logger()

	start := time.Now()
	for _, st := range stages {
		b.notify(fmt.Sprintf("%s for %s schema %q ...", st.message, b.dialect.Name(), b.schemaName))
		b.log.Debugf("stage %s started", st.name)

		if err := st.run(b, ctx); err != nil {
			return nil, errs.Annotate(fmt.Sprintf("snapshot %s: reading %s", b.schemaName, st.name), err)
		}
	}

	snap := b.freeze()
	b.log.InfoWith("snapshot complete", map[string]any{
		"tables":       len(snap.tables),
		"views":        len(snap.views),
		"foreign_keys": len(snap.foreignKeys),
		"indexes":      len(snap.indexes),
		"sequences":    len(snap.sequences),
		"duration_ms":  time.Since(start).Milliseconds(),
	})
	return snap, nil
}

// notify tells every listener about the next stage. A panicking listener
// is logged and otherwise ignored.
func (b *builder) notify(message string) {
	for _, l := range b.cfg.Listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.log.WarnWith("status listener panicked", map[string]any{
						"panic":   fmt.Sprint(r),
						"message": message,
					})
				}
			}()
			l.StatusUpdate(message)
		}()
	}
}

// sortedTables returns the tables in name order.
func (b *builder) sortedTables() []*schema.Table {
	return sortByName(slices.Collect(maps.Values(b.tables)), func(t *schema.Table) string { return t.Name })
}

// perTable runs fetch for every table and returns the results in table
// order. Fetches run in parallel when Concurrency allows; callers merge the
// results serially.
func (b *builder) perTable(ctx context.Context, tables []*schema.Table, fetch func(context.Context, *schema.Table) ([]catalog.Record, error)) ([][]catalog.Record, error) {
	results := make([][]catalog.Record, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.cfg.Concurrency, 1))
	for i, t := range tables {
		g.Go(func() error {
			records, err := fetch(gctx, t)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *builder) freeze() *Snapshot {
	s := &Snapshot{
		schemaName:        b.schemaName,
		dialectName:       b.dialect.Name(),
		tableMap:          b.tables,
		viewMap:           b.views,
		columnMap:         b.columns,
		hasChangeLogTable: b.hasChangeLogTable,
	}

	s.tables = sortByName(slices.Collect(maps.Values(b.tables)), func(t *schema.Table) string { return t.Name })
	s.views = sortByName(slices.Collect(maps.Values(b.views)), func(v *schema.View) string { return v.Name })
	s.columns = sortByName(slices.Collect(maps.Values(b.columns)), (*schema.Column).Key)
	s.primaryKeys = sortByName(b.primaryKeys, func(pk *schema.PrimaryKey) string { return pk.Table.Name })
	s.foreignKeys = sortByName(b.foreignKeys, func(fk *schema.ForeignKey) string { return fk.Name })
	s.uniqueConstraints = sortByName(b.uniqueConstraints, func(uc *schema.UniqueConstraint) string { return uc.Name })
	s.indexes = sortByName(b.indexes, func(ix *schema.Index) string { return ix.Table.Name + "." + ix.Name })
	s.sequences = sortByName(b.sequences, func(seq *schema.Sequence) string { return seq.Name })
	return s
}

func sortByName[T any](list []T, nameOf func(T) string) []T {
	slices.SortStableFunc(list, func(a, b T) int {
		return cmp.Compare(nameOf(a), nameOf(b))
	})
	return list
}
