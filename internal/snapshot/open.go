package snapshot

import (
	"context"

	"github.com/koustreak/dbsnap/internal/database"
	"github.com/koustreak/dbsnap/internal/dialect"
	"github.com/koustreak/dbsnap/internal/logger"
)

// OpenOptions selects a registered dialect and tunes the capture.
type OpenOptions struct {
	// Driver is the registry name of the dialect ("postgres", "sqlite", …).
	Driver string

	Dialect     dialect.Options
	Schema      string
	Logger      *logger.Logger
	Listeners   []StatusListener
	SQLVisitors []database.SQLVisitor
	Concurrency int
}

// Open captures a snapshot over db using the dialect registered under
// opts.Driver. The dialect package must be linked in, usually through a
// blank import. db stays open.
func Open(ctx context.Context, db database.DB, opts OpenOptions) (*Snapshot, error) {
	factory, err := dialect.Lookup(opts.Driver)
	if err != nil {
		return nil, err
	}
	d, cat := factory(db, opts.Dialect)

	return New(ctx, Config{
		Dialect:     d,
		Catalog:     cat,
		Schema:      opts.Schema,
		Logger:      opts.Logger,
		Listeners:   opts.Listeners,
		SQLVisitors: opts.SQLVisitors,
		Concurrency: opts.Concurrency,
	})
}
