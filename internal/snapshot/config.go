package snapshot

import (
	"context"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/database"
	"github.com/koustreak/dbsnap/internal/dialect"
	"github.com/koustreak/dbsnap/internal/errs"
	"github.com/koustreak/dbsnap/internal/logger"
	"github.com/koustreak/dbsnap/internal/schema"
)

// Config carries everything one snapshot needs. Nothing in this package
// keeps process-wide state; two snapshots with different Configs never
// interact.
type Config struct {
	Dialect dialect.Dialect
	Catalog catalog.Catalog

	// Schema is the requested schema; "" means the dialect's default.
	Schema string

	// Logger defaults to a no-op logger.
	Logger *logger.Logger

	Listeners []StatusListener

	// SQLVisitors rewrite the sequence listing statement, left to right.
	SQLVisitors []database.SQLVisitor

	// Concurrency bounds parallel per-table catalog reads. Values below 2
	// read one table at a time.
	Concurrency int
}

func (c *Config) validate() error {
	if c.Dialect == nil {
		return errs.New(errs.ErrKindInvalidInput, "snapshot: dialect is required")
	}
	if c.Catalog == nil {
		return errs.New(errs.ErrKindInvalidInput, "snapshot: catalog is required")
	}
	if c.Concurrency < 0 {
		return errs.New(errs.ErrKindInvalidInput, "snapshot: concurrency must not be negative")
	}
	return nil
}

// StatusListener receives a progress message before each stage starts.
type StatusListener interface {
	StatusUpdate(message string)
}

// StatusListenerFunc adapts a plain function to StatusListener.
type StatusListenerFunc func(message string)

func (f StatusListenerFunc) StatusUpdate(message string) { f(message) }

// CurrentSchemaReader is an optional Dialect extension for products whose
// default schema is only known to the session. It is asked when
// ResolveSchema yields "".
type CurrentSchemaReader interface {
	CurrentSchema(ctx context.Context) (string, error)
}

// UniqueConstraintReader is an optional Dialect extension. Dialects that
// can list unique constraints implement it; the others contribute none.
type UniqueConstraintReader interface {
	UniqueConstraints(ctx context.Context, cat catalog.Catalog, schemaName string, tables []*schema.Table) ([]*schema.UniqueConstraint, error)
}
