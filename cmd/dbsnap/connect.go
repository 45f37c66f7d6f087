package main

import (
	"context"
	"fmt"

	"github.com/koustreak/dbsnap/internal/config"
	"github.com/koustreak/dbsnap/internal/database"
	"github.com/koustreak/dbsnap/internal/database/mysql"
	"github.com/koustreak/dbsnap/internal/database/postgres"
	"github.com/koustreak/dbsnap/internal/database/sqlite"
	"github.com/koustreak/dbsnap/internal/logger"
	"github.com/koustreak/dbsnap/internal/snapshot"
)

// openDB connects with the driver named in cfg.
func openDB(ctx context.Context, cfg *database.Config) (database.DB, error) {
	switch cfg.Driver {
	case database.DriverPostgres:
		return postgres.New(ctx, cfg)
	case database.DriverMySQL:
		return mysql.New(ctx, cfg)
	case database.DriverSQLite:
		return sqlite.New(ctx, cfg)
	}
	return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
}

// capture opens the database, takes one snapshot and closes it again.
func capture(ctx context.Context, cfg *config.Config, log *logger.Logger) (*snapshot.Snapshot, error) {
	if cfg.Database.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Database.QueryTimeout)
		defer cancel()
	}

	db, err := openDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return snapshot.Open(ctx, db, snapshotOptions(cfg, log))
}

func snapshotOptions(cfg *config.Config, log *logger.Logger) snapshot.OpenOptions {
	return snapshot.OpenOptions{
		Driver:      string(cfg.Database.Driver),
		Dialect:     cfg.Snapshot.Dialect,
		Schema:      cfg.Snapshot.Schema,
		Logger:      log,
		Concurrency: cfg.Snapshot.Concurrency,
		Listeners: []snapshot.StatusListener{
			snapshot.StatusListenerFunc(func(msg string) { log.Debug(msg) }),
		},
	}
}
