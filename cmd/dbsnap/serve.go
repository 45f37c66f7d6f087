package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbsnap/internal/server"
)

func newServeCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve snapshots over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := openDB(ctx, &cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			srv := server.New(db, server.Options{
				Driver:          string(cfg.Database.Driver),
				Dialect:         cfg.Snapshot.Dialect,
				Schema:          cfg.Snapshot.Schema,
				Concurrency:     cfg.Snapshot.Concurrency,
				Format:          cfg.Snapshot.Format,
				SnapshotTimeout: cfg.Database.QueryTimeout,
				Addr:            cfg.Server.Addr,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				Logger:          log,
			})
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
