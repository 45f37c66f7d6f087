package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbsnap/internal/config"
	"github.com/koustreak/dbsnap/internal/filestore"
	"github.com/koustreak/dbsnap/internal/filestore/minio"
	"github.com/koustreak/dbsnap/internal/logger"
	"github.com/koustreak/dbsnap/internal/report"
)

func newSnapshotCmd(g *globals) *cobra.Command {
	var (
		format string
		out    string
		upload bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture a snapshot and write it as a report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}
			if format == "" {
				format = cfg.Snapshot.Format
			}
			if format, err = report.ParseFormat(format); err != nil {
				return err
			}

			ctx := cmd.Context()
			snap, err := capture(ctx, cfg, log)
			if err != nil {
				return err
			}

			at := time.Now()
			var buf bytes.Buffer
			if err := report.Encode(&buf, report.Build(snap, at), format); err != nil {
				return err
			}

			if err := writeOutput(cmd.OutOrStdout(), out, buf.Bytes()); err != nil {
				return err
			}
			if !upload {
				return nil
			}
			return archive(ctx, cfg, log, cmd.ErrOrStderr(), snap.Schema(), format, buf.Bytes(), at)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", "", "Output format: yaml or json (default from config)")
	f.StringVarP(&out, "out", "o", "", "Output file (default: stdout, \"-\" also means stdout)")
	f.BoolVar(&upload, "upload", false, "Also archive the report in the configured object store")
	return cmd
}

func writeOutput(stdout io.Writer, path string, body []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(body)
		return err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// archive uploads body and prints where it went.
func archive(ctx context.Context, cfg *config.Config, log *logger.Logger, w io.Writer, schemaName, format string, body []byte, at time.Time) error {
	if !cfg.ExportEnabled() {
		return fmt.Errorf("--upload needs export.endpoint in the config")
	}

	store, err := minio.New(ctx, &cfg.Export)
	if err != nil {
		return err
	}
	defer store.Close()

	info, err := filestore.Archive(ctx, store, &cfg.Export, schemaName, format, body, at)
	if err != nil {
		return err
	}
	log.InfoWith("report archived", map[string]any{
		"bucket": cfg.Export.Bucket,
		"key":    info.Key,
		"size":   info.Size,
	})
	fmt.Fprintf(w, "archived s3://%s/%s\n", cfg.Export.Bucket, info.Key)

	if cfg.Export.PresignTTL > 0 {
		url, err := store.PresignGetURL(ctx, cfg.Export.Bucket, info.Key, cfg.Export.PresignTTL)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "download: %s\n", url)
	}
	return nil
}
