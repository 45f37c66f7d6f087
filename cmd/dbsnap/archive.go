package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbsnap/internal/filestore"
	"github.com/koustreak/dbsnap/internal/filestore/minio"
)

func newArchiveCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse reports archived with snapshot --upload",
	}
	cmd.AddCommand(newArchiveListCmd(g), newArchiveGetCmd(g))
	return cmd
}

func openStore(cmd *cobra.Command, g *globals) (filestore.Store, string, error) {
	cfg, _, err := g.loadExport()
	if err != nil {
		return nil, "", err
	}
	store, err := minio.New(cmd.Context(), &cfg.Export)
	if err != nil {
		return nil, "", err
	}
	return store, cfg.Export.Bucket, nil
}

func newArchiveListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list [prefix]",
		Short: "List archived reports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, bucket, err := openStore(cmd, g)
			if err != nil {
				return err
			}
			defer store.Close()

			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			objs, err := store.ListObjects(cmd.Context(), bucket, prefix)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tSIZE\tMODIFIED")
			for _, o := range objs {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", o.Key, o.Size, o.LastModified.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
}

func newArchiveGetCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print an archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, bucket, err := openStore(cmd, g)
			if err != nil {
				return err
			}
			defer store.Close()

			if _, err := store.StatObject(cmd.Context(), bucket, args[0]); err != nil {
				return err
			}
			obj, err := store.GetObject(cmd.Context(), bucket, args[0])
			if err != nil {
				return err
			}
			defer obj.Close()

			_, err = io.Copy(cmd.OutOrStdout(), obj)
			return err
		},
	}
}
