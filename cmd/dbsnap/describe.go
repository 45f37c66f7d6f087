package main

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/koustreak/dbsnap/internal/report"
	"github.com/koustreak/dbsnap/internal/snapshot"
)

func newDescribeCmd(g *globals) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "describe <table>",
		Short: "Show the columns, keys and indexes of one table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			snap, err := capture(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			t, ok := report.BuildTable(snap, args[0])
			if !ok {
				return notFound(snap, args[0])
			}
			return report.Encode(cmd.OutOrStdout(), t, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: yaml or json (default from config)")
	return cmd
}

func notFound(snap *snapshot.Snapshot, name string) error {
	names := make([]string, 0, len(snap.Tables()))
	for _, t := range snap.Tables() {
		names = append(names, t.Name)
	}

	msg := fmt.Sprintf("table %q not found in schema %s", name, snap.Schema())
	if s := suggest(name, names, 3); len(s) > 0 {
		msg += "; did you mean " + strings.Join(s, ", ") + "?"
	}
	return fmt.Errorf("%s", msg)
}

// suggest ranks names by fuzzy similarity to input, ignoring case.
func suggest(input string, names []string, limit int) []string {
	lower := make([]string, len(names))
	for i, n := range names {
		lower[i] = strings.ToLower(n)
	}

	// fuzzy.Find returns matches sorted by score
	matches := fuzzy.Find(strings.ToLower(input), lower)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, names[m.Index])
	}
	return out
}
