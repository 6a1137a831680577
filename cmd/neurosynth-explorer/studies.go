// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/neurosynth-explorer/internal/query"
	"github.com/pdiddy/neurosynth-explorer/internal/studies"
)

var studiesCmd = &cobra.Command{
	Use:   "studies [QUERY]",
	Short: "Find the studies matching a boolean term query",
	Long: `Studies runs a boolean query such as "pain AND NOT memory" and prints the
matching studies ordered by year. Terms given with --and are appended with
AND. Use --from and --to to keep only studies published in that range.

--save writes the fetched studies to a YAML file; --replay filters a saved
file again without contacting the API.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStudies,
}

func init() {
	studiesCmd.Flags().StringArray("and", nil, "append a term with AND (repeatable)")
	studiesCmd.Flags().String("from", "", "earliest publication year")
	studiesCmd.Flags().String("to", "", "latest publication year")
	studiesCmd.Flags().String("sort", "desc", "year order: asc or desc")
	studiesCmd.Flags().String("save", "", "write the fetched studies to this YAML file")
	studiesCmd.Flags().String("replay", "", "filter a saved YAML file instead of querying")
	addFormatFlag(studiesCmd)

	rootCmd.AddCommand(studiesCmd)
}

func runStudies(cmd *cobra.Command, args []string) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	replay, _ := flags.GetString("replay")

	var (
		raw  string
		recs []studies.Record
		f    studies.Filter
	)
	if replay != "" {
		if len(args) > 0 {
			return fmt.Errorf("--replay does not take a query")
		}
		ss, err := studies.ReadSavedSearch(replay)
		if err != nil {
			return err
		}
		raw, recs, f = ss.Query.Raw, ss.Studies, ss.Filter
		logger.Debug("replaying saved search",
			zap.String("path", replay),
			zap.String("query", raw),
			zap.Int("studies", len(recs)))
	} else {
		f.Sort = studies.Descending
	}

	if err := applyFilterFlags(cmd, &f); err != nil {
		return err
	}

	if replay == "" {
		if len(args) > 0 {
			raw = args[0]
		}
		extra, _ := flags.GetStringArray("and")
		for _, t := range extra {
			raw = query.AppendTerm(raw, t)
		}
		if strings.TrimSpace(raw) == "" {
			return fmt.Errorf("enter a query")
		}
		recs, err = newClient().Studies(cmd.Context(), raw)
		if err != nil {
			return err
		}
	}

	shown := studies.Apply(recs, f)

	if save, _ := flags.GetString("save"); save != "" {
		prepared, _ := query.Prepare(raw)
		q := studies.SavedQuery{Raw: raw, Prepared: prepared}
		if err := studies.WriteSavedSearch(save, q, f, recs, len(shown)); err != nil {
			return err
		}
		logger.Info("saved studies", zap.String("path", save), zap.Int("studies", len(recs)))
	}

	return p.Studies(shown, len(recs))
}

// applyFilterFlags overrides f with every filter flag the user set. A
// bound that is not a year is an error here, unlike in the interactive
// front ends.
func applyFilterFlags(cmd *cobra.Command, f *studies.Filter) error {
	flags := cmd.Flags()
	if flags.Changed("from") {
		s, _ := flags.GetString("from")
		b, err := studies.ParseBound(s)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		f.From = b
	}
	if flags.Changed("to") {
		s, _ := flags.GetString("to")
		b, err := studies.ParseBound(s)
		if err != nil {
			return fmt.Errorf("--to: %w", err)
		}
		f.To = b
	}
	if flags.Changed("sort") {
		s, _ := flags.GetString("sort")
		switch strings.ToLower(strings.TrimSpace(s)) {
		case string(studies.Ascending):
			f.Sort = studies.Ascending
		case string(studies.Descending):
			f.Sort = studies.Descending
		default:
			return fmt.Errorf("--sort must be asc or desc, got %q", s)
		}
	}
	return nil
}
