// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/neurosynth-explorer/internal/render"
)

var relatedCmd = &cobra.Command{
	Use:   "related TERM...",
	Short: "Show the terms most related to each TERM",
	Long: `Related looks up each TERM and prints its related terms, most similar
first. Lookups run concurrently, at most --concurrency at a time. A failed
lookup is reported in place and makes the command exit non-zero.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRelated,
}

func init() {
	relatedCmd.Flags().Int("concurrency", 3, "maximum concurrent lookups")
	addFormatFlag(relatedCmd)

	rootCmd.AddCommand(relatedCmd)
}

func runRelated(cmd *cobra.Command, args []string) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	n, _ := cmd.Flags().GetInt("concurrency")
	if n < 1 {
		n = 1
	}

	client := newClient()
	results := make([]render.RelatedResult, len(args))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(n)
	for i, term := range args {
		g.Go(func() error {
			related, err := client.Related(ctx, term)
			results[i] = render.RelatedResult{Term: term, Related: related}
			if err != nil {
				logger.Debug("related lookup failed", zap.String("term", term), zap.Error(err))
				results[i].Related = []string{}
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := p.Related(results); err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d lookup(s) failed", failed)
	}
	return nil
}
