// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/neurosynth-explorer/internal/tui"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Browse terms and studies in an interactive terminal UI",
	Long: `Explore opens a full-screen explorer with three panels: the term list,
the terms related to a chosen term, and the studies matching a query.
Related terms and studies refresh while you type, after a short pause.

Keys:
  tab / shift+tab    move between fields
  enter              search now
  up / down, ctrl+l  pick a term from the list
  ctrl+a, alt+1..9   append a related term to the query
  alt+a alt+o alt+n  insert AND, OR, NOT
  alt+( alt+)        insert parentheses
  ctrl+s             toggle year order
  esc, ctrl+c        quit

Logs are only written when log.file is configured.`,
	Args: cobra.NoArgs,
	RunE: runExplore,
}

func init() {
	exploreCmd.Flags().Duration("debounce", 0, "pause after typing before searching (default 400ms)")
	_ = viper.BindPFlag("explorer.debounce", exploreCmd.Flags().Lookup("debounce"))

	rootCmd.AddCommand(exploreCmd)
}

func runExplore(cmd *cobra.Command, args []string) error {
	return tui.Run(cmd.Context(), newClient(), cfg.Explorer, logger)
}
