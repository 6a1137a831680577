// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/neurosynth-explorer/internal/normalize"
)

var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "List every term known to the API",
	Long: `Terms fetches the full term list. With --filter only terms containing the
given text (case-insensitive) are printed.`,
	Args: cobra.NoArgs,
	RunE: runTerms,
}

func init() {
	termsCmd.Flags().String("filter", "", "only show terms containing this text")
	addFormatFlag(termsCmd)

	rootCmd.AddCommand(termsCmd)
}

func runTerms(cmd *cobra.Command, args []string) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	filter, _ := cmd.Flags().GetString("filter")

	terms, err := newClient().Terms(cmd.Context())
	if err != nil {
		return err
	}
	return p.Terms(normalize.FilterTerms(terms, filter))
}
