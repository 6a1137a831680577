// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/neurosynth-explorer/internal/query"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Work with boolean study queries offline",
}

var queryCheckCmd = &cobra.Command{
	Use:   "check QUERY",
	Short: "Validate a query and show the form sent to the API",
	Long: `Check reports whether QUERY is complete enough to send. For a runnable
query it prints the normalized text sent to the study search and the
grouping the query parses to. Nothing is sent over the network.`,
	Args: cobra.ExactArgs(1),
	RunE: runQueryCheck,
}

func init() {
	queryCmd.AddCommand(queryCheckCmd)
	rootCmd.AddCommand(queryCmd)
}

func runQueryCheck(cmd *cobra.Command, args []string) error {
	return checkQuery(cmd.OutOrStdout(), args[0])
}

func checkQuery(w io.Writer, raw string) error {
	fmt.Fprintf(w, "query:      %q\n", raw)
	if err := query.Validate(raw); err != nil {
		fmt.Fprintf(w, "runnable:   no (%v)\n", err)
		return err
	}
	fmt.Fprintln(w, "runnable:   yes")
	fmt.Fprintf(w, "normalized: %s\n", query.Normalize(raw))

	e, err := query.Parse(raw)
	if err != nil {
		fmt.Fprintf(w, "parse:      %v\n", err)
		return nil
	}
	fmt.Fprintf(w, "parse:      %s\n", e)
	return nil
}
