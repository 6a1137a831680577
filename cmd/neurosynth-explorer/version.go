// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version, build and API information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		printVersion(cmd.OutOrStdout(), info, cfg.API.BaseURL)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// printVersion writes the release version, the VCS revision recorded at
// build time (if any) and the API origin in use.
func printVersion(w io.Writer, info *debug.BuildInfo, baseURL string) {
	fmt.Fprintf(w, "neurosynth-explorer %s\n", version)
	fmt.Fprintf(w, "  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if info != nil {
		var rev, modified string
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				rev = s.Value
			case "vcs.modified":
				modified = s.Value
			}
		}
		if rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			if modified == "true" {
				rev += " (modified)"
			}
			fmt.Fprintf(w, "  revision: %s\n", rev)
		}
	}
	fmt.Fprintf(w, "  api:      %s\n", baseURL)
}
