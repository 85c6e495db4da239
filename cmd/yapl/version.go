package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at release build time; falls back to module
// build info for go install builds.
var version = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the yapl version",
	Run: func(cmd *cobra.Command, args []string) {
		v := version
		if v == "" {
			if info, ok := debug.ReadBuildInfo(); ok {
				v = info.Main.Version
			}
		}
		if v == "" {
			v = "(devel)"
		}
		fmt.Println(v)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
