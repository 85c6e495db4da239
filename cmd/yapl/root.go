package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "yapl",
	Short: "Run YAML prompt chains against LLM providers",
	Long: `yapl executes YAML documents that chain calls to LLM providers,
with embedded templating, tool calling, response caching and
dependency-ordered multi-chain scheduling.`,
	SilenceUsage: true,
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
