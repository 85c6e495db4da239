package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patrickjm/yapl"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.yaml>",
	Short: "Check a document without executing it",
	Long: `Parses the document and runs the static checks: dependency cycles,
undeclared chain references, output id uniqueness and placement, and
reserved input names. No provider is ever called.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := yapl.New().Validate(data); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Println("document is valid")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
