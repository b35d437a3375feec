//go:build !( js || wasm)

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/skarn-lang/skarn/cmd"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "skarn [subcommand]",
	Short:        "skarn ⚖\n the equality simplifier behind dependent pattern matching",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.SimpCmd)
	rootCmd.AddCommand(cmd.ShowCmd)
}
