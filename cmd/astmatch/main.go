// Package main provides the entry point for the astmatch CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/astmatch/cmd/astmatch/commands"
	"github.com/Sumatoshi-tech/astmatch/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "astmatch",
		Short: "astmatch - AST node matching driven by semantic diff facts",
		Long: `astmatch maps the nodes of a source and destination syntax tree using
facts from a semantic diff: matched javadocs, anonymous classes, method
bodies and comments.

Commands:
  match     Match one case and print its mappings
  check     Compare case mappings against recorded oracles
  batch     Match many cases concurrently and summarize the results
  validate  Check case files against the case schema
  mcp       Serve the matcher over the Model Context Protocol`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	commands.AddPersistentFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewMatchCommand(),
		commands.NewCheckCommand(),
		commands.NewBatchCommand(),
		commands.NewValidateCommand(),
		commands.NewMCPCommand(),
		commands.NewVersionCommand(),
	)

	return rootCmd
}
