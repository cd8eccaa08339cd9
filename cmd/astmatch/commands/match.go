package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/astmatch/pkg/export"
	"github.com/Sumatoshi-tech/astmatch/pkg/observability"
)

// NewMatchCommand creates the match command.
func NewMatchCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "match <case>",
		Short: "Match one case and print its mappings",
		Long: `Match the source and destination trees of a case file using its
semantic diff facts, and print the resulting mappings.

Case files are YAML (.yaml, .yml) or JSON (.json), optionally LZ4 framed (.lz4).

Examples:
  astmatch match cases/todo-reformat.yaml
  astmatch match --format json cases/anon.json.lz4
  astmatch match -o todo-reformat.txt cases/todo-reformat.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, args[0], format, output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text or json (default: output.format from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write mappings to this file instead of stdout")

	return cmd
}

func runMatch(cmd *cobra.Command, path, format, output string) error {
	a, err := newApp(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer a.close()

	if format == "" {
		format = a.cfg.Output.Format
	}

	_, diff, err := a.loadCase(path)
	if err != nil {
		return err
	}

	res, err := a.engine.MatchFile(cmd.Context(), diff)
	if err != nil {
		return err
	}

	a.logger().InfoContext(cmd.Context(), "case matched",
		"case", path, "mappings", res.Mappings(), "skipped", res.Skipped, "duration", res.Duration)

	var w io.Writer = cmd.OutOrStdout()

	if output != "" {
		f, createErr := os.Create(output)
		if createErr != nil {
			return fmt.Errorf("create output: %w", createErr)
		}
		defer f.Close()

		w = f
	}

	return export.Write(w, res.Store, format)
}
