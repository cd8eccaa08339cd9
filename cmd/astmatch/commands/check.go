package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/astmatch/pkg/export"
	"github.com/Sumatoshi-tech/astmatch/pkg/fixture"
	"github.com/Sumatoshi-tech/astmatch/pkg/observability"
)

// Sentinel errors for oracle checks.
var (
	ErrMismatch = errors.New("mappings differ from oracle")
	ErrNoOracle = errors.New("no oracle recorded")
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	var update, noColor bool

	cmd := &cobra.Command{
		Use:   "check <case|dir>...",
		Short: "Compare case mappings against recorded oracles",
		Long: `Match every case and compare its mappings with the recorded oracle.

The oracle of cases/a.yaml is cases/a.txt (cases/a.txt.lz4 for cases/a.yaml.lz4).
Cases without an oracle file may inline their expected lines under "expected".

Examples:
  astmatch check cases/
  astmatch check --update cases/todo-reformat.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			}

			return runCheck(cmd, args, update)
		},
	}

	cmd.Flags().BoolVar(&update, "update", false, "rewrite oracles with the current mappings")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, update bool) error {
	a, err := newApp(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer a.close()

	if !a.cfg.Output.Color {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	paths, err := collectCases(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	var failed int

	for _, path := range paths {
		verdict, checkErr := checkCase(cmd, a, path, update)

		switch {
		case checkErr == nil:
			printVerdict(out, true, "PASS %s %s\n", path, verdict)
		case errors.Is(checkErr, ErrMismatch):
			failed++

			printVerdict(out, false, "FAIL %s\n", path)
			fmt.Fprint(out, verdict)
		default:
			failed++

			printVerdict(out, false, "ERROR %s: %v\n", path, checkErr)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d cases", ErrMismatch, failed, len(paths))
	}

	return nil
}

// checkCase returns a short verdict on success, or the unified diff with
// ErrMismatch.
func checkCase(cmd *cobra.Command, a *app, path string, update bool) (string, error) {
	c, diff, err := a.loadCase(path)
	if err != nil {
		return "", err
	}

	res, err := a.engine.MatchFile(cmd.Context(), diff)
	if err != nil {
		return "", err
	}

	actual := export.Text(res.Store)
	oraclePath := fixture.OraclePath(path)

	if update {
		if err := fixture.WriteOracle(oraclePath, actual); err != nil {
			return "", err
		}

		return "(oracle updated)", nil
	}

	expected, err := readExpectation(oraclePath, c)
	if err != nil {
		return "", err
	}

	if mismatch := export.Compare(expected, actual); mismatch != nil {
		return mismatch.Unified(), fmt.Errorf("%w: %w", ErrMismatch, mismatch)
	}

	return fmt.Sprintf("(%d mappings)", res.Mappings()), nil
}

func readExpectation(oraclePath string, c *fixture.Case) (string, error) {
	expected, err := fixture.ReadOracle(oraclePath)
	if err == nil {
		return expected, nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	if len(c.Expected) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoOracle, oraclePath)
	}

	return strings.Join(c.Expected, "\n"), nil
}

// printVerdict is shared by commands reporting one line per file.
func printVerdict(w io.Writer, ok bool, format string, args ...any) {
	c := color.New(color.FgRed)
	if ok {
		c = color.New(color.FgGreen)
	}

	c.Fprintf(w, format, args...)
}
