package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/astmatch/pkg/fixture"
)

// ErrInvalidCases reports that at least one case failed validation.
var ErrInvalidCases = errors.New("invalid cases")

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var maxSize uint64

	cmd := &cobra.Command{
		Use:   "validate <case|dir>...",
		Short: "Check case files against the case schema",
		Long: `Decode every case file and validate it against the embedded JSON schema.
Nothing is matched; use this to lint hand-written or generated cases.

Examples:
  astmatch validate cases/
  astmatch validate cases/anon.json.lz4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("max-size") {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}

				maxSize, err = cfg.Input.MaxCaseSizeBytes()
				if err != nil {
					return err
				}
			}

			return runValidate(cmd, args, maxSize)
		},
	}

	cmd.Flags().Uint64Var(&maxSize, "max-size", 0, "maximum case size in bytes (default: input.max_case_size from config)")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, maxSize uint64) error {
	paths, err := collectCases(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	var invalid int

	for _, path := range paths {
		c, loadErr := fixture.Load(path, maxSize)
		if loadErr != nil {
			invalid++

			printVerdict(out, false, "INVALID %s: %v\n", path, loadErr)

			continue
		}

		printVerdict(out, true, "OK %s (%d facts)\n", path, len(c.Facts))
	}

	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidCases, invalid, len(paths))
	}

	return nil
}
