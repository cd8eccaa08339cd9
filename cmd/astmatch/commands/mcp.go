package commands

import (
	"log/slog"
	"math"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/astmatch/pkg/mcp"
	"github.com/Sumatoshi-tech/astmatch/pkg/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the matching engine as tools that AI agents
can discover and invoke:
  - astmatch_match: Match an inline case and return its mappings
  - astmatch_check: Match an inline case and compare with expected mappings
  - astmatch_validate: Validate an inline case against the case schema`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			a, err := newApp(cobraCmd, observability.ModeMCP, func(cfg *observability.Config) {
				cfg.LogJSON = true

				if debug {
					cfg.LogLevel = slog.LevelDebug
				}
			})
			if err != nil {
				return err
			}
			defer a.close()

			red, err := observability.NewREDMetrics(a.providers.Meter)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:       a.logger(),
				Metrics:      red,
				Tracer:       a.providers.Tracer,
				Engine:       a.engine,
				MaxCaseBytes: mcpCaseLimit(a.maxCase),
			})

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}

// mcpCaseLimit bounds inline MCP cases by the configured case size.
func mcpCaseLimit(maxCase uint64) int {
	if maxCase == 0 || maxCase > math.MaxInt32 {
		return 0
	}

	return int(maxCase)
}
