package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/astmatch/pkg/config"
	"github.com/Sumatoshi-tech/astmatch/pkg/engine"
	"github.com/Sumatoshi-tech/astmatch/pkg/export"
	"github.com/Sumatoshi-tech/astmatch/pkg/fixture"
	"github.com/Sumatoshi-tech/astmatch/pkg/observability"
	"github.com/Sumatoshi-tech/astmatch/pkg/report"
)

const (
	metricsPath           = "/metrics"
	metricsReadTimeout    = 5 * time.Second
	metricsShutdownBudget = 2 * time.Second
)

type batchOptions struct {
	plot        string
	metricsAddr string
	compare     bool
	project     bool
}

// NewBatchCommand creates the batch command.
func NewBatchCommand() *cobra.Command {
	var opts batchOptions

	cmd := &cobra.Command{
		Use:   "batch <case|dir>...",
		Short: "Match many cases concurrently and summarize the results",
		Long: `Match every case found under the arguments on a bounded worker pool
(matching.workers, default: one per CPU) and print a summary table.

Examples:
  astmatch batch cases/
  astmatch batch --compare --plot summary.html cases/
  astmatch batch --metrics-addr :9464 cases/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.plot, "plot", "", "write an HTML chart of mappings per case to this file")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "",
		"serve Prometheus metrics on this address while the batch runs (default: observability.prometheus_addr)")
	cmd.Flags().BoolVar(&opts.compare, "compare", false, "compare each case against its oracle")
	cmd.Flags().BoolVar(&opts.project, "project", false, "print the added, removed and modified files as JSON")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string, opts batchOptions) error {
	a, err := newApp(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer a.close()

	if opts.metricsAddr == "" {
		opts.metricsAddr = a.cfg.Observability.PrometheusAddr
	}

	if opts.metricsAddr != "" {
		stop, serveErr := serveMetrics(a, opts.metricsAddr)
		if serveErr != nil {
			return serveErr
		}
		defer stop()
	}

	paths, err := collectCases(args)
	if err != nil {
		return err
	}

	cases := make([]*fixture.Case, len(paths))
	diffs := make([]engine.FileDiff, len(paths))

	for i, path := range paths {
		cases[i], diffs[i], err = a.loadCase(path)
		if err != nil {
			return err
		}
	}

	results, err := a.engine.MatchAll(cmd.Context(), diffs)
	if err != nil {
		return err
	}

	summary := report.New()

	for i, res := range results {
		status := report.StatusMatched

		if opts.compare {
			status = compareStatus(paths[i], cases[i], res)
		}

		summary.Add(cases[i].Name, status, res)
	}

	if err := writeSummary(cmd, a.cfg, summary); err != nil {
		return err
	}

	if opts.project {
		if err := writeProject(cmd, diffs); err != nil {
			return err
		}
	}

	if opts.plot != "" {
		if err := writePlot(opts.plot, summary); err != nil {
			return err
		}
	}

	if n := summary.Mismatches(); n > 0 {
		return fmt.Errorf("%w: %d of %d cases", ErrMismatch, n, len(paths))
	}

	return nil
}

func compareStatus(path string, c *fixture.Case, res *engine.Result) string {
	expected, err := readExpectation(fixture.OraclePath(path), c)
	if err != nil {
		return report.StatusMatched
	}

	if export.Compare(expected, export.Text(res.Store)) != nil {
		return report.StatusMismatch
	}

	return report.StatusOK
}

func writeSummary(cmd *cobra.Command, cfg *config.Config, summary *report.Summary) error {
	if cfg.Output.Format != config.FormatJSON {
		return summary.WriteTable(cmd.OutOrStdout())
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	return nil
}

func writeProject(cmd *cobra.Command, diffs []engine.FileDiff) error {
	before := make([]string, 0, len(diffs))
	after := make([]string, 0, len(diffs))

	for _, d := range diffs {
		before = append(before, d.SrcPath)
		after = append(after, d.DstPath)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	if err := enc.Encode(engine.NewProjectDiff(before, after, diffs)); err != nil {
		return fmt.Errorf("encode project diff: %w", err)
	}

	return nil
}

func writePlot(path string, summary *report.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot: %w", err)
	}

	if err := summary.WritePlot(f); err != nil {
		_ = f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close plot: %w", err)
	}

	return nil
}

// serveMetrics exposes the engine's match metrics on addr until stop is called.
func serveMetrics(a *app, addr string) (func(), error) {
	mp, handler, err := observability.PrometheusProvider()
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewMatchMetrics(mp.Meter("astmatch"))
	if err != nil {
		return nil, fmt.Errorf("create match metrics: %w", err)
	}

	red, err := observability.NewREDMetrics(mp.Meter("astmatch"))
	if err != nil {
		return nil, fmt.Errorf("create request metrics: %w", err)
	}

	a.engine.Metrics = metrics

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, observability.HTTPMiddleware(a.providers.Tracer, red, handler))

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: metricsReadTimeout}

	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			a.logger().Error("metrics server failed", "error", serveErr)
		}
	}()

	a.logger().Info("serving metrics", "addr", listener.Addr().String(), "path", metricsPath)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownBudget)
		defer cancel()

		if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
			a.logger().Warn("metrics server shutdown failed", "error", shutdownErr)
		}

		if shutdownErr := mp.Shutdown(ctx); shutdownErr != nil {
			a.logger().Warn("metrics provider shutdown failed", "error", shutdownErr)
		}
	}, nil
}
