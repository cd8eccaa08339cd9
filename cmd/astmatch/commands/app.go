// Package commands implements the astmatch CLI sub-commands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/astmatch/pkg/config"
	"github.com/Sumatoshi-tech/astmatch/pkg/engine"
	"github.com/Sumatoshi-tech/astmatch/pkg/fixture"
	"github.com/Sumatoshi-tech/astmatch/pkg/matching"
	"github.com/Sumatoshi-tech/astmatch/pkg/observability"
	"github.com/Sumatoshi-tech/astmatch/pkg/version"
)

// configFlag names the persistent flag holding the config file path.
const configFlag = "config"

// AddPersistentFlags registers the flags shared by every command.
func AddPersistentFlags(root *cobra.Command) {
	root.PersistentFlags().String(configFlag, "", "config file (default: .astmatch.yaml in . or $HOME)")
}

// app bundles what a command needs to match cases.
type app struct {
	cfg       *config.Config
	providers observability.Providers
	engine    *engine.Engine
	maxCase   uint64
}

func (a *app) logger() *slog.Logger {
	return a.providers.Logger
}

func (a *app) close() {
	if err := a.providers.Shutdown(context.Background()); err != nil {
		a.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

// loadConfig reads the configuration named by the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString(configFlag)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// newApp loads configuration and wires logging, telemetry and the engine.
// Tweaks adjust the derived observability settings before initialization.
func newApp(cmd *cobra.Command, mode observability.AppMode, tweaks ...func(*observability.Config)) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	obsCfg := cfg.ObservabilityConfig(mode, version.Version)
	for _, tweak := range tweaks {
		tweak(&obsCfg)
	}

	providers, err := observability.InitWithWriter(obsCfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	maxCase, err := cfg.Input.MaxCaseSizeBytes()
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewMatchMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("create match metrics: %w", err)
	}

	eng := engine.New(matching.Options{
		LeafSimilarityThreshold: cfg.Matching.LeafSimilarityThreshold,
		Logger:                  providers.Logger,
	})
	eng.Workers = cfg.Matching.Workers
	eng.Tracer = providers.Tracer
	eng.Metrics = metrics

	return &app{cfg: cfg, providers: providers, engine: eng, maxCase: maxCase}, nil
}

// loadCase reads a case file and builds its file diff.
func (a *app) loadCase(path string) (*fixture.Case, engine.FileDiff, error) {
	c, err := fixture.Load(path, a.maxCase)
	if err != nil {
		return nil, engine.FileDiff{}, err
	}

	diff, err := c.FileDiff()
	if err != nil {
		return nil, engine.FileDiff{}, err
	}

	if diff.SrcPath == "" {
		diff.SrcPath = c.Name
	}

	if diff.DstPath == "" {
		diff.DstPath = diff.SrcPath
	}

	return c, diff, nil
}

// collectCases expands args (files or directories) into case paths.
func collectCases(args []string) ([]string, error) {
	var paths []string

	for _, arg := range args {
		found, err := fixture.Discover(arg)
		if err != nil {
			return nil, err
		}

		paths = append(paths, found...)
	}

	return paths, nil
}
