// Package config loads and validates astmatch configuration from a YAML file
// and ASTMATCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/astmatch/pkg/observability"
)

// Sentinel validation errors.
var (
	ErrInvalidThreshold   = errors.New("leaf similarity threshold must be in (0, 1]")
	ErrInvalidWorkers     = errors.New("workers must not be negative")
	ErrInvalidCaseSize    = errors.New("invalid max case size")
	ErrInvalidFormat      = errors.New("invalid output format")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrInvalidSampleRatio = errors.New("sample ratio must be in [0, 1]")
)

const envPrefix = "ASTMATCH"

// Config holds all astmatch configuration.
type Config struct {
	Matching      MatchingConfig      `mapstructure:"matching"`
	Input         InputConfig         `mapstructure:"input"`
	Output        OutputConfig        `mapstructure:"output"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// MatchingConfig tunes the matchers and the batch runner.
type MatchingConfig struct {
	LeafSimilarityThreshold float64 `mapstructure:"leaf_similarity_threshold"`
	Workers                 int     `mapstructure:"workers"`
}

// InputConfig bounds case files.
type InputConfig struct {
	MaxCaseSize string `mapstructure:"max_case_size"`
}

// MaxCaseSizeBytes parses MaxCaseSize ("16MB", "512KiB").
func (c InputConfig) MaxCaseSizeBytes() (uint64, error) {
	size, err := humanize.ParseBytes(c.MaxCaseSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidCaseSize, c.MaxCaseSize, err)
	}

	return size, nil
}

// OutputConfig selects how results are printed.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SlogLevel parses Level.
func (c LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Level)
	}

	return level, nil
}

// ObservabilityConfig holds telemetry export settings.
type ObservabilityConfig struct {
	Environment    string  `mapstructure:"environment"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string  `mapstructure:"otlp_headers"`
	OTLPInsecure   bool    `mapstructure:"otlp_insecure"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
	PrometheusAddr string  `mapstructure:"prometheus_addr"`
}

// LoadConfig reads configPath, or .astmatch.yaml from the working or home
// directory when configPath is empty, then applies environment overrides
// (ASTMATCH_MATCHING_WORKERS and so on).
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(".astmatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Matching: MatchingConfig{
			LeafSimilarityThreshold: DefaultLeafSimilarityThreshold,
			Workers:                 DefaultWorkers,
		},
		Input:   InputConfig{MaxCaseSize: DefaultMaxCaseSize},
		Output:  OutputConfig{Format: DefaultOutputFormat, Color: true},
		Logging: LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("matching.leaf_similarity_threshold", def.Matching.LeafSimilarityThreshold)
	v.SetDefault("matching.workers", def.Matching.Workers)

	v.SetDefault("input.max_case_size", def.Input.MaxCaseSize)

	v.SetDefault("output.format", def.Output.Format)
	v.SetDefault("output.color", def.Output.Color)

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)

	v.SetDefault("observability.environment", "")
	v.SetDefault("observability.otlp_endpoint", "")
	v.SetDefault("observability.otlp_headers", "")
	v.SetDefault("observability.otlp_insecure", false)
	v.SetDefault("observability.sample_ratio", 0.0)
	v.SetDefault("observability.prometheus_addr", "")
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Matching.LeafSimilarityThreshold <= 0 || c.Matching.LeafSimilarityThreshold > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, c.Matching.LeafSimilarityThreshold)
	}

	if c.Matching.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Matching.Workers)
	}

	if _, err := c.Input.MaxCaseSizeBytes(); err != nil {
		return err
	}

	if c.Output.Format != FormatText && c.Output.Format != FormatJSON {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Output.Format)
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}

	if c.Logging.Format != FormatText && c.Logging.Format != FormatJSON {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Observability.SampleRatio)
	}

	return nil
}

// ObservabilityConfig converts the logging and observability sections for
// observability.Init.
func (c *Config) ObservabilityConfig(mode observability.AppMode, version string) observability.Config {
	out := observability.DefaultConfig()
	out.Mode = mode
	out.ServiceVersion = version
	out.Environment = c.Observability.Environment
	out.OTLPEndpoint = c.Observability.OTLPEndpoint
	out.OTLPHeaders = observability.ParseOTLPHeaders(c.Observability.OTLPHeaders)
	out.OTLPInsecure = c.Observability.OTLPInsecure
	out.SampleRatio = c.Observability.SampleRatio
	out.LogJSON = c.Logging.Format == FormatJSON

	if level, err := c.Logging.SlogLevel(); err == nil {
		out.LogLevel = level
	}

	return out
}
