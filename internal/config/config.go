// Package config provides configuration loading and validation for the
// astmap CLI.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidFormat   = errors.New("invalid output format")
	ErrInvalidMaxNodes = errors.New("max nodes must be positive")
	ErrNoHoleTypes     = errors.New("at least one hole type is required")
)

// Output format names accepted by the map command.
const (
	FormatTable   = "table"
	FormatSummary = "summary"
	FormatJSON    = "json"
)

// Default configuration values.
const (
	defaultFormat   = FormatTable
	defaultHoleType = "Hole"
	defaultMaxNodes = 100000
)

// Config holds all configuration for the astmap CLI.
type Config struct {
	Output OutputConfig `mapstructure:"output"`
	Match  MatchConfig  `mapstructure:"match"`
	Limits LimitsConfig `mapstructure:"limits"`
}

// OutputConfig holds output rendering configuration.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// MatchConfig holds pattern-matching configuration.
type MatchConfig struct {
	// HoleTypes lists the node types treated as wildcards by the match
	// command.
	HoleTypes []string `mapstructure:"hole_types"`
}

// LimitsConfig caps input sizes. The matching passes are quadratic in the
// number of unmatched siblings at a tree level, so unbounded trees can take
// unbounded time.
type LimitsConfig struct {
	MaxNodes int `mapstructure:"max_nodes"`
}

// Load loads configuration from an optional file and ASTMAP_* environment
// variables.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(".astmap")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME")
	}

	viperCfg.SetEnvPrefix("ASTMAP")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validate(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("output.format", defaultFormat)
	viperCfg.SetDefault("output.color", true)
	viperCfg.SetDefault("match.hole_types", []string{defaultHoleType})
	viperCfg.SetDefault("limits.max_nodes", defaultMaxNodes)
}

func validate(config *Config) error {
	switch config.Output.Format {
	case FormatTable, FormatSummary, FormatJSON:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidFormat, config.Output.Format)
	}

	if config.Limits.MaxNodes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxNodes, config.Limits.MaxNodes)
	}

	if len(config.Match.HoleTypes) == 0 {
		return ErrNoHoleTypes
	}

	return nil
}
