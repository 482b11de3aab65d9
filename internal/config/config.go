// Package config loads pricecast settings from defaults, an optional YAML file
// and PRICECAST_* environment variables.
package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/pricecast/pkg/errors"
	"github.com/YuminosukeSato/pricecast/pkg/log"
)

// EnvPrefix is prepended to every environment override, e.g. PRICECAST_SEED.
const EnvPrefix = "PRICECAST"

// Config holds the training, logging and output settings.
type Config struct {
	DataPath      string  `mapstructure:"data_path" yaml:"data_path"`
	TestFraction  float64 `mapstructure:"test_fraction" yaml:"test_fraction"`
	Seed          int64   `mapstructure:"seed" yaml:"seed"`
	MaxIterations int     `mapstructure:"max_iterations" yaml:"max_iterations"`
	L2            float64 `mapstructure:"l2" yaml:"l2"`
	Tolerance     float64 `mapstructure:"tolerance" yaml:"tolerance"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Optional outputs.
	PlotPath    string `mapstructure:"plot_path" yaml:"plot_path,omitempty"`
	MetricsPath string `mapstructure:"metrics_path" yaml:"metrics_path,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataPath:      "food_prices.csv",
		TestFraction:  0.2,
		Seed:          0,
		MaxIterations: 100,
		L2:            1e-4,
		Tolerance:     1e-7,
		LogLevel:      "info",
		LogFormat:     "json",
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("data_path", d.DataPath)
	v.SetDefault("test_fraction", d.TestFraction)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("max_iterations", d.MaxIterations)
	v.SetDefault("l2", d.L2)
	v.SetDefault("tolerance", d.Tolerance)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("plot_path", "")
	v.SetDefault("metrics_path", "")
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. An explicit cfgFile must exist;
// otherwise ./pricecast.yaml and ~/.pricecast/config.yaml are tried in turn.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfgFile)
		}
	} else {
		v.SetConfigName("pricecast")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".pricecast"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataPath) == "" {
		return errors.NewValidationError("data_path", "must not be empty", c.DataPath)
	}
	if math.IsNaN(c.TestFraction) || c.TestFraction <= 0 || c.TestFraction >= 1 {
		return errors.NewValidationError("test_fraction", "must be in the open interval (0, 1)", c.TestFraction)
	}
	if c.MaxIterations < 1 {
		return errors.NewValidationError("max_iterations", "must be at least 1", c.MaxIterations)
	}
	if !(c.L2 > 0) || math.IsInf(c.L2, 0) {
		return errors.NewValidationError("l2", "must be a positive finite number", c.L2)
	}
	if math.IsNaN(c.Tolerance) || c.Tolerance < 0 {
		return errors.NewValidationError("tolerance", "must be non-negative", c.Tolerance)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console", "text":
	default:
		return errors.NewValidationError("log_format", "must be json or console", c.LogFormat)
	}
	return nil
}

// Save writes c to path as YAML, creating parent directories as needed.
func Save(c *Config, path string) error {
	if path == "" {
		return errors.NewValidationError("path", "must not be empty", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "mkdir config dir")
		}
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal yaml")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}
