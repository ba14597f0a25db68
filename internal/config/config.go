// Package config loads catalogq settings from flags, environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. CATALOGQ_LOG_LEVEL.
const EnvPrefix = "CATALOGQ"

// Config holds all catalogq configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Registry RegistryConfig `mapstructure:"registry"`
	Compile  CompileConfig  `mapstructure:"compile"`
	Input    InputConfig    `mapstructure:"input"`
	Output   OutputConfig   `mapstructure:"output"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RegistryConfig struct {
	// Snapshot is a registry snapshot file. Empty uses the built-in registry.
	Snapshot string `mapstructure:"snapshot"`
}

type CompileConfig struct {
	SkipFlagged bool `mapstructure:"skip_flagged"`
}

type InputConfig struct {
	// Format is auto, json or msgpack.
	Format string `mapstructure:"format"`
}

type OutputConfig struct {
	// Format is text or json.
	Format string `mapstructure:"format"`
}

// ErrInvalid indicates a configuration value outside its accepted set.
var ErrInvalid = errors.New("invalid configuration")

// flag name -> config key
var flagKeys = map[string]string{
	"log-level":    "log.level",
	"log-format":   "log.format",
	"snapshot":     "registry.snapshot",
	"skip-flagged": "compile.skip_flagged",
	"input":        "input.format",
	"output":       "output.format",
}

// GetDefaults returns a Config with all default values.
func GetDefaults() *Config {
	return &Config{
		Log:    LogConfig{Level: "warn", Format: "text"},
		Input:  InputConfig{Format: "auto"},
		Output: OutputConfig{Format: "text"},
	}
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := GetDefaults()
	fs.String("config", "", "config file (yaml, json or toml)")
	fs.String("log-level", d.Log.Level, "log level: debug, info, warn, error")
	fs.String("log-format", d.Log.Format, "log format: text or json")
	fs.String("snapshot", "", "registry snapshot file")
	fs.Bool("skip-flagged", false, "skip fields marked non_functional or no_data")
	fs.String("input", d.Input.Format, "input format: auto, json or msgpack")
	fs.StringP("output", "o", d.Output.Format, "output format: text or json")
}

// Load builds the configuration. Precedence, highest first: flags set on
// the command line, CATALOGQ_* environment variables, the config file
// named by --config, defaults. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	d := GetDefaults()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("registry.snapshot", d.Registry.Snapshot)
	v.SetDefault("compile.skip_flagged", d.Compile.SkipFlagged)
	v.SetDefault("input.format", d.Input.Format)
	v.SetDefault("output.format", d.Output.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if err := oneOf("log.format", c.Log.Format, "text", "json"); err != nil {
		return err
	}
	if err := oneOf("input.format", c.Input.Format, "auto", "json", "msgpack"); err != nil {
		return err
	}
	return oneOf("output.format", c.Output.Format, "text", "json")
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be one of %s, got %q", ErrInvalid, key, strings.Join(allowed, ", "), value)
}
