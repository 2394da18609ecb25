package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "CONSOLE"

var errInvalidOutput = errors.New("invalid output format")

// Config holds the settings shared by all commands. Values come from flags, CONSOLE_* environment variables and an
// optional config file, in that order of precedence.
type Config struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Output   string        `mapstructure:"output"`
	Address  string        `mapstructure:"address"`
	// Requests per second accepted by the bridge server, zero disables rate limiting.
	RateLimit       float64       `mapstructure:"rate-limit"`
	RateBurst       int           `mapstructure:"rate-burst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("endpoint", "http://localhost:11222/rest/v2")
	v.SetDefault("timeout", "30s")
	v.SetDefault("output", outputJSON)
	v.SetDefault("address", ":8080")
	v.SetDefault("rate-limit", 0)
	v.SetDefault("rate-burst", 0)
	v.SetDefault("shutdown-timeout", "10s")
}

// loadConfig resolves the configuration of a command from its parsed flags.
func loadConfig(fs *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.Output != outputJSON && c.Output != outputYAML {
		return fmt.Errorf("%w: %q", errInvalidOutput, c.Output)
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return errors.New("rate limit settings must not be negative")
	}
	return nil
}
