// Package config loads runtime configuration for the discovery engine
// through viper: discover.yaml on disk, overridden by DISCOVER_-prefixed
// environment variables, with an optional .env loaded first for local
// development. Defaults are registered so a zero-config run works against
// the bundled sample bar source.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full set of knobs the discovery CLI and runner read.
type Config struct {
	Discovery   DiscoveryConfig   `mapstructure:"discovery"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	BarSource   BarSourceConfig   `mapstructure:"bar_source"`
	Log         LogConfig         `mapstructure:"log"`
}

// DiscoveryConfig controls the default run shape when the CLI doesn't
// override it with flags.
type DiscoveryConfig struct {
	Symbols        []string `mapstructure:"symbols"`
	Days           int      `mapstructure:"days"`
	InitialCapital float64  `mapstructure:"initial_capital"`
	Continuous     bool     `mapstructure:"continuous"`
	Workers        int      `mapstructure:"workers"`
}

// PersistenceConfig configures the SQLite-backed dedup cache.
type PersistenceConfig struct {
	Path string `mapstructure:"path"`
}

// BarSourceConfig configures the external bar feed client.
type BarSourceConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	RequestsPerSec float64 `mapstructure:"requests_per_sec"`
	Burst          int     `mapstructure:"burst"`
	UseSample      bool    `mapstructure:"use_sample"`
}

// LogConfig selects zap's level and encoder.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const envPrefix = "DISCOVER"

// Load reads configPath (a YAML file; missing is not an error) layered
// with DISCOVER_-prefixed environment overrides, after loading an
// optional .env file from the working directory.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	registerDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("config: read %q: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

func registerDefaults(v *viper.Viper) {
	v.SetDefault("discovery.symbols", []string{"BTCUSDT", "ETHUSDT"})
	v.SetDefault("discovery.days", 30)
	v.SetDefault("discovery.initial_capital", 10000.0)
	v.SetDefault("discovery.continuous", false)
	v.SetDefault("discovery.workers", 4)

	v.SetDefault("persistence.path", "discover.db")

	v.SetDefault("bar_source.base_url", "https://api.binance.com/api/v3")
	v.SetDefault("bar_source.requests_per_sec", 10.0)
	v.SetDefault("bar_source.burst", 5)
	v.SetDefault("bar_source.use_sample", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}
