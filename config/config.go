// Package config handles configuration loading for the adjustment engine.
// It supports YAML config files with environment variable overrides
// (prefix RENTADJUST_, dots replaced by underscores).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Series     SeriesConfig     `mapstructure:"series"     yaml:"series"`
	Adjustment AdjustmentConfig `mapstructure:"adjustment" yaml:"adjustment"`
	API        APIConfig        `mapstructure:"api"        yaml:"api"`
	Storage    StorageConfig    `mapstructure:"storage"    yaml:"storage"`
}

// SeriesConfig identifies the upstream index series and how to fetch it.
type SeriesConfig struct {
	ID             string `mapstructure:"id"              yaml:"id"`
	BaseURL        string `mapstructure:"base_url"        yaml:"base_url"`
	Limit          int    `mapstructure:"limit"           yaml:"limit"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout returns the fetch timeout as a duration.
func (s SeriesConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// AdjustmentConfig holds the engine defaults.
type AdjustmentConfig struct {
	// WindowSize is how many trailing months to compound by default.
	WindowSize int `mapstructure:"window_size" yaml:"window_size"`

	// RateThreshold is the fraction-vs-percentage detection boundary,
	// as a decimal string so it survives YAML untouched.
	RateThreshold string `mapstructure:"rate_threshold" yaml:"rate_threshold"`
}

// APIConfig holds the HTTP server settings.
type APIConfig struct {
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// StorageConfig holds the observation cache settings.
type StorageConfig struct {
	// Path is the SQLite database path. ":memory:" disables persistence.
	Path string `mapstructure:"path" yaml:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("series.id", "148.3_INIVELGEN_D_A_0_26")
	v.SetDefault("series.base_url", "https://apis.datos.gob.ar/series/api")
	v.SetDefault("series.limit", 5000)
	v.SetDefault("series.timeout_seconds", 30)

	v.SetDefault("adjustment.window_size", 4)
	v.SetDefault("adjustment.rate_threshold", "2")

	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:5173", "http://localhost:8080"})

	v.SetDefault("storage.path", "rentadjust.db")
}

// Load reads ./config.yaml (or ./config/config.yaml) if present, applies
// environment overrides, and returns the configuration. A missing config
// file is not an error; the defaults stand.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("RENTADJUST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from an explicit path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("RENTADJUST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
