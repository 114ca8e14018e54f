package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides: COLUMNQL_DATA_DIR sets
// data.dir
const EnvPrefix = "COLUMNQL_"

// DefaultFile is the config file looked up in the working directory when
// no path is given
const DefaultFile = "columnql.yaml"

// Config is the process configuration
type Config struct {
	Data    DataConfig    `mapstructure:"data"`
	Mapping MappingConfig `mapstructure:"mapping"`
	Log     LogConfig     `mapstructure:"log"`
	Async   AsyncConfig   `mapstructure:"async"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Output  OutputConfig  `mapstructure:"output"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// DataConfig selects the parquet files loaded into the store. Every
// *.parquet file in Dir becomes a family named after the file; Files maps
// additional family names to a file or glob.
type DataConfig struct {
	Dir   string            `mapstructure:"dir"`
	Files map[string]string `mapstructure:"files"`
}

// MappingConfig points at a YAML entity/field name mapping
type MappingConfig struct {
	File string `mapstructure:"file"`
}

// LogConfig configures internal/logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Source bool   `mapstructure:"source"`
}

// AsyncConfig sizes the async worker pool
type AsyncConfig struct {
	Workers int `mapstructure:"workers"`
}

// CacheConfig sizes the token cache of the query parser
type CacheConfig struct {
	Size int `mapstructure:"size"`
}

// OutputConfig selects the result formatter
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.dir", ".")
	v.SetDefault("log.level", "WARN")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.source", false)
	v.SetDefault("async.workers", 8)
	v.SetDefault("cache.size", 256)
	v.SetDefault("output.format", "table")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9464")
}

// Load reads defaults, then the config file, then COLUMNQL_* environment
// variables. An empty path looks for columnql.yaml in the working directory
// and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigFile(DefaultFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", DefaultFile, err)
			}
		}
	}

	// Viper's AutomaticEnv does not reach Unmarshal for keys without a
	// default, so environment variables are copied in explicitly.
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		prop := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, EnvPrefix), "_", "."))
		v.Set(prop, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log.format %q", c.Log.Format)
	}
	if c.Async.Workers < 0 {
		return fmt.Errorf("async.workers must not be negative, got %d", c.Async.Workers)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative, got %d", c.Cache.Size)
	}
	return nil
}
