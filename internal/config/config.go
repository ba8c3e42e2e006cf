// Package config loads scopefilter settings from a YAML file, the environment and .env.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SCOPEFILTER_LOG_LEVEL.
const EnvPrefix = "SCOPEFILTER"

// Config is the complete application configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Data   DataConfig   `mapstructure:"data"`
	Query  QueryConfig  `mapstructure:"query"`
	Output OutputConfig `mapstructure:"output"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // text or json
	Output     string `mapstructure:"output"` // stdout, stderr or file
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// DataConfig locates the project dataset.
type DataConfig struct {
	Path string `mapstructure:"path"`
}

// QueryConfig tunes report filtering.
type QueryConfig struct {
	Workers   int `mapstructure:"workers"`
	ChunkSize int `mapstructure:"chunk_size"`
}

// OutputConfig selects the default output format.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// Load reads configuration. configFile may be empty, in which case
// ./scopefilter.yaml and $HOME/.config/scopefilter/scopefilter.yaml are tried and a
// missing file is not an error. A .env file in the working directory is loaded first.
func Load(configFile string) (*Config, error) {
	return load(configFile, ".env")
}

func load(configFile, envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
	} else {
		// Config type stays unset so an extensionless "scopefilter" binary is never read as config.
		v.SetConfigName("scopefilter")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "scopefilter"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.file_path", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("data.path", "")
	v.SetDefault("query.workers", 0)
	v.SetDefault("query.chunk_size", 512)
	v.SetDefault("output.format", "text")
}

func (c *Config) validate() error {
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	switch c.Log.Output {
	case "stdout", "stderr":
	case "file":
		if c.Log.FilePath == "" {
			return errors.New("log.file_path is required when log.output is file")
		}
	default:
		return fmt.Errorf("log.output must be stdout, stderr or file, got %q", c.Log.Output)
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("output.format must be text or json, got %q", c.Output.Format)
	}
	if c.Query.Workers < 0 {
		return fmt.Errorf("query.workers must not be negative, got %d", c.Query.Workers)
	}
	if c.Query.ChunkSize <= 0 {
		return fmt.Errorf("query.chunk_size must be positive, got %d", c.Query.ChunkSize)
	}
	return nil
}
