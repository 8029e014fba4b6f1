package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/rezonia/cfdi-reader/internal/logging"
)

// EnvPrefix is prepended to every environment variable, e.g. CFDI_READER_LOG_LEVEL
const EnvPrefix = "CFDI_READER"

// Config holds all application configuration
type Config struct {
	Log      LogConfig     `mapstructure:"log"`
	Read     ReadConfig    `mapstructure:"read"`
	Validate ListingConfig `mapstructure:"validate"`
	History  ListingConfig `mapstructure:"history"`
	Server   ServerConfig  `mapstructure:"server"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// ReadConfig holds extraction output configuration
type ReadConfig struct {
	Format      string `mapstructure:"format"`
	Concurrency int    `mapstructure:"concurrency"`
}

// ListingConfig holds the output format of the validate and history listings
type ListingConfig struct {
	Format string `mapstructure:"format"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address     string `mapstructure:"address"`
	DBPath      string `mapstructure:"db"`
	Debug       bool   `mapstructure:"debug"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
}

var (
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"json", "console"}
	outputFormats  = []string{"json", "yaml", "table", "csv"}
	listingFormats = []string{"json", "table"}
)

// Load reads configuration into v from the optional YAML file at configPath and
// from CFDI_READER_* environment variables. Flags bound to v before calling
// Load take precedence over both.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// SetDefaults sets default configuration values
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_path", "stderr")

	v.SetDefault("read.format", "json")
	v.SetDefault("read.concurrency", 4)

	v.SetDefault("validate.format", "table")
	v.SetDefault("history.format", "table")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.db", "")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.max_upload_mb", 10)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of %s, got %q", strings.Join(logLevels, ", "), c.Log.Level)
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		return fmt.Errorf("log.format must be one of %s, got %q", strings.Join(logFormats, ", "), c.Log.Format)
	}
	if !slices.Contains(outputFormats, c.Read.Format) {
		return fmt.Errorf("read.format must be one of %s, got %q", strings.Join(outputFormats, ", "), c.Read.Format)
	}
	if !slices.Contains(listingFormats, c.Validate.Format) {
		return fmt.Errorf("validate.format must be one of %s, got %q", strings.Join(listingFormats, ", "), c.Validate.Format)
	}
	if !slices.Contains(listingFormats, c.History.Format) {
		return fmt.Errorf("history.format must be one of %s, got %q", strings.Join(listingFormats, ", "), c.History.Format)
	}
	if c.Read.Concurrency < 1 {
		return fmt.Errorf("read.concurrency must be at least 1, got %d", c.Read.Concurrency)
	}
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be at least 1, got %d", c.Server.MaxUploadMB)
	}
	return nil
}

// Logging returns the logger settings
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		OutputPath: c.Log.OutputPath,
	}
}
