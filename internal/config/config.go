package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vegasq/tabq/query"
)

// EnvPrefix is the prefix of environment variables read by Load, e.g.
// TABQ_SERVER_PORT for server.port.
const EnvPrefix = "TABQ"

// DevSecret is the shared secret accepted in the development environment
// when none is configured.
const DevSecret = "dev_secret"

// Config is the runtime configuration of the server and the CLI.
type Config struct {
	Env     string        `mapstructure:"env"`
	Secret  string        `mapstructure:"secret"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Query   QueryConfig   `mapstructure:"query"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	CORSOrigin      string        `mapstructure:"cors_origin"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// CatalogConfig locates the dataset catalog.
type CatalogConfig struct {
	Path           string `mapstructure:"path"`
	ReloadSchedule string `mapstructure:"reload_schedule"`
}

// QueryConfig bounds and tunes query execution.
type QueryConfig struct {
	MaxColumns    int    `mapstructure:"max_columns"`
	MaxFilters    int    `mapstructure:"max_filters"`
	FilterColumns string `mapstructure:"filter_columns"`
}

// legacyEnv lists environment variable names kept from earlier
// deployments, by config key.
var legacyEnv = map[string]string{
	"server.host": "HOST",
	"server.port": "PORT",
	"secret":      "LUZMO_PLUGIN_SECRET",
	"env":         "NODE_ENV",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("secret", "")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.cors_origin", "*")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.add_source", false)
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.reload_schedule", "")
	v.SetDefault("query.max_columns", query.MaxColumns)
	v.SetDefault("query.max_filters", query.MaxFilters)
	v.SetDefault("query.filter_columns", "lenient")
}

// Load reads the configuration from defaults, an optional YAML file and
// the environment, in increasing order of precedence. An empty file falls
// back to $TABQ_CONFIG; when that is unset too, no file is read.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if file == "" {
		file = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
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

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", c.Log.Format)
	}
	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Query.MaxColumns < 1 || c.Query.MaxFilters < 1 {
		return fmt.Errorf("query limits must be positive")
	}
	if _, err := query.ParseColumnPolicy(c.Query.FilterColumns); err != nil {
		return err
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ExpectedSecret returns the shared secret clients must send. In the
// development environment an unset secret falls back to DevSecret; in any
// other environment it stays empty.
func (c *Config) ExpectedSecret() string {
	if c.Secret != "" {
		return c.Secret
	}
	if c.Env == "development" {
		return DevSecret
	}
	return ""
}

// Engine returns a query engine configured with the query settings.
func (c *Config) Engine() query.Engine {
	policy, _ := query.ParseColumnPolicy(c.Query.FilterColumns)
	return query.Engine{
		FilterColumns: policy,
		Limits: query.Limits{
			MaxColumns: c.Query.MaxColumns,
			MaxFilters: c.Query.MaxFilters,
		},
	}
}
