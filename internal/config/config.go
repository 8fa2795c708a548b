// Package config loads hedwig-schema settings from a config file and HEDWIG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/glimte/hedwig-go/contracts"
)

const (
	// EnvPrefix prefixes every environment override, e.g. HEDWIG_SCHEMA_FILE
	EnvPrefix = "HEDWIG"
	// ConfigFileName is the config file searched for when no path is given
	ConfigFileName = "hedwig"
)

// Config holds the resolved settings
type Config struct {
	SchemaFile     string               `mapstructure:"schema_file"`
	MessageRouting contracts.RouteTable `mapstructure:"message_routing"`
	// Routes are extra "type:major[=topic]" entries, handy for env overrides
	Routes []string     `mapstructure:"routes"`
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
}

// LogConfig selects log verbosity and output format
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig configures the validation server
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() Config {
	return Config{
		Routes: []string{},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads the config file at path, or hedwig.{yaml,json,toml} from the
// working directory when path is empty, then applies environment overrides.
// A missing default config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("schema_file", defaults.SchemaFile)
	v.SetDefault("routes", defaults.Routes)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("server.addr", defaults.Server.Addr)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Env values arrive as a single whitespace-separated string
	cfg.Routes = v.GetStringSlice("routes")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RouteTable returns message_routing followed by the parsed extra routes
func (c *Config) RouteTable() (contracts.RouteTable, error) {
	table := make(contracts.RouteTable, 0, len(c.MessageRouting)+len(c.Routes))
	table = append(table, c.MessageRouting...)
	for _, s := range c.Routes {
		route, err := contracts.ParseRoute(s)
		if err != nil {
			return nil, err
		}
		table = append(table, route)
	}
	return table, nil
}

// Validate checks routes and log settings
func (c *Config) Validate() error {
	table, err := c.RouteTable()
	if err != nil {
		return fmt.Errorf("invalid routes: %w", err)
	}
	if err := table.Validate(); err != nil {
		return fmt.Errorf("invalid message_routing: %w", err)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	if _, err := c.Log.formatter(); err != nil {
		return err
	}
	return nil
}

func (c LogConfig) formatter() (log.Formatter, error) {
	switch strings.ToLower(c.Format) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return 0, fmt.Errorf("invalid log.format %q: expected text, json or logfmt", c.Format)
	}
}

// NewLogger builds an slog logger backed by a charmbracelet handler writing to w
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log.level %q: %w", c.Level, err)
	}
	formatter, err := c.formatter()
	if err != nil {
		return nil, err
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		Prefix:          "hedwig",
	})
	return slog.New(handler), nil
}
