package schema

import (
	"log/slog"
)

// ValidatorOption configures document loading and validators
type ValidatorOption func(*ValidatorConfig)

// ValidatorConfig holds configuration for documents and validators
type ValidatorConfig struct {
	Logger  *slog.Logger
	Formats *FormatRegistry
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ValidatorOption {
	return func(c *ValidatorConfig) {
		c.Logger = logger
	}
}

// WithFormats sets the format registry consulted for "format" constraints
func WithFormats(formats *FormatRegistry) ValidatorOption {
	return func(c *ValidatorConfig) {
		c.Formats = formats
	}
}

func newConfig(opts []ValidatorOption) *ValidatorConfig {
	config := &ValidatorConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Formats == nil {
		config.Formats = DefaultFormats()
	}
	return config
}
