package options

import (
	"log/slog"
	"os"

	"github.com/273dan/lazyvec/platform"
)

// DefaultConfig initializes a Config with sensible defaults
func DefaultConfig(engineType EngineType) *Config {
	cfg := &Config{}
	cfg.SetEngineType(engineType)
	cfg.SetHandler(DefaultHandler())
	cfg.SetAliasPolicy(DefaultAliasPolicy())
	return cfg
}

// DefaultHandler returns the default logging handler
func DefaultHandler() slog.Handler {
	return slog.NewTextHandler(os.Stdout, nil)
}

// DefaultAliasPolicy returns the default aliasing policy. Spilling to a
// private buffer preserves pre-write semantics without rejecting the call.
func DefaultAliasPolicy() platform.AliasPolicy {
	return platform.AliasSpill
}

// WithDefaults applies default values to any config properties that are unset
func WithDefaults() Option {
	return func(c *Config) error {
		if c.handler == nil {
			c.handler = DefaultHandler()
		}

		return nil
	}
}
