package options

import (
	"fmt"
	"log/slog"

	"github.com/273dan/lazyvec/platform"
)

// EngineType identifies which evaluation engine a Config targets.
type EngineType string

const (
	Fused    EngineType = "fused"
	Starlark EngineType = "starlark"
)

// Config holds all configuration for creating an expression evaluator
type Config struct {
	// Logger for the engine
	handler slog.Handler
	// Type of engine to use (fused, starlark)
	engineType EngineType
	// Aliasing policy for destinations overlapping expression leaves
	aliasPolicy platform.AliasPolicy
}

// Option is a function that modifies Config
type Option func(*Config) error

// WithLogger sets the logger for the evaluator
func WithLogger(handler slog.Handler) Option {
	return func(c *Config) error {
		if handler != nil {
			c.handler = handler
		}
		return nil
	}
}

// WithAliasPolicy sets how the evaluator treats destinations that share
// storage with an expression leaf
func WithAliasPolicy(policy platform.AliasPolicy) Option {
	return func(c *Config) error {
		if policy != platform.AliasSpill && policy != platform.AliasReject {
			return fmt.Errorf("unknown alias policy: %d", policy)
		}
		c.aliasPolicy = policy
		return nil
	}
}

// Validate performs basic validation on the configuration
func (c *Config) Validate() error {
	if c.engineType == "" {
		return fmt.Errorf("no engine type specified")
	}
	if c.engineType != Fused && c.engineType != Starlark {
		return fmt.Errorf("unknown engine type: %q", c.engineType)
	}
	return nil
}

// GetHandler returns the configured logger
func (c *Config) GetHandler() slog.Handler {
	return c.handler
}

// SetHandler sets the logger
func (c *Config) SetHandler(handler slog.Handler) {
	c.handler = handler
}

// GetEngineType returns the configured engine type
func (c *Config) GetEngineType() EngineType {
	return c.engineType
}

// SetEngineType sets the engine type
func (c *Config) SetEngineType(engineType EngineType) {
	c.engineType = engineType
}

// GetAliasPolicy returns the configured aliasing policy
func (c *Config) GetAliasPolicy() platform.AliasPolicy {
	return c.aliasPolicy
}

// SetAliasPolicy sets the aliasing policy
func (c *Config) SetAliasPolicy(policy platform.AliasPolicy) {
	c.aliasPolicy = policy
}
