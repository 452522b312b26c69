// Package lazyvec provides deferred element-wise arithmetic over fixed-length
// vectors. Expressions are composed as O(1) proxy trees (see platform/expr)
// and evaluated on demand by an engine: the fused engine walks the tree once
// per output index with no intermediate vectors, and the starlark engine
// materializes through a generated Starlark program for use as a reference
// oracle.
package lazyvec

import (
	"fmt"

	"github.com/273dan/lazyvec/engines/fused"
	"github.com/273dan/lazyvec/engines/starlark"
	"github.com/273dan/lazyvec/options"
	"github.com/273dan/lazyvec/platform"
)

// NewFusedEvaluator creates a new evaluator backed by the fused single-pass engine
func NewFusedEvaluator(opts ...options.Option) (platform.Evaluator, error) {
	// Initialize with fused defaults
	cfg := options.DefaultConfig(options.Fused)

	// Apply all options
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}

	// Apply defaults option as final step to fill in any missing values
	if err := options.WithDefaults()(cfg); err != nil {
		return nil, fmt.Errorf("error applying defaults: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return createEvaluator(cfg)
}

// NewStarlarkEvaluator creates a new evaluator backed by the Starlark
// reference engine
func NewStarlarkEvaluator(opts ...options.Option) (platform.Evaluator, error) {
	// Initialize with Starlark defaults
	cfg := options.DefaultConfig(options.Starlark)

	// Apply all options
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}

	// Apply defaults option as final step to fill in any missing values
	if err := options.WithDefaults()(cfg); err != nil {
		return nil, fmt.Errorf("error applying defaults: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return createEvaluator(cfg)
}

// createEvaluator builds the engine selected by the validated config
func createEvaluator(cfg *options.Config) (platform.Evaluator, error) {
	switch cfg.GetEngineType() {
	case options.Fused:
		return fused.New(cfg.GetHandler(), cfg.GetAliasPolicy()), nil
	case options.Starlark:
		return starlark.New(cfg.GetHandler()), nil
	default:
		return nil, fmt.Errorf("unsupported engine type: %q", cfg.GetEngineType())
	}
}
