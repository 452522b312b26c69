// Package fused implements the deferred evaluation engine: a recursive-descent
// interpreter over an expression tree that computes the fully fused scalar
// expression once per output index. One pass over the data, one read of each
// leaf element per index, one write per destination index, and no
// intermediate vectors (the only allocation is the spill buffer when the
// destination aliases a leaf under the spill policy).
package fused

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/273dan/lazyvec/internal/helpers"
	"github.com/273dan/lazyvec/platform"
	"github.com/273dan/lazyvec/platform/expr"
	"github.com/273dan/lazyvec/platform/vector"
)

// Evaluator evaluates expression trees by fusing them into a single
// element-wise pass.
type Evaluator struct {
	// aliasPolicy decides what happens when the destination of EvaluateInto
	// shares storage with a leaf of the tree.
	aliasPolicy platform.AliasPolicy

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a new Evaluator object
func New(handler slog.Handler, aliasPolicy platform.AliasPolicy) *Evaluator {
	handler, logger := helpers.SetupLogger(handler, "fused", "Evaluator")

	return &Evaluator{
		aliasPolicy: aliasPolicy,
		logHandler:  handler,
		logger:      logger,
	}
}

func (be *Evaluator) String() string {
	return "fused.Evaluator"
}

// AliasPolicy returns the configured aliasing policy.
func (be *Evaluator) AliasPolicy() platform.AliasPolicy {
	return be.aliasPolicy
}

// resolveLength validates leaf length consistency and, when a destination is
// supplied, that it matches the expression length. Validation happens here,
// at evaluation time, never at composition time. A tree built purely from
// constants has no intrinsic length and adopts the destination's.
func (be *Evaluator) resolveLength(root expr.Node, dst vector.Writable) (int, error) {
	n, hasLeaves, err := expr.Length(root)
	if err != nil {
		return 0, err
	}
	if !hasLeaves {
		return dst.Len(), nil
	}
	if dst.Len() != n {
		return 0, fmt.Errorf(
			"%w: expression has %d elements, destination has %d",
			expr.ErrLengthMismatch, n, dst.Len())
	}
	return n, nil
}

// destAliases reports whether dst shares storage with any leaf of the tree.
func (be *Evaluator) destAliases(root expr.Node, dst vector.Writable) bool {
	for _, leaf := range expr.Leaves(root) {
		if vector.Overlaps(dst, leaf) {
			return true
		}
	}
	return false
}

// EvaluateInto computes every element of the expression and writes it into
// dst. All validation (leaf length consistency, destination length, aliasing
// policy) completes before the first write, so a failed call never leaves a
// partially written destination.
func (be *Evaluator) EvaluateInto(
	ctx context.Context,
	root expr.Node,
	dst vector.Writable,
) (platform.EvaluatorResponse, error) {
	logger := be.logger.WithGroup("EvaluateInto")
	if root == nil {
		return nil, ErrNilNode
	}
	if dst == nil {
		return nil, ErrNilDestination
	}

	n, err := be.resolveLength(root, dst)
	if err != nil {
		logger.ErrorContext(ctx, "length validation failed", "error", err)
		return nil, err
	}

	aliased := be.destAliases(root, dst)
	if aliased && be.aliasPolicy == platform.AliasReject {
		logger.ErrorContext(ctx, "aliased destination rejected", "dest", destLabel(dst))
		return nil, fmt.Errorf(
			"%w: destination %s shares storage with a leaf",
			ErrAliasingViolation, destLabel(dst))
	}

	startTime := time.Now()
	if aliased {
		// Spill policy: compute into a private buffer so every element sees
		// pre-write operand values, then copy once.
		logger.DebugContext(ctx, "destination aliases a leaf, spilling", "len", n)
		buf := make([]float64, n)
		for i := range buf {
			buf[i] = root.At(i)
		}
		for i, v := range buf {
			dst.Set(i, v)
		}
	} else {
		for i := 0; i < n; i++ {
			dst.Set(i, root.At(i))
		}
	}
	execTime := time.Since(startTime)

	logger.DebugContext(ctx, "evaluation complete",
		"elements", n, "execTime", execTime, "aliased", aliased)
	return newEvalResult(be.logHandler, n, execTime, destLabel(dst)), nil
}

// EvaluateAt computes a single element of the expression. The same lazy leaf
// length validation as EvaluateInto applies; nothing is materialized.
func (be *Evaluator) EvaluateAt(ctx context.Context, root expr.Node, i int) (float64, error) {
	logger := be.logger.WithGroup("EvaluateAt")
	if root == nil {
		return 0, ErrNilNode
	}

	n, hasLeaves, err := expr.Length(root)
	if err != nil {
		logger.ErrorContext(ctx, "length validation failed", "error", err)
		return 0, err
	}
	if i < 0 || (hasLeaves && i >= n) {
		return 0, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, n)
	}

	return root.At(i), nil
}

// destLabel returns a short label for log and response output.
func destLabel(dst vector.Writable) string {
	if named, ok := dst.(interface{ Name() string }); ok && named.Name() != "" {
		return named.Name()
	}
	return fmt.Sprintf("%v", dst)
}
