// Package starlark implements a reference engine that evaluates expression
// trees by translating them to a Starlark program and materializing the full
// result before writing it out. It deliberately trades the fused engine's
// zero-intermediate-allocation guarantee for an independent computation path,
// which makes it useful as a differential-testing oracle.
package starlark

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/273dan/lazyvec/engines/starlark/internal"
	"github.com/273dan/lazyvec/internal/helpers"
	"github.com/273dan/lazyvec/platform"
	"github.com/273dan/lazyvec/platform/expr"
	"github.com/273dan/lazyvec/platform/vector"
	starlarkMath "go.starlark.net/lib/math"
	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Evaluator is an abstraction layer for evaluating expression trees on the
// Starlark engine.
type Evaluator struct {
	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a new Evaluator object
func New(handler slog.Handler) *Evaluator {
	handler, logger := helpers.SetupLogger(handler, "starlark", "Evaluator")

	return &Evaluator{
		logHandler: handler,
		logger:     logger,
	}
}

func (be *Evaluator) String() string {
	return "starlark.Evaluator"
}

// exec compiles and runs the generated source with the provided globals,
// returning the value bound to "result".
func (be *Evaluator) exec(
	ctx context.Context,
	src string,
	globals starlarkLib.StringDict,
) (starlarkLib.Value, time.Duration, error) {
	logger := be.logger.WithGroup("exec")

	predeclared := make(starlarkLib.StringDict, len(globals)+1)
	predeclared["math"] = starlarkMath.Module
	for k, v := range globals {
		predeclared[k] = v
	}

	opts := &syntax.FileOptions{}
	f, err := opts.Parse("expr.star", []byte(src), 0)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	prog, err := starlarkLib.FileProgram(f, predeclared.Has)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}

	// Create thread with cancellation support
	thread := &starlarkLib.Thread{
		Name: "eval",
		Print: func(thread *starlarkLib.Thread, msg string) {
			logger.InfoContext(ctx, msg, "starlark-thread", thread.Name)
		},
	}

	startTime := time.Now()
	finalGlobals, err := prog.Init(thread, predeclared)
	execTime := time.Since(startTime)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrExecFailed, err)
	}

	resultVal, ok := finalGlobals["result"]
	if !ok {
		return nil, 0, fmt.Errorf("%w: program bound no result", ErrExecFailed)
	}
	logger.DebugContext(ctx, "exec complete", "src", src, "execTime", execTime)
	return resultVal, execTime, nil
}

// EvaluateInto computes every element of the expression through Starlark and
// writes it into dst. The result is fully materialized before the first
// write, so an aliased destination always observes pre-write operand values
// and no aliasing rejection is needed; a validation failure never leaves a
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

	// Same lazy validation contract as the fused engine.
	n, hasLeaves, err := expr.Length(root)
	if err != nil {
		logger.ErrorContext(ctx, "length validation failed", "error", err)
		return nil, err
	}
	if !hasLeaves {
		n = dst.Len()
	} else if dst.Len() != n {
		return nil, fmt.Errorf(
			"%w: expression has %d elements, destination has %d",
			expr.ErrLengthMismatch, n, dst.Len())
	}

	src, globals, err := internal.TranslateProgram(root, n)
	if err != nil {
		return nil, fmt.Errorf("failed to translate expression: %w", err)
	}

	resultVal, execTime, err := be.exec(ctx, src, globals)
	if err != nil {
		return nil, err
	}

	out, err := internal.FloatsFromStarlark(resultVal)
	if err != nil {
		return nil, err
	}
	if len(out) != n {
		return nil, fmt.Errorf(
			"%w: program produced %d elements, expected %d", ErrExecFailed, len(out), n)
	}
	for i, v := range out {
		dst.Set(i, v)
	}

	return newEvalResult(be.logHandler, n, execTime, destLabel(dst)), nil
}

// EvaluateAt computes a single element of the expression through Starlark.
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

	src, globals, err := internal.TranslateElement(root, i)
	if err != nil {
		return 0, fmt.Errorf("failed to translate expression: %w", err)
	}

	resultVal, _, err := be.exec(ctx, src, globals)
	if err != nil {
		return 0, err
	}
	return internal.FloatFromStarlark(resultVal)
}

func destLabel(dst vector.Writable) string {
	if named, ok := dst.(interface{ Name() string }); ok && named.Name() != "" {
		return named.Name()
	}
	return fmt.Sprintf("%v", dst)
}
