package platform

import (
	"context"

	"github.com/273dan/lazyvec/platform/expr"
	"github.com/273dan/lazyvec/platform/vector"
)

// ElementEvaluator is the interface for single-element expression evaluation.
type ElementEvaluator interface {
	// EvaluateAt computes element i of the expression without materializing
	// any other element. The same lazy validation as EvaluateInto applies:
	// a tree whose leaves disagree in length fails here too.
	EvaluateAt(ctx context.Context, root expr.Node, i int) (float64, error)
}

// Evaluator combines single-element access with full evaluation into a
// destination vector. Building the expression tree is always O(1) and reads
// no data; the cost model of the evaluation pass is engine-specific (the
// fused engine guarantees a single pass with no intermediate vectors, the
// starlark engine materializes and exists as a reference oracle).
type Evaluator interface {
	ElementEvaluator

	// EvaluateInto computes every element of the expression and writes it
	// into dst, exactly one write per index. The caller must guarantee
	// exclusive access to dst for the duration of the call. If dst shares
	// storage with a leaf of the tree, each element is computed from
	// pre-write values; how that is achieved (spill buffer or rejection) is
	// the engine's documented aliasing policy.
	EvaluateInto(ctx context.Context, root expr.Node, dst vector.Writable) (EvaluatorResponse, error)
}

// AliasPolicy selects how an engine treats a destination that shares storage
// with a leaf of the expression being evaluated.
type AliasPolicy int

const (
	// AliasSpill evaluates into a private buffer of output length when
	// overlap is detected, then copies into the destination once, so element
	// i always sees pre-write operand values.
	AliasSpill AliasPolicy = iota

	// AliasReject refuses overlapping destinations with an error before any
	// element is written.
	AliasReject
)

func (p AliasPolicy) String() string {
	switch p {
	case AliasSpill:
		return "spill"
	case AliasReject:
		return "reject"
	default:
		return "unknown"
	}
}

// EvaluatorResponse is the result metadata of one evaluation pass.
type EvaluatorResponse interface {
	// Elements is the number of output elements written.
	Elements() int

	// GetExecTime returns the wall time of the pass, formatted.
	GetExecTime() string

	// GetDest returns a label for the destination written to.
	GetDest() string

	String() string
}
