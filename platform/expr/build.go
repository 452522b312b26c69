package expr

import (
	"errors"
	"fmt"

	"github.com/273dan/lazyvec/platform/vector"
)

// ErrLengthMismatch is returned by Length when two leaves of a tree disagree
// in length. Engines surface it (wrapped) when asked to evaluate such a tree.
var ErrLengthMismatch = errors.New("expression leaves disagree in length")

// Ref wraps a vector as a leaf node. The vector is referenced, never copied;
// it must outlive every tree it appears in.
func Ref(v vector.Vector) Node {
	return &Term{Vec: v}
}

// Const wraps a constant as a leaf node broadcast across every index.
func Const(v float64) Node {
	return &Scalar{Val: v}
}

// Combine builds a node computing left[i] op right[i] for each index i.
// Nothing is read or validated here: operand lengths are checked lazily when
// the tree is evaluated, and composition is O(1) regardless of operand size.
// Each call returns a fresh node, so combining the same operands twice
// yields independent trees that evaluate identically.
func Combine(op Op, left, right Node) Node {
	return &Binary{Op: op, Left: left, Right: right}
}

// Add builds left[i] + right[i].
func Add(left, right Node) Node {
	return Combine(OpAdd, left, right)
}

// Sub builds left[i] - right[i].
func Sub(left, right Node) Node {
	return Combine(OpSub, left, right)
}

// Mul builds left[i] * right[i].
func Mul(left, right Node) Node {
	return Combine(OpMul, left, right)
}

// Div builds left[i] / right[i].
func Div(left, right Node) Node {
	return Combine(OpDiv, left, right)
}

// Neg builds -child[i].
func Neg(child Node) Node {
	return &Unary{Op: OpNeg, Child: child}
}

// Abs builds |child[i]|.
func Abs(child Node) Node {
	return &Unary{Op: OpAbs, Child: child}
}

// Sqrt builds sqrt(child[i]).
func Sqrt(child Node) Node {
	return &Unary{Op: OpSqrt, Child: child}
}

// Leaves returns the vectors referenced by the tree in left-to-right order.
// A vector referenced by several leaves appears once per reference.
func Leaves(root Node) []vector.Vector {
	if root == nil {
		return nil
	}
	return root.appendLeaves(nil)
}

// Length resolves the element count of an expression from its leaves.
// It returns hasLeaves=false for trees built purely from constants, which
// have no intrinsic length. A tree whose leaves disagree in length yields an
// error wrapping ErrLengthMismatch.
func Length(root Node) (n int, hasLeaves bool, err error) {
	leaves := Leaves(root)
	if len(leaves) == 0 {
		return 0, false, nil
	}
	n = leaves[0].Len()
	for _, leaf := range leaves[1:] {
		if leaf.Len() != n {
			return 0, true, fmt.Errorf(
				"%w: %d vs %d", ErrLengthMismatch, n, leaf.Len())
		}
	}
	return n, true, nil
}
