// Package expr builds deferred element-wise arithmetic expressions over
// vectors. Composing an expression creates a tree of lightweight proxy nodes
// that hold references to their operands; no element is read and no result
// storage is allocated until an engine evaluates the tree. Trees are
// immutable once built and evaluation is a pure function of the referenced
// vectors' contents at evaluation time, so re-evaluating after a vector
// changes reflects the new data.
//
// The vectors referenced by a tree must outlive it; nodes never take
// ownership of their leaves.
package expr

import (
	"fmt"
	"math"

	"github.com/273dan/lazyvec/platform/vector"
)

// Op identifies a binary element-wise operation.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

// Apply computes the operation on a pair of scalars.
func (op Op) Apply(left, right float64) float64 {
	switch op {
	case OpAdd:
		return left + right
	case OpSub:
		return left - right
	case OpMul:
		return left * right
	case OpDiv:
		return left / right
	default:
		panic(fmt.Sprintf("unknown binary op: %d", op))
	}
}

// Symbol returns the infix token for the operation.
func (op Op) Symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

func (op Op) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	default:
		return fmt.Sprintf("Op(%d)", op)
	}
}

// UnaryOp identifies a unary element-wise operation.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpAbs
	OpSqrt
)

// Apply computes the operation on a scalar.
func (op UnaryOp) Apply(v float64) float64 {
	switch op {
	case OpNeg:
		return -v
	case OpAbs:
		return math.Abs(v)
	case OpSqrt:
		return math.Sqrt(v)
	default:
		panic(fmt.Sprintf("unknown unary op: %d", op))
	}
}

func (op UnaryOp) String() string {
	switch op {
	case OpNeg:
		return "neg"
	case OpAbs:
		return "abs"
	case OpSqrt:
		return "sqrt"
	default:
		return fmt.Sprintf("UnaryOp(%d)", op)
	}
}

// Node is one vertex of a deferred expression tree.
type Node interface {
	// At computes element i of the expression from the current contents of
	// the vectors referenced by the tree. It performs no length or bounds
	// validation; engines validate before iterating.
	At(i int) float64

	fmt.Stringer

	// appendLeaves accumulates the vectors referenced by the subtree in
	// left-to-right order. Unexported to keep the node set closed.
	appendLeaves(dst []vector.Vector) []vector.Vector
}

// Term is a leaf referencing a caller-owned vector.
type Term struct {
	Vec vector.Vector
}

func (t *Term) At(i int) float64 {
	return t.Vec.At(i)
}

func (t *Term) appendLeaves(dst []vector.Vector) []vector.Vector {
	return append(dst, t.Vec)
}

func (t *Term) String() string {
	return fmt.Sprintf("%v", t.Vec)
}

// Scalar is a leaf holding a constant broadcast across every index.
type Scalar struct {
	Val float64
}

func (s *Scalar) At(int) float64 {
	return s.Val
}

func (s *Scalar) appendLeaves(dst []vector.Vector) []vector.Vector {
	return dst
}

func (s *Scalar) String() string {
	return fmt.Sprintf("%g", s.Val)
}

// Unary applies a unary operation to a child expression.
type Unary struct {
	Op    UnaryOp
	Child Node
}

func (u *Unary) At(i int) float64 {
	return u.Op.Apply(u.Child.At(i))
}

func (u *Unary) appendLeaves(dst []vector.Vector) []vector.Vector {
	return u.Child.appendLeaves(dst)
}

func (u *Unary) String() string {
	return fmt.Sprintf("%s(%s)", u.Op, u.Child)
}

// Binary combines two child expressions element-wise.
type Binary struct {
	Op          Op
	Left, Right Node
}

func (b *Binary) At(i int) float64 {
	return b.Op.Apply(b.Left.At(i), b.Right.At(i))
}

func (b *Binary) appendLeaves(dst []vector.Vector) []vector.Vector {
	return b.Right.appendLeaves(b.Left.appendLeaves(dst))
}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op.Symbol(), b.Right)
}
