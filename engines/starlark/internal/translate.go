// Package internal translates deferred expression trees into Starlark source
// so the starlark engine can act as a materializing reference implementation.
package internal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/273dan/lazyvec/platform/expr"
	"github.com/273dan/lazyvec/platform/vector"
	starlarkLib "go.starlark.net/starlark"
)

var ErrUnknownNode = errors.New("unknown expression node type")

// TranslateProgram renders the tree as a full-vector list comprehension:
//
//	result = [(v0[i] + v1[i]) for i in range(n)]
//
// and returns the generated source together with the globals binding each
// distinct leaf vector to a synthesized name. Leaf contents are materialized
// into Starlark lists here, which is exactly the intermediate storage the
// fused engine avoids; this engine exists as an oracle, not a fast path.
func TranslateProgram(root expr.Node, n int) (string, starlarkLib.StringDict, error) {
	body, globals, err := renderTree(root)
	if err != nil {
		return "", nil, err
	}
	src := fmt.Sprintf("result = [%s for i in range(%d)]\n", body, n)
	return src, globals, nil
}

// TranslateElement renders the tree as a single-element program:
//
//	result = (v0[i] + v1[i])
//
// with the index bound as the global i.
func TranslateElement(root expr.Node, i int) (string, starlarkLib.StringDict, error) {
	body, globals, err := renderTree(root)
	if err != nil {
		return "", nil, err
	}
	globals["i"] = starlarkLib.MakeInt(i)
	src := fmt.Sprintf("result = %s\n", body)
	return src, globals, nil
}

func renderTree(root expr.Node) (string, starlarkLib.StringDict, error) {
	names := make(map[vector.Vector]string)
	globals := make(starlarkLib.StringDict)
	for _, leaf := range expr.Leaves(root) {
		if _, ok := names[leaf]; ok {
			continue
		}
		name := fmt.Sprintf("v%d", len(names))
		names[leaf] = name
		globals[name] = vectorToList(leaf)
	}

	body, err := render(root, names)
	if err != nil {
		return "", nil, err
	}
	return body, globals, nil
}

func render(node expr.Node, names map[vector.Vector]string) (string, error) {
	switch n := node.(type) {
	case *expr.Term:
		return names[n.Vec] + "[i]", nil
	case *expr.Scalar:
		return formatScalar(n.Val), nil
	case *expr.Unary:
		child, err := render(n.Child, names)
		if err != nil {
			return "", err
		}
		switch n.Op {
		case expr.OpNeg:
			return fmt.Sprintf("-(%s)", child), nil
		case expr.OpAbs:
			return fmt.Sprintf("math.fabs(%s)", child), nil
		case expr.OpSqrt:
			return fmt.Sprintf("math.sqrt(%s)", child), nil
		default:
			return "", fmt.Errorf("%w: unary op %v", ErrUnknownNode, n.Op)
		}
	case *expr.Binary:
		left, err := render(n.Left, names)
		if err != nil {
			return "", err
		}
		right, err := render(n.Right, names)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", left, n.Op.Symbol(), right), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownNode, node)
	}
}

// formatScalar renders a constant with a float marker so generated division
// never falls into Starlark integer semantics.
func formatScalar(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && !strings.Contains(s, "NaN") {
		s += ".0"
	}
	return s
}

func vectorToList(v vector.Vector) *starlarkLib.List {
	elems := make([]starlarkLib.Value, v.Len())
	for i := range elems {
		elems[i] = starlarkLib.Float(v.At(i))
	}
	return starlarkLib.NewList(elems)
}
