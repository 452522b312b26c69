package internal

import (
	"errors"
	"fmt"

	starlarkLib "go.starlark.net/starlark"
)

var ErrInvalidResult = errors.New("invalid starlark result")

// FloatFromStarlark converts a numeric Starlark value to a float64.
func FloatFromStarlark(val starlarkLib.Value) (float64, error) {
	switch v := val.(type) {
	case starlarkLib.Float:
		return float64(v), nil
	case starlarkLib.Int:
		f, _ := starlarkLib.AsFloat(v)
		return f, nil
	default:
		return 0, fmt.Errorf("%w: expected a number, got %s", ErrInvalidResult, val.Type())
	}
}

// FloatsFromStarlark converts a Starlark list of numbers to a float64 slice.
func FloatsFromStarlark(val starlarkLib.Value) ([]float64, error) {
	list, ok := val.(*starlarkLib.List)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list, got %s", ErrInvalidResult, val.Type())
	}

	out := make([]float64, list.Len())
	for i := range out {
		f, err := FloatFromStarlark(list.Index(i))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}
