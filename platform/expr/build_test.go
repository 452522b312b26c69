package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/273dan/lazyvec/platform/vector"
)

func TestCompositionReadsNothing(t *testing.T) {
	t.Parallel()

	a := vector.NewCounting(vector.New("a", []float64{1, 2, 3}))
	b := vector.NewCounting(vector.New("b", []float64{4, 5, 6}))
	c := vector.NewCounting(vector.New("c", []float64{7, 8, 9}))

	// Building an arbitrarily nested tree must not touch element data.
	root := Add(Add(Ref(a), Ref(b)), Mul(Ref(c), Const(2)))
	require.NotNil(t, root)

	assert.Equal(t, 0, a.TotalReads())
	assert.Equal(t, 0, b.TotalReads())
	assert.Equal(t, 0, c.TotalReads())
}

func TestCombineIndependence(t *testing.T) {
	t.Parallel()

	a := vector.New("a", []float64{1, 2, 3})
	b := vector.New("b", []float64{4, 5, 6})

	// Two Combine calls with identical arguments build independent nodes
	// that evaluate identically.
	first := Combine(OpAdd, Ref(a), Ref(b))
	second := Combine(OpAdd, Ref(a), Ref(b))

	require.NotSame(t, first, second)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first.At(i), second.At(i))
	}
}

func TestLeaves(t *testing.T) {
	t.Parallel()

	a := vector.New("a", []float64{1})
	b := vector.New("b", []float64{2})

	t.Run("left-to-right order", func(t *testing.T) {
		root := Sub(Ref(a), Add(Ref(b), Ref(a)))
		leaves := Leaves(root)
		require.Len(t, leaves, 3)
		assert.Same(t, a, leaves[0])
		assert.Same(t, b, leaves[1])
		assert.Same(t, a, leaves[2])
	})

	t.Run("scalars are not leaves", func(t *testing.T) {
		root := Add(Const(1), Const(2))
		assert.Empty(t, Leaves(root))
	})

	t.Run("nil root has no leaves", func(t *testing.T) {
		assert.Nil(t, Leaves(nil))
	})
}

func TestLength(t *testing.T) {
	t.Parallel()

	t.Run("consistent leaves", func(t *testing.T) {
		a := vector.New("a", []float64{1, 2, 3})
		b := vector.New("b", []float64{4, 5, 6})

		n, hasLeaves, err := Length(Add(Ref(a), Ref(b)))
		require.NoError(t, err)
		assert.True(t, hasLeaves)
		assert.Equal(t, 3, n)
	})

	t.Run("mismatched leaves", func(t *testing.T) {
		a := vector.New("a", []float64{1, 2, 3})
		b := vector.New("b", []float64{4, 5, 6, 7})

		_, hasLeaves, err := Length(Add(Ref(a), Ref(b)))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrLengthMismatch)
		assert.True(t, hasLeaves)
	})

	t.Run("scalar-only tree has no intrinsic length", func(t *testing.T) {
		n, hasLeaves, err := Length(Mul(Const(2), Const(3)))
		require.NoError(t, err)
		assert.False(t, hasLeaves)
		assert.Equal(t, 0, n)
	})

	t.Run("length check reflects current vector contents lazily", func(t *testing.T) {
		// Composition succeeds even with mismatched lengths; the error only
		// surfaces when Length is consulted.
		a := vector.New("a", []float64{1, 2, 3})
		b := vector.New("b", []float64{4})
		root := Add(Ref(a), Ref(b))

		_, _, err := Length(root)
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})
}
