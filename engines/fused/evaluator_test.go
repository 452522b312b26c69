package fused

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/273dan/lazyvec/platform"
	"github.com/273dan/lazyvec/platform/expr"
	"github.com/273dan/lazyvec/platform/vector"
)

func testHandler() slog.Handler {
	return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelWarn, // Reduce noise in tests
	})
}

func TestEvaluateInto(t *testing.T) {
	t.Parallel()
	be := New(testHandler(), platform.AliasSpill)
	ctx := context.Background()

	t.Run("three-term sum", func(t *testing.T) {
		a := vector.New("a", []float64{1, 2, 3})
		b := vector.New("b", []float64{4, 5, 6})
		c := vector.New("c", []float64{7, 8, 9})
		dst := vector.Zeros("dst", 3)

		root := expr.Add(expr.Add(expr.Ref(a), expr.Ref(b)), expr.Ref(c))
		response, err := be.EvaluateInto(ctx, root, dst)
		require.NoError(t, err)
		require.NotNil(t, response)

		assert.Equal(t, []float64{12, 15, 18}, dst.Storage())
		assert.Equal(t, 3, response.Elements())
		assert.Equal(t, "dst", response.GetDest())
	})

	t.Run("mixed operators and scalars", func(t *testing.T) {
		a := vector.New("a", []float64{1, 4, 9})
		b := vector.New("b", []float64{2, 2, 2})
		dst := vector.Zeros("dst", 3)

		// sqrt(a) * b - 1
		root := expr.Sub(expr.Mul(expr.Sqrt(expr.Ref(a)), expr.Ref(b)), expr.Const(1))
		_, err := be.EvaluateInto(ctx, root, dst)
		require.NoError(t, err)

		assert.Equal(t, []float64{1, 3, 5}, dst.Storage())
	})

	t.Run("division", func(t *testing.T) {
		a := vector.New("a", []float64{1, 2, 3})
		b := vector.New("b", []float64{2, 4, 6})
		dst := vector.Zeros("dst", 3)

		_, err := be.EvaluateInto(ctx, expr.Div(expr.Ref(a), expr.Ref(b)), dst)
		require.NoError(t, err)
		assert.Equal(t, []float64{0.5, 0.5, 0.5}, dst.Storage())
	})

	t.Run("scalar-only tree broadcasts to destination length", func(t *testing.T) {
		dst := vector.Zeros("dst", 4)

		_, err := be.EvaluateInto(ctx, expr.Mul(expr.Const(2), expr.Const(3)), dst)
		require.NoError(t, err)
		assert.Equal(t, []float64{6, 6, 6, 6}, dst.Storage())
	})

	t.Run("re-evaluation reflects current leaf contents", func(t *testing.T) {
		data := []float64{1, 2, 3}
		a := vector.New("a", data)
		dst := vector.Zeros("dst", 3)
		root := expr.Add(expr.Ref(a), expr.Const(10))

		_, err := be.EvaluateInto(ctx, root, dst)
		require.NoError(t, err)
		require.Equal(t, []float64{11, 12, 13}, dst.Storage())

		// No memoization: mutate the leaf, evaluate the same tree again.
		data[0] = 100
		_, err = be.EvaluateInto(ctx, root, dst)
		require.NoError(t, err)
		assert.Equal(t, []float64{110, 12, 13}, dst.Storage())
	})

	t.Run("nil node", func(t *testing.T) {
		dst := vector.Zeros("dst", 3)
		_, err := be.EvaluateInto(ctx, nil, dst)
		assert.ErrorIs(t, err, ErrNilNode)
	})

	t.Run("nil destination", func(t *testing.T) {
		a := vector.New("a", []float64{1})
		_, err := be.EvaluateInto(ctx, expr.Ref(a), nil)
		assert.ErrorIs(t, err, ErrNilDestination)
	})
}

func TestEvaluateIntoReadCounts(t *testing.T) {
	t.Parallel()
	be := New(testHandler(), platform.AliasSpill)
	ctx := context.Background()

	a := vector.NewCounting(vector.New("a", []float64{1, 2, 3}))
	b := vector.NewCounting(vector.New("b", []float64{4, 5, 6}))
	c := vector.NewCounting(vector.New("c", []float64{7, 8, 9}))
	dst := vector.Zeros("dst", 3)

	root := expr.Add(expr.Add(expr.Ref(a), expr.Ref(b)), expr.Ref(c))
	require.Equal(t, 0, a.TotalReads(), "composition must not read leaf data")

	_, err := be.EvaluateInto(ctx, root, dst)
	require.NoError(t, err)

	// The fused pass reads each leaf element exactly once per output index.
	for _, leaf := range []*vector.Counting{a, b, c} {
		for i := 0; i < 3; i++ {
			assert.Equal(t, 1, leaf.Reads(i))
		}
	}
}

func TestEvaluateIntoLengthMismatch(t *testing.T) {
	t.Parallel()
	be := New(testHandler(), platform.AliasSpill)
	ctx := context.Background()

	t.Run("leaves disagree", func(t *testing.T) {
		a := vector.New("a", []float64{1, 2, 3})
		b := vector.New("b", []float64{4, 5, 6, 7})
		dst := vector.New("dst", []float64{9, 9, 9})

		_, err := be.EvaluateInto(ctx, expr.Add(expr.Ref(a), expr.Ref(b)), dst)
		require.Error(t, err)
		assert.ErrorIs(t, err, expr.ErrLengthMismatch)

		// The failure happens before any write.
		assert.Equal(t, []float64{9, 9, 9}, dst.Storage())
	})

	t.Run("destination disagrees", func(t *testing.T) {
		a := vector.New("a", []float64{1, 2, 3})
		dst := vector.New("dst", []float64{9, 9})

		_, err := be.EvaluateInto(ctx, expr.Ref(a), dst)
		require.Error(t, err)
		assert.ErrorIs(t, err, expr.ErrLengthMismatch)
		assert.Equal(t, []float64{9, 9}, dst.Storage())
	})
}

func TestEvaluateIntoAliasing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("spill policy computes from pre-write values", func(t *testing.T) {
		be := New(testHandler(), platform.AliasSpill)
		a := vector.New("a", []float64{1, 2, 3})
		b := vector.New("b", []float64{4, 5, 6})

		// dst is a itself.
		_, err := be.EvaluateInto(ctx, expr.Add(expr.Ref(a), expr.Ref(b)), a)
		require.NoError(t, err)
		assert.Equal(t, []float64{5, 7, 9}, a.Storage())
	})

	t.Run("spill detects overlap through wrappers", func(t *testing.T) {
		be := New(testHandler(), platform.AliasSpill)
		data := []float64{1, 2, 3}
		a := vector.NewCounting(vector.New("a", data))
		dst := vector.New("dst", data)

		_, err := be.EvaluateInto(ctx, expr.Mul(expr.Ref(a), expr.Const(2)), dst)
		require.NoError(t, err)
		assert.Equal(t, []float64{2, 4, 6}, data)
	})

	t.Run("reject policy fails without writing", func(t *testing.T) {
		be := New(testHandler(), platform.AliasReject)
		a := vector.New("a", []float64{1, 2, 3})
		b := vector.New("b", []float64{4, 5, 6})

		_, err := be.EvaluateInto(ctx, expr.Add(expr.Ref(a), expr.Ref(b)), a)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAliasingViolation)
		assert.Equal(t, []float64{1, 2, 3}, a.Storage())
	})

	t.Run("reject policy allows disjoint destinations", func(t *testing.T) {
		be := New(testHandler(), platform.AliasReject)
		a := vector.New("a", []float64{1, 2, 3})
		dst := vector.Zeros("dst", 3)

		_, err := be.EvaluateInto(ctx, expr.Neg(expr.Ref(a)), dst)
		require.NoError(t, err)
		assert.Equal(t, []float64{-1, -2, -3}, dst.Storage())
	})
}

func TestEvaluateAt(t *testing.T) {
	t.Parallel()
	be := New(testHandler(), platform.AliasSpill)
	ctx := context.Background()

	a := vector.New("a", []float64{1, 2, 3})
	b := vector.New("b", []float64{4, 5, 6})
	root := expr.Add(expr.Ref(a), expr.Ref(b))

	t.Run("single element", func(t *testing.T) {
		got, err := be.EvaluateAt(ctx, root, 1)
		require.NoError(t, err)
		assert.Equal(t, 7.0, got)
	})

	t.Run("reads only the requested index", func(t *testing.T) {
		ca := vector.NewCounting(a)
		got, err := be.EvaluateAt(ctx, expr.Ref(ca), 2)
		require.NoError(t, err)
		assert.Equal(t, 3.0, got)
		assert.Equal(t, 1, ca.Reads(2))
		assert.Equal(t, 1, ca.TotalReads())
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := be.EvaluateAt(ctx, root, 3)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)

		_, err = be.EvaluateAt(ctx, root, -1)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})

	t.Run("length mismatch surfaces lazily", func(t *testing.T) {
		short := vector.New("short", []float64{1})
		bad := expr.Add(expr.Ref(a), expr.Ref(short))

		_, err := be.EvaluateAt(ctx, bad, 0)
		assert.ErrorIs(t, err, expr.ErrLengthMismatch)
	})

	t.Run("scalar-only tree", func(t *testing.T) {
		got, err := be.EvaluateAt(ctx, expr.Const(5), 123)
		require.NoError(t, err)
		assert.Equal(t, 5.0, got)
	})

	t.Run("nil node", func(t *testing.T) {
		_, err := be.EvaluateAt(ctx, nil, 0)
		assert.ErrorIs(t, err, ErrNilNode)
	})
}

func TestEvaluatorMetadata(t *testing.T) {
	t.Parallel()

	be := New(testHandler(), platform.AliasReject)
	assert.Equal(t, "fused.Evaluator", be.String())
	assert.Equal(t, platform.AliasReject, be.AliasPolicy())
}
