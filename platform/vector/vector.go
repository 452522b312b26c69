package vector

import "fmt"

// Vector is read access to a fixed-length sequence of float64 values.
// Implementations must return stable lengths: Len must not change while an
// expression referencing the vector is being evaluated.
type Vector interface {
	// Len returns the number of elements.
	Len() int

	// At returns element i. Behavior for out-of-range indices follows the
	// underlying storage (Dense panics, matching slice semantics).
	At(i int) float64
}

// Writable is a Vector whose elements can be overwritten, used as the
// destination of an evaluation pass.
type Writable interface {
	Vector
	Set(i int, v float64)
}

// storer exposes the backing slice of a vector so evaluators can detect
// storage overlap between a destination and the leaves of an expression.
// Wrapper vectors should forward this to their inner vector.
type storer interface {
	Storage() []float64
}

// Dense is a named vector backed by a caller-owned float64 slice. New does
// not copy: mutations through the slice are visible to later evaluations,
// and the caller must keep the slice alive for as long as any expression
// references the vector.
type Dense struct {
	name string
	data []float64
}

// New wraps an existing slice as a named vector. The slice is retained, not
// copied.
func New(name string, data []float64) *Dense {
	return &Dense{name: name, data: data}
}

// Zeros allocates a zero-filled vector of length n, typically used as an
// evaluation destination.
func Zeros(name string, n int) *Dense {
	return &Dense{name: name, data: make([]float64, n)}
}

// Len returns the number of elements.
func (d *Dense) Len() int {
	return len(d.data)
}

// At returns element i.
func (d *Dense) At(i int) float64 {
	return d.data[i]
}

// Set overwrites element i.
func (d *Dense) Set(i int, v float64) {
	d.data[i] = v
}

// Name returns the label the vector was created with.
func (d *Dense) Name() string {
	return d.name
}

// Storage returns the backing slice.
func (d *Dense) Storage() []float64 {
	return d.data
}

func (d *Dense) String() string {
	return fmt.Sprintf("Dense{name: %q, len: %d}", d.name, len(d.data))
}

// Overlaps reports whether a and b are backed by the same storage. Detection
// is identity-based: two vectors overlap when their backing slices start at
// the same element. Vectors that do not expose their storage, and empty
// vectors, are treated as non-overlapping.
func Overlaps(a, b Vector) bool {
	sa, ok := storageOf(a)
	if !ok || len(sa) == 0 {
		return false
	}
	sb, ok := storageOf(b)
	if !ok || len(sb) == 0 {
		return false
	}
	return &sa[0] == &sb[0]
}

func storageOf(v Vector) ([]float64, bool) {
	s, ok := v.(storer)
	if !ok {
		return nil, false
	}
	return s.Storage(), true
}
