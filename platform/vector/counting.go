package vector

import "fmt"

// Counting wraps a Vector and records how many times each element is read.
// It exists so tests can verify the two access guarantees of the evaluation
// contract: composition reads nothing, and a fused pass reads each leaf
// element exactly once per output index.
//
// Counting is not safe for concurrent use, matching the single-threaded
// evaluation contract.
type Counting struct {
	inner Vector
	reads []int
}

// NewCounting wraps inner with per-element read counters.
func NewCounting(inner Vector) *Counting {
	return &Counting{
		inner: inner,
		reads: make([]int, inner.Len()),
	}
}

// Len returns the length of the wrapped vector.
func (c *Counting) Len() int {
	return c.inner.Len()
}

// At returns element i of the wrapped vector and increments its read counter.
func (c *Counting) At(i int) float64 {
	c.reads[i]++
	return c.inner.At(i)
}

// Reads returns how many times element i has been read through the wrapper.
func (c *Counting) Reads(i int) int {
	return c.reads[i]
}

// TotalReads returns the sum of all per-element read counters.
func (c *Counting) TotalReads() int {
	total := 0
	for _, n := range c.reads {
		total += n
	}
	return total
}

// Reset zeroes all read counters.
func (c *Counting) Reset() {
	for i := range c.reads {
		c.reads[i] = 0
	}
}

// Storage forwards the backing slice of the wrapped vector, so aliasing
// detection sees through the wrapper.
func (c *Counting) Storage() []float64 {
	s, ok := storageOf(c.inner)
	if !ok {
		return nil
	}
	return s
}

func (c *Counting) String() string {
	return fmt.Sprintf("Counting{inner: %v, totalReads: %d}", c.inner, c.TotalReads())
}
