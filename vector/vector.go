package vector

import (
	"fmt"
	"math"
)

// ErrDimensionMismatch indicates operands of different length.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("vector size mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Check returns an *ErrDimensionMismatch if a and b differ in length.
func Check(a, b []float64) error {
	if len(a) != len(b) {
		return &ErrDimensionMismatch{Expected: len(a), Actual: len(b)}
	}
	return nil
}

// Distance returns the Euclidean distance between a and b.
// It returns -1 and an error if the lengths differ.
func Distance(a, b []float64) (float64, error) {
	if err := Check(a, b); err != nil {
		return -1, err
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Add returns a + b.
func Add(a, b []float64) ([]float64, error) {
	res := make([]float64, len(a))
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		res[i] = a[i] + b[i]
	}
	copy(res[n:], a[n:])
	return res, Check(a, b)
}

// AddInPlace accumulates src into dst.
func AddInPlace(dst, src []float64) error {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] += src[i]
	}
	return Check(dst, src)
}

// Sub returns a - b.
func Sub(a, b []float64) ([]float64, error) {
	res := make([]float64, len(a))
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		res[i] = a[i] - b[i]
	}
	copy(res[n:], a[n:])
	return res, Check(a, b)
}

// Scale returns v * k.
func Scale(v []float64, k float64) []float64 {
	res := make([]float64, len(v))
	for i, x := range v {
		res[i] = x * k
	}
	return res
}

// Div returns v / k.
func Div(v []float64, k float64) []float64 {
	res := make([]float64, len(v))
	for i, x := range v {
		res[i] = x / k
	}
	return res
}

// Pow raises every element of v to p.
func Pow(v []float64, p float64) []float64 {
	res := make([]float64, len(v))
	for i, x := range v {
		res[i] = math.Pow(x, p)
	}
	return res
}

// Sqrt returns the elementwise square root of v.
func Sqrt(v []float64) []float64 {
	res := make([]float64, len(v))
	for i, x := range v {
		res[i] = math.Sqrt(x)
	}
	return res
}

// ArgMax returns the index of the largest element, preferring the first on ties.
// It returns -1 for an empty vector.
func ArgMax(v []float64) int {
	if len(v) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
