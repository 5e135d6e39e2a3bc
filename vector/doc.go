// Package vector provides the elementwise arithmetic used by the clustering engine.
//
// Vectors are plain []float64 slices. Every function returns a new slice
// unless its name ends in InPlace.
//
// # Dimension Contract
//
// Binary operations require operands of equal length. On mismatch they never
// panic: they return a best-effort result computed over the overlapping
// prefix (sized like the first operand) together with an
// *ErrDimensionMismatch. Distance returns the sentinel -1 instead.
//
// # Usage
//
//	d, err := vector.Distance(a, b)
//	sum := make([]float64, dim)
//	_ = vector.AddInPlace(sum, a)
//	mean := vector.Div(sum, float64(n))
package vector
