package classifier

import "sort"

// SparseVector stores non-zero features sorted by index so that every dot product sums
// in the same order and fitting stays bit-for-bit reproducible.
type SparseVector struct {
	Indices []int
	Values  []float64
}

func newSparseVector(m map[int]float64) SparseVector {
	v := SparseVector{
		Indices: make([]int, 0, len(m)),
		Values:  make([]float64, 0, len(m)),
	}
	for i := range m {
		v.Indices = append(v.Indices, i)
	}
	sort.Ints(v.Indices)
	for _, i := range v.Indices {
		v.Values = append(v.Values, m[i])
	}
	return v
}

// Dot computes the inner product with a dense weight vector.
func (v SparseVector) Dot(w []float64) float64 {
	sum := 0.0
	for k, i := range v.Indices {
		if i < len(w) {
			sum += v.Values[k] * w[i]
		}
	}
	return sum
}

// Len returns the number of stored features.
func (v SparseVector) Len() int { return len(v.Indices) }
