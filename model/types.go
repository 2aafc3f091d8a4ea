package model

import (
	"errors"
	"fmt"
	"slices"
)

// ErrEmptyMatrix is returned when a FeatureMatrix would contain no rows or
// zero-length rows.
var ErrEmptyMatrix = errors.New("feature matrix is empty")

// ErrDimensionMismatch indicates a row whose length differs from the first row.
type ErrDimensionMismatch struct {
	Row      int
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch at row %d: expected %d, got %d", e.Row, e.Expected, e.Actual)
}

// FeatureMatrix is an ordered, read-only sequence of N feature vectors of
// identical length D. It is safe for concurrent reads.
type FeatureMatrix struct {
	data []float32
	n    int
	dim  int
}

// NewFeatureMatrix copies rows into a new FeatureMatrix.
func NewFeatureMatrix(rows [][]float32) (*FeatureMatrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyMatrix
	}
	dim := len(rows[0])
	data := make([]float32, 0, len(rows)*dim)
	for i, r := range rows {
		if len(r) != dim {
			return nil, &ErrDimensionMismatch{Row: i, Expected: dim, Actual: len(r)}
		}
		data = append(data, r...)
	}
	return &FeatureMatrix{data: data, n: len(rows), dim: dim}, nil
}

// NewFeatureMatrixFromFlat wraps a flattened row-major slice.
// The matrix takes ownership of data; callers must not modify it afterwards.
func NewFeatureMatrixFromFlat(data []float32, dim int) (*FeatureMatrix, error) {
	if dim <= 0 || len(data) == 0 {
		return nil, ErrEmptyMatrix
	}
	if len(data)%dim != 0 {
		return nil, &ErrDimensionMismatch{Row: len(data) / dim, Expected: dim, Actual: len(data) % dim}
	}
	return &FeatureMatrix{data: data, n: len(data) / dim, dim: dim}, nil
}

// Len returns the number of rows (N).
func (m *FeatureMatrix) Len() int { return m.n }

// Dim returns the vector dimension (D).
func (m *FeatureMatrix) Dim() int { return m.dim }

// Row returns the i-th feature vector.
// The returned slice aliases the matrix and must be treated as read-only.
func (m *FeatureMatrix) Row(i int) []float32 {
	return m.data[i*m.dim : (i+1)*m.dim : (i+1)*m.dim]
}

// Mean returns the element-wise mean of all rows.
func (m *FeatureMatrix) Mean() []float32 {
	sums := make([]float64, m.dim)
	for i := 0; i < m.n; i++ {
		for d, v := range m.Row(i) {
			sums[d] += float64(v)
		}
	}
	mean := make([]float32, m.dim)
	for d := range sums {
		mean[d] = float32(sums[d] / float64(m.n))
	}
	return mean
}

// CentroidSet is an ordered set of exactly k centroids of dimension D.
// It is mutated in place during iteration and is not safe for concurrent use.
type CentroidSet struct {
	data []float32
	k    int
	dim  int
}

// NewCentroidSet allocates k zero centroids of dimension dim.
func NewCentroidSet(k, dim int) *CentroidSet {
	return &CentroidSet{data: make([]float32, k*dim), k: k, dim: dim}
}

// Len returns the number of centroids (k).
func (c *CentroidSet) Len() int { return c.k }

// Dim returns the centroid dimension.
func (c *CentroidSet) Dim() int { return c.dim }

// Centroid returns the j-th centroid. The slice aliases the set.
func (c *CentroidSet) Centroid(j int) []float32 {
	return c.data[j*c.dim : (j+1)*c.dim : (j+1)*c.dim]
}

// Set copies vec into centroid j.
func (c *CentroidSet) Set(j int, vec []float32) {
	copy(c.data[j*c.dim:(j+1)*c.dim], vec)
}

// Clone returns a deep copy.
func (c *CentroidSet) Clone() *CentroidSet {
	return &CentroidSet{data: slices.Clone(c.data), k: c.k, dim: c.dim}
}

// Rows returns copies of all centroids.
func (c *CentroidSet) Rows() [][]float32 {
	rows := make([][]float32, c.k)
	for j := range rows {
		rows[j] = slices.Clone(c.Centroid(j))
	}
	return rows
}

// Equal reports whether both sets hold bit-identical centroids.
func (c *CentroidSet) Equal(o *CentroidSet) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.k == o.k && c.dim == o.dim && slices.Equal(c.data, o.data)
}

// CentroidSetFromRows builds a CentroidSet from equally sized rows.
func CentroidSetFromRows(rows [][]float32) (*CentroidSet, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyMatrix
	}
	dim := len(rows[0])
	c := NewCentroidSet(len(rows), dim)
	for j, r := range rows {
		if len(r) != dim {
			return nil, &ErrDimensionMismatch{Row: j, Expected: dim, Actual: len(r)}
		}
		c.Set(j, r)
	}
	return c, nil
}

// Assignment maps point index [0,N) to cluster index [0,k).
type Assignment []int

// Counts returns the number of points per cluster.
func (a Assignment) Counts(k int) []int {
	counts := make([]int, k)
	for _, c := range a {
		counts[c]++
	}
	return counts
}

// RestartResult is the outcome of one independent restart.
type RestartResult struct {
	// Restart is the ordinal index of the restart in [0, n_tries).
	Restart int
	// Inertia is the cost of Centroids against the matrix; lower is better.
	Inertia float64
	// Centroids holds the refined centroids after the last iteration.
	Centroids *CentroidSet
	// Seeded holds the centroids chosen by the seeder, before any iteration.
	Seeded *CentroidSet
	// EmptyClusters counts empty-cluster reseeds during iteration.
	EmptyClusters int
	// DegenerateDraws counts seeding draws that fell back to uniform sampling.
	DegenerateDraws int
}
