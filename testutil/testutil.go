package testutil

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/hupe1980/kclust/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
		vectors[i] = vec
	}

	return vectors
}

// LabelledBlobs generates num vectors around `clusters` random centers in
// [0, 1]^dim. Vector i belongs to blob i%clusters, which is also its label.
// Values are clamped to [0, 1] like normalized pixels.
func (r *RNG) LabelledBlobs(num, dim, clusters int, spread float32) ([][]float32, []int) {
	centers := r.UniformVectors(clusters, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	vectors := make([][]float32, num)
	labels := make([]int, num)

	for i := range num {
		label := i % clusters
		center := centers[label]
		vec := data[i*dim : (i+1)*dim]
		for j := range dim {
			vec[j] = clamp01(center[j] + float32(r.rand.NormFloat64())*spread)
		}
		vectors[i] = vec
		labels[i] = label
	}

	return vectors, labels
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// TwoBlobs returns eight 2-d points split evenly between the neighborhoods of
// (0,0) and (10,10), labelled 0 and 1.
func TwoBlobs() ([][]float32, []int) {
	return [][]float32{
			{0, 0}, {0, 1}, {1, 0}, {1, 1},
			{10, 10}, {10, 11}, {11, 10}, {11, 11},
		}, []int{
			0, 0, 0, 0,
			1, 1, 1, 1,
		}
}

// Matrix builds a FeatureMatrix from rows and fails the test on error.
func Matrix(tb testing.TB, rows [][]float32) *model.FeatureMatrix {
	tb.Helper()
	m, err := model.NewFeatureMatrix(rows)
	if err != nil {
		tb.Fatalf("testutil: build matrix: %v", err)
	}
	return m
}

// Identical returns n copies of vec.
func Identical(n int, vec []float32) [][]float32 {
	rows := make([][]float32, n)
	for i := range rows {
		rows[i] = append([]float32(nil), vec...)
	}
	return rows
}
