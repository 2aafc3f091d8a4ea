package distance

import (
	"fmt"
)

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// MeanSquared calculates the mean squared error between two vectors:
// the squared L2 distance divided by the vector length.
// Returns 0 for empty vectors.
func MeanSquared(a, b []float32) float64 {
	if len(a) == 0 {
		return 0
	}
	return SquaredL2(a, b) / float64(len(a))
}

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	MetricMeanSquared Metric = iota
	MetricL2
)

func (m Metric) String() string {
	switch m {
	case MetricMeanSquared:
		return "MeanSquared"
	case MetricL2:
		return "L2"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b []float32) float64

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricMeanSquared:
		return MeanSquared, nil
	case MetricL2:
		return SquaredL2, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}
