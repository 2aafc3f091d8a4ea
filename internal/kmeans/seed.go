package kmeans

import (
	"errors"
	"math"
	"math/rand/v2"

	"github.com/hupe1980/kclust/distance"
	"github.com/hupe1980/kclust/model"
)

var (
	// ErrNotEnoughPoints is returned when the matrix has fewer rows than k.
	ErrNotEnoughPoints = errors.New("kmeans: fewer points than clusters")
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("kmeans: k must be positive")
	// ErrNonFinite is returned when a distance or weight is NaN or infinite.
	ErrNonFinite = errors.New("kmeans: non-finite distance")
)

// SeedStats reports what happened during seeding.
type SeedStats struct {
	// DegenerateDraws counts draws where every weight was zero and the
	// point was picked uniformly instead.
	DegenerateDraws int
}

// Seed selects k initial centroids from m with k-means++ weighting.
//
// The first centroid is a uniformly random row. Each further centroid is drawn
// with probability proportional to d², where d is the mean squared distance of
// a row to its nearest already chosen centroid. When all weights are zero (all
// rows coincide with chosen centroids) the draw falls back to a uniform pick.
func Seed(m *model.FeatureMatrix, k int, rng *rand.Rand) (*model.CentroidSet, SeedStats, error) {
	var stats SeedStats
	if k <= 0 {
		return nil, stats, ErrInvalidK
	}
	n := m.Len()
	if n < k {
		return nil, stats, ErrNotEnoughPoints
	}

	centroids := model.NewCentroidSet(k, m.Dim())
	centroids.Set(0, m.Row(rng.IntN(n)))

	// nearest[i] is the distance of row i to its closest chosen centroid,
	// updated incrementally as centroids are added.
	nearest := make([]float64, n)
	for i := range nearest {
		nearest[i] = math.Inf(1)
	}
	weights := make([]float64, n)

	for chosen := 1; chosen < k; chosen++ {
		last := centroids.Centroid(chosen - 1)
		var total float64
		for i := 0; i < n; i++ {
			if d := distance.MeanSquared(m.Row(i), last); d < nearest[i] {
				nearest[i] = d
			}
			weights[i] = nearest[i] * nearest[i]
			total += weights[i]
		}

		if math.IsNaN(total) || math.IsInf(total, 0) {
			return nil, stats, ErrNonFinite
		}

		var idx int
		if total == 0 {
			stats.DegenerateDraws++
			idx = rng.IntN(n)
		} else {
			idx = weightedIndex(weights, total, rng)
		}
		centroids.Set(chosen, m.Row(idx))
	}

	return centroids, stats, nil
}

// weightedIndex draws an index with probability weights[i]/total.
func weightedIndex(weights []float64, total float64, rng *rand.Rand) int {
	target := rng.Float64() * total
	var cum float64
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		last = i
		if target < cum {
			return i
		}
	}
	// Rounding can leave target == cum at the end; pick the last eligible row.
	return last
}
