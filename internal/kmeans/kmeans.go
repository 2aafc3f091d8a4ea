package kmeans

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/hupe1980/kclust/distance"
	"github.com/hupe1980/kclust/model"
)

// IterateStats reports what happened during iteration.
type IterateStats struct {
	// EmptyClusters counts how many times a cluster had no points during an
	// update step and was reseeded from a random row.
	EmptyClusters int
}

// Nearest returns the index of the centroid closest to vec and its mean
// squared distance. Ties go to the lowest centroid index.
func Nearest(vec []float32, centroids *model.CentroidSet) (int, float64) {
	best := 0
	minDist := math.Inf(1)
	for j := 0; j < centroids.Len(); j++ {
		d := distance.MeanSquared(vec, centroids.Centroid(j))
		if d < minDist {
			minDist = d
			best = j
		}
	}
	return best, minDist
}

// Assign computes the nearest centroid for every row of m.
// If dst has length m.Len() it is reused, otherwise a new Assignment is allocated.
func Assign(m *model.FeatureMatrix, centroids *model.CentroidSet, dst model.Assignment) model.Assignment {
	if len(dst) != m.Len() {
		dst = make(model.Assignment, m.Len())
	}
	for i := 0; i < m.Len(); i++ {
		dst[i], _ = Nearest(m.Row(i), centroids)
	}
	return dst
}

// Iterate runs exactly nIter assign/update rounds on centroids in place.
//
// There is no convergence check. A cluster left without points by the assign
// step is replaced by a uniformly random row of m drawn from rng; this keeps
// every cluster alive but means inertia is not guaranteed to decrease
// monotonically.
//
// The returned Assignment is computed against the final centroids. The
// context is checked between rounds.
func Iterate(ctx context.Context, m *model.FeatureMatrix, centroids *model.CentroidSet, nIter int, rng *rand.Rand) (model.Assignment, IterateStats, error) {
	var stats IterateStats

	n, dim, k := m.Len(), m.Dim(), centroids.Len()
	assignments := make(model.Assignment, n)
	counts := make([]int, k)
	sums := make([]float64, k*dim)

	for iter := 0; iter < nIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		// Assignment step
		assignments = Assign(m, centroids, assignments)

		// Update step
		for i := range sums {
			sums[i] = 0
		}
		for i := range counts {
			counts[i] = 0
		}

		for i := 0; i < n; i++ {
			cluster := assignments[i]
			vec := m.Row(i)
			for d := 0; d < dim; d++ {
				sums[cluster*dim+d] += float64(vec[d])
			}
			counts[cluster]++
		}

		for j := 0; j < k; j++ {
			if counts[j] > 0 {
				center := centroids.Centroid(j)
				scale := 1.0 / float64(counts[j])
				for d := 0; d < dim; d++ {
					center[d] = float32(sums[j*dim+d] * scale)
				}
			} else {
				stats.EmptyClusters++
				centroids.Set(j, m.Row(rng.IntN(n)))
			}
		}
	}

	return Assign(m, centroids, assignments), stats, nil
}

// Inertia returns the mean over clusters of the mean squared distance between
// each cluster's points and its centroid. A cluster without points contributes
// zero but is still counted in the mean.
func Inertia(m *model.FeatureMatrix, centroids *model.CentroidSet, assignments model.Assignment) float64 {
	k := centroids.Len()
	sums := make([]float64, k)
	counts := make([]int, k)
	for i, c := range assignments {
		sums[c] += distance.MeanSquared(m.Row(i), centroids.Centroid(c))
		counts[c]++
	}

	var total float64
	for j := 0; j < k; j++ {
		if counts[j] > 0 {
			total += sums[j] / float64(counts[j])
		}
	}
	return total / float64(k)
}

// Run performs one complete restart: seeding, nIter iterations and inertia.
func Run(ctx context.Context, m *model.FeatureMatrix, k, nIter int, rng *rand.Rand) (*model.RestartResult, error) {
	centroids, seedStats, err := Seed(m, k, rng)
	if err != nil {
		return nil, err
	}
	seeded := centroids.Clone()

	assignments, iterStats, err := Iterate(ctx, m, centroids, nIter, rng)
	if err != nil {
		return nil, err
	}

	inertia := Inertia(m, centroids, assignments)
	if math.IsNaN(inertia) || math.IsInf(inertia, 0) {
		return nil, ErrNonFinite
	}

	return &model.RestartResult{
		Inertia:         inertia,
		Centroids:       centroids,
		Seeded:          seeded,
		EmptyClusters:   iterStats.EmptyClusters,
		DegenerateDraws: seedStats.DegenerateDraws,
	}, nil
}
