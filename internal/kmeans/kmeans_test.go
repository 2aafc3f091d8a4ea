package kmeans

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/hupe1980/kclust/distance"
	"github.com/hupe1980/kclust/model"
	"github.com/hupe1980/kclust/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isRowOf(m *model.FeatureMatrix, vec []float32) bool {
	for i := 0; i < m.Len(); i++ {
		if slices.Equal(m.Row(i), vec) {
			return true
		}
	}
	return false
}

func TestSeed_Membership(t *testing.T) {
	vecs, _ := testutil.NewRNG(1).LabelledBlobs(60, 8, 3, 0.05)
	m := testutil.Matrix(t, vecs)

	for k := 1; k <= m.Len(); k += 7 {
		centroids, _, err := Seed(m, k, NewSource(42, k))
		require.NoError(t, err)
		require.Equal(t, k, centroids.Len())
		for j := 0; j < k; j++ {
			assert.True(t, isRowOf(m, centroids.Centroid(j)), "centroid %d is not a row", j)
		}
	}
}

func TestSeed_Errors(t *testing.T) {
	m := testutil.Matrix(t, [][]float32{{0, 0}, {1, 1}})

	_, _, err := Seed(m, 0, NewSource(1, 0))
	assert.ErrorIs(t, err, ErrInvalidK)

	_, _, err = Seed(m, 3, NewSource(1, 0))
	assert.ErrorIs(t, err, ErrNotEnoughPoints)
}

func TestSeed_Degenerate(t *testing.T) {
	m := testutil.Matrix(t, testutil.Identical(5, []float32{0.3, 0.3, 0.3}))

	centroids, stats, err := Seed(m, 3, NewSource(7, 0))
	require.NoError(t, err)
	assert.Equal(t, 3, centroids.Len())
	assert.Equal(t, 2, stats.DegenerateDraws)
	for j := 0; j < 3; j++ {
		assert.Equal(t, []float32{0.3, 0.3, 0.3}, centroids.Centroid(j))
	}
}

func TestSeed_NonFinite(t *testing.T) {
	nan := float32(math.NaN())
	m := testutil.Matrix(t, [][]float32{{0, 0}, {nan, 1}, {1, 1}})

	// Whatever the first pick, the NaN row poisons the weight total.
	_, _, err := Seed(m, 2, NewSource(3, 0))
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestSeed_PrefersFarPoints(t *testing.T) {
	rows, _ := testutil.TwoBlobs()
	m := testutil.Matrix(t, rows)

	for restart := 0; restart < 20; restart++ {
		centroids, _, err := Seed(m, 2, NewSource(10, restart))
		require.NoError(t, err)
		a, b := centroids.Centroid(0), centroids.Centroid(1)
		assert.Greater(t, distance.MeanSquared(a, b), 50.0)
	}
}

func TestWeightedIndex(t *testing.T) {
	rng := NewSource(5, 0)
	weights := []float64{0, 0, 3, 0, 1}
	hits := make([]int, len(weights))
	for i := 0; i < 4000; i++ {
		hits[weightedIndex(weights, 4, rng)]++
	}
	assert.Zero(t, hits[0])
	assert.Zero(t, hits[1])
	assert.Zero(t, hits[3])
	assert.InDelta(t, 3000, hits[2], 200)
	assert.InDelta(t, 1000, hits[4], 200)
}

func TestNewSource_DistinctStreams(t *testing.T) {
	a := NewSource(10, 0)
	b := NewSource(10, 1)
	c := NewSource(10, 0)

	x, y, z := a.Uint64(), b.Uint64(), c.Uint64()
	assert.NotEqual(t, x, y)
	assert.Equal(t, x, z)
}

func TestNearest_TieLowestIndex(t *testing.T) {
	centroids, err := model.CentroidSetFromRows([][]float32{{1, 0}, {-1, 0}, {0, 5}})
	require.NoError(t, err)

	idx, d := Nearest([]float32{0, 0}, centroids)
	assert.Equal(t, 0, idx)
	assert.InDelta(t, 0.5, d, 1e-9)
}

func TestIterate_AssignmentRange(t *testing.T) {
	vecs, _ := testutil.NewRNG(2).LabelledBlobs(50, 4, 5, 0.2)
	m := testutil.Matrix(t, vecs)

	for _, nIter := range []int{0, 1, 3, 10} {
		rng := NewSource(1, nIter)
		centroids, _, err := Seed(m, 5, rng)
		require.NoError(t, err)

		assignments, _, err := Iterate(context.Background(), m, centroids, nIter, rng)
		require.NoError(t, err)
		require.Len(t, assignments, m.Len())
		for _, c := range assignments {
			assert.GreaterOrEqual(t, c, 0)
			assert.Less(t, c, 5)
		}
	}
}

func TestIterate_ZeroIterationsKeepsSeeds(t *testing.T) {
	rows, _ := testutil.TwoBlobs()
	m := testutil.Matrix(t, rows)
	rng := NewSource(1, 0)

	centroids, _, err := Seed(m, 2, rng)
	require.NoError(t, err)
	seeded := centroids.Clone()

	_, _, err = Iterate(context.Background(), m, centroids, 0, rng)
	require.NoError(t, err)
	assert.True(t, seeded.Equal(centroids))
}

func TestIterate_EmptyClusterReseed(t *testing.T) {
	m := testutil.Matrix(t, testutil.Identical(4, []float32{0.5, 0.5}))
	centroids, err := model.CentroidSetFromRows([][]float32{{0.5, 0.5}, {0.5, 0.5}})
	require.NoError(t, err)

	// Every point ties onto centroid 0, so centroid 1 is empty each round.
	assignments, stats, err := Iterate(context.Background(), m, centroids, 3, NewSource(1, 0))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.EmptyClusters)
	assert.Equal(t, model.Assignment{0, 0, 0, 0}, assignments)
	assert.True(t, isRowOf(m, centroids.Centroid(1)))
}

func TestIterate_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	vecs := testutil.NewRNG(3).UniformVectors(100, 4)
	m := testutil.Matrix(t, vecs)
	rng := NewSource(1, 0)
	centroids, _, err := Seed(m, 3, rng)
	require.NoError(t, err)

	_, _, err = Iterate(ctx, m, centroids, 10, rng)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_TwoBlobs(t *testing.T) {
	rows, _ := testutil.TwoBlobs()
	m := testutil.Matrix(t, rows)

	res, err := Run(context.Background(), m, 2, 5, NewSource(10, 0))
	require.NoError(t, err)

	got := res.Centroids.Rows()
	slices.SortFunc(got, func(a, b []float32) int {
		switch {
		case a[0] < b[0]:
			return -1
		case a[0] > b[0]:
			return 1
		}
		return 0
	})
	assert.InDeltaSlice(t, []float32{0.5, 0.5}, got[0], 1e-6)
	assert.InDeltaSlice(t, []float32{10.5, 10.5}, got[1], 1e-6)
	assert.InDelta(t, 0.25, res.Inertia, 1e-6)
}

func TestRun_SingleCluster(t *testing.T) {
	vecs := testutil.NewRNG(9).UniformVectors(40, 6)
	m := testutil.Matrix(t, vecs)

	res, err := Run(context.Background(), m, 1, 3, NewSource(1, 0))
	require.NoError(t, err)

	mean := m.Mean()
	assert.InDeltaSlice(t, mean, res.Centroids.Centroid(0), 1e-6)

	var variance float64
	for i := 0; i < m.Len(); i++ {
		variance += distance.MeanSquared(m.Row(i), mean)
	}
	variance /= float64(m.Len())
	assert.InDelta(t, variance, res.Inertia, 1e-6)
}

func TestRun_Deterministic(t *testing.T) {
	vecs, _ := testutil.NewRNG(4).LabelledBlobs(120, 8, 4, 0.1)
	m := testutil.Matrix(t, vecs)

	a, err := Run(context.Background(), m, 4, 6, NewSource(99, 2))
	require.NoError(t, err)
	b, err := Run(context.Background(), m, 4, 6, NewSource(99, 2))
	require.NoError(t, err)

	assert.True(t, a.Centroids.Equal(b.Centroids))
	assert.True(t, a.Seeded.Equal(b.Seeded))
	assert.Equal(t, a.Inertia, b.Inertia)
}

func TestInertia_RoundTrip(t *testing.T) {
	vecs, _ := testutil.NewRNG(5).LabelledBlobs(80, 5, 3, 0.1)
	m := testutil.Matrix(t, vecs)

	res, err := Run(context.Background(), m, 3, 4, NewSource(1, 1))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Inertia, 0.0)

	recomputed := Inertia(m, res.Centroids, Assign(m, res.Centroids, nil))
	assert.Equal(t, res.Inertia, recomputed)
}

func TestInertia_EmptyClusterCountsAsZero(t *testing.T) {
	m := testutil.Matrix(t, [][]float32{{0, 0}, {2, 0}})
	centroids, err := model.CentroidSetFromRows([][]float32{{1, 0}, {100, 100}})
	require.NoError(t, err)

	// cluster 0: each point has MSE 0.5; cluster 1 is empty.
	got := Inertia(m, centroids, model.Assignment{0, 0})
	assert.InDelta(t, 0.25, got, 1e-9)
}

func TestRun_UsesGivenSource(t *testing.T) {
	vecs := testutil.NewRNG(6).UniformVectors(30, 3)
	m := testutil.Matrix(t, vecs)

	a, err := Run(context.Background(), m, 3, 2, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	b, err := Run(context.Background(), m, 3, 2, NewSource(1, 2))
	require.NoError(t, err)
	assert.True(t, a.Centroids.Equal(b.Centroids))
}
