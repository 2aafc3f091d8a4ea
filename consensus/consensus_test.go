package consensus

import (
	"testing"

	"github.com/hupe1980/kclust/model"
	"github.com/hupe1980/kclust/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelHistogram(t *testing.T) {
	h := LabelHistogram{3: 2, 1: 2, 7: 1}
	assert.Equal(t, 5, h.Total())

	label, ok := h.Plurality()
	require.True(t, ok)
	assert.Equal(t, 1, label)

	_, ok = LabelHistogram{}.Plurality()
	assert.False(t, ok)
}

func TestPlurality_TieIgnoresArrivalOrder(t *testing.T) {
	c, err := FromAssignment(model.Assignment{0, 0, 0, 0}, []int{5, 5, 2, 2}, 1, 0)
	require.NoError(t, err)

	label, ok := c.Plurality(0)
	require.True(t, ok)
	assert.Equal(t, 2, label)
}

func TestBuild_TwoBlobs(t *testing.T) {
	rows, labels := testutil.TwoBlobs()
	m := testutil.Matrix(t, rows)
	centroids, err := model.CentroidSetFromRows([][]float32{{10.5, 10.5}, {0.5, 0.5}})
	require.NoError(t, err)

	c, err := Build(m, centroids, labels, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, c.K())
	assert.Equal(t, 2, c.Classes())
	assert.Equal(t, model.Assignment{1, 1, 1, 1, 0, 0, 0, 0}, c.Assignment())
	assert.Equal(t, LabelHistogram{1: 4}, c.Histogram(0))
	assert.Equal(t, LabelHistogram{0: 4}, c.Histogram(1))
	assert.Equal(t, []uint32{4, 5, 6, 7}, c.Members(0).ToArray())
	assert.Equal(t, 4, c.Size(1))
	assert.Equal(t, 1.0, c.Purity())

	label, ok := c.Plurality(0)
	require.True(t, ok)
	assert.Equal(t, 1, label)
}

func TestBuild_Errors(t *testing.T) {
	rows, _ := testutil.TwoBlobs()
	m := testutil.Matrix(t, rows)
	centroids, err := model.CentroidSetFromRows([][]float32{{0, 0}})
	require.NoError(t, err)

	_, err = Build(m, centroids, []int{0, 1}, 0)
	assert.ErrorIs(t, err, ErrLabelCount)

	_, err = Build(m, centroids, []int{0, 0, 0, 0, 0, 0, 0, -1}, 0)
	assert.ErrorIs(t, err, ErrNegativeLabel)

	_, err = Build(m, centroids, []int{0, 0, 0, 0, 0, 0, 0, 10}, 10)
	assert.ErrorIs(t, err, ErrLabelOutOfRange)
}

func TestAccuracy_ByCluster(t *testing.T) {
	// cluster 0: labels 0,0,0,1 ; cluster 1: labels 1,1 ; cluster 2: empty
	c, err := FromAssignment(model.Assignment{0, 0, 0, 0, 1, 1}, []int{0, 0, 0, 1, 1, 1}, 3, 3)
	require.NoError(t, err)

	acc := c.Accuracy(AccuracyByCluster)
	require.Len(t, acc, 3)
	assert.Equal(t, []float64{75, 25, 0}, acc[0])
	assert.Equal(t, []float64{0, 100, 0}, acc[1])
	assert.Equal(t, []float64{0, 0, 0}, acc[2])
	assert.InDelta(t, 5.0/6.0, c.Purity(), 1e-12)
}

func TestAccuracy_ByPluralityLabelOverwrites(t *testing.T) {
	// cluster 0: labels 2,2,0 -> row 2 ; cluster 1: labels 2,1 -> row 1 (tie, smaller label)
	// cluster 2: labels 2,2,2,2,3 -> row 2 again, overwriting columns 2 and 3
	assignment := model.Assignment{0, 0, 0, 1, 1, 2, 2, 2, 2, 2}
	labels := []int{2, 2, 0, 2, 1, 2, 2, 2, 2, 3}
	c, err := FromAssignment(assignment, labels, 3, 4)
	require.NoError(t, err)

	acc := c.Accuracy(AccuracyByPluralityLabel)
	require.Len(t, acc, 3)
	assert.Equal(t, []float64{0, 0, 0, 0}, acc[0])
	assert.Equal(t, []float64{0, 50, 50, 0}, acc[1])
	// column 0 survives from cluster 0, columns 2 and 3 come from cluster 2
	assert.InDelta(t, 100.0/3.0, acc[2][0], 1e-9)
	assert.Equal(t, 0.0, acc[2][1])
	assert.InDelta(t, 80.0, acc[2][2], 1e-9)
	assert.InDelta(t, 20.0, acc[2][3], 1e-9)
}

func TestAccuracy_PluralityLabelBeyondK(t *testing.T) {
	c, err := FromAssignment(model.Assignment{0, 0}, []int{9, 9}, 1, 10)
	require.NoError(t, err)

	acc := c.Accuracy(AccuracyByPluralityLabel)
	assert.Equal(t, make([]float64, 10), acc[0])
}

func TestConsensus_ReturnsCopies(t *testing.T) {
	c, err := FromAssignment(model.Assignment{0, 1}, []int{0, 1}, 2, 0)
	require.NoError(t, err)

	h := c.Histogram(0)
	h[5] = 100
	assert.Equal(t, LabelHistogram{0: 1}, c.Histogram(0))

	b := c.Members(0)
	b.Add(42)
	assert.Equal(t, 1, c.Size(0))

	a := c.Assignment()
	a[0] = 1
	assert.Equal(t, model.Assignment{0, 1}, c.Assignment())
}

func TestParseAccuracyMode(t *testing.T) {
	for _, mode := range []AccuracyMode{AccuracyByCluster, AccuracyByPluralityLabel} {
		got, err := ParseAccuracyMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}
	_, err := ParseAccuracyMode("diagonal")
	assert.Error(t, err)
}
