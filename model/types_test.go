package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeatureMatrix(t *testing.T) {
	m, err := NewFeatureMatrix([][]float32{{0, 1}, {2, 3}, {4, 5}})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 2, m.Dim())
	assert.Equal(t, []float32{2, 3}, m.Row(1))
}

func TestNewFeatureMatrix_Errors(t *testing.T) {
	_, err := NewFeatureMatrix(nil)
	assert.ErrorIs(t, err, ErrEmptyMatrix)

	_, err = NewFeatureMatrix([][]float32{{}})
	assert.ErrorIs(t, err, ErrEmptyMatrix)

	_, err = NewFeatureMatrix([][]float32{{0, 1}, {2}})
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 1, dm.Row)
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 1, dm.Actual)
}

func TestNewFeatureMatrix_CopiesRows(t *testing.T) {
	rows := [][]float32{{0, 1}}
	m, err := NewFeatureMatrix(rows)
	require.NoError(t, err)
	rows[0][0] = 9
	assert.Equal(t, float32(0), m.Row(0)[0])
}

func TestNewFeatureMatrixFromFlat(t *testing.T) {
	m, err := NewFeatureMatrixFromFlat([]float32{1, 2, 3, 4, 5, 6}, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []float32{4, 5, 6}, m.Row(1))

	_, err = NewFeatureMatrixFromFlat([]float32{1, 2, 3}, 2)
	assert.Error(t, err)

	_, err = NewFeatureMatrixFromFlat(nil, 2)
	assert.ErrorIs(t, err, ErrEmptyMatrix)
}

func TestRow_CannotGrowIntoNext(t *testing.T) {
	m, err := NewFeatureMatrix([][]float32{{0, 1}, {2, 3}})
	require.NoError(t, err)
	r := m.Row(0)
	_ = append(r, 42)
	assert.Equal(t, []float32{2, 3}, m.Row(1))
}

func TestMean(t *testing.T) {
	m, err := NewFeatureMatrix([][]float32{{0, 2}, {2, 4}})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 3}, m.Mean())
}

func TestCentroidSet(t *testing.T) {
	c := NewCentroidSet(2, 3)
	c.Set(1, []float32{1, 2, 3})
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 3, c.Dim())
	assert.Equal(t, []float32{0, 0, 0}, c.Centroid(0))
	assert.Equal(t, []float32{1, 2, 3}, c.Centroid(1))

	clone := c.Clone()
	assert.True(t, c.Equal(clone))
	clone.Set(0, []float32{9, 9, 9})
	assert.False(t, c.Equal(clone))

	rows := c.Rows()
	rows[1][0] = 7
	assert.Equal(t, float32(1), c.Centroid(1)[0])
}

func TestCentroidSetFromRows(t *testing.T) {
	c, err := CentroidSetFromRows([][]float32{{1, 1}, {2, 2}})
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 2}, c.Centroid(1))

	_, err = CentroidSetFromRows([][]float32{{1, 1}, {2}})
	assert.Error(t, err)
}

func TestAssignmentCounts(t *testing.T) {
	a := Assignment{0, 2, 2, 1, 2}
	assert.Equal(t, []int{1, 1, 3}, a.Counts(3))
	assert.Equal(t, []int{1, 1, 3, 0}, a.Counts(4))
}
