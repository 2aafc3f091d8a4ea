package restart

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/kclust/internal/kmeans"
	"github.com/hupe1980/kclust/model"
	"github.com/hupe1980/kclust/resource"
	"github.com/hupe1980/kclust/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriver_Run(t *testing.T) {
	vecs, _ := testutil.NewRNG(1).LabelledBlobs(90, 6, 3, 0.05)
	m := testutil.Matrix(t, vecs)

	out, err := NewDriver(WithWorkers(3)).Run(context.Background(), m, 3, 4, 5, 42)
	require.NoError(t, err)
	require.Len(t, out.Results, 5)
	assert.Empty(t, out.Errors)
	for i, r := range out.Results {
		require.NotNil(t, r)
		assert.Equal(t, i, r.Restart)
		assert.Equal(t, 3, r.Centroids.Len())
		assert.GreaterOrEqual(t, r.Inertia, 0.0)
	}
}

func TestDriver_IndependentOfWorkerCount(t *testing.T) {
	vecs, _ := testutil.NewRNG(2).LabelledBlobs(120, 8, 4, 0.1)
	m := testutil.Matrix(t, vecs)

	serial, err := NewDriver(WithWorkers(1)).Run(context.Background(), m, 4, 5, 6, 7)
	require.NoError(t, err)
	parallel, err := NewDriver(WithWorkers(6)).Run(context.Background(), m, 4, 5, 6, 7)
	require.NoError(t, err)

	for i := range serial.Results {
		assert.Equal(t, serial.Results[i].Inertia, parallel.Results[i].Inertia)
		assert.True(t, serial.Results[i].Centroids.Equal(parallel.Results[i].Centroids))
	}
}

func TestDriver_MatchesSingleRestart(t *testing.T) {
	vecs, _ := testutil.NewRNG(3).LabelledBlobs(60, 4, 3, 0.1)
	m := testutil.Matrix(t, vecs)

	out, err := NewDriver(WithWorkers(2)).Run(context.Background(), m, 3, 3, 3, 11)
	require.NoError(t, err)

	want, err := kmeans.Run(context.Background(), m, 3, 3, kmeans.NewSource(11, 2))
	require.NoError(t, err)
	assert.True(t, want.Centroids.Equal(out.Results[2].Centroids))
}

func TestDriver_FailuresAreCollected(t *testing.T) {
	m := testutil.Matrix(t, [][]float32{{0, 0}, {1, 1}})

	out, err := NewDriver(WithWorkers(2)).Run(context.Background(), m, 3, 1, 4, 1)
	require.NoError(t, err)
	assert.Empty(t, out.Succeeded())
	require.Len(t, out.Errors, 4)
	for i, e := range out.Errors {
		var re *Error
		require.ErrorAs(t, e, &re)
		assert.Equal(t, i, re.Restart)
		assert.ErrorIs(t, e, kmeans.ErrNotEnoughPoints)
	}
}

func TestDriver_MemoryLimit(t *testing.T) {
	vecs := testutil.NewRNG(4).UniformVectors(100, 8)
	m := testutil.Matrix(t, vecs)
	rc := resource.NewController(resource.Config{MaxWorkers: 2, MemoryLimitBytes: 16})

	out, err := NewDriver(WithResourceController(rc)).Run(context.Background(), m, 2, 1, 2, 1)
	require.NoError(t, err)
	require.Len(t, out.Errors, 2)
	assert.ErrorIs(t, out.Errors[0], resource.ErrMemoryLimitExceeded)
	assert.Zero(t, rc.MemoryUsage())
}

func TestDriver_ResourceSlotsReleased(t *testing.T) {
	vecs := testutil.NewRNG(5).UniformVectors(40, 4)
	m := testutil.Matrix(t, vecs)
	rc := resource.NewController(resource.Config{MaxWorkers: 1})

	out, err := NewDriver(WithWorkers(4), WithResourceController(rc)).Run(context.Background(), m, 2, 2, 4, 1)
	require.NoError(t, err)
	assert.Len(t, out.Succeeded(), 4)
	assert.True(t, rc.TryAcquireWorker())
	assert.Zero(t, rc.MemoryUsage())
}

func TestDriver_PanicBecomesError(t *testing.T) {
	out, err := NewDriver(WithWorkers(1)).Run(context.Background(), nil, 2, 1, 2, 1)
	require.NoError(t, err)
	require.Len(t, out.Errors, 2)
	assert.ErrorContains(t, out.Errors[0], "panic")
	assert.Empty(t, out.Succeeded())
}

func TestDriver_Canceled(t *testing.T) {
	vecs := testutil.NewRNG(6).UniformVectors(40, 4)
	m := testutil.Matrix(t, vecs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := NewDriver(WithWorkers(2)).Run(ctx, m, 2, 5, 3, 1)
	require.NoError(t, err)
	assert.Len(t, out.Errors, 3)
	assert.ErrorIs(t, out.Errors[0], context.Canceled)
}

func TestDriver_Observer(t *testing.T) {
	vecs := testutil.NewRNG(7).UniformVectors(30, 3)
	m := testutil.Matrix(t, vecs)

	var calls, failures atomic.Int32
	obs := func(restart int, res *model.RestartResult, elapsed time.Duration, err error) {
		calls.Add(1)
		if err != nil {
			failures.Add(1)
		}
		assert.GreaterOrEqual(t, elapsed, time.Duration(0))
	}

	_, err := NewDriver(WithWorkers(2), WithObserver(obs)).Run(context.Background(), m, 2, 1, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, int32(5), calls.Load())
	assert.Zero(t, failures.Load())
}

func TestWorkingSetBytes(t *testing.T) {
	assert.Equal(t, int64(2*2*3*4+2*3*8+10*24), WorkingSetBytes(10, 3, 2))
}
