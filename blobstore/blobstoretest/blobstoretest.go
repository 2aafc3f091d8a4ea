// Package blobstoretest runs a shared set of checks against a
// blobstore.BlobStore: raw reads at the blob boundary, aborted uploads, and a
// report and dataset round trip through the store.
package blobstoretest

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kclust"
	"github.com/hupe1980/kclust/blobstore"
	"github.com/hupe1980/kclust/dataset"
	"github.com/hupe1980/kclust/report"
	"github.com/hupe1980/kclust/testutil"
)

// Run exercises store. Blob names are relative, so callers that share a
// bucket should scope store to a fresh prefix.
func Run(t *testing.T, store blobstore.BlobStore) {
	t.Run("ReadAt", func(t *testing.T) { testReadAt(t, store) })
	t.Run("Abort", func(t *testing.T) { testAbort(t, store) })
	t.Run("Report", func(t *testing.T) { testReport(t, store) })
	t.Run("Dataset", func(t *testing.T) { testDataset(t, store) })
}

func testReadAt(t *testing.T, store blobstore.BlobStore) {
	ctx := context.Background()
	data := []byte("0123456789")
	require.NoError(t, store.Put(ctx, "raw/digits", data))

	b, err := store.Open(ctx, "raw/digits")
	require.NoError(t, err)
	defer b.Close()
	require.Equal(t, int64(len(data)), b.Size())

	buf := make([]byte, 4)
	n, err := b.ReadAt(ctx, buf, 3)
	require.NoError(t, err)
	assert.Equal(t, "3456", string(buf[:n]))

	// A read crossing the end returns the tail together with io.EOF.
	n, err = b.ReadAt(ctx, buf, 8)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "89", string(buf[:n]))

	n, err = b.ReadAt(ctx, buf, int64(len(data)))
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, n)

	_, err = b.ReadRange(ctx, int64(len(data)), 4)
	assert.ErrorIs(t, err, io.EOF)

	rc, err := b.ReadRange(ctx, 6, 100)
	require.NoError(t, err)
	tail, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "6789", string(tail))

	_, err = store.Open(ctx, "raw/missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "raw/digits"))
	_, err = store.Open(ctx, "raw/digits")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func testAbort(t *testing.T, store blobstore.BlobStore) {
	ctx := context.Background()

	w, err := store.Create(ctx, "abort/partial")
	require.NoError(t, err)
	_, err = w.Write(bytes.Repeat([]byte{7}, 1<<16))
	require.NoError(t, err)

	a, ok := w.(blobstore.Aborter)
	require.True(t, ok, "%T does not support Abort", w)
	require.NoError(t, a.Abort())

	_, err = store.Open(ctx, "abort/partial")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	names, err := store.List(ctx, "abort/")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func testReport(t *testing.T, store blobstore.BlobStore) {
	ctx := context.Background()

	rows, labels := testutil.TwoBlobs()
	tr, err := kclust.New(kclust.Config{K: 2, NTries: 2, NIter: 5, Seed: 3})
	require.NoError(t, err)
	mdl, err := tr.Fit(ctx, testutil.Matrix(t, rows), labels)
	require.NoError(t, err)

	r := report.New(mdl)
	keys, err := report.NewWriter(store, report.WithCompression(report.CompressionZSTD)).Write(ctx, "runs/r1", r)
	require.NoError(t, err)

	names, err := store.List(ctx, "runs/r1/")
	require.NoError(t, err)
	assert.ElementsMatch(t, keys, names)

	loaded, err := report.Load(ctx, store, "runs/r1", nil)
	require.NoError(t, err)
	assert.Equal(t, r.RunID, loaded.RunID)
	assert.Equal(t, r.Centroids, loaded.Centroids)
	assert.Equal(t, r.Evaluations["train"].Accuracy, loaded.Evaluations["train"].Accuracy)

	restored, err := loaded.Model()
	require.NoError(t, err)
	assert.True(t, restored.Centroids().Equal(mdl.Centroids()))

	runs, err := report.Runs(ctx, store, "runs")
	require.NoError(t, err)
	assert.Contains(t, runs, "runs/r1")
}

func testDataset(t *testing.T, store blobstore.BlobStore) {
	ctx := context.Background()

	const count, side = 64, 4
	pixels := make([]byte, count*side*side)
	idxLabels := make([]byte, count)
	for i := range count {
		idxLabels[i] = byte(i % 3)
		for j := range side * side {
			pixels[i*side*side+j] = byte(i + j)
		}
	}

	var images bytes.Buffer
	zw := gzip.NewWriter(&images)
	require.NoError(t, binary.Write(zw, binary.BigEndian, []uint32{dataset.ImagesMagic, count, side, side}))
	_, err := zw.Write(pixels)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, store.Put(ctx, "data/images.idx.gz", images.Bytes()))

	var lbls bytes.Buffer
	require.NoError(t, binary.Write(&lbls, binary.BigEndian, []uint32{dataset.LabelsMagic, count}))
	lbls.Write(idxLabels)
	require.NoError(t, store.Put(ctx, "data/labels.idx", lbls.Bytes()))

	ds, err := dataset.Load(ctx, store, "data/images.idx.gz", "data/labels.idx")
	require.NoError(t, err)
	assert.Equal(t, count, ds.Matrix.Len())
	assert.Equal(t, side, ds.Rows)
	assert.Equal(t, side, ds.Cols)
	require.Len(t, ds.Labels, count)
	assert.Equal(t, []int{0, 1, 2, 0}, ds.Labels[:4])
}
