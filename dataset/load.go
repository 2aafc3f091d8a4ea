package dataset

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/kclust/blobstore"
	"github.com/hupe1980/kclust/resource"
)

// Dataset is a labelled image set.
type Dataset struct {
	*Images
	Labels []int
}

// readBufferSize is the read granularity against the store. Remote stores
// issue one ranged request per read.
const readBufferSize = 1 << 20

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	rc *resource.Controller
}

// WithResourceController throttles reads with rc's IO limit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *loadOptions) {
		o.rc = rc
	}
}

// Load reads an image file and, when labels is non-empty, the matching label
// file from store.
func Load(ctx context.Context, store blobstore.BlobStore, images, labels string, optFns ...Option) (*Dataset, error) {
	var o loadOptions
	for _, fn := range optFns {
		fn(&o)
	}

	var ds Dataset
	err := read(ctx, store, images, o.rc, func(b blobstore.Blob) error {
		img, err := ReadImages(newBlobReader(ctx, b, o.rc))
		ds.Images = img
		return err
	})
	if err != nil {
		return nil, err
	}
	if labels == "" {
		return &ds, nil
	}

	err = read(ctx, store, labels, o.rc, func(b blobstore.Blob) error {
		l, err := ReadLabels(newBlobReader(ctx, b, o.rc))
		ds.Labels = l
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(ds.Labels) != ds.Matrix.Len() {
		return nil, fmt.Errorf("dataset: %s has %d images but %s has %d labels", images, ds.Matrix.Len(), labels, len(ds.Labels))
	}
	return &ds, nil
}

func newBlobReader(ctx context.Context, b blobstore.Blob, rc *resource.Controller) io.Reader {
	r := resource.NewRateLimitedReader(ctx, blobstore.NewReader(ctx, b), rc)
	return bufio.NewReaderSize(r, int(min(b.Size(), readBufferSize))+1)
}

func read(ctx context.Context, store blobstore.BlobStore, name string, rc *resource.Controller, fn func(blobstore.Blob) error) error {
	b, err := store.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("dataset: open %s: %w", name, err)
	}
	defer b.Close()

	// float32 pixels take four times the bytes of an uncompressed file.
	mem := 4 * b.Size()
	if err := rc.AcquireMemory(mem); err != nil {
		return fmt.Errorf("dataset: %s: %w", name, err)
	}
	defer rc.ReleaseMemory(mem)

	if err := fn(b); err != nil {
		return fmt.Errorf("dataset: %s: %w", name, err)
	}
	return nil
}
