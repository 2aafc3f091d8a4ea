package report

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/hupe1980/kclust"
	"github.com/hupe1980/kclust/blobstore"
	"github.com/hupe1980/kclust/codec"
	"github.com/hupe1980/kclust/resource"
)

// Blob names below a report prefix.
const (
	ReportName         = "report.json"
	CentroidsImageName = "centroids.png"
	SeededImageName    = "centroids_start.png"
)

// ErrInvalidName is returned for evaluation names that are not a single path
// element.
var ErrInvalidName = errors.New("report: invalid evaluation name")

// ValidateName checks that an evaluation name can be used as part of a blob
// name below the run prefix.
func ValidateName(name string) error {
	if name == "" || name == "." || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Writer persists reports to a blob store.
type Writer struct {
	store       blobstore.BlobStore
	codec       codec.Codec
	compression Compression
	rc          *resource.Controller
	logger      *kclust.Logger
	images      bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCodec sets the JSON codec. Defaults to codec.Default.
func WithCodec(c codec.Codec) WriterOption {
	return func(w *Writer) {
		w.codec = c
	}
}

// WithCompression compresses report.json. The blob name gets the matching
// extension.
func WithCompression(c Compression) WriterOption {
	return func(w *Writer) {
		w.compression = c
	}
}

// WithResourceController throttles writes with rc's IO limit.
func WithResourceController(rc *resource.Controller) WriterOption {
	return func(w *Writer) {
		w.rc = rc
	}
}

// WithLogger sets the logger.
func WithLogger(l *kclust.Logger) WriterOption {
	return func(w *Writer) {
		w.logger = l
	}
}

// WithImages toggles the PNG renderings. Enabled by default.
func WithImages(enabled bool) WriterOption {
	return func(w *Writer) {
		w.images = enabled
	}
}

// NewWriter creates a Writer.
func NewWriter(store blobstore.BlobStore, optFns ...WriterOption) *Writer {
	w := &Writer{
		store:  store,
		codec:  codec.Default,
		logger: kclust.NoopLogger(),
		images: true,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(w)
		}
	}
	if w.codec == nil {
		w.codec = codec.Default
	}
	if w.logger == nil {
		w.logger = kclust.NoopLogger()
	}
	return w
}

// Write stores r below prefix and returns the names of the written blobs:
//
//	<prefix>/report.json[.lz4|.zst]
//	<prefix>/accuracy-<evaluation>.txt
//	<prefix>/accuracy-<evaluation>.png
//	<prefix>/centroids.png, <prefix>/centroids_start.png
//
// Images are skipped when the centroid dimension is not a perfect square.
func (w *Writer) Write(ctx context.Context, prefix string, r *Report) ([]string, error) {
	var written []string
	put := func(name string, fn func(io.Writer) error) error {
		key := path.Join(prefix, name)
		if err := w.put(ctx, key, fn); err != nil {
			return err
		}
		written = append(written, key)
		return nil
	}

	names := make([]string, 0, len(r.Evaluations))
	for name := range r.Evaluations {
		if err := ValidateName(name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	data, err := w.codec.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("report: encode: %w", err)
	}
	if err := put(ReportName+w.compression.Extension(), func(dst io.Writer) error {
		if w.compression == CompressionNone {
			_, err := dst.Write(data)
			return err
		}
		bw := NewBlockWriter(dst, w.compression, 0)
		if _, err := bw.Write(data); err != nil {
			return err
		}
		return bw.Flush()
	}); err != nil {
		return written, err
	}

	for _, name := range names {
		acc := r.Evaluations[name].Accuracy
		if err := put("accuracy-"+name+".txt", func(dst io.Writer) error {
			_, err := io.WriteString(dst, FormatAccuracy(acc))
			return err
		}); err != nil {
			return written, err
		}
		if w.images {
			if err := put("accuracy-"+name+".png", func(dst io.Writer) error {
				return png.Encode(dst, HeatmapImage(acc, 0))
			}); err != nil {
				return written, err
			}
		}
	}

	if !w.images {
		sort.Strings(written)
		return written, nil
	}
	for name, rows := range map[string][][]float32{CentroidsImageName: r.Centroids, SeededImageName: r.Seeded} {
		if len(rows) == 0 {
			continue
		}
		img, err := CentroidImage(rows)
		if errors.Is(err, ErrNotSquare) {
			w.logger.DebugContext(ctx, "skipping centroid image", "name", name, "dimension", r.Dimension)
			continue
		}
		if err != nil {
			return written, err
		}
		if err := put(name, func(dst io.Writer) error { return png.Encode(dst, img) }); err != nil {
			return written, err
		}
	}
	sort.Strings(written)
	return written, nil
}

func (w *Writer) put(ctx context.Context, key string, fn func(io.Writer) error) (err error) {
	var size int64
	defer func() { w.logger.LogReport(ctx, key, size, err) }()

	blob, err := w.store.Create(ctx, key)
	if err != nil {
		return err
	}

	cw := &countingWriter{w: resource.NewRateLimitedWriter(ctx, blob, w.rc)}
	if err = fn(cw); err != nil {
		if a, ok := blob.(blobstore.Aborter); ok {
			_ = a.Abort()
		} else {
			_ = blob.Close()
		}
		return fmt.Errorf("report: write %s: %w", key, err)
	}
	if err = blob.Close(); err != nil {
		return fmt.Errorf("report: commit %s: %w", key, err)
	}
	size = cw.n
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// FormatAccuracy renders an accuracy matrix as tab separated percentages,
// one row per line.
func FormatAccuracy(acc [][]float64) string {
	var sb strings.Builder
	for _, row := range acc {
		for i, v := range row {
			if i > 0 {
				sb.WriteByte('\t')
			}
			sb.WriteString(strconv.FormatFloat(v, 'f', 2, 64))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
