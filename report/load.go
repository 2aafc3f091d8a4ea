package report

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/hupe1980/kclust/blobstore"
	"github.com/hupe1980/kclust/codec"
)

// Load reads the report stored below prefix. The compression is taken from
// the blob name; c may be nil for codec.Default.
func Load(ctx context.Context, store blobstore.BlobStore, prefix string, c codec.Codec) (*Report, error) {
	if c == nil {
		c = codec.Default
	}

	base := path.Join(prefix, ReportName)
	names, err := store.List(ctx, base)
	if err != nil {
		return nil, err
	}

	key, compression, found := "", CompressionNone, false
	for _, name := range names {
		for _, cand := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
			if name == base+cand.Extension() {
				key, compression, found = name, cand, true
				break
			}
		}
		if found {
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("report: %s: %w", base, blobstore.ErrNotFound)
	}

	data, err := blobstore.ReadAll(ctx, store, key)
	if err != nil {
		return nil, err
	}
	if compression != CompressionNone {
		if data, err = DecompressAll(data, compression); err != nil {
			return nil, fmt.Errorf("report: %s: %w", key, err)
		}
	}

	var r Report
	if err := c.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("report: decode %s: %w", key, err)
	}
	if r.Version > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, r.Version)
	}
	return &r, nil
}

// Runs lists the prefixes below root that contain a report.
func Runs(ctx context.Context, store blobstore.BlobStore, root string) ([]string, error) {
	names, err := store.List(ctx, root)
	if err != nil {
		return nil, err
	}
	var runs []string
	for _, name := range names {
		dir, file := path.Split(name)
		if strings.HasPrefix(file, ReportName) {
			runs = append(runs, strings.TrimSuffix(dir, "/"))
		}
	}
	return runs, nil
}
