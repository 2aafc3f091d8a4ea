package dataset

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/hupe1980/kclust/internal/conv"
	"github.com/hupe1980/kclust/model"
)

// IDX magic numbers: two zero bytes, the unsigned byte type code 0x08 and the
// number of dimensions.
const (
	LabelsMagic uint32 = 0x00000801
	ImagesMagic uint32 = 0x00000803
)

// maxElements bounds the allocation a header may request.
const maxElements = 1 << 31

var (
	// ErrBadMagic is returned when the header does not match the expected file
	// kind.
	ErrBadMagic = errors.New("dataset: bad IDX magic number")
	// ErrTruncated is returned when the payload is shorter than the header
	// announces.
	ErrTruncated = errors.New("dataset: truncated IDX payload")
	// ErrTooLarge is returned for headers announcing more than 2^31 values.
	ErrTooLarge = errors.New("dataset: IDX payload too large")
)

// Images is a decoded IDX image file.
type Images struct {
	Rows, Cols int
	// Matrix holds one row per image with pixels scaled to [0,1].
	Matrix *model.FeatureMatrix
}

// ReadImages decodes an IDX image file. Gzip input is detected and inflated.
func ReadImages(r io.Reader) (*Images, error) {
	r, err := maybeGzip(r)
	if err != nil {
		return nil, err
	}

	var hdr [4]uint32
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("dataset: image header: %w", err)
	}
	if hdr[0] != ImagesMagic {
		return nil, fmt.Errorf("%w: got %#x, want %#x", ErrBadMagic, hdr[0], ImagesMagic)
	}

	count, rows, cols := uint64(hdr[1]), uint64(hdr[2]), uint64(hdr[3])
	dim := rows * cols
	if dim == 0 {
		return nil, fmt.Errorf("dataset: image size %dx%d", rows, cols)
	}
	if dim > maxElements || count > maxElements/dim {
		return nil, fmt.Errorf("%w: %d images of %dx%d", ErrTooLarge, count, rows, cols)
	}

	n, err := conv.Uint64ToInt(count * dim)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTooLarge, err)
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}

	data := make([]float32, len(raw))
	for i, b := range raw {
		data[i] = float32(b) / 255
	}

	m, err := model.NewFeatureMatrixFromFlat(data, int(dim))
	if err != nil {
		return nil, err
	}
	return &Images{Rows: int(rows), Cols: int(cols), Matrix: m}, nil
}

// ReadLabels decodes an IDX label file. Gzip input is detected and inflated.
func ReadLabels(r io.Reader) ([]int, error) {
	r, err := maybeGzip(r)
	if err != nil {
		return nil, err
	}

	var hdr [2]uint32
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("dataset: label header: %w", err)
	}
	if hdr[0] != LabelsMagic {
		return nil, fmt.Errorf("%w: got %#x, want %#x", ErrBadMagic, hdr[0], LabelsMagic)
	}
	if uint64(hdr[1]) > maxElements {
		return nil, fmt.Errorf("%w: %d labels", ErrTooLarge, hdr[1])
	}

	n, err := conv.Uint64ToInt(uint64(hdr[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTooLarge, err)
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}

	labels := make([]int, len(raw))
	for i, b := range raw {
		labels[i] = int(b)
	}
	return labels, nil
}

func maybeGzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("dataset: gzip: %w", err)
		}
		return zr, nil
	}
	return br, nil
}
