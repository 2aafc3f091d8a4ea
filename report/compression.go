package report

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/kclust/internal/conv"
)

// Compression selects how report payloads are stored.
type Compression uint8

const (
	// CompressionNone stores plain JSON.
	CompressionNone Compression = 0
	// CompressionLZ4 stores LZ4 blocks (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD stores ZSTD blocks (smaller).
	CompressionZSTD Compression = 2
)

// ErrCorruptBlock is returned when a compressed payload cannot be decoded.
var ErrCorruptBlock = errors.New("report: corrupt compressed block")

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// Extension returns the file suffix appended to report.json.
func (c Compression) Extension() string {
	switch c {
	case CompressionLZ4:
		return ".lz4"
	case CompressionZSTD:
		return ".zst"
	default:
		return ""
	}
}

// ParseCompression parses "none", "lz4" or "zstd". The empty string is none.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd", "zst":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("report: unknown compression %q", s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Block format: [UncompressedSize uint32][CompressedSize uint32][Data...].
// CompressedSize == 0 means the block is stored raw.
const blockHeaderSize = 8

// compressBlock compresses one block and prepends the header. Blocks that do
// not shrink below 90% are stored raw.
func compressBlock(data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	default:
		return nil, fmt.Errorf("report: cannot compress blocks with %v", c)
	}

	rawSize, err := conv.IntToUint32(len(data))
	if err != nil {
		return nil, err
	}
	payload, size := compressed, uint32(len(compressed))
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		payload, size = data, 0
	}

	out := make([]byte, blockHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:], rawSize)
	binary.LittleEndian.PutUint32(out[4:], size)
	copy(out[blockHeaderSize:], payload)
	return out, nil
}

func decompressBlock(block []byte, uncompressedSize uint32, c Compression) ([]byte, error) {
	result := make([]byte, uncompressedSize)
	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(block, result)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptBlock, err)
		}
		if uint32(n) != uncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptBlock)
		}
		return result, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(block, result[:0])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptBlock, err)
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptBlock)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("report: cannot decompress blocks with %v", c)
	}
}

// BlockWriter buffers writes and emits them as compressed blocks.
type BlockWriter struct {
	w           io.Writer
	compression Compression
	blockSize   int
	buffer      *bytes.Buffer
	written     int64
}

// NewBlockWriter creates a BlockWriter. blockSize defaults to 256KiB.
func NewBlockWriter(w io.Writer, c Compression, blockSize int) *BlockWriter {
	if blockSize <= 0 {
		blockSize = 256 * 1024
	}
	return &BlockWriter{
		w:           w,
		compression: c,
		blockSize:   blockSize,
		buffer:      bytes.NewBuffer(make([]byte, 0, blockSize)),
	}
}

// Write buffers p, flushing full blocks.
func (c *BlockWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		space := c.blockSize - c.buffer.Len()
		if space <= 0 {
			if err := c.Flush(); err != nil {
				return total, err
			}
			space = c.blockSize
		}

		n, _ := c.buffer.Write(p[:min(len(p), space)])
		total += n
		p = p[n:]
	}
	return total, nil
}

// Flush compresses and writes the buffered block.
func (c *BlockWriter) Flush() error {
	if c.buffer.Len() == 0 {
		return nil
	}

	block, err := compressBlock(c.buffer.Bytes(), c.compression)
	if err != nil {
		return err
	}

	n, err := c.w.Write(block)
	c.written += int64(n)
	if err != nil {
		return err
	}
	c.buffer.Reset()
	return nil
}

// BytesWritten returns the number of compressed bytes written so far.
func (c *BlockWriter) BytesWritten() int64 {
	return c.written
}

// DecompressAll decodes a sequence of blocks written by BlockWriter.
func DecompressAll(data []byte, c Compression) ([]byte, error) {
	var out []byte
	for off := 0; off < len(data); {
		if off+blockHeaderSize > len(data) {
			return nil, fmt.Errorf("%w: truncated header at %d", ErrCorruptBlock, off)
		}
		uncompressedSize := binary.LittleEndian.Uint32(data[off:])
		compressedSize := binary.LittleEndian.Uint32(data[off+4:])
		off += blockHeaderSize

		if compressedSize == 0 {
			end := off + int(uncompressedSize)
			if end > len(data) {
				return nil, fmt.Errorf("%w: block extends beyond data", ErrCorruptBlock)
			}
			out = append(out, data[off:end]...)
			off = end
			continue
		}

		end := off + int(compressedSize)
		if end > len(data) {
			return nil, fmt.Errorf("%w: block extends beyond data", ErrCorruptBlock)
		}
		block, err := decompressBlock(data[off:end], uncompressedSize, c)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
		off = end
	}
	return out, nil
}
