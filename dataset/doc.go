// Package dataset reads labelled image sets in the IDX format used by MNIST.
//
// Image files start with the big-endian header (magic 0x803, count, rows,
// cols) followed by one unsigned byte per pixel; label files with (magic
// 0x801, count) followed by one byte per label. Pixels are scaled to [0,1].
// Gzip-compressed files are recognised by their header and inflated
// transparently.
package dataset
