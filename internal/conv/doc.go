// Package conv provides bounds-checked integer conversions for values read
// from or written to file headers.
package conv
