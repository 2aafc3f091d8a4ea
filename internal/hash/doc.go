// Package hash provides the CRC32-Castagnoli checksum used to validate
// uploads.
package hash
