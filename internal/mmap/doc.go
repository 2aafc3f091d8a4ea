// Package mmap maps local files read-only into memory.
//
// The local blob store opens datasets and reports through it, so large IDX
// image files are paged in on demand instead of being copied into the heap.
//
//	m, err := mmap.Open("train-images-idx3-ubyte")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix uses mmap(2) and madvise(2); Windows uses CreateFileMapping and
// MapViewOfFile, where Advise is a no-op.
//
// Close is idempotent. Slices returned by Bytes must not be used after Close.
package mmap
