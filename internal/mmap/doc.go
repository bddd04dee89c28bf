// Package mmap provides read-only memory-mapped file access.
//
// The local blob store maps persisted vector files so that decoding reads
// straight from the page cache instead of through an intermediate buffer.
//
//	m, err := mmap.Open("store.tvec")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// Close is idempotent. Callers must not touch Bytes() after Close returns.
package mmap
