// Package mmap maps dataset files read-only into memory.
//
//	m, err := mmap.Open("points.txt")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix platforms use mmap(2) and madvise(2); Windows uses
// CreateFileMapping/MapViewOfFile and ignores access hints.
//
// A Mapping may be read concurrently. Close is idempotent, but callers must
// not touch the slice returned by Bytes after Close.
package mmap
