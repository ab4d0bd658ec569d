// Package mmap maps record files read-only into memory so their trace
// payloads can be decoded without an intermediate copy.
//
// Unix platforms use mmap(2) with madvise(2) hints; Windows uses
// CreateFileMapping/MapViewOfFile and ignores hints.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but slices
// returned by Bytes or Slice must not be used after it returns.
package mmap
