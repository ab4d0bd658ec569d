// Package blobstore abstracts where shot records are persisted.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, atomic writes, mmap reads
//   - MemoryStore: in-process map for tests
//   - s3.Store: Amazon S3 with range reads and managed uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// All implementations are safe for concurrent use. Writes to different
// names never contend; callers serialize writes to the same name.
package blobstore
