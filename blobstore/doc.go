// Package blobstore provides the storage abstraction for model definitions,
// row streams, group dumps and assignment dumps.
//
// BlobStore is the interface for reading and writing named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, atomic writes via rename
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 with multipart streaming uploads
//   - minio.Store: MinIO and other S3-compatible storage
//
// Use Resolve to pick a store from a location such as "s3://bucket/key".
package blobstore
