// Package blobstore is the storage abstraction for serialized string tables.
//
// A BlobStore is a flat, slash-separated namespace of immutable blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local file system; blobs are memory-mapped
//   - MemoryStore: in-memory, for tests
//   - CachingStore: whole-blob LRU in front of a remote store
//   - s3.Store, s3.DDBCommitStore: Amazon S3, optionally with DynamoDB commits
//   - minio.Store: MinIO and other S3-compatible services
//
// Blobs that already hold their content in memory implement Mappable, which
// lets strtab.LoadBlob view them without copying.
package blobstore
