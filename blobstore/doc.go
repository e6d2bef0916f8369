// Package blobstore provides storage abstraction for clustering artifacts.
//
// Store is the interface for reading and writing artifacts produced by a
// clustering run: exported label files, run manifests and the CURRENT run
// pointer. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: In-memory, for tests and ephemeral runs
//   - LocalStore: Local filesystem with atomic renames
//   - s3.Store: Amazon S3 with range reads and parallel multipart uploads
//   - minio.Store: MinIO and other S3-compatible object stores
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)            // Open for reading
//	    Create(ctx, name) (WritableBlob, error)  // Create for streaming writes
//	    Put(ctx, name, data) error               // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
