// Package blobstore provides the storage abstraction used to persist vector
// stores outside a plain local path.
//
// # Built-in Implementations
//
//   - LocalStore: local directory with mmap reads and rename-on-close writes
//   - MemoryStore: in-process map, for tests
//   - s3.Store: Amazon S3 (and compatible endpoints) via aws-sdk-go-v2
//   - minio.Store: MinIO and S3-compatible storage via minio-go
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Missing blobs are reported with an error matching ErrNotFound.
package blobstore
