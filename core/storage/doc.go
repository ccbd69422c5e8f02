// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so the roster can keep timestamped copies of the
// ledger file in AWS S3 or a self-hosted MinIO instance before it is overwritten.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easy
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: bucket bootstrap (see EnsureBucket).
//   - PutObject: uploads a ledger snapshot.
//   - GetObject: retrieves a snapshot as a stream.
//   - ListObjects / RemoveObject: retention of old snapshots.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	err = storage.EnsureBucket(ctx, client, config.Bucket, config.Region)
package storage
