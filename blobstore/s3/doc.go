// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("runs/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = engine.Dump(ctx, store, "groups.mixs.zst", "assign.mixs.zst")
//
// # Features
//
//   - Streaming reads via GetObject
//   - Streaming multipart uploads with CRC32C checksums
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
