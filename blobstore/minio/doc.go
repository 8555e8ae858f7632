// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible storage such as Ceph,
// SeaweedFS and Garage, without pulling in the AWS SDK.
//
// # Basic Usage
//
//	store, err := minioblob.New("localhost:9000", "runs",
//	    minioblob.WithCredentials("minioadmin", "minioadmin"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	b, err := store.Open(ctx, "model.yaml")
package minio
