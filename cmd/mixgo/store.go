package main

import (
	"context"
	"fmt"

	"github.com/hupe1980/mixgo/blobstore"
	"github.com/hupe1980/mixgo/blobstore/minio"
	"github.com/hupe1980/mixgo/blobstore/s3"
	"github.com/spf13/pflag"
)

type storeFlags struct {
	minioEndpoint  string
	minioAccessKey string
	minioSecretKey string
	minioSecure    bool
	s3Region       string
	s3Endpoint     string
	s3PathStyle    bool
}

func (f *storeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.minioEndpoint, "minio-endpoint", "", "MinIO host:port for minio:// locations")
	fs.StringVar(&f.minioAccessKey, "minio-access-key", "", "MinIO access key (default from environment)")
	fs.StringVar(&f.minioSecretKey, "minio-secret-key", "", "MinIO secret key (default from environment)")
	fs.BoolVar(&f.minioSecure, "minio-secure", false, "use HTTPS for MinIO")
	fs.StringVar(&f.s3Region, "s3-region", "", "AWS region for s3:// locations")
	fs.StringVar(&f.s3Endpoint, "s3-endpoint", "", "custom S3 endpoint")
	fs.BoolVar(&f.s3PathStyle, "s3-path-style", false, "use path-style S3 addressing")
}

// open returns the store holding loc.
func (f *storeFlags) open(ctx context.Context, loc blobstore.Location) (blobstore.BlobStore, error) {
	switch loc.Scheme {
	case "file":
		return blobstore.NewLocalStore(loc.Dir), nil
	case "s3":
		return s3.New(ctx, loc.Bucket,
			s3.WithPrefix(loc.Dir),
			s3.WithRegion(f.s3Region),
			s3.WithEndpoint(f.s3Endpoint),
			s3.WithUsePathStyle(f.s3PathStyle),
		)
	case "minio":
		if f.minioEndpoint == "" {
			return nil, fmt.Errorf("%s: --minio-endpoint is required for minio:// locations", loc)
		}
		opts := []minio.Option{minio.WithPrefix(loc.Dir), minio.WithSecure(f.minioSecure)}
		if f.minioAccessKey != "" {
			opts = append(opts, minio.WithCredentials(f.minioAccessKey, f.minioSecretKey))
		}
		return minio.New(f.minioEndpoint, loc.Bucket, opts...)
	default:
		return nil, fmt.Errorf("%s: unsupported scheme %q", loc, loc.Scheme)
	}
}

// resolve parses and opens a location.
func (f *storeFlags) resolve(ctx context.Context, location string) (blobstore.BlobStore, blobstore.Location, error) {
	loc, err := blobstore.ParseLocation(location)
	if err != nil {
		return nil, loc, err
	}
	store, err := f.open(ctx, loc)
	return store, loc, err
}

func sameStore(a, b blobstore.Location) bool {
	return a.Scheme == b.Scheme && a.Bucket == b.Bucket && a.Dir == b.Dir
}
