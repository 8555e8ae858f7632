package mixgo

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/mixgo/blobstore"
	"github.com/hupe1980/mixgo/internal/stream"
)

type compressedReader struct {
	io.ReadCloser
	blob blobstore.Blob
}

func (r *compressedReader) Close() error {
	return errors.Join(r.ReadCloser.Close(), r.blob.Close())
}

// OpenBlob opens name for reading, decompressing by file suffix
// (.lz4, .zst, .zstd).
func OpenBlob(ctx context.Context, store blobstore.BlobStore, name string) (io.ReadCloser, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	r, err := stream.Decompress(b, stream.CompressionOf(name))
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return &compressedReader{ReadCloser: r, blob: b}, nil
}

// WriteBlob creates name, compressing by file suffix, and runs write
// against it. The blob is committed only if write succeeds.
func WriteBlob(ctx context.Context, store blobstore.BlobStore, name string, write func(io.Writer) error) (err error) {
	b, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = b.Abort()
		}
	}()

	w, err := stream.Compress(b, stream.CompressionOf(name))
	if err != nil {
		return err
	}
	if err = write(w); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}
	return b.Close()
}
