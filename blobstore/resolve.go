package blobstore

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Location is a parsed blob location such as "s3://bucket/dir/file" or a
// local path.
type Location struct {
	// Scheme is "file", "s3" or "minio".
	Scheme string
	// Bucket is empty for local paths.
	Bucket string
	// Dir is the local directory or object key prefix.
	Dir string
	// Name is the blob name within Dir.
	Name string
}

// ParseLocation splits a location into scheme, bucket, directory and name.
func ParseLocation(loc string) (Location, error) {
	scheme, rest, ok := strings.Cut(loc, "://")
	if !ok {
		dir, name := filepath.Split(loc)
		if name == "" {
			return Location{}, fmt.Errorf("location %q names a directory", loc)
		}
		if dir == "" {
			dir = "."
		}
		return Location{Scheme: "file", Dir: filepath.Clean(dir), Name: name}, nil
	}

	switch scheme {
	case "file":
		return ParseLocation(rest)
	case "s3", "minio":
	default:
		return Location{}, fmt.Errorf("unsupported scheme %q in %q", scheme, loc)
	}

	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return Location{}, fmt.Errorf("location %q must be %s://bucket/key", loc, scheme)
	}
	dir, name := "", key
	if i := strings.LastIndex(key, "/"); i >= 0 {
		dir, name = key[:i], key[i+1:]
	}
	return Location{Scheme: scheme, Bucket: bucket, Dir: dir, Name: name}, nil
}

// String formats the location.
func (l Location) String() string {
	if l.Scheme == "file" {
		return filepath.Join(l.Dir, l.Name)
	}
	if l.Dir == "" {
		return l.Scheme + "://" + l.Bucket + "/" + l.Name
	}
	return l.Scheme + "://" + l.Bucket + "/" + l.Dir + "/" + l.Name
}
