// Package objstore moves whole archives between the local filesystem and
// S3-compatible object storage. Archives are single objects; there is no
// partial or ranged access, so the interface is deliberately small.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Store reads and writes whole objects by key.
type Store interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// IsRemote reports whether the path names an object store location
// rather than a local file.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// Open resolves an s3://bucket/key URI into a store and the object key.
func Open(uri string) (Store, string, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return nil, "", fmt.Errorf("objstore: unsupported scheme in %q", uri)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return nil, "", fmt.Errorf("objstore: malformed S3 URI %q, want s3://bucket/key", uri)
	}
	store, err := NewS3(S3Config{
		Bucket:   bucket,
		Region:   os.Getenv("AWS_REGION"),
		Endpoint: os.Getenv("TSZIP_S3_ENDPOINT"),
	})
	if err != nil {
		return nil, "", err
	}
	return store, key, nil
}

// Fetch downloads a remote object to a local file and returns its path.
// The caller removes the file when done.
func Fetch(ctx context.Context, uri string) (string, error) {
	store, key, err := Open(uri)
	if err != nil {
		return "", err
	}
	defer store.Close()
	data, err := store.Read(ctx, key)
	if err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp("", ".tszip-fetch-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// Push uploads a local file to a remote object.
func Push(ctx context.Context, path, uri string) error {
	store, key, err := Open(uri)
	if err != nil {
		return err
	}
	defer store.Close()
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return store.Write(ctx, key, data)
}

// ErrNotFound is returned by Read when the object does not exist.
var ErrNotFound = errors.New("objstore: object not found")
