package storage

import (
	"context"
	"io"
)

// Object is a blob to be stored.
type Object struct {
	Path        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Storage uploads, removes and addresses blobs.
type Storage interface {
	// Upload stores obj in bucket and fails if the path is already taken.
	Upload(ctx context.Context, bucket Bucket, obj Object) error
	// Remove deletes the given paths from bucket. Missing paths are not an error.
	Remove(ctx context.Context, bucket Bucket, paths []string) error
	// PublicURL returns the URL under which path in bucket is served.
	PublicURL(bucket Bucket, path string) string
}
