// Package storage is where corpus files come from and composed pieces go:
// a local directory or an S3 bucket, behind one FileStore interface.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// FileStore reads and writes files by slash-separated path relative to the
// store root. Implementations are safe for concurrent use.
type FileStore interface {
	// Read opens path. Missing files yield an error wrapping os.ErrNotExist.
	// The caller closes the reader.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or truncates path, making parent directories as needed.
	// Data is committed when the writer is closed.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes path. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether path exists.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the paths of all files under dir, sorted. An empty dir
	// lists the whole store.
	List(ctx context.Context, dir string) ([]string, error)
}

// Location is a parsed corpus or output location.
type Location struct {
	Bucket string // empty for the local filesystem
	Path   string
}

// IsS3 reports whether the location names an S3 bucket.
func (l Location) IsS3() bool { return l.Bucket != "" }

func (l Location) String() string {
	if l.IsS3() {
		return "s3://" + l.Bucket + "/" + l.Path
	}
	return l.Path
}

// ParseLocation accepts "s3://bucket/prefix" or a filesystem path.
func ParseLocation(s string) (Location, error) {
	rest, ok := strings.CutPrefix(s, "s3://")
	if !ok {
		if s == "" {
			return Location{}, fmt.Errorf("storage: empty location")
		}
		return Location{Path: s}, nil
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("storage: no bucket in %q", s)
	}
	return Location{Bucket: bucket, Path: strings.Trim(prefix, "/")}, nil
}
