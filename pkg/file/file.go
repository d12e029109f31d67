package file

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// Object describes a stored artifact.
type Object struct {
	Path        string
	ContentType string
	Size        int64
	URL         string
}

// Storage persists export artifacts.
type Storage interface {
	// Put writes body under path, replacing any existing object.
	Put(ctx context.Context, path, contentType string, body io.Reader) (*Object, error)
	// Exists reports whether an object is stored under path.
	Exists(ctx context.Context, path string) bool
	// Delete removes the object stored under path.
	Delete(ctx context.Context, path string) error
	// URL returns the public URL for path.
	URL(path string) string
}

// cleanPath normalizes an object path to a slash separated relative key.
func cleanPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.Contains(p, "\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	for part := range strings.SplitSeq(p, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %s", ErrInvalidPath, p)
		}
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	return p, nil
}

func joinURL(base, p string) string {
	if base == "" {
		return p
	}
	return strings.TrimSuffix(base, "/") + "/" + p
}
