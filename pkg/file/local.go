package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage keeps objects on the local filesystem under baseDir.
type LocalStorage struct {
	baseDir string
	baseURL string
}

// NewLocalStorage creates baseDir if needed and confines every object to it.
func NewLocalStorage(baseDir, baseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetAbsolutePath, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	return &LocalStorage{baseDir: abs, baseURL: baseURL}, nil
}

// Put writes body to a temporary file and renames it into place, so readers
// never observe a partial export.
func (s *LocalStorage) Put(ctx context.Context, path, contentType string, body io.Reader) (*Object, error) {
	key, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	dst := s.resolve(key)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: body})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}

	return &Object{
		Path:        key,
		ContentType: contentType,
		Size:        size,
		URL:         s.URL(key),
	}, nil
}

func (s *LocalStorage) Exists(_ context.Context, path string) bool {
	key, err := cleanPath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(s.resolve(key))
	return err == nil && !info.IsDir()
}

func (s *LocalStorage) Delete(_ context.Context, path string) error {
	key, err := cleanPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(s.resolve(key)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, key)
		}
		return fmt.Errorf("%w: %v", ErrFailedToDeleteFile, err)
	}
	return nil
}

// URL returns the baseURL joined with path. Without baseURL it is the
// absolute file path.
func (s *LocalStorage) URL(path string) string {
	key, err := cleanPath(path)
	if err != nil {
		return ""
	}
	if s.baseURL == "" {
		return s.resolve(key)
	}
	return joinURL(s.baseURL, key)
}

func (s *LocalStorage) resolve(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(strings.TrimPrefix(key, "/")))
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
