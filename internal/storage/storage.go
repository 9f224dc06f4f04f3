package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"strings"

	cfg "github.com/templui/catalog/internal/config"
)

// BlobStore is a hierarchical file store addressed by slash-separated paths.
type BlobStore interface {
	// Exists reports whether a file or directory exists at path
	Exists(ctx context.Context, path string) (bool, error)

	// MakeDirectory creates the directory at path. With recursive set, parents are created too.
	MakeDirectory(ctx context.Context, path string, perm fs.FileMode, recursive bool) error

	// Write stores content at path, replacing any existing file
	Write(ctx context.Context, path string, content io.Reader, contentType string) error

	// DeleteDirectory removes the directory at path and everything below it
	DeleteDirectory(ctx context.Context, path string) error

	// URL returns the public URL for a stored path
	URL(path string) string

	// PathFromURL reverses URL. ok is false when the URL does not belong to this store.
	PathFromURL(url string) (path string, ok bool)
}

// New creates the blob store selected by STORAGE_DRIVER.
func New(c *cfg.Config) (BlobStore, error) {
	switch c.StorageDriver {
	case "local":
		return NewLocalStorage(c.StoragePath, c.StorageURL)
	case "s3":
		return NewS3(c)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", c.StorageDriver)
	}
}

// escapePath percent-encodes each segment of a storage path for use in a URL
func escapePath(p string) string {
	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// trimPrefixURL strips base + "/" from rawURL and decodes the remaining path.
func trimPrefixURL(base, rawURL string) (string, bool) {
	prefix := strings.TrimSuffix(base, "/") + "/"
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	escaped := strings.TrimPrefix(rawURL, prefix)
	if escaped == "" {
		return "", false
	}
	p, err := url.PathUnescape(escaped)
	if err != nil {
		return "", false
	}
	return p, true
}
