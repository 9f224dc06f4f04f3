package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrInvalidPath = errors.New("invalid storage path")

// LocalStorage stores blobs on the local filesystem below root.
// Files are served by the HTTP layer under baseURL.
type LocalStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage creates a local storage instance, creating root if needed
func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	if root == "" {
		root = "./data/storage"
	}

	err := os.MkdirAll(root, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Root returns the directory blobs are stored in
func (s *LocalStorage) Root() string {
	return s.root
}

// resolve maps a storage path to a filesystem path, refusing anything that escapes root
func (s *LocalStorage) resolve(p string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	if clean == "/" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func (s *LocalStorage) Exists(ctx context.Context, p string) (bool, error) {
	full, err := s.resolve(p)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (s *LocalStorage) MakeDirectory(ctx context.Context, p string, perm fs.FileMode, recursive bool) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}

	if recursive {
		err = os.MkdirAll(full, perm)
	} else {
		err = os.Mkdir(full, perm)
	}
	if err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return nil
}

func (s *LocalStorage) Write(ctx context.Context, p string, content io.Reader, contentType string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}

	file, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	_, err = io.Copy(file, content)
	closeErr := file.Close()
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	return nil
}

func (s *LocalStorage) DeleteDirectory(ctx context.Context, p string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}

	err = os.RemoveAll(full)
	if err != nil {
		return fmt.Errorf("failed to delete directory: %w", err)
	}

	return nil
}

func (s *LocalStorage) URL(p string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, escapePath(p))
}

func (s *LocalStorage) PathFromURL(url string) (string, bool) {
	return trimPrefixURL(s.baseURL, url)
}
