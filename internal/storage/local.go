package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type LocalStore struct {
	basePath string
}

func NewLocalStorage(basePath string) *LocalStore {
	return &LocalStore{basePath: basePath}
}

func (l *LocalStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.OpenInRoot(l.basePath, key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("open %q: %w", key, ErrAssetNotFound)
		}
		return nil, err
	}
	return f, nil
}

// Exists takes a key and returns true if the file exists and can be opened
func (l *LocalStore) Exists(_ context.Context, key string) bool {
	f, err := os.OpenInRoot(l.basePath, filepath.Clean(key))
	if err != nil {
		return false
	}

	defer f.Close() // only checking existence
	return true
}

func (l *LocalStore) Save(_ context.Context, key string, body io.Reader) error {
	if err := os.MkdirAll(l.basePath, 0o755); err != nil {
		return fmt.Errorf("creating upload dir: %w", err)
	}

	path, err := l.resolve(key)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", key, err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("writing %q: %w", key, err)
	}

	return f.Close()
}

func (l *LocalStore) Delete(_ context.Context, key string) error {
	path, err := l.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete %q: %w", key, ErrAssetNotFound)
		}
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// resolve joins key onto the base path and verifies the result is still a
// descendant of it. A key that normalizes outside the root is rejected.
func (l *LocalStore) resolve(key string) (string, error) {
	root, err := filepath.Abs(l.basePath)
	if err != nil {
		return "", err
	}

	path := filepath.Clean(filepath.Join(root, key))
	if !strings.HasPrefix(path, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("resolve %q: %w", key, ErrInvalidPath)
	}
	return path, nil
}
